/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package anomaly

import (
	"fmt"

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

const (
	flappingDrops         = 5
	flappingCriticalDrops = 10
	latencyWarnMS         = 100.0
	latencyHighMS         = 500.0
	weakSignalDBM         = -80.0
	weakSignalHighDBM     = -90.0
	performanceWarn       = 0.7
	performanceHigh       = 0.5
	resourcePercent       = 90.0
)

// AnalyzePatterns returns the named conditions present in a health report.
func AnalyzePatterns(t *models.HealthTelemetry) []Pattern {
	var out []Pattern

	if t.ConnectionDrops > flappingDrops {
		sev := SeverityMedium
		if t.ConnectionDrops > flappingCriticalDrops {
			sev = SeverityHigh
		}

		out = append(out, Pattern{
			Name:        PatternFlapping,
			Severity:    sev,
			Description: fmt.Sprintf("%d connection drops", t.ConnectionDrops),
		})
	}

	if t.Latency > latencyWarnMS {
		sev := SeverityMedium
		if t.Latency > latencyHighMS {
			sev = SeverityHigh
		}

		out = append(out, Pattern{
			Name:        PatternHighLatency,
			Severity:    sev,
			Description: fmt.Sprintf("latency %.0fms", t.Latency),
		})
	}

	if t.RSSI != nil && *t.RSSI < weakSignalDBM {
		sev := SeverityMedium
		if *t.RSSI < weakSignalHighDBM {
			sev = SeverityHigh
		}

		out = append(out, Pattern{
			Name:        PatternWeakSignal,
			Severity:    sev,
			Description: fmt.Sprintf("rssi %.0fdBm", *t.RSSI),
		})
	}

	if t.Performance < performanceWarn {
		sev := SeverityMedium
		if t.Performance < performanceHigh {
			sev = SeverityHigh
		}

		out = append(out, Pattern{
			Name:        PatternPerformance,
			Severity:    sev,
			Description: fmt.Sprintf("performance score %.2f", t.Performance),
		})
	}

	if t.CPUUsage > resourcePercent || t.MemoryUsage > resourcePercent {
		out = append(out, Pattern{
			Name:        PatternResourceExhaustion,
			Severity:    SeverityHigh,
			Description: fmt.Sprintf("cpu %.0f%% memory %.0f%%", t.CPUUsage, t.MemoryUsage),
		})
	}

	return out
}

// AlertSeverity picks the alert severity for a set of patterns. A high
// flapping or resource pattern is critical; latency and performance
// patterns carry their own severity; otherwise confidence decides.
func AlertSeverity(patterns []Pattern, confidence float64) string {
	sev := ""

	for _, p := range patterns {
		switch p.Name {
		case PatternFlapping, PatternResourceExhaustion:
			if p.Severity == SeverityHigh {
				return SeverityCritical
			}

			sev = maxSeverity(sev, p.Severity)
		case PatternHighLatency, PatternPerformance:
			sev = maxSeverity(sev, p.Severity)
		}
	}

	if sev != "" {
		return sev
	}

	return SeverityForConfidence(confidence)
}

func severityRank(s string) int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

func maxSeverity(a, b string) string {
	if severityRank(b) > severityRank(a) {
		return b
	}

	return a
}

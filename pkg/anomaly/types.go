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
	"time"

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

const (
	ScorerSignal      = "signal_outlier"
	ScorerFingerprint = "fingerprint_change"
	ScorerTemporal    = "temporal_activity"

	// MaxHistory bounds the per-device record history.
	MaxHistory = 50
)

// Observation is one sighting of a device. Passive observations are
// scored without updating scorer history.
type Observation struct {
	MAC        string    `json:"mac"`
	RSSI       float64   `json:"rssi"`
	Vendor     string    `json:"vendor,omitempty"`
	DeviceType string    `json:"deviceType,omitempty"`
	Protocol   string    `json:"protocol,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Passive    bool      `json:"-"`
}

// ObservationFromDevice builds an observation from a ledger record.
func ObservationFromDevice(d *models.Device, at time.Time) Observation {
	return Observation{
		MAC:        d.MAC,
		RSSI:       d.RSSI,
		Vendor:     d.Vendor,
		DeviceType: d.DeviceType,
		Protocol:   d.Protocol,
		Timestamp:  at,
	}
}

// Assessment combines every scorer's record for one observation.
type Assessment struct {
	MAC             string                 `json:"mac"`
	Records         []models.AnomalyRecord `json:"records"`
	IsAnomaly       bool                   `json:"isAnomaly"`
	OverallRisk     float64                `json:"overallRisk"`
	Severity        string                 `json:"severity"`
	Recommendations []string               `json:"recommendations"`
	Timestamp       time.Time              `json:"timestamp"`
}

// Pattern is a named telemetry condition found by AnalyzePatterns.
type Pattern struct {
	Name        string `json:"name"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

const (
	PatternFlapping           = "flapping_device"
	PatternHighLatency        = "high_latency"
	PatternWeakSignal         = "weak_signal"
	PatternPerformance        = "performance_degradation"
	PatternResourceExhaustion = "resource_exhaustion"

	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

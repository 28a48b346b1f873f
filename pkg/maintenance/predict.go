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

package maintenance

import (
	"math"
	"time"

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

const (
	weightUnhealth     = 0.4
	weightDegraded     = 0.3
	weightTrend        = 0.15
	weightAcceleration = 0.1
	weightAnomalies    = 0.05

	degradationScale  = 0.1
	trendScale        = 0.1
	accelerationScale = 0.05

	failureTypeFloor = 0.3
	factorThreshold  = 0.3
	wearHours        = 5 * 8760.0
)

// Predict forecasts failure from a device's health history, oldest first,
// and its latest telemetry. Trends are fitted over daily means so the
// report cadence does not scale the rate. density is the recent anomaly rate in [0,1].
func Predict(history []models.HealthMetrics, t *models.HealthTelemetry, density float64, cfg Config, at time.Time) models.FailurePrediction {
	p := models.FailurePrediction{
		FailureType:         models.FailureNone,
		RiskLevel:           models.RiskLow,
		TimeToFailureDays:   SafeHorizonDays,
		ContributingFactors: []string{},
		RecommendedActions:  []string{},
		Timestamp:           at,
	}

	if len(history) == 0 {
		return p
	}

	last := history[len(history)-1]
	p.MAC = last.MAC

	daily := DailySeries(history)
	window := tail(daily, cfg.TrendWindow)
	short := tail(daily, cfg.ShortWindow)

	degradation := DegradationRate(window)
	longTrend := trendPerDay(window)
	shortTrend := trendPerDay(short)

	negTrend := clamp01(math.Max(0, -shortTrend) / trendScale)
	acceleration := clamp01(math.Max(0, longTrend-shortTrend) / accelerationScale)

	p.Probability = clamp01((1-last.Health)*weightUnhealth +
		math.Min(1, degradation/degradationScale)*weightDegraded +
		negTrend*weightTrend +
		acceleration*weightAcceleration +
		clamp01(density)*weightAnomalies)

	p.TimeToFailureDays = TimeToFailure(last.Health, degradation)
	p.RiskLevel = RiskFor(p.Probability, p.TimeToFailureDays, last.Health)

	tallies := failureTallies(t, &last)
	p.FailureType = classify(tallies)
	p.ContributingFactors = factors(tallies, t, degradation)
	p.RecommendedActions = actions(p.FailureType, p.RiskLevel)

	return p
}

// TimeToFailure is the number of days until health reaches CriticalHealth
// at the given degradation rate, capped at SafeHorizonDays.
func TimeToFailure(health, degradation float64) float64 {
	switch {
	case health <= CriticalHealth:
		return 0
	case degradation <= 0 || math.IsNaN(degradation):
		return SafeHorizonDays
	default:
		return math.Min(SafeHorizonDays, (health-CriticalHealth)/degradation)
	}
}

// RiskFor classifies probability and horizon into a risk band. Low health
// forces a minimum band regardless of the forecast.
func RiskFor(probability, ttfDays, health float64) models.RiskLevel {
	var r models.RiskLevel

	switch {
	case probability >= 0.8 || ttfDays <= 7:
		r = models.RiskCritical
	case probability >= 0.6 || ttfDays <= 30:
		r = models.RiskHigh
	case probability >= 0.3 || ttfDays <= 90:
		r = models.RiskMedium
	default:
		r = models.RiskLow
	}

	var floor models.RiskLevel

	switch {
	case health < 0.2:
		floor = models.RiskCritical
	case health < 0.4:
		floor = models.RiskHigh
	case health < 0.6:
		floor = models.RiskMedium
	default:
		floor = models.RiskLow
	}

	if floor.Rank() > r.Rank() {
		return floor
	}

	return r
}

func failureTallies(t *models.HealthTelemetry, m *models.HealthMetrics) []tally {
	out := []tally{
		{models.FailureBattery, 0},
		{models.FailureConnectivity, 0},
		{models.FailurePerformance, 0},
		{models.FailureSoftware, 0},
		{models.FailureThermal, 0},
		{models.FailureWear, 0},
	}

	if t == nil {
		t = &models.HealthTelemetry{
			Performance:       m.Performance,
			SignalStability:   m.SignalStability,
			ConnectionQuality: m.ConnectionQuality,
			ErrorCount:        m.ErrorCount,
			RestartCount:      m.RestartCount,
		}
	}

	if t.BatteryLevel != nil {
		out[0].score = clamp01((50 - *t.BatteryLevel) / 50)
	}

	out[1].score = clamp01((1-clamp01(t.ConnectionQuality))*0.5 +
		(1-clamp01(t.SignalStability))*0.5 +
		float64(t.ConnectionDrops)/10)
	out[2].score = clamp01(1 - t.Performance)
	out[3].score = clamp01(float64(t.ErrorCount+2*t.RestartCount) / 20)

	if t.Temperature != nil {
		out[4].score = clamp01((*t.Temperature - 50) / 30)
	}

	out[5].score = clamp01(t.OperatingHours / wearHours)

	return out
}

func classify(tallies []tally) models.FailureType {
	best := tally{kind: models.FailureNone}

	for _, t := range tallies {
		if t.score > best.score {
			best = t
		}
	}

	if best.score < failureTypeFloor {
		return models.FailureNone
	}

	return best.kind
}

var factorText = map[models.FailureType]string{
	models.FailureBattery:      "low battery level",
	models.FailureConnectivity: "unstable connection",
	models.FailurePerformance:  "degraded performance",
	models.FailureSoftware:     "frequent errors or restarts",
	models.FailureThermal:      "elevated temperature",
	models.FailureWear:         "high operating hours",
}

func factors(tallies []tally, t *models.HealthTelemetry, degradation float64) []string {
	out := []string{}

	for _, tl := range tallies {
		if tl.score >= factorThreshold {
			out = append(out, factorText[tl.kind])
		}
	}

	if t != nil && t.RSSI != nil && *t.RSSI < -80 {
		out = append(out, "poor signal strength")
	}

	if degradation > 0 {
		out = append(out, "declining health trend")
	}

	return out
}

var actionText = map[models.FailureType]string{
	models.FailureBattery:      "Replace or recharge the battery",
	models.FailureConnectivity: "Check network placement and interference",
	models.FailurePerformance:  "Run diagnostics and review device load",
	models.FailureSoftware:     "Update firmware and review error logs",
	models.FailureThermal:      "Improve ventilation and check cooling",
	models.FailureWear:         "Plan hardware replacement",
}

func actions(ft models.FailureType, risk models.RiskLevel) []string {
	out := []string{}

	if a, ok := actionText[ft]; ok {
		out = append(out, a)
	}

	switch risk {
	case models.RiskCritical:
		out = append(out, "Schedule emergency maintenance")
	case models.RiskHigh:
		out = append(out, "Schedule preventive maintenance")
	case models.RiskMedium:
		out = append(out, "Monitor device closely")
	case models.RiskLow:
	}

	return out
}

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
	weightPerformance = 0.4
	weightStability   = 0.3
	weightConnection  = 0.2
	weightDegradation = 0.1

	latencyBudgetMS = 500.0
	rssiSpreadDB    = 10.0
)

// BaseHealth is the composite health before the degradation term is
// applied, i.e. assuming no degradation.
func BaseHealth(t *models.HealthTelemetry) float64 {
	return clamp01(weightPerformance*clamp01(t.Performance) +
		weightStability*clamp01(t.SignalStability) +
		weightConnection*clamp01(t.ConnectionQuality) +
		weightDegradation)
}

// ComputeHealth returns the composite health and degradation rate for a new
// report given the prior history, oldest first.
func ComputeHealth(t *models.HealthTelemetry, history []models.HealthMetrics, at time.Time, window int) (health, degradation float64) {
	base := BaseHealth(t)

	points := make([]models.HealthMetrics, 0, len(history)+1)
	points = append(points, history...)
	points = append(points, models.HealthMetrics{Health: base, Timestamp: at})

	degradation = DegradationRate(tail(DailySeries(points), window))
	health = clamp01(base - weightDegradation*math.Min(1, degradation))

	return health, degradation
}

// DailySeries collapses a history, oldest first, to one point per UTC day
// holding the mean health of that day. Each point keeps the other fields
// of the day's latest report and is stamped at the start of the day.
func DailySeries(history []models.HealthMetrics) []models.HealthMetrics {
	out := make([]models.HealthMetrics, 0, len(history))

	var (
		sum float64
		n   int
	)

	for i := range history {
		m := history[i]
		bucket := m.Timestamp.UTC().Truncate(day)

		if len(out) > 0 && out[len(out)-1].Timestamp.Equal(bucket) {
			sum += m.Health
			n++
			m.Health = sum / float64(n)
			m.Timestamp = bucket
			out[len(out)-1] = m

			continue
		}

		sum, n = m.Health, 1
		m.Timestamp = bucket
		out = append(out, m)
	}

	return out
}

// DegradationRate is the negated least-squares slope of health per day,
// floored at zero.
func DegradationRate(history []models.HealthMetrics) float64 {
	return math.Max(0, -trendPerDay(history))
}

// trendPerDay regresses health against time in days. Histories with fewer
// than two points or no time spread have no trend.
func trendPerDay(history []models.HealthMetrics) float64 {
	n := float64(len(history))
	if n < 2 {
		return 0
	}

	origin := history[0].Timestamp

	var sx, sy, sxy, sxx float64

	for i := range history {
		x := history[i].Timestamp.Sub(origin).Hours() / 24
		y := history[i].Health
		sx += x
		sy += y
		sxy += x * y
		sxx += x * x
	}

	den := n*sxx - sx*sx
	if den <= 0 || math.IsNaN(den) {
		return 0
	}

	s := (n*sxy - sx*sy) / den
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0
	}

	return s
}

// DeriveTelemetry builds a health report for a device from its ledger
// record and recent samples. Readings the agent put into the device's
// telemetry blob (battery, temperature, cpu, memory, counters) are used
// when present.
func DeriveTelemetry(d *models.Device, samples []models.TelemetrySample) models.HealthTelemetry {
	t := models.HealthTelemetry{
		Performance:       1,
		SignalStability:   1,
		ConnectionQuality: models.SignalQuality(d.RSSI),
	}

	if d.RSSI != 0 {
		rssi := d.RSSI
		t.RSSI = &rssi
	}

	if len(samples) > 0 {
		var loss, latency, quality float64

		rssis := make([]float64, 0, len(samples))

		for i := range samples {
			loss += samples[i].PacketLoss
			latency += samples[i].Latency
			quality += samples[i].SignalQuality
			rssis = append(rssis, samples[i].RSSI)
		}

		n := float64(len(samples))
		t.Latency = latency / n
		t.ConnectionQuality = quality / n
		t.Performance = clamp01((1 - loss/n/100) * (1 - math.Min(1, t.Latency/latencyBudgetMS)/2))
		t.SignalStability = clamp01(1 - stddev(rssis)/rssiSpreadDB)
	}

	t.BatteryLevel = floatField(d.Telemetry, "batteryLevel")
	t.Temperature = floatField(d.Telemetry, "temperature")

	if v := floatField(d.Telemetry, "cpuUsage"); v != nil {
		t.CPUUsage = *v
	}

	if v := floatField(d.Telemetry, "memoryUsage"); v != nil {
		t.MemoryUsage = *v
	}

	if v := floatField(d.Telemetry, "operatingHours"); v != nil {
		t.OperatingHours = *v
	}

	if v := floatField(d.Telemetry, "errorCount"); v != nil {
		t.ErrorCount = int(*v)
	}

	if v := floatField(d.Telemetry, "restartCount"); v != nil {
		t.RestartCount = int(*v)
	}

	if v := floatField(d.Telemetry, "connectionDrops"); v != nil {
		t.ConnectionDrops = int(*v)
	}

	return t
}

func floatField(m map[string]any, key string) *float64 {
	var f float64

	switch v := m[key].(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		return nil
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}

	return &f
}

func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}

	var m float64
	for _, x := range xs {
		m += x
	}

	m /= float64(len(xs))

	var s float64
	for _, x := range xs {
		s += (x - m) * (x - m)
	}

	return math.Sqrt(s / float64(len(xs)))
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func tail(h []models.HealthMetrics, n int) []models.HealthMetrics {
	if n <= 0 {
		return nil
	}

	if len(h) > n {
		h = h[len(h)-n:]
	}

	return append([]models.HealthMetrics(nil), h...)
}

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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

var day0 = time.Date(2026, time.October, 14, 10, 0, 0, 0, time.UTC)

func series(values ...float64) []models.HealthMetrics {
	out := make([]models.HealthMetrics, 0, len(values))
	for i, v := range values {
		out = append(out, models.HealthMetrics{
			MAC:       "AA:00:00:00:00:01",
			Health:    v,
			Timestamp: day0.Add(time.Duration(i) * day),
		})
	}

	return out
}

func TestBaseHealth(t *testing.T) {
	assert.InDelta(t, 1.0, BaseHealth(&models.HealthTelemetry{Performance: 1, SignalStability: 1, ConnectionQuality: 1}), 1e-9)
	assert.InDelta(t, 0.1, BaseHealth(&models.HealthTelemetry{}), 1e-9)
	assert.InDelta(t, 0.1, BaseHealth(&models.HealthTelemetry{Performance: -3}), 1e-9)
}

func TestDegradationRate(t *testing.T) {
	assert.Zero(t, DegradationRate(nil))
	assert.Zero(t, DegradationRate(series(0.5)))
	assert.Zero(t, DegradationRate(series(0.5, 0.6, 0.7)), "improvement is not degradation")
	assert.InDelta(t, 0.135, DegradationRate(series(0.9, 0.85, 0.7, 0.5)), 1e-9)

	same := series(0.9, 0.5)
	same[1].Timestamp = same[0].Timestamp
	assert.Zero(t, DegradationRate(same))
}

func TestComputeHealth(t *testing.T) {
	tel := &models.HealthTelemetry{Performance: 0.5, SignalStability: 0.5, ConnectionQuality: 0.5}

	h, d := ComputeHealth(tel, nil, day0, 30)
	assert.InDelta(t, 0.55, h, 1e-9)
	assert.Zero(t, d)

	h, d = ComputeHealth(tel, series(0.95), day0.Add(day), 30)
	assert.InDelta(t, 0.4, d, 1e-9)
	assert.InDelta(t, 0.55-0.04, h, 1e-9)
}

func TestDeriveTelemetry(t *testing.T) {
	d := &models.Device{
		MAC:    "AA:00:00:00:00:01",
		RSSI:   -65,
		Online: true,
		Telemetry: map[string]any{
			"batteryLevel": 12.0,
			"cpuUsage":     95,
			"temperature":  "hot",
		},
	}
	samples := []models.TelemetrySample{
		{RSSI: -60, SignalQuality: 0.6, PacketLoss: 0, Latency: 10},
		{RSSI: -70, SignalQuality: 0.4, PacketLoss: 20, Latency: 30},
	}

	tel := DeriveTelemetry(d, samples)

	assert.InDelta(t, 20.0, tel.Latency, 1e-9)
	assert.InDelta(t, 0.5, tel.ConnectionQuality, 1e-9)
	assert.InDelta(t, 0.5, tel.SignalStability, 1e-9)
	assert.InDelta(t, 0.9*0.98, tel.Performance, 1e-9)
	assert.InDelta(t, 95.0, tel.CPUUsage, 1e-9)
	if assert.NotNil(t, tel.BatteryLevel) {
		assert.InDelta(t, 12.0, *tel.BatteryLevel, 1e-9)
	}
	assert.Nil(t, tel.Temperature)
	if assert.NotNil(t, tel.RSSI) {
		assert.InDelta(t, -65.0, *tel.RSSI, 1e-9)
	}

	d.Online = false
	assert.InDelta(t, 0.5, DeriveTelemetry(d, samples).ConnectionQuality, 1e-9, "reachability is the ledger's concern")
}

func TestDailySeries(t *testing.T) {
	assert.Empty(t, DailySeries(nil))

	var h []models.HealthMetrics
	for i, v := range []float64{0.9, 0.8, 0.7} {
		h = append(h, models.HealthMetrics{MAC: testMAC, Health: v, ErrorCount: i, Timestamp: day0.Add(time.Duration(i) * time.Hour)})
	}

	h = append(h, models.HealthMetrics{MAC: testMAC, Health: 0.6, Timestamp: day0.Add(day)})

	daily := DailySeries(h)
	if assert.Len(t, daily, 2) {
		assert.InDelta(t, 0.8, daily[0].Health, 1e-9)
		assert.Equal(t, 2, daily[0].ErrorCount)
		assert.Equal(t, day0.Truncate(day), daily[0].Timestamp)
		assert.InDelta(t, 0.6, daily[1].Health, 1e-9)
	}

	assert.InDelta(t, 0.9, h[0].Health, 1e-9, "input is not modified")
}

func TestComputeHealthIgnoresReportCadence(t *testing.T) {
	var h []models.HealthMetrics
	for i := 0; i < 29; i++ {
		h = append(h, models.HealthMetrics{Health: 0.85, Timestamp: day0.Add(time.Duration(i) * 5 * time.Minute)})
	}

	_, d := ComputeHealth(uniform(0.72), h, day0.Add(29*5*time.Minute), 30)
	assert.Zero(t, d, "a dip within one day has no daily trend")
}

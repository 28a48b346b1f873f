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

// Package ranging pkg/ranging/distance.go converts round-trip times into
// distance estimates.
package ranging

import (
	"math"
	"time"

	"github.com/mfreeman451/smartblueprint/pkg/models"
	"github.com/mfreeman451/smartblueprint/pkg/scan"
)

// DistanceFromRTT converts a round-trip time into metres after removing a
// fixed processing offset. The result is never negative.
func DistanceFromRTT(rttMS, offsetMS float64) float64 {
	oneWay := (rttMS - offsetMS) / 2
	d := oneWay / 1000 * SpeedOfLight

	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0
	}

	return d
}

// FromRTT builds a successful measurement, clamping implausible distances
// to the configured bound.
func (e *Engine) FromRTT(source string, rttMS float64) models.RangingMeasurement {
	m := models.RangingMeasurement{
		Source:    source,
		RTT:       rttMS,
		Distance:  DistanceFromRTT(rttMS, e.cfg.ProcessingOffsetMS),
		Status:    models.RangingSuccess,
		Timestamp: e.now(),
	}

	if m.Distance > e.cfg.MaxDistanceM {
		m.Distance = e.cfg.MaxDistanceM
		m.Clamped = true
	}

	return m
}

// Timeout builds the measurement for a host that never answered.
func (e *Engine) Timeout(source string) models.RangingMeasurement {
	return models.RangingMeasurement{
		Source:     source,
		PacketLoss: 100,
		Status:     models.RangingTimeout,
		Timestamp:  e.now(),
	}
}

// FromProbe converts a raw probe result.
func (e *Engine) FromProbe(res scan.ProbeResult) models.RangingMeasurement {
	if res.Received == 0 {
		return e.Timeout(res.Host)
	}

	m := e.FromRTT(res.Host, float64(res.AvgRTT())/float64(time.Millisecond))
	m.PacketLoss = res.PacketLoss()

	return m
}

// FromSamples converts externally measured RTTs. A sample flagged as
// unsuccessful, or with total loss, becomes a timeout.
func (e *Engine) FromSamples(samples []PingSample) []models.RangingMeasurement {
	out := make([]models.RangingMeasurement, 0, len(samples))

	for _, s := range samples {
		if (s.Success != nil && !*s.Success) || s.PacketLoss >= 100 || s.RTT <= 0 {
			out = append(out, e.Timeout(s.Source))
			continue
		}

		m := e.FromRTT(s.Source, s.RTT)
		m.PacketLoss = s.PacketLoss
		out = append(out, m)
	}

	return out
}

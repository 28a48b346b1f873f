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

package models

import "time"

// RangingStatus is the outcome of a ranging probe.
type RangingStatus string

const (
	RangingSuccess RangingStatus = "success"
	RangingTimeout RangingStatus = "timeout"
)

// RangingMeasurement is a distance estimate derived from round-trip time.
// A timeout measurement carries Distance 0 and must not be read as a
// zero-distance fix; check Valid.
type RangingMeasurement struct {
	Source     string        `json:"source"`
	RTT        float64       `json:"rtt"` // milliseconds
	Distance   float64       `json:"distance"`
	PacketLoss float64       `json:"packetLoss"`
	Status     RangingStatus `json:"status"`
	Clamped    bool          `json:"clamped,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}

// Valid reports whether the measurement is usable as a distance reading.
func (m *RangingMeasurement) Valid() bool {
	return m.Status == RangingSuccess
}

// CalibrationFeatures is the labeled feature vector captured at a waypoint.
type CalibrationFeatures struct {
	Signal       map[string]float64 `json:"signal,omitempty"`
	RTT          map[string]float64 `json:"rtt,omitempty"`
	PingDistance map[string]float64 `json:"pingDistance,omitempty"`
}

// CalibrationPoint is one known (x, y) waypoint with its features.
type CalibrationPoint struct {
	X         float64             `json:"x"`
	Y         float64             `json:"y"`
	Features  CalibrationFeatures `json:"features"`
	Timestamp time.Time           `json:"timestamp"`
}

// BoundingBox is the axis-aligned extent of a calibration set.
type BoundingBox struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

// CalibrationSummary is returned when a calibration run is frozen.
type CalibrationSummary struct {
	Points       []CalibrationPoint `json:"points"`
	MeanRTT      float64            `json:"meanRtt"`
	MeanDistance float64            `json:"meanDistance"`
	Bounds       BoundingBox        `json:"bounds"`
}

// LocationEstimate is a position fix with confidence in [0,1].
type LocationEstimate struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

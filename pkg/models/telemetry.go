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

// Package models pkg/models/telemetry.go
package models

import "time"

const (
	rssiFloor   = -100.0
	rssiCeiling = -30.0
)

// TelemetrySample is one point in a device's bounded sample ring.
type TelemetrySample struct {
	MAC           string    `json:"mac"`
	Timestamp     time.Time `json:"timestamp"`
	RSSI          float64   `json:"rssi"`
	SignalQuality float64   `json:"signalQuality"`
	PacketLoss    float64   `json:"packetLoss"`
	Latency       float64   `json:"latency"`
}

// SignalQuality maps an RSSI reading in dBm onto [0,1].
func SignalQuality(rssi float64) float64 {
	q := (rssi - rssiFloor) / (rssiCeiling - rssiFloor)

	switch {
	case q < 0:
		return 0
	case q > 1:
		return 1
	default:
		return q
	}
}

// AnomalyRecord is the output of a single scorer for a single observation.
type AnomalyRecord struct {
	MAC        string             `json:"mac"`
	Scorer     string             `json:"scorer"`
	Score      float64            `json:"score"`
	IsAnomaly  bool               `json:"isAnomaly"`
	Confidence float64            `json:"confidence"`
	Reason     string             `json:"reason,omitempty"`
	Features   map[string]float64 `json:"features,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
}

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
	"time"

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

const (
	// CriticalHealth is the health level treated as failure.
	CriticalHealth = 0.2
	// SafeHorizonDays is reported when health is not degrading.
	SafeHorizonDays = 365.0

	day = 24 * time.Hour
)

// Config bounds history and tunes scheduling.
type Config struct {
	HistoryRetention time.Duration
	HistoryCap       int
	TrendWindow      int
	ShortWindow      int
	EmergencyPremium float64
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		HistoryRetention: 90 * day,
		HistoryCap:       4096,
		TrendWindow:      30,
		ShortWindow:      7,
		EmergencyPremium: 1.5,
	}
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock sets the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Result is the outcome of analyzing one health report.
type Result struct {
	Metrics    models.HealthMetrics        `json:"metrics"`
	Prediction models.FailurePrediction    `json:"prediction"`
	State      models.DeviceHealthState    `json:"state"`
	Schedule   *models.MaintenanceSchedule `json:"schedule,omitempty"`
	Created    bool                        `json:"created,omitempty"`
	Escalated  bool                        `json:"escalated,omitempty"`
}

// DeviceHealth is the health view of one device.
type DeviceHealth struct {
	MAC        string                      `json:"mac"`
	Current    models.HealthMetrics        `json:"current"`
	History    []models.HealthMetrics      `json:"history"`
	Prediction *models.FailurePrediction   `json:"prediction,omitempty"`
	Telemetry  models.HealthTelemetry      `json:"telemetry"`
	State      models.DeviceHealthState    `json:"state"`
	Schedule   *models.MaintenanceSchedule `json:"schedule,omitempty"`
}

type tally struct {
	kind  models.FailureType
	score float64
}

var (
	baseCost = map[models.FailureType]float64{
		models.FailureNone:         100,
		models.FailureBattery:      50,
		models.FailureConnectivity: 120,
		models.FailurePerformance:  150,
		models.FailureSoftware:     80,
		models.FailureThermal:      200,
		models.FailureWear:         300,
	}

	requiredParts = map[models.FailureType][]string{
		models.FailureBattery:      {"battery"},
		models.FailureConnectivity: {"antenna", "network cable"},
		models.FailurePerformance:  {"diagnostic kit"},
		models.FailureSoftware:     {"firmware image"},
		models.FailureThermal:      {"cooling fan", "thermal paste"},
		models.FailureWear:         {"replacement unit"},
	}
)

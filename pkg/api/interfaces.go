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

// Package api pkg/api/interfaces.go
package api

import (
	"context"
	"time"

	"github.com/mfreeman451/smartblueprint/pkg/core"
	"github.com/mfreeman451/smartblueprint/pkg/db"
	"github.com/mfreeman451/smartblueprint/pkg/maintenance"
	"github.com/mfreeman451/smartblueprint/pkg/models"
	"github.com/mfreeman451/smartblueprint/pkg/ranging"
)

//go:generate mockgen -destination=mock_api.go -package=api github.com/mfreeman451/smartblueprint/pkg/api Backend

// Backend is the state the REST surface reads and drives. *core.Core
// implements it.
type Backend interface {
	Devices() []models.Device
	Device(mac string) (models.Device, bool)
	DeviceHealth(mac string) (maintenance.DeviceHealth, bool)
	AnalyzeHealth(ctx context.Context, mac string, t *models.HealthTelemetry) (core.HealthReport, error)
	Anomalies(mac string) []models.AnomalyRecord
	Samples(mac string) []models.TelemetrySample
	HealthSummary() models.HealthSummary

	Predictions() []models.FailurePrediction
	Schedules() []models.MaintenanceSchedule
	Schedule(id string) (models.MaintenanceSchedule, bool)
	UpdateSchedule(id string, status models.ScheduleStatus) (models.MaintenanceSchedule, error)

	SubmitPings(samples []ranging.PingSample) []models.RangingMeasurement
	Measure(ctx context.Context, hosts []string) ([]models.RangingMeasurement, error)
	StartCalibration()
	AddCalibrationPoint(x, y float64, f models.CalibrationFeatures) bool
	CompleteCalibration() (models.CalibrationSummary, error)
	Fuse(estimates []models.LocationEstimate, weights []float64) (models.LocationEstimate, error)
	SetAnchor(a ranging.Anchor) (ranging.Anchor, error)
	Anchors() []ranging.Anchor
	Locate(mac string) (models.LocationEstimate, error)
	StartLiveProbing(hosts []string, interval time.Duration) error
	StopLiveProbing() bool

	Agents() []models.AgentConnection
	SendCommand(agentID, command string, params map[string]any) (string, bool)
	Events(ctx context.Context, mac string, limit int) ([]db.EventRecord, error)
}

var _ Backend = (*core.Core)(nil)

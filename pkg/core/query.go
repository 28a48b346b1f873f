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

package core

import (
	"context"
	"time"

	"github.com/mfreeman451/smartblueprint/pkg/alerts"
	"github.com/mfreeman451/smartblueprint/pkg/db"
	"github.com/mfreeman451/smartblueprint/pkg/maintenance"
	"github.com/mfreeman451/smartblueprint/pkg/models"
	"github.com/mfreeman451/smartblueprint/pkg/ranging"
)

// Devices returns every ledger record.
func (c *Core) Devices() []models.Device {
	return c.ledger.All()
}

// Device returns one ledger record.
func (c *Core) Device(mac string) (models.Device, bool) {
	return c.ledger.Get(mac)
}

// DeviceHealth returns the maintenance view of one device.
func (c *Core) DeviceHealth(mac string) (maintenance.DeviceHealth, bool) {
	return c.health.Health(mac)
}

// Anomalies returns the anomaly records kept for one device.
func (c *Core) Anomalies(mac string) []models.AnomalyRecord {
	return c.anomalies.History(mac)
}

// Samples returns the telemetry ring of one device.
func (c *Core) Samples(mac string) []models.TelemetrySample {
	return c.samples.GetSamples(mac)
}

// Predictions returns current failure predictions, most likely first.
func (c *Core) Predictions() []models.FailurePrediction {
	return c.health.Predictions()
}

// Schedules returns every maintenance schedule.
func (c *Core) Schedules() []models.MaintenanceSchedule {
	return c.health.Schedules()
}

// Schedule returns one maintenance schedule.
func (c *Core) Schedule(id string) (models.MaintenanceSchedule, bool) {
	return c.health.Schedule(id)
}

// UpdateSchedule moves a schedule forward and announces the change.
func (c *Core) UpdateSchedule(id string, status models.ScheduleStatus) (models.MaintenanceSchedule, error) {
	s, err := c.health.UpdateSchedule(id, status)
	if err != nil {
		return s, err
	}

	c.emitSchedule(alerts.EventMaintenanceUpdated, &s)

	return s, nil
}

// HealthSummary aggregates the fleet's predictions.
func (c *Core) HealthSummary() models.HealthSummary {
	return c.health.Summary()
}

// SubmitPings converts externally measured RTTs into measurements.
func (c *Core) SubmitPings(samples []ranging.PingSample) []models.RangingMeasurement {
	ms := c.ranging.FromSamples(samples)
	c.publishRanging("", ms, nil)

	return ms
}

// Measure probes hosts from the core itself.
func (c *Core) Measure(ctx context.Context, hosts []string) ([]models.RangingMeasurement, error) {
	ms, err := c.ranging.Measure(ctx, hosts)
	if err != nil {
		return nil, err
	}

	c.publishRanging("", ms, nil)

	return ms, nil
}

// StartCalibration begins a new calibration run.
func (c *Core) StartCalibration() {
	c.ranging.StartCalibration()
}

// AddCalibrationPoint records a waypoint; false when not calibrating.
func (c *Core) AddCalibrationPoint(x, y float64, f models.CalibrationFeatures) bool {
	return c.ranging.AddCalibrationPoint(x, y, f)
}

// CompleteCalibration freezes the current run.
func (c *Core) CompleteCalibration() (models.CalibrationSummary, error) {
	return c.ranging.CompleteCalibration()
}

// Fuse combines location estimates with caller weights.
func (c *Core) Fuse(estimates []models.LocationEstimate, weights []float64) (models.LocationEstimate, error) {
	return ranging.Fuse(estimates, weights)
}

// SetAnchor places or moves a ranging anchor.
func (c *Core) SetAnchor(a ranging.Anchor) (ranging.Anchor, error) {
	return c.ranging.SetAnchor(a)
}

// Anchors lists the ranging anchors.
func (c *Core) Anchors() []ranging.Anchor {
	return c.ranging.Anchors()
}

// Locate trilaterates a device from the RSSI its reporting agents heard,
// where those agents are anchors.
func (c *Core) Locate(mac string) (models.LocationEstimate, error) {
	return c.ranging.Locate(mac)
}

// StartLiveProbing replaces any running live probe of the core. Every
// round is broadcast as a ranging update.
func (c *Core) StartLiveProbing(hosts []string, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Duration(c.cfg.Ranging.LiveInterval)
	}

	c.mu.Lock()
	ctx := c.runCtx
	c.mu.Unlock()

	if ctx == nil {
		return ErrNotStarted
	}

	return c.ranging.StartLiveProbing(ctx, hosts, interval, func(ms []models.RangingMeasurement) {
		c.publishRanging("", ms, nil)
	})
}

// StopLiveProbing stops the live probe; false when none was running.
func (c *Core) StopLiveProbing() bool {
	return c.ranging.StopLiveProbing()
}

// Agents lists registered agent connections.
func (c *Core) Agents() []models.AgentConnection {
	return c.tunnel.Agents()
}

// SendCommand relays a command to an agent.
func (c *Core) SendCommand(agentID, command string, params map[string]any) (string, bool) {
	return c.tunnel.SendCommand(agentID, command, params)
}

// Events lists journaled events, newest first.
func (c *Core) Events(ctx context.Context, mac string, limit int) ([]db.EventRecord, error) {
	if c.journal == nil {
		return nil, ErrJournalDisabled
	}

	return c.journal.Events(ctx, mac, limit)
}

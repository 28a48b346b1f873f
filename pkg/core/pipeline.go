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
	"fmt"
	"sort"
	"strings"

	"github.com/mfreeman451/smartblueprint/pkg/alerts"
	"github.com/mfreeman451/smartblueprint/pkg/anomaly"
	"github.com/mfreeman451/smartblueprint/pkg/ledger"
	"github.com/mfreeman451/smartblueprint/pkg/models"
	"github.com/mfreeman451/smartblueprint/pkg/ranging"
	"github.com/mfreeman451/smartblueprint/pkg/tunnel"
)

var _ tunnel.Handler = (*Core)(nil)

// HandleDeviceUpdates admits a batch through the integrity filter, applies
// it to the ledger and scores every touched device. A batch with any
// placeholder signature is rejected whole.
func (c *Core) HandleDeviceUpdates(_ context.Context, agentID string, updates []models.DeviceUpdate) (int, error) {
	if violations, err := c.filter.Admit(updates); err != nil {
		c.log.Warn().
			Str("agent_id", agentID).
			Int("updates", len(updates)).
			Int("violations", len(violations)).
			Msg("device batch rejected")

		c.emitter.Emit(alerts.Event{
			Type:     alerts.EventIntegrityViolation,
			Severity: "high",
			Title:    "Device batch rejected",
			Message:  fmt.Sprintf("agent %s sent %d placeholder values", agentID, len(violations)),
			Payload:  violations,
		})

		return 0, err
	}

	applied := 0

	for _, u := range updates {
		change, err := c.ledger.Apply(agentID, u)
		if err != nil {
			c.log.Warn().Err(err).Str("agent_id", agentID).Str("mac", u.Device.MAC).Msg("skipping device update")

			continue
		}

		applied++

		c.observe(&change)
		c.recovery.processRecovery(&change)
	}

	c.log.Debug().Str("agent_id", agentID).Int("applied", applied).Int("updates", len(updates)).Msg("device batch applied")

	return applied, nil
}

// observe records a sample for the changed device and scores it.
func (c *Core) observe(change *ledger.Change) {
	d := &change.Device

	c.emitter.Emit(alerts.Event{Type: alerts.EventDeviceUpdate, MAC: d.MAC, Payload: change})

	if change.Action == models.ActionRemoved {
		return
	}

	c.samples.AddSample(d.MAC, models.TelemetrySample{
		MAC:           d.MAC,
		Timestamp:     d.LastSeen,
		RSSI:          d.RSSI,
		SignalQuality: models.SignalQuality(d.RSSI),
		PacketLoss:    blobFloat(d.Telemetry, "packetLoss"),
		Latency:       blobFloat(d.Telemetry, "latency"),
	})

	c.ranging.ObserveRSSI(d.AgentID, d.MAC, d.RSSI)

	a := c.anomalies.Analyze(anomaly.ObservationFromDevice(d, c.now()))
	if a.IsAnomaly {
		c.emitAnomaly(&a)
	}
}

func (c *Core) emitAnomaly(a *anomaly.Assessment) {
	scorers := make([]string, 0, len(a.Records))

	for _, r := range a.Records {
		if r.IsAnomaly {
			scorers = append(scorers, r.Scorer)
		}
	}

	c.emitter.Emit(alerts.Event{
		Type:     alerts.EventAnomalyDetected,
		MAC:      a.MAC,
		Severity: a.Severity,
		Title:    "Device anomaly detected",
		Message:  fmt.Sprintf("%s flagged by %s", a.MAC, strings.Join(scorers, ", ")),
		Payload:  a,
	})
}

// HandleHealthAnalysis runs an agent-supplied health report through the
// maintenance engine.
func (c *Core) HandleHealthAnalysis(ctx context.Context, agentID, mac string, t *models.HealthTelemetry) error {
	if _, err := c.AnalyzeHealth(ctx, mac, t); err != nil {
		c.log.Warn().Err(err).Str("agent_id", agentID).Str("mac", mac).Msg("health analysis failed")

		return err
	}

	return nil
}

// AnalyzeHealth scores telemetry for mac, updates its prediction and
// schedule, and emits the resulting events.
func (c *Core) AnalyzeHealth(_ context.Context, mac string, t *models.HealthTelemetry) (HealthReport, error) {
	res, err := c.health.Analyze(mac, t)
	if err != nil {
		return HealthReport{}, err
	}

	patterns := anomaly.AnalyzePatterns(t)
	report := HealthReport{
		Result:   res,
		Patterns: patterns,
		Severity: anomaly.AlertSeverity(patterns, res.Prediction.Probability),
	}

	mac = res.Metrics.MAC

	c.emitter.Emit(alerts.Event{
		Type:     alerts.EventHealthMetrics,
		MAC:      mac,
		Severity: report.Severity,
		Payload:  report,
	})

	if res.Prediction.RiskLevel.Rank() >= models.RiskHigh.Rank() {
		c.emitter.Emit(alerts.Event{
			Type:     alerts.EventFailurePrediction,
			MAC:      mac,
			Severity: string(res.Prediction.RiskLevel),
			Title:    "Device failure predicted",
			Message: fmt.Sprintf("%s: %s risk of %s within %.0f days",
				mac, res.Prediction.RiskLevel, res.Prediction.FailureType, res.Prediction.TimeToFailureDays),
			Payload: res.Prediction,
		})
	}

	if res.Schedule != nil && (res.Created || res.Escalated) {
		c.emitSchedule(alerts.EventMaintenanceScheduled, res.Schedule)
	}

	return report, nil
}

func (c *Core) emitSchedule(event string, s *models.MaintenanceSchedule) {
	sev := "medium"

	switch {
	case s.Status == models.ScheduleCompleted:
		sev = "info"
	case s.Type == models.MaintenanceEmergency:
		sev = alerts.SeverityCritical
	case s.Type == models.MaintenancePreventive:
		sev = "high"
	}

	c.emitter.Emit(alerts.Event{
		Type:     event,
		MAC:      s.MAC,
		Severity: sev,
		Title:    "Maintenance " + string(s.Status),
		Message: fmt.Sprintf("%s maintenance for %s on %s (%s)",
			s.Type, s.MAC, s.ScheduledDate.Format("2006-01-02"), s.FailureType),
		Payload: s,
	})
}

// HandleProbe turns an agent's RTT map into ranging measurements.
func (c *Core) HandleProbe(_ context.Context, agentID string, msg *tunnel.Message) error {
	if len(msg.RTT) == 0 {
		return fmt.Errorf("%w: %w", tunnel.ErrProtocol, ErrNoReadings)
	}

	sources := make([]string, 0, len(msg.RTT))
	for src := range msg.RTT {
		sources = append(sources, src)
	}

	sort.Strings(sources)

	samples := make([]ranging.PingSample, 0, len(sources))
	for _, src := range sources {
		samples = append(samples, ranging.PingSample{Source: src, RTT: msg.RTT[src]})
	}

	c.publishRanging(agentID, c.ranging.FromSamples(samples), msg.PingDistance)

	return nil
}

func (c *Core) publishRanging(agentID string, ms []models.RangingMeasurement, pingDistance map[string]float64) {
	c.emitter.Emit(alerts.Event{
		Type: alerts.EventRangingUpdate,
		Payload: RangingReport{
			AgentID:      agentID,
			Measurements: ms,
			PingDistance: pingDistance,
		},
	})
}

// HandleErrorReport logs an agent-side failure and relays it.
func (c *Core) HandleErrorReport(_ context.Context, agentID string, msg *tunnel.Message) {
	c.log.Warn().
		Str("agent_id", agentID).
		Str("severity", msg.Severity).
		Interface("context", msg.Context).
		Msg(msg.Error)

	c.emitter.Emit(alerts.Event{
		Type:     alerts.EventAgentError,
		Severity: msg.Severity,
		Title:    "Agent error",
		Message:  msg.Error,
		Payload:  map[string]any{"agentId": agentID, "context": msg.Context},
	})
}

func blobFloat(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

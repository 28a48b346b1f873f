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
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mfreeman451/smartblueprint/pkg/logger"
	"github.com/mfreeman451/smartblueprint/pkg/models"
)

type deviceState struct {
	history    []models.HealthMetrics
	telemetry  models.HealthTelemetry
	prediction *models.FailurePrediction
	state      models.DeviceHealthState
}

// Engine tracks device health, forecasts failures and owns the
// maintenance schedules.
type Engine struct {
	cfg       Config
	anomalies AnomalySource
	now       func() time.Time
	log       zerolog.Logger

	mu        sync.RWMutex
	devices   map[string]*deviceState
	schedules map[string]*models.MaintenanceSchedule
	active    map[string]string // mac -> schedule id
}

// NewEngine creates an engine. anomalies may be nil.
func NewEngine(cfg Config, anomalies AnomalySource, opts ...Option) *Engine {
	def := DefaultConfig()

	if cfg.HistoryRetention <= 0 {
		cfg.HistoryRetention = def.HistoryRetention
	}

	if cfg.HistoryCap <= 0 {
		cfg.HistoryCap = def.HistoryCap
	}

	if cfg.TrendWindow < 2 {
		cfg.TrendWindow = def.TrendWindow
	}

	if cfg.ShortWindow < 2 {
		cfg.ShortWindow = def.ShortWindow
	}

	if cfg.EmergencyPremium <= 0 {
		cfg.EmergencyPremium = def.EmergencyPremium
	}

	e := &Engine{
		cfg:       cfg,
		anomalies: anomalies,
		now:       time.Now,
		log:       logger.Component("maintenance"),
		devices:   make(map[string]*deviceState),
		schedules: make(map[string]*models.MaintenanceSchedule),
		active:    make(map[string]string),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Analyze records a health report for mac, refreshes its prediction and
// creates or escalates its maintenance schedule.
func (e *Engine) Analyze(mac string, t *models.HealthTelemetry) (Result, error) {
	mac = models.NormalizeMAC(mac)
	if mac == "" {
		return Result{}, ErrEmptyMAC
	}

	var density float64
	if e.anomalies != nil {
		density = e.anomalies.Density(mac)
	}

	now := e.now()

	e.mu.Lock()
	defer e.mu.Unlock()

	ds, ok := e.devices[mac]
	if !ok {
		ds = &deviceState{state: models.StateHealthy}
		e.devices[mac] = ds
	}

	health, degradation := ComputeHealth(t, ds.history, now, e.cfg.TrendWindow)

	m := models.HealthMetrics{
		MAC:               mac,
		Health:            health,
		DegradationRate:   degradation,
		Performance:       t.Performance,
		SignalStability:   t.SignalStability,
		ConnectionQuality: t.ConnectionQuality,
		ErrorCount:        t.ErrorCount,
		RestartCount:      t.RestartCount,
		Timestamp:         now,
	}

	ds.history = e.prune(append(ds.history, m), now)
	ds.telemetry = *t

	pred := Predict(ds.history, t, density, e.cfg, now)
	ds.prediction = &pred

	res := Result{Metrics: m, Prediction: pred}
	res.Schedule, res.Created, res.Escalated = e.schedule(ds, &pred, now)
	res.State = ds.state

	return res, nil
}

// schedule runs the state machine for one device. Caller holds e.mu.
func (e *Engine) schedule(ds *deviceState, p *models.FailurePrediction, now time.Time) (*models.MaintenanceSchedule, bool, bool) {
	kind, needed := Plan(p)

	if id, ok := e.active[p.MAC]; ok {
		s := e.schedules[id]
		escalated := needed && escalate(s, p, kind, e.cfg, now)

		if escalated {
			e.log.Warn().Str("mac", p.MAC).Str("schedule_id", s.ID).
				Str("type", string(s.Type)).Msg("maintenance escalated")
		}

		ds.state = models.StateScheduled
		out := *s

		return &out, false, escalated
	}

	if !needed {
		if p.RiskLevel == models.RiskLow {
			ds.state = models.StateHealthy
		} else {
			ds.state = models.StateAtRisk
		}

		return nil, false, false
	}

	s := newSchedule(p, kind, e.cfg, now)
	e.schedules[s.ID] = s
	e.active[p.MAC] = s.ID
	ds.state = models.StateScheduled

	e.log.Info().Str("mac", p.MAC).Str("schedule_id", s.ID).
		Str("type", string(kind)).Time("date", s.ScheduledDate).Msg("maintenance scheduled")

	out := *s

	return &out, true, false
}

func (e *Engine) prune(h []models.HealthMetrics, now time.Time) []models.HealthMetrics {
	cutoff := now.Add(-e.cfg.HistoryRetention)

	i := 0
	for i < len(h) && h[i].Timestamp.Before(cutoff) {
		i++
	}

	if len(h)-i > e.cfg.HistoryCap {
		i = len(h) - e.cfg.HistoryCap
	}

	if i == 0 {
		return h
	}

	return append([]models.HealthMetrics(nil), h[i:]...)
}

// UpdateSchedule moves a schedule forward through its lifecycle.
// Completing it frees the device for a new schedule.
func (e *Engine) UpdateSchedule(id string, status models.ScheduleStatus) (models.MaintenanceSchedule, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.schedules[id]
	if !ok {
		return models.MaintenanceSchedule{}, fmt.Errorf("%w: %s", ErrUnknownSchedule, id)
	}

	if err := checkTransition(s.Status, status); err != nil {
		return *s, err
	}

	if s.Status == status {
		return *s, nil
	}

	s.Status = status
	s.UpdatedAt = e.now()

	if status == models.ScheduleCompleted {
		delete(e.active, s.MAC)

		if ds, ok := e.devices[s.MAC]; ok {
			ds.state = models.StateCompleted
		}
	}

	e.log.Info().Str("schedule_id", id).Str("status", string(status)).Msg("schedule updated")

	return *s, nil
}

// Schedule returns a schedule by id.
func (e *Engine) Schedule(id string) (models.MaintenanceSchedule, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s, ok := e.schedules[id]
	if !ok {
		return models.MaintenanceSchedule{}, false
	}

	return *s, true
}

// Schedules returns every schedule ordered by date.
func (e *Engine) Schedules() []models.MaintenanceSchedule {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]models.MaintenanceSchedule, 0, len(e.schedules))
	for _, s := range e.schedules {
		out = append(out, *s)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledDate.Equal(out[j].ScheduledDate) {
			return out[i].ID < out[j].ID
		}

		return out[i].ScheduledDate.Before(out[j].ScheduledDate)
	})

	return out
}

// ActiveSchedules counts non-completed schedules for mac.
func (e *Engine) ActiveSchedules(mac string) int {
	mac = models.NormalizeMAC(mac)

	e.mu.RLock()
	defer e.mu.RUnlock()

	n := 0

	for _, s := range e.schedules {
		if s.MAC == mac && s.Active() {
			n++
		}
	}

	return n
}

// Predictions returns the current prediction of every device, most
// likely failure first.
func (e *Engine) Predictions() []models.FailurePrediction {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]models.FailurePrediction, 0, len(e.devices))

	for _, ds := range e.devices {
		if ds.prediction != nil {
			out = append(out, *ds.prediction)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Probability == out[j].Probability {
			return out[i].MAC < out[j].MAC
		}

		return out[i].Probability > out[j].Probability
	})

	return out
}

// Health returns the health view of mac.
func (e *Engine) Health(mac string) (DeviceHealth, bool) {
	mac = models.NormalizeMAC(mac)

	e.mu.RLock()
	defer e.mu.RUnlock()

	ds, ok := e.devices[mac]
	if !ok || len(ds.history) == 0 {
		return DeviceHealth{}, false
	}

	out := DeviceHealth{
		MAC:       mac,
		Current:   ds.history[len(ds.history)-1],
		History:   append([]models.HealthMetrics(nil), ds.history...),
		Telemetry: ds.telemetry,
		State:     ds.state,
	}

	if ds.prediction != nil {
		p := *ds.prediction
		out.Prediction = &p
	}

	if id, ok := e.active[mac]; ok {
		s := *e.schedules[id]
		out.Schedule = &s
	}

	return out, true
}

// State returns the state machine position of mac.
func (e *Engine) State(mac string) models.DeviceHealthState {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if ds, ok := e.devices[models.NormalizeMAC(mac)]; ok {
		return ds.state
	}

	return models.StateHealthy
}

// Summary aggregates the fleet's current health.
func (e *Engine) Summary() models.HealthSummary {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s := models.HealthSummary{Attention: []string{}, GeneratedAt: e.now()}

	var total float64

	for mac, ds := range e.devices {
		if ds.prediction == nil || len(ds.history) == 0 {
			continue
		}

		s.TotalDevices++
		total += ds.history[len(ds.history)-1].Health

		switch ds.prediction.RiskLevel {
		case models.RiskLow:
			s.HealthyDevices++
		case models.RiskMedium, models.RiskHigh:
			s.AtRiskDevices++
		case models.RiskCritical:
			s.CriticalDevices++
		}

		if ds.prediction.RiskLevel.Rank() >= models.RiskHigh.Rank() {
			s.Attention = append(s.Attention, mac)
		}
	}

	if s.TotalDevices > 0 {
		s.AverageHealth = total / float64(s.TotalDevices)
	}

	sort.Strings(s.Attention)

	return s
}

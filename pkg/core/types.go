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
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mfreeman451/smartblueprint/pkg/alerts"
	"github.com/mfreeman451/smartblueprint/pkg/anomaly"
	"github.com/mfreeman451/smartblueprint/pkg/config"
	"github.com/mfreeman451/smartblueprint/pkg/db"
	"github.com/mfreeman451/smartblueprint/pkg/integrity"
	"github.com/mfreeman451/smartblueprint/pkg/ledger"
	"github.com/mfreeman451/smartblueprint/pkg/maintenance"
	"github.com/mfreeman451/smartblueprint/pkg/metrics"
	"github.com/mfreeman451/smartblueprint/pkg/models"
	"github.com/mfreeman451/smartblueprint/pkg/ranging"
	"github.com/mfreeman451/smartblueprint/pkg/scan"
	"github.com/mfreeman451/smartblueprint/pkg/tunnel"
)

const (
	housekeepingInterval = time.Hour
	livenessChecks       = 3 // liveness checks per window
)

// Core is the process-wide context object. It owns every engine and is
// handed to the tunnel and the API instead of package globals.
type Core struct {
	cfg       *config.CoreConfig
	ledger    *ledger.Ledger
	offline   *ledger.OfflineDetector
	filter    *integrity.Filter
	samples   *metrics.Manager
	ranging   *ranging.Engine
	anomalies *anomaly.Engine
	health    *maintenance.Engine
	tunnel    *tunnel.Server
	emitter   *alerts.Emitter
	journal   db.Service
	publisher alerts.Publisher
	recovery  *RecoveryManager
	now       func() time.Time
	log       zerolog.Logger

	mu      sync.Mutex
	runCtx  context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// Option overrides a collaborator Core would otherwise build from config.
type Option func(*options)

type options struct {
	prober    scan.Prober
	journal   db.Service
	publisher alerts.Publisher
	webhooks  []alerts.AlertService
	now       func() time.Time
}

// WithProber replaces the ICMP prober used for ranging.
func WithProber(p scan.Prober) Option {
	return func(o *options) { o.prober = p }
}

// WithJournal replaces the SQLite journal.
func WithJournal(j db.Service) Option {
	return func(o *options) { o.journal = j }
}

// WithPublisher replaces the MQTT sink.
func WithPublisher(p alerts.Publisher) Option {
	return func(o *options) { o.publisher = p }
}

// WithWebhooks replaces the webhook sinks built from config.
func WithWebhooks(w ...alerts.AlertService) Option {
	return func(o *options) { o.webhooks = w }
}

// WithClock injects the time source shared by the ledger and sweeps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// HealthReport is the outcome of one health analysis.
type HealthReport struct {
	maintenance.Result
	Patterns []anomaly.Pattern `json:"patterns"`
	Severity string            `json:"severity"`
}

// RangingReport is broadcast for every batch of ranging measurements.
type RangingReport struct {
	AgentID      string                      `json:"agentId,omitempty"`
	Measurements []models.RangingMeasurement `json:"measurements"`
	PingDistance map[string]float64          `json:"pingDistance,omitempty"`
}

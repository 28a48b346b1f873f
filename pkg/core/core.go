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

// Package core wires the telemetry pipeline together.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/mfreeman451/smartblueprint/pkg/alerts"
	"github.com/mfreeman451/smartblueprint/pkg/anomaly"
	"github.com/mfreeman451/smartblueprint/pkg/config"
	"github.com/mfreeman451/smartblueprint/pkg/db"
	"github.com/mfreeman451/smartblueprint/pkg/integrity"
	"github.com/mfreeman451/smartblueprint/pkg/ledger"
	"github.com/mfreeman451/smartblueprint/pkg/logger"
	"github.com/mfreeman451/smartblueprint/pkg/maintenance"
	"github.com/mfreeman451/smartblueprint/pkg/metrics"
	"github.com/mfreeman451/smartblueprint/pkg/ranging"
	"github.com/mfreeman451/smartblueprint/pkg/scan"
	"github.com/mfreeman451/smartblueprint/pkg/tunnel"
)

// New builds the engines described by cfg. The journal and MQTT sink are
// only created when configured.
func New(cfg *config.CoreConfig, opts ...Option) (*Core, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Core{
		cfg:       cfg,
		filter:    integrity.NewFilter(),
		samples:   metrics.NewManager(metrics.DefaultRetention),
		anomalies: anomaly.NewEngine(),
		now:       o.now,
		log:       logger.Component("core"),
	}

	c.ledger = ledger.NewWithClock(o.now)
	c.offline = ledger.NewOfflineDetector(c.ledger, ledger.DefaultThresholds())
	c.health = maintenance.NewEngine(maintenance.DefaultConfig(), c.anomalies, maintenance.WithClock(o.now))

	prober := o.prober
	if prober == nil {
		prober = scan.NewICMPProber(cfg.Ranging.Privileged)
	}

	c.ranging = ranging.NewEngine(prober, ranging.Config{
		ProcessingOffsetMS: cfg.Ranging.ProcessingOffsetMS,
		MaxDistanceM:       cfg.Ranging.MaxDistanceM,
		ProbeCount:         cfg.Ranging.ProbeCount,
		ProbeTimeout:       time.Duration(cfg.Ranging.ProbeTimeout),
		Concurrency:        cfg.Ranging.Concurrency,
	})

	for _, a := range cfg.Ranging.Anchors {
		if _, err := c.ranging.SetAnchor(ranging.Anchor(a)); err != nil {
			return nil, fmt.Errorf("%w: %w", errAnchor, err)
		}
	}

	tcfg := tunnel.DefaultConfig()
	tcfg.LivenessWindow = time.Duration(cfg.LivenessWindow)
	tcfg.RateLimit = cfg.RateLimit
	tcfg.RateBurst = cfg.RateBurst
	tcfg.SendQueueSize = cfg.SendQueueSize
	tcfg.AuthToken = cfg.AuthToken

	if len(cfg.AllowedOrigins) > 0 {
		tcfg.AllowedOrigins = cfg.AllowedOrigins
	}

	c.tunnel = tunnel.NewServer(tcfg, c)

	if err := c.setupSinks(&o); err != nil {
		return nil, err
	}

	emitterOpts := []alerts.Option{alerts.WithWebhooks(o.webhooks...)}

	if c.journal != nil {
		emitterOpts = append(emitterOpts, alerts.WithJournal(c.journal))
	}

	if c.publisher != nil {
		emitterOpts = append(emitterOpts, alerts.WithPublisher(c.publisher, cfg.MQTT.TopicPrefix))
	}

	c.emitter = alerts.NewEmitter(c.tunnel, emitterOpts...)
	c.recovery = NewRecoveryManager(c.emitter)

	return c, nil
}

func (c *Core) setupSinks(o *options) error {
	c.journal = o.journal
	if c.journal == nil && c.cfg.DBPath != "" {
		j, err := db.New(c.cfg.DBPath)
		if err != nil {
			return fmt.Errorf("%w: %w", errStartJournal, err)
		}

		c.journal = j
	}

	c.publisher = o.publisher
	if c.publisher == nil && c.cfg.MQTT.Broker != "" {
		p, err := alerts.NewMQTTPublisher(c.cfg.MQTT)
		if err != nil {
			if c.journal != nil {
				_ = c.journal.Close()
			}

			return fmt.Errorf("%w: %w", errStartMQTT, err)
		}

		c.publisher = p
	}

	if o.webhooks == nil {
		for _, wh := range c.cfg.Webhooks {
			o.webhooks = append(o.webhooks, alerts.NewWebhookAlerter(wh))
		}
	}

	return nil
}

// Tunnel returns the agent tunnel server.
func (c *Core) Tunnel() *tunnel.Server {
	return c.tunnel
}

// Start launches the sink worker, the liveness monitor and the periodic
// sweeps. It returns immediately.
func (c *Core) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return nil
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.runCtx = ctx
	c.started = true

	c.goRun(func() { c.emitter.Run(ctx) })

	liveness := time.Duration(c.cfg.LivenessWindow) / livenessChecks
	if liveness <= 0 {
		liveness = tunnel.DefaultConfig().LivenessWindow / livenessChecks
	}

	c.goRun(func() { c.tunnel.MonitorAgents(ctx, liveness) })

	c.every(ctx, time.Duration(c.cfg.OfflineSweepInterval), c.sweepOffline)
	c.every(ctx, time.Duration(c.cfg.HealthInterval), c.sweepHealth)
	c.every(ctx, time.Duration(c.cfg.AnomalyInterval), c.sweepAnomalies)
	c.every(ctx, housekeepingInterval, c.housekeeping)

	c.log.Info().
		Dur("offline_sweep", time.Duration(c.cfg.OfflineSweepInterval)).
		Dur("health_sweep", time.Duration(c.cfg.HealthInterval)).
		Dur("anomaly_sweep", time.Duration(c.cfg.AnomalyInterval)).
		Bool("journal", c.journal != nil).
		Bool("mqtt", c.publisher != nil).
		Msg("core started")

	return nil
}

// Stop cancels background work, drops every tunnel connection and closes
// the sinks.
func (c *Core) Stop(ctx context.Context) error {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.runCtx = nil
	c.started = false
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	c.ranging.StopLiveProbing()
	c.tunnel.Close()

	done := make(chan struct{})

	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		c.log.Warn().Msg("background tasks did not stop before shutdown deadline")
	}

	if c.publisher != nil {
		c.publisher.Close()
	}

	if c.journal != nil {
		if err := c.journal.Close(); err != nil {
			return fmt.Errorf("close journal: %w", err)
		}
	}

	c.log.Info().Msg("core stopped")

	return nil
}

func (c *Core) goRun(fn func()) {
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()
		fn()
	}()
}

// every runs fn each interval until ctx ends. Non-positive intervals
// disable the task.
func (c *Core) every(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	if interval <= 0 {
		return
	}

	c.goRun(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	})
}

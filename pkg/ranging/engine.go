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

package ranging

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mfreeman451/smartblueprint/pkg/logger"
	"github.com/mfreeman451/smartblueprint/pkg/models"
	"github.com/mfreeman451/smartblueprint/pkg/scan"
)

// Engine measures distances, runs calibration, locates devices from
// anchor RSSI and owns the live probing task.
type Engine struct {
	prober scan.Prober
	cfg    Config
	now    func() time.Time
	log    zerolog.Logger

	mu          sync.Mutex
	calibrating bool
	points      []models.CalibrationPoint
	summary     *models.CalibrationSummary

	liveMu     sync.Mutex
	liveCancel context.CancelFunc
	liveDone   chan struct{}

	anchors *anchorSet
}

// NewEngine creates a ranging engine. Zero config fields take defaults.
func NewEngine(prober scan.Prober, cfg Config) *Engine {
	def := DefaultConfig()

	if cfg.MaxDistanceM <= 0 {
		cfg.MaxDistanceM = def.MaxDistanceM
	}

	if cfg.ProbeCount <= 0 {
		cfg.ProbeCount = def.ProbeCount
	}

	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = def.ProbeTimeout
	}

	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}

	if cfg.ProcessingOffsetMS < 0 {
		cfg.ProcessingOffsetMS = def.ProcessingOffsetMS
	}

	return &Engine{
		prober:  prober,
		cfg:     cfg,
		now:     time.Now,
		log:     logger.Component("ranging"),
		anchors: newAnchorSet(),
	}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Measure probes every host with bounded concurrency. Results keep the
// order of hosts; a host that fails to probe yields a timeout measurement.
func (e *Engine) Measure(ctx context.Context, hosts []string) ([]models.RangingMeasurement, error) {
	if len(hosts) == 0 {
		return nil, ErrNoHosts
	}

	out := make([]models.RangingMeasurement, len(hosts))
	sem := make(chan struct{}, e.cfg.Concurrency)

	var wg sync.WaitGroup

	for i, host := range hosts {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)

		go func(i int, host string) {
			defer wg.Done()
			defer func() { <-sem }()

			res, err := e.prober.Probe(ctx, host, e.cfg.ProbeCount, e.cfg.ProbeTimeout)
			if err != nil {
				e.log.Warn().Err(err).Str("host", host).Msg("probe failed")

				out[i] = e.Timeout(host)

				return
			}

			res.Host = host
			out[i] = e.FromProbe(res)
		}(i, host)
	}

	wg.Wait()

	return out, nil
}

// StartLiveProbing measures hosts every interval and hands each round to
// sink. Starting while already running replaces the previous task.
func (e *Engine) StartLiveProbing(ctx context.Context, hosts []string, interval time.Duration, sink Sink) error {
	if len(hosts) == 0 {
		return ErrNoHosts
	}

	e.liveMu.Lock()
	defer e.liveMu.Unlock()

	e.stopLocked()

	liveCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	e.liveCancel = cancel
	e.liveDone = done

	targets := append([]string(nil), hosts...)

	go e.liveLoop(liveCtx, done, targets, interval, sink)

	e.log.Info().Int("hosts", len(targets)).Dur("interval", interval).Msg("live probing started")

	return nil
}

// StopLiveProbing cancels the live task and waits for it to exit. It
// reports whether a task was running.
func (e *Engine) StopLiveProbing() bool {
	e.liveMu.Lock()
	defer e.liveMu.Unlock()

	return e.stopLocked()
}

// LiveProbing reports whether a live task is running.
func (e *Engine) LiveProbing() bool {
	e.liveMu.Lock()
	defer e.liveMu.Unlock()

	return e.liveCancel != nil
}

func (e *Engine) stopLocked() bool {
	if e.liveCancel == nil {
		return false
	}

	e.liveCancel()
	<-e.liveDone

	e.liveCancel = nil
	e.liveDone = nil

	e.log.Info().Msg("live probing stopped")

	return true
}

func (e *Engine) liveLoop(ctx context.Context, done chan struct{}, hosts []string, interval time.Duration, sink Sink) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if results, err := e.Measure(ctx, hosts); err == nil && ctx.Err() == nil && sink != nil {
			sink(results)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

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

package agent

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mfreeman451/smartblueprint/pkg/models"
	"github.com/mfreeman451/smartblueprint/pkg/scan"
	"github.com/mfreeman451/smartblueprint/pkg/tunnel"
)

func (a *Agent) sweepLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 || len(a.cfg.Targets) == 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.Sweep(ctx); err != nil {
				a.log.Warn().Err(err).Msg("periodic sweep failed")
			}
		}
	}
}

// Sweep probes every configured target, resolves responders to hardware
// addresses and reports the changes as one device_updates batch. It
// returns the number of updates sent.
func (a *Agent) Sweep(ctx context.Context) (int, error) {
	hosts, err := scan.ExpandTargets(a.cfg.Targets, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to generate targets: %w", err)
	}

	if len(hosts) == 0 {
		return 0, ErrNoTargets
	}

	start := a.now()
	results := a.probeAll(ctx, hosts)

	table, err := a.neighbors()
	if err != nil {
		return 0, err
	}

	updates := a.diff(results, table)

	a.log.Info().
		Int("hosts", len(hosts)).
		Int("updates", len(updates)).
		Dur("took", a.now().Sub(start)).
		Msg("sweep complete")

	if len(updates) == 0 {
		return 0, nil
	}

	a.send(&tunnel.Message{Type: tunnel.MsgDeviceUpdates, Updates: updates})

	return len(updates), nil
}

func (a *Agent) diff(results []scan.ProbeResult, table map[string]string) []models.DeviceUpdate {
	a.mu.Lock()
	defer a.mu.Unlock()

	seen := a.now()
	updates := make([]models.DeviceUpdate, 0, len(results))

	for i := range results {
		res := &results[i]

		mac, ok := table[res.Host]
		if !ok {
			continue
		}

		ip := res.Host
		online := res.Received > 0
		wasOnline, known := a.known[mac]

		switch {
		case online:
			action := models.ActionUpdated
			if !known {
				action = models.ActionDiscovered
			}

			updates = append(updates, models.DeviceUpdate{
				Action: action,
				Device: models.DevicePatch{
					MAC:      mac,
					IP:       &ip,
					Online:   &online,
					LastSeen: &seen,
					Telemetry: map[string]any{
						"latency":    float64(res.AvgRTT()) / float64(time.Millisecond),
						"packetLoss": res.PacketLoss(),
					},
				},
			})
		case wasOnline:
			updates = append(updates, models.DeviceUpdate{
				Action: models.ActionUpdated,
				Device: models.DevicePatch{MAC: mac, IP: &ip, Online: &online},
			})
		default:
			continue
		}

		a.known[mac] = online
	}

	return updates
}

// probeAll probes hosts with bounded concurrency. Results come back in
// address order.
func (a *Agent) probeAll(ctx context.Context, hosts []string) []scan.ProbeResult {
	sortHosts(hosts)

	results := make([]scan.ProbeResult, len(hosts))

	var g errgroup.Group

	g.SetLimit(a.concurrency)

	for i, h := range hosts {
		g.Go(func() error {
			res, err := a.prober.Probe(ctx, h, a.probeCount, a.probeTimeout)
			if err != nil {
				a.log.Debug().Err(err).Str("host", h).Msg("probe failed")

				res = scan.ProbeResult{Sent: a.probeCount}
			}

			res.Host = h
			results[i] = res

			return nil
		})
	}

	_ = g.Wait()

	return results
}

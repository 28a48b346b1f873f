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
	"time"

	"github.com/mfreeman451/smartblueprint/pkg/alerts"
	"github.com/mfreeman451/smartblueprint/pkg/maintenance"
)

// sweepOffline flags devices silent past their class threshold.
func (c *Core) sweepOffline(context.Context) {
	events := c.offline.Sweep()

	for i := range events {
		ev := &events[i]

		c.log.Info().
			Str("mac", ev.Device.MAC).
			Str("device_type", ev.Device.DeviceType).
			Dur("silence", ev.Silence).
			Dur("threshold", ev.Threshold).
			Msg("device went offline")

		c.emitter.Emit(alerts.Event{
			Type:     alerts.EventDeviceOffline,
			MAC:      ev.Device.MAC,
			Severity: "medium",
			Title:    "Device offline",
			Message: fmt.Sprintf("%s silent for %s (threshold %s)",
				ev.Device.MAC, ev.Silence.Round(time.Second), ev.Threshold),
			Payload: ev,
		})
	}
}

// sweepHealth derives telemetry for every online ledger device from its
// record and samples and runs it through the maintenance engine. Offline
// devices are left to the offline detector.
func (c *Core) sweepHealth(ctx context.Context) {
	devices := c.ledger.All()
	analyzed := 0

	for i := range devices {
		if ctx.Err() != nil {
			return
		}

		d := &devices[i]
		if !d.Online {
			continue
		}

		t := maintenance.DeriveTelemetry(d, c.samples.GetSamples(d.MAC))

		if _, err := c.AnalyzeHealth(ctx, d.MAC, &t); err != nil {
			c.log.Warn().Err(err).Str("mac", d.MAC).Msg("health sweep skipped device")

			continue
		}

		analyzed++
	}

	c.log.Debug().Int("devices", analyzed).Msg("health sweep complete")
}

// sweepAnomalies re-scores the ledger without feeding scorer history and
// emits only findings that changed since the device was last scored.
func (c *Core) sweepAnomalies(context.Context) {
	flagged := c.anomalies.Rescore(c.ledger.All(), c.now())

	for i := range flagged {
		c.emitAnomaly(&flagged[i])
	}

	c.log.Debug().Int("flagged", len(flagged)).Msg("anomaly sweep complete")
}

// housekeeping prunes the journal and forgets idle sample rings.
func (c *Core) housekeeping(ctx context.Context) {
	retention := time.Duration(c.cfg.Retention)
	if retention <= 0 {
		return
	}

	if n := c.samples.CleanupStaleDevices(retention); n > 0 {
		c.log.Info().Int("devices", n).Msg("dropped idle sample rings")
	}

	if c.journal == nil {
		return
	}

	n, err := c.journal.Prune(ctx, retention)
	if err != nil {
		c.log.Warn().Err(err).Msg("journal prune failed")

		return
	}

	if n > 0 {
		c.log.Info().Int64("rows", n).Msg("pruned journal")
	}
}

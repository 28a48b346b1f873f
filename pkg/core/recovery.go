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
	"fmt"
	"os"
	"time"

	"github.com/mfreeman451/smartblueprint/pkg/alerts"
	"github.com/mfreeman451/smartblueprint/pkg/ledger"
	"github.com/mfreeman451/smartblueprint/pkg/models"
)

// RecoveryManager announces devices reporting again after they were
// flagged offline.
type RecoveryManager struct {
	emitter     *alerts.Emitter
	getHostname func() string
}

// NewRecoveryManager creates a recovery manager emitting through e.
func NewRecoveryManager(e *alerts.Emitter) *RecoveryManager {
	return &RecoveryManager{
		emitter: e,
		getHostname: func() string {
			hostname, err := os.Hostname()
			if err != nil {
				return "unknown"
			}

			return hostname
		},
	}
}

// processRecovery emits device_recovered when the ledger reported the
// change as a return from offline.
func (m *RecoveryManager) processRecovery(change *ledger.Change) bool {
	if !change.Recovered {
		return false
	}

	m.sendRecoveryAlert(&change.Device, change.OfflineSince)

	return true
}

func (m *RecoveryManager) sendRecoveryAlert(d *models.Device, lastSeen time.Time) {
	name := d.Name
	if name == "" {
		name = d.MAC
	}

	m.emitter.Emit(alerts.Event{
		Type:     alerts.EventDeviceRecovered,
		MAC:      d.MAC,
		Severity: "info",
		Title:    "Device Recovered",
		Message:  fmt.Sprintf("Device '%s' is back online", name),
		Payload: map[string]any{
			"hostname":      m.getHostname(),
			"offline_since": lastSeen.UTC().Format(time.RFC3339),
			"recovery_time": d.LastSeen.UTC().Format(time.RFC3339),
			"agent_id":      d.AgentID,
		},
	})
}

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

package ledger

import (
	"time"

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

// Change is the outcome of applying one device update.
type Change struct {
	Action  models.DeviceAction `json:"action"`
	Device  models.Device       `json:"device"`
	Created bool                `json:"created"`
	// Recovered is set when the update brought an offline record back
	// online. OfflineSince is that record's prior lastSeen.
	Recovered    bool      `json:"recovered,omitempty"`
	OfflineSince time.Time `json:"offlineSince,omitzero"`
}

// OfflineEvent is emitted when a device outlives its class threshold while
// still flagged online.
type OfflineEvent struct {
	Device    models.Device `json:"device"`
	Silence   time.Duration `json:"silence"`
	Threshold time.Duration `json:"threshold"`
}

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

// Package models pkg/models/device.go
package models

import (
	"strings"
	"time"
)

// DeviceAction is the kind of change an agent reports for a device.
type DeviceAction string

const (
	ActionDiscovered DeviceAction = "discovered"
	ActionUpdated    DeviceAction = "updated"
	ActionRemoved    DeviceAction = "removed"
)

// Position is a 2-D location in the floor-plan coordinate space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Device is the canonical ledger record, keyed by hardware address.
type Device struct {
	MAC        string         `json:"mac"`
	Name       string         `json:"name"`
	DeviceType string         `json:"deviceType"`
	Protocol   string         `json:"protocol"`
	Vendor     string         `json:"vendor,omitempty"`
	IP         string         `json:"ip,omitempty"`
	RSSI       float64        `json:"rssi"`
	Position   *Position      `json:"position,omitempty"`
	Online     bool           `json:"online"`
	AgentID    string         `json:"agentId,omitempty"`
	FirstSeen  time.Time      `json:"firstSeen"`
	LastSeen   time.Time      `json:"lastSeen"`
	Telemetry  map[string]any `json:"telemetry,omitempty"`
}

// DevicePatch carries a partial device as reported by an agent. Nil fields
// are absent and never overwrite ledger values.
type DevicePatch struct {
	MAC        string         `json:"mac"`
	Name       *string        `json:"name,omitempty"`
	DeviceType *string        `json:"deviceType,omitempty"`
	Protocol   *string        `json:"protocol,omitempty"`
	Vendor     *string        `json:"vendor,omitempty"`
	IP         *string        `json:"ip,omitempty"`
	RSSI       *float64       `json:"rssi,omitempty"`
	Position   *Position      `json:"position,omitempty"`
	Online     *bool          `json:"online,omitempty"`
	LastSeen   *time.Time     `json:"lastSeen,omitempty"`
	Telemetry  map[string]any `json:"telemetry,omitempty"`
}

// DeviceUpdate is one entry of a device_updates batch.
type DeviceUpdate struct {
	Action DeviceAction `json:"action"`
	Device DevicePatch  `json:"device"`
}

// NormalizeMAC upper-cases a hardware address and unifies separators.
func NormalizeMAC(mac string) string {
	mac = strings.TrimSpace(strings.ToUpper(mac))

	return strings.ReplaceAll(mac, "-", ":")
}

// Clone returns a copy that shares no mutable state with d.
func (d *Device) Clone() Device {
	out := *d

	if d.Position != nil {
		p := *d.Position
		out.Position = &p
	}

	if d.Telemetry != nil {
		out.Telemetry = make(map[string]any, len(d.Telemetry))
		for k, v := range d.Telemetry {
			out.Telemetry[k] = v
		}
	}

	return out
}

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

// Package ledger pkg/ledger/ledger.go holds the canonical per-device record.
package ledger

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

// Ledger is an arena of devices with a hardware-address index. All
// mutations go through one writer lock, so merges for the same address
// never interleave.
type Ledger struct {
	mu      sync.RWMutex
	devices []models.Device
	index   map[string]int
	now     func() time.Time
}

// New creates an empty ledger.
func New() *Ledger {
	return NewWithClock(time.Now)
}

// NewWithClock creates an empty ledger with an injected clock.
func NewWithClock(now func() time.Time) *Ledger {
	return &Ledger{
		index: make(map[string]int),
		now:   now,
	}
}

// Apply reconciles one agent-reported update. A discovered event for a
// known address behaves as updated; removed never deletes the row.
func (l *Ledger) Apply(agentID string, u models.DeviceUpdate) (Change, error) {
	switch u.Action {
	case models.ActionDiscovered, models.ActionUpdated:
		ch, err := l.upsert(agentID, u.Device)
		if err != nil {
			return Change{}, err
		}

		ch.Action = u.Action
		if !ch.Created {
			ch.Action = models.ActionUpdated
		}

		return ch, nil
	case models.ActionRemoved:
		dev, ok := l.MarkOffline(u.Device.MAC)
		if !ok {
			return Change{}, fmt.Errorf("%w: %s", ErrUnknownDevice, u.Device.MAC)
		}

		return Change{Action: models.ActionRemoved, Device: dev}, nil
	default:
		return Change{}, fmt.Errorf("%w: %q", ErrUnknownAction, u.Action)
	}
}

// Upsert merges patch into the record for mac, creating it if absent.
func (l *Ledger) Upsert(mac string, patch models.DevicePatch) (models.Device, error) {
	patch.MAC = mac

	ch, err := l.upsert("", patch)

	return ch.Device, err
}

// upsert merges patch under the write lock and reports the transition it
// caused.
func (l *Ledger) upsert(agentID string, patch models.DevicePatch) (Change, error) {
	mac := models.NormalizeMAC(patch.MAC)
	if mac == "" {
		return Change{}, ErrEmptyMAC
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	seen := l.now()
	if patch.LastSeen != nil {
		seen = *patch.LastSeen
	}

	idx, ok := l.index[mac]
	created := !ok

	if created {
		l.devices = append(l.devices, models.Device{MAC: mac, FirstSeen: seen})
		idx = len(l.devices) - 1
		l.index[mac] = idx
	}

	d := &l.devices[idx]
	wasOnline, prevSeen := d.Online, d.LastSeen

	merge(d, &patch)

	d.LastSeen = seen
	d.Online = patch.Online == nil || *patch.Online

	if agentID != "" {
		d.AgentID = agentID
	}

	ch := Change{Device: d.Clone(), Created: created}
	if !created && !wasOnline && d.Online {
		ch.Recovered = true
		ch.OfflineSince = prevSeen
	}

	return ch, nil
}

// merge copies every present field of p onto d.
func merge(d *models.Device, p *models.DevicePatch) {
	if p.Name != nil {
		d.Name = *p.Name
	}

	if p.DeviceType != nil {
		d.DeviceType = *p.DeviceType
	}

	if p.Protocol != nil {
		d.Protocol = *p.Protocol
	}

	if p.Vendor != nil {
		d.Vendor = *p.Vendor
	}

	if p.IP != nil {
		d.IP = *p.IP
	}

	if p.RSSI != nil {
		d.RSSI = *p.RSSI
	}

	if p.Position != nil {
		pos := *p.Position
		d.Position = &pos
	}

	for k, v := range p.Telemetry {
		if v == nil {
			continue
		}

		if d.Telemetry == nil {
			d.Telemetry = make(map[string]any, len(p.Telemetry))
		}

		d.Telemetry[k] = v
	}
}

// MarkOffline flags a known device offline and stamps lastSeen.
func (l *Ledger) MarkOffline(mac string) (models.Device, bool) {
	mac = models.NormalizeMAC(mac)

	l.mu.Lock()
	defer l.mu.Unlock()

	idx, ok := l.index[mac]
	if !ok {
		return models.Device{}, false
	}

	d := &l.devices[idx]
	d.Online = false
	d.LastSeen = l.now()

	return d.Clone(), true
}

// Get returns a copy of the record for mac.
func (l *Ledger) Get(mac string) (models.Device, bool) {
	mac = models.NormalizeMAC(mac)

	l.mu.RLock()
	defer l.mu.RUnlock()

	idx, ok := l.index[mac]
	if !ok {
		return models.Device{}, false
	}

	return l.devices[idx].Clone(), true
}

// All returns copies of every record ordered by address.
func (l *Ledger) All() []models.Device {
	l.mu.RLock()
	out := make([]models.Device, len(l.devices))

	for i := range l.devices {
		out[i] = l.devices[i].Clone()
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].MAC < out[j].MAC })

	return out
}

// Len reports the number of records.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.devices)
}

// expire flags offline every online device for which expired returns
// true and returns the affected records. lastSeen is left untouched.
func (l *Ledger) expire(expired func(d *models.Device, now time.Time) bool) []models.Device {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	var out []models.Device

	for i := range l.devices {
		d := &l.devices[i]
		if !d.Online || !expired(d, now) {
			continue
		}

		d.Online = false
		out = append(out, d.Clone())
	}

	return out
}

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

package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/mfreeman451/smartblueprint/pkg/logger"
	"github.com/mfreeman451/smartblueprint/pkg/models"
)

type deviceSamples struct {
	buffer     SampleStore
	lastUpdate atomic.Int64
}

// Manager tracks sample rings keyed by hardware address.
type Manager struct {
	devices       sync.Map // mac -> *deviceSamples
	retention     int
	activeDevices int64
	now           func() time.Time
	log           zerolog.Logger
}

// NewManager creates a collector keeping retention samples per device.
func NewManager(retention int) *Manager {
	if retention <= 0 {
		retention = DefaultRetention
	}

	return &Manager{
		retention: retention,
		now:       time.Now,
		log:       logger.Component("metrics"),
	}
}

// AddSample appends a sample to the device's ring, deriving signal
// quality from RSSI when unset.
func (m *Manager) AddSample(mac string, sample models.TelemetrySample) {
	mac = models.NormalizeMAC(mac)
	sample.MAC = mac

	if sample.Timestamp.IsZero() {
		sample.Timestamp = m.now()
	}

	if sample.SignalQuality == 0 && sample.RSSI != 0 {
		sample.SignalQuality = models.SignalQuality(sample.RSSI)
	}

	v, loaded := m.devices.LoadOrStore(mac, &deviceSamples{buffer: NewBuffer(m.retention)})
	if !loaded {
		atomic.AddInt64(&m.activeDevices, 1)
		m.log.Debug().Str("mac", mac).Msg("tracking samples for new device")
	}

	ds := v.(*deviceSamples)
	ds.buffer.Add(sample)
	ds.lastUpdate.Store(m.now().UnixNano())
}

// GetSamples returns the device's samples oldest first, or nil if unknown.
func (m *Manager) GetSamples(mac string) []models.TelemetrySample {
	v, ok := m.devices.Load(models.NormalizeMAC(mac))
	if !ok {
		return nil
	}

	return v.(*deviceSamples).buffer.GetSamples()
}

// GetLastSample returns the newest sample for a device.
func (m *Manager) GetLastSample(mac string) *models.TelemetrySample {
	v, ok := m.devices.Load(models.NormalizeMAC(mac))
	if !ok {
		return nil
	}

	return v.(*deviceSamples).buffer.GetLastSample()
}

// CleanupStaleDevices drops rings not written for staleDuration and
// returns how many were removed.
func (m *Manager) CleanupStaleDevices(staleDuration time.Duration) int {
	cutoff := m.now().Add(-staleDuration).UnixNano()
	removed := 0

	m.devices.Range(func(key, value any) bool {
		if value.(*deviceSamples).lastUpdate.Load() < cutoff {
			m.devices.Delete(key)
			atomic.AddInt64(&m.activeDevices, -1)
			removed++
		}

		return true
	})

	if removed > 0 {
		m.log.Info().Int("removed", removed).Msg("dropped stale sample rings")
	}

	return removed
}

// GetActiveDevices reports how many devices currently have a ring.
func (m *Manager) GetActiveDevices() int64 {
	return atomic.LoadInt64(&m.activeDevices)
}

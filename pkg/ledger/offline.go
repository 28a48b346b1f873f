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
	"strings"
	"time"

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

const defaultOfflineThreshold = 10 * time.Minute

// DefaultThresholds maps device classes to how long they may stay silent
// before being flagged offline.
func DefaultThresholds() map[string]time.Duration {
	return map[string]time.Duration{
		"router":       60 * time.Second,
		"gateway":      60 * time.Second,
		"access_point": 60 * time.Second,
		"printer":      4 * time.Hour,
		"mobile":       12 * time.Hour,
		"phone":        12 * time.Hour,
		"smartphone":   12 * time.Hour,
		"tablet":       12 * time.Hour,
		"computer":     30 * time.Minute,
		"laptop":       30 * time.Minute,
		"desktop":      30 * time.Minute,
		"smart_tv":     time.Hour,
		"iot":          time.Hour,
		"speaker":      time.Hour,
	}
}

// OfflineDetector evaluates every device against a class-specific
// liveness threshold.
type OfflineDetector struct {
	ledger     *Ledger
	thresholds map[string]time.Duration
	fallback   time.Duration
}

// NewOfflineDetector creates a detector. A nil thresholds map uses
// DefaultThresholds.
func NewOfflineDetector(l *Ledger, thresholds map[string]time.Duration) *OfflineDetector {
	if thresholds == nil {
		thresholds = DefaultThresholds()
	}

	return &OfflineDetector{
		ledger:     l,
		thresholds: thresholds,
		fallback:   defaultOfflineThreshold,
	}
}

// Threshold returns the liveness threshold for a device class.
func (o *OfflineDetector) Threshold(deviceType string) time.Duration {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(deviceType)), " ", "_")
	if t, ok := o.thresholds[key]; ok {
		return t
	}

	return o.fallback
}

// Sweep flags offline every online device silent for longer than its
// threshold and returns one event per transition. An empty ledger yields
// no events.
func (o *OfflineDetector) Sweep() []OfflineEvent {
	var events []OfflineEvent

	expired := o.ledger.expire(func(d *models.Device, now time.Time) bool {
		return now.Sub(d.LastSeen) > o.Threshold(d.DeviceType)
	})

	now := o.ledger.now()

	for i := range expired {
		d := expired[i]
		events = append(events, OfflineEvent{
			Device:    d,
			Silence:   now.Sub(d.LastSeen),
			Threshold: o.Threshold(d.DeviceType),
		})
	}

	return events
}

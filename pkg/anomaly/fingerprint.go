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

package anomaly

import (
	"strings"
	"sync"

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

const (
	ReasonNewDevice  = "new_device"
	ReasonMismatch   = "fingerprint_mismatch"
	ReasonKnownGood  = "known_good"
	newDeviceScore   = 0.9
	mismatchScore    = 0.85
	knownGoodScore   = 0.05
	newDeviceConf    = 0.95
	fingerprintConf  = 0.9
	mismatchFeatures = 3
)

// Fingerprint is the stable identity signature of a device.
type Fingerprint struct {
	Vendor     string `json:"vendor"`
	DeviceType string `json:"deviceType"`
	Protocol   string `json:"protocol"`
}

// FingerprintScorer flags first sightings and identity changes.
type FingerprintScorer struct {
	mu        sync.Mutex
	baselines map[string]Fingerprint
}

// NewFingerprintScorer creates an empty scorer.
func NewFingerprintScorer() *FingerprintScorer {
	return &FingerprintScorer{baselines: make(map[string]Fingerprint)}
}

func (*FingerprintScorer) Name() string { return ScorerFingerprint }

// Baseline returns the recorded fingerprint for mac.
func (s *FingerprintScorer) Baseline(mac string) (Fingerprint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fp, ok := s.baselines[mac]

	return fp, ok
}

// Score implements Scorer.
func (s *FingerprintScorer) Score(obs Observation) models.AnomalyRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := Fingerprint{
		Vendor:     norm(obs.Vendor),
		DeviceType: norm(obs.DeviceType),
		Protocol:   norm(obs.Protocol),
	}

	rec := models.AnomalyRecord{
		MAC:       obs.MAC,
		Scorer:    ScorerFingerprint,
		Timestamp: obs.Timestamp,
	}

	base, ok := s.baselines[obs.MAC]
	if !ok {
		if !obs.Passive {
			s.baselines[obs.MAC] = seen
		}

		rec.Score = newDeviceScore
		rec.IsAnomaly = true
		rec.Confidence = newDeviceConf
		rec.Reason = ReasonNewDevice
		rec.Features = map[string]float64{"new_device": 1}

		return rec
	}

	var changed []string

	base.Vendor, changed = compare("vendor", base.Vendor, seen.Vendor, changed)
	base.DeviceType, changed = compare("device_type", base.DeviceType, seen.DeviceType, changed)
	base.Protocol, changed = compare("protocol", base.Protocol, seen.Protocol, changed)

	if !obs.Passive {
		s.baselines[obs.MAC] = base
	}

	rec.Confidence = fingerprintConf
	rec.Features = map[string]float64{
		"new_device":     0,
		"changed_fields": float64(len(changed)),
		"change_ratio":   float64(len(changed)) / mismatchFeatures,
	}

	if len(changed) > 0 {
		rec.Score = mismatchScore
		rec.IsAnomaly = true
		rec.Reason = ReasonMismatch + ":" + strings.Join(changed, ",")

		return rec
	}

	rec.Score = knownGoodScore
	rec.Reason = ReasonKnownGood

	return rec
}

// compare reports a change only when both sides are known. An empty
// baseline field adopts the observed value.
func compare(field, base, seen string, changed []string) (string, []string) {
	switch {
	case seen == "":
		return base, changed
	case base == "":
		return seen, changed
	case base != seen:
		return base, append(changed, field)
	default:
		return base, changed
	}
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

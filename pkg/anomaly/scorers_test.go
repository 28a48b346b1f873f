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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMAC = "10:20:30:40:50:60"

func at(day, hour int) time.Time {
	return time.Date(2026, time.October, day, hour, 15, 0, 0, time.UTC)
}

func TestSignalScorerBaseline(t *testing.T) {
	s := NewSignalScorer(nil)

	rec := s.Score(Observation{MAC: testMAC, RSSI: -55, Timestamp: at(14, 12)})

	assert.Equal(t, ScorerSignal, rec.Scorer)
	assert.InDelta(t, 1.0, rec.Score, 1e-9)
	assert.False(t, rec.IsAnomaly)
	assert.InDelta(t, 0.3, rec.Confidence, 1e-9)
	assert.Empty(t, rec.Reason)
}

func TestSignalScorerOutlier(t *testing.T) {
	s := NewSignalScorer(nil)

	for i := 0; i < 5; i++ {
		s.Score(Observation{MAC: testMAC, RSSI: -50, Timestamp: at(14, 3)})
	}

	rec := s.Score(Observation{MAC: testMAC, RSSI: -95, Timestamp: at(14, 3)})

	assert.True(t, rec.IsAnomaly)
	assert.InDelta(t, 0.0, rec.Score, 1e-9)
	assert.InDelta(t, 0.65, rec.Confidence, 1e-9)
	assert.InDelta(t, 45.0, rec.Features["deviation"], 1e-9)
	assert.Less(t, rec.Features["trend"], -2.0)
	assert.Contains(t, rec.Reason, "very_low_rssi")
	assert.Contains(t, rec.Reason, "off_hours")
}

func TestSignalScorerPassiveKeepsHistory(t *testing.T) {
	s := NewSignalScorer(nil)

	s.Score(Observation{MAC: testMAC, RSSI: -50, Timestamp: at(14, 12), Passive: true})
	rec := s.Score(Observation{MAC: testMAC, RSSI: -50, Timestamp: at(14, 12)})

	assert.InDelta(t, 0.3, rec.Confidence, 1e-9)
}

func TestSignalScorerBaselineIsSmoothed(t *testing.T) {
	s := NewSignalScorer(nil)

	for i := 0; i < 20; i++ {
		rssi := -45.0
		if i%2 == 1 {
			rssi = -65
		}

		s.Score(Observation{MAC: testMAC, RSSI: rssi, Timestamp: at(14, 12)})
	}

	rec := s.Score(Observation{MAC: testMAC, RSSI: -55, Timestamp: at(14, 12)})

	assert.Less(t, rec.Features["variance"], 50.0, "jitter around a steady level is not variance")
	assert.NotContains(t, rec.Reason, "high_variance")
	assert.False(t, rec.IsAnomaly)
	assert.InDelta(t, -55.0, rec.Features["smoothed"], 2.0)
}

func TestSignalScorerCustomRules(t *testing.T) {
	s := NewSignalScorer([]SignalRule{
		{Name: "anything", Penalty: 0.95, Match: func(SignalFeatures) bool { return true }},
	})

	rec := s.Score(Observation{MAC: testMAC, RSSI: -40, Timestamp: at(14, 12)})

	assert.True(t, rec.IsAnomaly)
	assert.Equal(t, "anything", rec.Reason)
}

func TestFingerprintScorer(t *testing.T) {
	s := NewFingerprintScorer()
	obs := Observation{MAC: testMAC, Vendor: "Acme", DeviceType: "printer", Protocol: "wifi", Timestamp: at(14, 12)}

	first := s.Score(obs)
	assert.True(t, first.IsAnomaly)
	assert.Equal(t, ReasonNewDevice, first.Reason)
	assert.InDelta(t, 0.9, first.Score, 1e-9)
	assert.InDelta(t, 0.95, first.Confidence, 1e-9)

	again := s.Score(obs)
	assert.False(t, again.IsAnomaly)
	assert.Equal(t, ReasonKnownGood, again.Reason)
	assert.InDelta(t, 0.05, again.Score, 1e-9)

	partial := obs
	partial.Vendor = ""
	assert.False(t, s.Score(partial).IsAnomaly)

	changed := obs
	changed.Vendor = "Other"
	rec := s.Score(changed)
	assert.True(t, rec.IsAnomaly)
	assert.Equal(t, ReasonMismatch+":vendor", rec.Reason)
	assert.InDelta(t, 0.85, rec.Score, 1e-9)

	fp, ok := s.Baseline(testMAC)
	require.True(t, ok)
	assert.Equal(t, "acme", fp.Vendor)
}

func TestFingerprintScorerFillsEmptyBaseline(t *testing.T) {
	s := NewFingerprintScorer()

	s.Score(Observation{MAC: testMAC, DeviceType: "phone"})
	rec := s.Score(Observation{MAC: testMAC, DeviceType: "phone", Vendor: "Acme"})
	assert.False(t, rec.IsAnomaly)

	fp, _ := s.Baseline(testMAC)
	assert.Equal(t, "acme", fp.Vendor)
}

func TestFingerprintScorerPassiveFirstSighting(t *testing.T) {
	s := NewFingerprintScorer()

	s.Score(Observation{MAC: testMAC, Vendor: "Acme", Passive: true})

	_, ok := s.Baseline(testMAC)
	assert.False(t, ok)
}

func TestExpectedActivity(t *testing.T) {
	// 2026-10-14 is a Wednesday, 2026-10-17 a Saturday.
	assert.InDelta(t, 0.05, ExpectedActivity(at(14, 3)), 1e-9)
	assert.InDelta(t, 0.05, ExpectedActivity(at(14, 23)), 1e-9)
	assert.InDelta(t, 0.8, ExpectedActivity(at(14, 10)), 1e-9)
	assert.InDelta(t, 0.5, ExpectedActivity(at(17, 10)), 1e-9)
	assert.InDelta(t, 0.5, ExpectedActivity(at(14, 20)), 1e-9)
}

func TestTemporalScorerNightActivity(t *testing.T) {
	s := NewTemporalScorer(nil)

	rec := s.Score(Observation{MAC: testMAC, Timestamp: at(14, 3)})

	assert.True(t, rec.IsAnomaly)
	assert.InDelta(t, 1.0, rec.Score, 1e-9)
	assert.InDelta(t, 0.2, rec.Confidence, 1e-9)
}

func TestTemporalScorerEvenActivity(t *testing.T) {
	s := NewTemporalScorer(nil)

	for h := 0; h < 24; h++ {
		if h == 12 {
			continue
		}

		s.Score(Observation{MAC: testMAC, Timestamp: at(17, h)})
	}

	rec := s.Score(Observation{MAC: testMAC, Timestamp: at(17, 12)})

	assert.False(t, rec.IsAnomaly)
	assert.InDelta(t, 0.0, rec.Score, 1e-9)
	assert.InDelta(t, 24.0/50.0, rec.Confidence, 1e-9)
}

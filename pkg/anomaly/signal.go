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
	"math"
	"strings"
	"sync"

	"github.com/mfreeman451/smartblueprint/pkg/models"
	"github.com/mfreeman451/smartblueprint/pkg/ranging"
)

const (
	defaultSignalThreshold = 0.1
	signalPerHourHistory   = 50
	signalTrendWindow      = 10
	hoursPerDay            = 24
)

// SignalFeatures is the feature vector the signal rules evaluate.
type SignalFeatures struct {
	RSSI      float64
	Hour      int
	Mean      float64
	Variance  float64
	Trend     float64
	Deviation float64
}

// SignalRule subtracts Penalty from the score when Match holds.
type SignalRule struct {
	Name    string
	Penalty float64
	Match   func(f SignalFeatures) bool
}

// DefaultSignalRules is the stock rule table.
func DefaultSignalRules() []SignalRule {
	return []SignalRule{
		{Name: "very_low_rssi", Penalty: 0.35, Match: func(f SignalFeatures) bool { return f.RSSI < -85 }},
		{Name: "low_rssi", Penalty: 0.15, Match: func(f SignalFeatures) bool { return f.RSSI >= -85 && f.RSSI < -75 }},
		{Name: "large_deviation", Penalty: 0.3, Match: func(f SignalFeatures) bool { return f.Deviation > 15 }},
		{Name: "deviation", Penalty: 0.15, Match: func(f SignalFeatures) bool { return f.Deviation > 8 && f.Deviation <= 15 }},
		{Name: "off_hours", Penalty: 0.2, Match: func(f SignalFeatures) bool { return f.Hour < 6 || f.Hour >= 23 }},
		{Name: "high_variance", Penalty: 0.2, Match: func(f SignalFeatures) bool { return f.Variance > 50 }},
		{Name: "falling_trend", Penalty: 0.2, Match: func(f SignalFeatures) bool { return f.Trend < -2 }},
	}
}

// signalHistory keeps Kalman-smoothed readings so the baseline a new raw
// reading is judged against carries little of the link's jitter.
type signalHistory struct {
	kalman ranging.Kalman
	hourly [hoursPerDay][]float64
	recent []float64
}

// SignalScorer flags RSSI readings that are weak or far from the device's
// usual level for that hour of day.
type SignalScorer struct {
	mu        sync.Mutex
	rules     []SignalRule
	threshold float64
	devices   map[string]*signalHistory
}

// NewSignalScorer creates a scorer. A nil rule table uses the defaults.
func NewSignalScorer(rules []SignalRule) *SignalScorer {
	if rules == nil {
		rules = DefaultSignalRules()
	}

	return &SignalScorer{
		rules:     rules,
		threshold: defaultSignalThreshold,
		devices:   make(map[string]*signalHistory),
	}
}

func (*SignalScorer) Name() string { return ScorerSignal }

// Score implements Scorer.
func (s *SignalScorer) Score(obs Observation) models.AnomalyRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.devices[obs.MAC]
	if !ok {
		h = &signalHistory{kalman: ranging.NewKalman()}
		if !obs.Passive {
			s.devices[obs.MAC] = h
		}
	}

	hour := obs.Timestamp.Hour()
	past := h.hourly[hour]

	f := SignalFeatures{RSSI: obs.RSSI, Hour: hour, Mean: obs.RSSI}
	if len(past) > 0 {
		f.Mean = mean(past)
	}

	f.Variance = variance(append(append([]float64(nil), past...), obs.RSSI))
	f.Trend = slope(append(append([]float64(nil), h.recent...), obs.RSSI))
	f.Deviation = math.Abs(obs.RSSI - f.Mean)

	score := 1.0

	var fired []string

	for _, r := range s.rules {
		if r.Match(f) {
			score -= r.Penalty
			fired = append(fired, r.Name)
		}
	}

	score = clamp01(score)

	k := h.kalman
	smoothed := k.Update(obs.RSSI)

	if !obs.Passive {
		h.kalman = k
		h.hourly[hour] = appendBounded(past, smoothed, signalPerHourHistory)
		h.recent = appendBounded(h.recent, smoothed, signalTrendWindow-1)
	}

	return models.AnomalyRecord{
		MAC:        obs.MAC,
		Scorer:     ScorerSignal,
		Score:      score,
		IsAnomaly:  score < s.threshold,
		Confidence: clamp01(0.3 + 0.07*float64(len(past))),
		Reason:     strings.Join(fired, ","),
		Features: map[string]float64{
			"rssi":      f.RSSI,
			"hour":      float64(f.Hour),
			"mean":      f.Mean,
			"variance":  f.Variance,
			"trend":     f.Trend,
			"deviation": f.Deviation,
			"smoothed":  smoothed,
		},
		Timestamp: obs.Timestamp,
	}
}

func appendBounded(xs []float64, v float64, limit int) []float64 {
	xs = append(xs, v)
	if len(xs) > limit {
		xs = append([]float64(nil), xs[len(xs)-limit:]...)
	}

	return xs
}

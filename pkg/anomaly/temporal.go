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
	"sync"
	"time"

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

const (
	temporalThreshold  = 0.3
	temporalScale      = 1.2
	activityScale      = 12.0
	temporalFullConfAt = 50.0
	temporalMinConf    = 0.2
)

// ExpectedActivity is the stock expected-activity curve: high during
// weekday working hours, moderate otherwise, near zero late at night.
func ExpectedActivity(t time.Time) float64 {
	h := t.Hour()
	wd := t.Weekday()

	switch {
	case h < 6 || h >= 23:
		return 0.05
	case wd != time.Saturday && wd != time.Sunday && h >= 9 && h <= 17:
		return 0.8
	default:
		return 0.5
	}
}

type activity struct {
	hours [hoursPerDay]int
	total int
}

// TemporalScorer compares a device's activity in the current hour with the
// expected curve.
type TemporalScorer struct {
	mu       sync.Mutex
	devices  map[string]*activity
	expected func(time.Time) float64
}

// NewTemporalScorer creates a scorer. A nil curve uses ExpectedActivity.
func NewTemporalScorer(expected func(time.Time) float64) *TemporalScorer {
	if expected == nil {
		expected = ExpectedActivity
	}

	return &TemporalScorer{
		devices:  make(map[string]*activity),
		expected: expected,
	}
}

func (*TemporalScorer) Name() string { return ScorerTemporal }

// Score implements Scorer.
func (s *TemporalScorer) Score(obs Observation) models.AnomalyRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.devices[obs.MAC]
	if !ok {
		a = &activity{}
		if !obs.Passive {
			s.devices[obs.MAC] = a
		}
	}

	hour := obs.Timestamp.Hour()
	inHour, total := a.hours[hour], a.total

	if !obs.Passive {
		a.hours[hour]++
		a.total++
		inHour, total = a.hours[hour], a.total
	}

	var relative float64
	if total > 0 {
		relative = float64(inHour) / float64(total)
	}

	observed := math.Min(1, relative*activityScale)
	expected := s.expected(obs.Timestamp)
	score := clamp01(math.Abs(observed-expected) * temporalScale)

	return models.AnomalyRecord{
		MAC:        obs.MAC,
		Scorer:     ScorerTemporal,
		Score:      score,
		IsAnomaly:  score > temporalThreshold,
		Confidence: math.Max(temporalMinConf, clamp01(float64(total)/temporalFullConfAt)),
		Features: map[string]float64{
			"hour":     float64(hour) / 23,
			"weekday":  float64(obs.Timestamp.Weekday()) / 6,
			"relative": relative,
			"expected": expected,
		},
		Timestamp: obs.Timestamp,
	}
}

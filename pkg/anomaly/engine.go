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
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

const (
	recCheckSignal   = "Check for interference or move the device closer to the access point"
	recVerifyDevice  = "Verify device authorization"
	recCheckSpoofing = "Investigate possible MAC spoofing or device replacement"
	recReviewUsage   = "Review device activity outside its normal usage pattern"
)

// Engine runs every scorer over an observation and keeps a bounded record
// history per device.
type Engine struct {
	scorers []Scorer

	mu      sync.RWMutex
	history map[string][]models.AnomalyRecord
	flagged map[string]string // mac -> scorers that last fired
	limit   int
}

// DefaultScorers returns the signal, fingerprint and temporal scorers.
func DefaultScorers() []Scorer {
	return []Scorer{
		NewSignalScorer(nil),
		NewFingerprintScorer(),
		NewTemporalScorer(nil),
	}
}

// NewEngine creates an engine. With no scorers the defaults are used.
func NewEngine(scorers ...Scorer) *Engine {
	if len(scorers) == 0 {
		scorers = DefaultScorers()
	}

	return &Engine{
		scorers: scorers,
		history: make(map[string][]models.AnomalyRecord),
		flagged: make(map[string]string),
		limit:   MaxHistory,
	}
}

// Analyze scores obs with every scorer and combines the results.
func (e *Engine) Analyze(obs Observation) Assessment {
	a, _ := e.analyze(obs)

	return a
}

// analyze also reports whether the set of firing scorers changed since
// the device was last scored.
func (e *Engine) analyze(obs Observation) (Assessment, bool) {
	obs.MAC = models.NormalizeMAC(obs.MAC)
	if obs.Timestamp.IsZero() {
		obs.Timestamp = time.Now()
	}

	a := Assessment{
		MAC:             obs.MAC,
		Records:         make([]models.AnomalyRecord, 0, len(e.scorers)),
		Recommendations: []string{},
		Timestamp:       obs.Timestamp,
	}

	var confSum float64

	flagged := 0

	for _, s := range e.scorers {
		rec := s.Score(obs)
		a.Records = append(a.Records, rec)

		if !rec.IsAnomaly {
			continue
		}

		flagged++
		confSum += rec.Confidence
		a.Recommendations = appendUnique(a.Recommendations, recommendation(rec))
	}

	if flagged > 0 {
		a.IsAnomaly = true
		a.OverallRisk = clamp01(confSum / float64(flagged))
		a.Severity = SeverityForConfidence(a.OverallRisk)
	}

	changed := e.record(obs, a.Records)

	return a, changed
}

// Rescore runs a passive pass over ledger devices and returns the
// assessments that newly flagged a device or flagged it for a different
// set of scorers.
func (e *Engine) Rescore(devices []models.Device, at time.Time) []Assessment {
	var out []Assessment

	for i := range devices {
		obs := ObservationFromDevice(&devices[i], at)
		obs.Passive = true

		if a, changed := e.analyze(obs); a.IsAnomaly && changed {
			out = append(out, a)
		}
	}

	return out
}

// History returns a copy of the records kept for mac, oldest first.
func (e *Engine) History(mac string) []models.AnomalyRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()

	h := e.history[models.NormalizeMAC(mac)]

	return append([]models.AnomalyRecord(nil), h...)
}

// Density is the fraction of kept records for mac that were anomalous.
// Only reported observations count.
func (e *Engine) Density(mac string) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	h := e.history[models.NormalizeMAC(mac)]
	if len(h) == 0 {
		return 0
	}

	n := 0

	for i := range h {
		if h[i].IsAnomaly {
			n++
		}
	}

	return float64(n) / float64(len(h))
}

// record notes which scorers fired and, for reported observations,
// appends to the history. It returns whether the fired set changed.
func (e *Engine) record(obs Observation, recs []models.AnomalyRecord) bool {
	key := firedKey(recs)

	e.mu.Lock()
	defer e.mu.Unlock()

	changed := e.flagged[obs.MAC] != key
	if key == "" {
		delete(e.flagged, obs.MAC)
	} else {
		e.flagged[obs.MAC] = key
	}

	if obs.Passive {
		return changed
	}

	h := append(e.history[obs.MAC], recs...)
	if len(h) > e.limit {
		h = append([]models.AnomalyRecord(nil), h[len(h)-e.limit:]...)
	}

	if len(h) > 0 {
		e.history[obs.MAC] = h
	}

	return changed
}

func firedKey(recs []models.AnomalyRecord) string {
	var names []string

	for i := range recs {
		if recs[i].IsAnomaly {
			names = append(names, recs[i].Scorer)
		}
	}

	sort.Strings(names)

	return strings.Join(names, ",")
}

// SeverityForConfidence maps a confidence onto low, medium or high.
func SeverityForConfidence(c float64) string {
	switch {
	case c > 0.8:
		return SeverityHigh
	case c > 0.5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func recommendation(rec models.AnomalyRecord) string {
	switch rec.Scorer {
	case ScorerSignal:
		return recCheckSignal
	case ScorerFingerprint:
		if rec.Reason == ReasonNewDevice {
			return recVerifyDevice
		}

		if strings.HasPrefix(rec.Reason, ReasonMismatch) {
			return recCheckSpoofing
		}
	case ScorerTemporal:
		return recReviewUsage
	}

	return ""
}

func appendUnique(xs []string, s string) []string {
	if s == "" {
		return xs
	}

	for _, x := range xs {
		if x == s {
			return xs
		}
	}

	return append(xs, s)
}

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

package ranging

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

const (
	DefaultPathLossExponent = 2.0
	DefaultReferenceRSSI    = -40.0

	minRSSIDistanceM = 1.0
	maxRSSIDistanceM = 1000.0
	minAnchors       = 3
	residualScaleM   = 100.0
	refineIterations = 20
	refineTolerance  = 1e-9
)

// Anchor is a receiver at a known position, such as an agent host or an
// access point, whose RSSI readings of a device locate it.
type Anchor struct {
	ID               string  `json:"id"`
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	ReferenceRSSI    float64 `json:"referenceRssi,omitempty"` // dBm at one metre
	PathLossExponent float64 `json:"pathLossExponent,omitempty"`
}

// Range is one anchor's distance to the device being located.
type Range struct {
	AnchorID string  `json:"anchorId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Distance float64 `json:"distance"`
}

// RSSIToDistance converts a reading to metres with the log-distance path
// loss model, clamped to [1 m, 1 km]. referenceRSSI is the level expected
// at one metre.
func RSSIToDistance(rssi, referenceRSSI, exponent float64) float64 {
	if exponent <= 0 || math.IsNaN(exponent) {
		exponent = DefaultPathLossExponent
	}

	if math.IsNaN(rssi) || math.IsNaN(referenceRSSI) {
		return maxRSSIDistanceM
	}

	if rssi >= referenceRSSI {
		return minRSSIDistanceM
	}

	d := math.Pow(10, (referenceRSSI-rssi)/(10*exponent))

	return math.Max(minRSSIDistanceM, math.Min(d, maxRSSIDistanceM))
}

// Trilaterate returns the point whose distances to the anchors best fit
// ranges in the least-squares sense. Confidence falls linearly with the
// mean residual and reaches zero at 100 m.
func Trilaterate(ranges []Range) (models.LocationEstimate, error) {
	if len(ranges) < minAnchors {
		return models.LocationEstimate{}, fmt.Errorf("%w: have %d", ErrTooFewAnchors, len(ranges))
	}

	x, y, err := linearFix(ranges)
	if err != nil {
		return models.LocationEstimate{}, err
	}

	x, y = refine(ranges, x, y)

	var residual float64
	for _, r := range ranges {
		residual += math.Abs(math.Hypot(x-r.X, y-r.Y) - r.Distance)
	}

	residual /= float64(len(ranges))

	return models.LocationEstimate{
		X:          x,
		Y:          y,
		Confidence: clamp01(1 - residual/residualScaleM),
	}, nil
}

// linearFix subtracts the last circle equation from the others and solves
// the resulting linear system through its normal equations.
func linearFix(ranges []Range) (float64, float64, error) {
	last := ranges[len(ranges)-1]

	var m00, m01, m11, v0, v1 float64

	for _, r := range ranges[:len(ranges)-1] {
		a0 := 2 * (r.X - last.X)
		a1 := 2 * (r.Y - last.Y)
		b := r.X*r.X - last.X*last.X + r.Y*r.Y - last.Y*last.Y - r.Distance*r.Distance + last.Distance*last.Distance

		m00 += a0 * a0
		m01 += a0 * a1
		m11 += a1 * a1
		v0 += a0 * b
		v1 += a1 * b
	}

	det := m00*m11 - m01*m01
	if math.Abs(det) <= 1e-9*math.Max(1, m00*m11) || math.IsNaN(det) {
		return 0, 0, ErrCollinearAnchors
	}

	return (m11*v0 - m01*v1) / det, (m00*v1 - m01*v0) / det, nil
}

// refine runs Gauss-Newton on the range residuals, keeping only steps that
// lower the squared error.
func refine(ranges []Range, x, y float64) (float64, float64) {
	cost := sqError(ranges, x, y)

	for i := 0; i < refineIterations; i++ {
		var j00, j01, j11, g0, g1 float64

		for _, r := range ranges {
			dist := math.Hypot(x-r.X, y-r.Y)
			if dist == 0 {
				continue
			}

			ux, uy := (x-r.X)/dist, (y-r.Y)/dist
			res := dist - r.Distance

			j00 += ux * ux
			j01 += ux * uy
			j11 += uy * uy
			g0 += ux * res
			g1 += uy * res
		}

		det := j00*j11 - j01*j01
		if math.Abs(det) < 1e-12 {
			break
		}

		dx := -(j11*g0 - j01*g1) / det
		dy := -(j00*g1 - j01*g0) / det

		next := sqError(ranges, x+dx, y+dy)
		if math.IsNaN(next) || next >= cost {
			break
		}

		x, y, cost = x+dx, y+dy, next

		if math.Hypot(dx, dy) < refineTolerance {
			break
		}
	}

	return x, y
}

func sqError(ranges []Range, x, y float64) float64 {
	var s float64

	for _, r := range ranges {
		d := math.Hypot(x-r.X, y-r.Y) - r.Distance
		s += d * d
	}

	return s
}

// anchorSet holds the anchors and the smoothed RSSI each has reported for
// every device.
type anchorSet struct {
	mu       sync.Mutex
	anchors  map[string]Anchor
	readings map[string]map[string]*EWMA // mac -> anchor id -> average
}

func newAnchorSet() *anchorSet {
	return &anchorSet{
		anchors:  make(map[string]Anchor),
		readings: make(map[string]map[string]*EWMA),
	}
}

// SetAnchor adds or moves an anchor. Zero reference RSSI and path loss
// exponent take the defaults.
func (e *Engine) SetAnchor(a Anchor) (Anchor, error) {
	a.ID = strings.TrimSpace(a.ID)
	if a.ID == "" {
		return Anchor{}, ErrEmptyAnchorID
	}

	if math.IsNaN(a.X) || math.IsNaN(a.Y) || math.IsInf(a.X, 0) || math.IsInf(a.Y, 0) {
		return Anchor{}, fmt.Errorf("%w: %s", ErrInvalidAnchor, a.ID)
	}

	if a.ReferenceRSSI == 0 {
		a.ReferenceRSSI = DefaultReferenceRSSI
	}

	if a.PathLossExponent <= 0 {
		a.PathLossExponent = DefaultPathLossExponent
	}

	e.anchors.mu.Lock()
	e.anchors.anchors[a.ID] = a
	e.anchors.mu.Unlock()

	e.log.Info().Str("anchor", a.ID).Float64("x", a.X).Float64("y", a.Y).Msg("anchor set")

	return a, nil
}

// Anchors returns the configured anchors ordered by id.
func (e *Engine) Anchors() []Anchor {
	e.anchors.mu.Lock()
	defer e.anchors.mu.Unlock()

	out := make([]Anchor, 0, len(e.anchors.anchors))
	for _, a := range e.anchors.anchors {
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// ObserveRSSI folds a reading of mac taken by an anchor into its moving
// average. Readings from unknown anchors are dropped.
func (e *Engine) ObserveRSSI(anchorID, mac string, rssi float64) (float64, bool) {
	mac = models.NormalizeMAC(mac)
	if mac == "" || rssi == 0 || math.IsNaN(rssi) || math.IsInf(rssi, 0) {
		return 0, false
	}

	s := e.anchors

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.anchors[anchorID]; !ok {
		return 0, false
	}

	byAnchor, ok := s.readings[mac]
	if !ok {
		byAnchor = make(map[string]*EWMA)
		s.readings[mac] = byAnchor
	}

	avg, ok := byAnchor[anchorID]
	if !ok {
		f := NewEWMA(DefaultEWMAAlpha)
		avg = &f
		byAnchor[anchorID] = avg
	}

	return avg.Update(rssi), true
}

// Ranges converts the smoothed readings of mac into anchor distances,
// ordered by anchor id.
func (e *Engine) Ranges(mac string) []Range {
	mac = models.NormalizeMAC(mac)
	s := e.anchors

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Range, 0, len(s.readings[mac]))

	for id, avg := range s.readings[mac] {
		a, ok := s.anchors[id]
		if !ok {
			continue
		}

		rssi, ok := avg.Value()
		if !ok {
			continue
		}

		out = append(out, Range{
			AnchorID: id,
			X:        a.X,
			Y:        a.Y,
			Distance: RSSIToDistance(rssi, a.ReferenceRSSI, a.PathLossExponent),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].AnchorID < out[j].AnchorID })

	return out
}

// Locate trilaterates mac from the anchors that have heard it.
func (e *Engine) Locate(mac string) (models.LocationEstimate, error) {
	return Trilaterate(e.Ranges(mac))
}

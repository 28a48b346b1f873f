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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

func rangesTo(x, y float64, anchors ...[2]float64) []Range {
	out := make([]Range, 0, len(anchors))

	for i, a := range anchors {
		out = append(out, Range{
			AnchorID: string(rune('a' + i)),
			X:        a[0],
			Y:        a[1],
			Distance: math.Hypot(x-a[0], y-a[1]),
		})
	}

	return out
}

// rssiAt is the reading the path loss model predicts at d metres.
func rssiAt(d, ref, exponent float64) float64 {
	return ref - 10*exponent*math.Log10(d)
}

func TestRSSIToDistance(t *testing.T) {
	assert.InDelta(t, 10.0, RSSIToDistance(-60, -40, 2), 1e-9)
	assert.InDelta(t, 100.0, RSSIToDistance(-80, -40, 2), 1e-9)
	assert.InDelta(t, 10.0, RSSIToDistance(-70, -40, 3), 1e-9)
	assert.InDelta(t, 1.0, RSSIToDistance(-30, -40, 2), 1e-9, "stronger than the reference is close")
	assert.InDelta(t, 1000.0, RSSIToDistance(-200, -40, 2), 1e-9)
	assert.InDelta(t, 10.0, RSSIToDistance(-60, -40, 0), 1e-9, "zero exponent uses the default")
	assert.InDelta(t, 1000.0, RSSIToDistance(math.NaN(), -40, 2), 1e-9)
}

func TestTrilaterateExact(t *testing.T) {
	got, err := Trilaterate(rangesTo(3, 4, [2]float64{0, 0}, [2]float64{10, 0}, [2]float64{0, 10}))
	require.NoError(t, err)

	assert.InDelta(t, 3.0, got.X, 1e-6)
	assert.InDelta(t, 4.0, got.Y, 1e-6)
	assert.InDelta(t, 1.0, got.Confidence, 1e-6)
}

func TestTrilaterateNoisyRanges(t *testing.T) {
	ranges := rangesTo(6, 2, [2]float64{0, 0}, [2]float64{12, 0}, [2]float64{0, 9}, [2]float64{12, 9})
	for i := range ranges {
		ranges[i].Distance += []float64{0.4, -0.3, 0.5, -0.2}[i]
	}

	got, err := Trilaterate(ranges)
	require.NoError(t, err)

	assert.InDelta(t, 6.0, got.X, 1.0)
	assert.InDelta(t, 2.0, got.Y, 1.0)
	assert.Less(t, got.Confidence, 1.0)
	assert.Greater(t, got.Confidence, 0.99)
}

func TestTrilaterateConfidenceFallsWithResidual(t *testing.T) {
	ranges := rangesTo(3, 4, [2]float64{0, 0}, [2]float64{10, 0}, [2]float64{0, 10})
	ranges[0].Distance += 150

	got, err := Trilaterate(ranges)
	require.NoError(t, err)
	assert.Less(t, got.Confidence, 0.9)
	assert.GreaterOrEqual(t, got.Confidence, 0.0)
}

func TestTrilaterateRejectsBadGeometry(t *testing.T) {
	_, err := Trilaterate(rangesTo(1, 1, [2]float64{0, 0}, [2]float64{5, 0}))
	require.ErrorIs(t, err, ErrTooFewAnchors)

	_, err = Trilaterate(rangesTo(1, 1, [2]float64{0, 0}, [2]float64{5, 0}, [2]float64{10, 0}))
	require.ErrorIs(t, err, ErrCollinearAnchors)
}

func TestEngineLocatesFromAnchorRSSI(t *testing.T) {
	e := NewEngine(nil, DefaultConfig())
	mac := "3C:22:FB:10:20:30"

	_, err := e.SetAnchor(Anchor{ID: " "})
	require.ErrorIs(t, err, ErrEmptyAnchorID)

	_, err = e.SetAnchor(Anchor{ID: "bad", X: math.NaN()})
	require.ErrorIs(t, err, ErrInvalidAnchor)

	anchors := []Anchor{{ID: "agent-a"}, {ID: "agent-b", X: 10}, {ID: "agent-c", Y: 10}}
	for _, a := range anchors {
		got, err := e.SetAnchor(a)
		require.NoError(t, err)
		assert.InDelta(t, DefaultReferenceRSSI, got.ReferenceRSSI, 1e-9)
		assert.InDelta(t, DefaultPathLossExponent, got.PathLossExponent, 1e-9)
	}

	require.Len(t, e.Anchors(), 3)
	assert.Equal(t, "agent-a", e.Anchors()[0].ID)

	_, ok := e.ObserveRSSI("stranger", mac, -50)
	assert.False(t, ok, "unknown anchors are ignored")

	_, err = e.Locate(mac)
	require.ErrorIs(t, err, ErrTooFewAnchors)

	for _, a := range anchors {
		_, ok := e.ObserveRSSI(a.ID, mac, rssiAt(math.Hypot(3-a.X, 4-a.Y), DefaultReferenceRSSI, 2))
		require.True(t, ok)
	}

	got, err := e.Locate("3c-22-fb-10-20-30")
	require.NoError(t, err)
	assert.InDelta(t, 3.0, got.X, 1e-6)
	assert.InDelta(t, 4.0, got.Y, 1e-6)

	fused, err := Fuse([]models.LocationEstimate{got, {X: 5, Y: 4, Confidence: 0.5}}, []float64{1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 4.0, fused.X, 1e-6)
	assert.InDelta(t, 0.75, fused.Confidence, 1e-6)
}

func TestObserveRSSISmoothsReadings(t *testing.T) {
	e := NewEngine(nil, DefaultConfig())
	_, err := e.SetAnchor(Anchor{ID: "agent-a"})
	require.NoError(t, err)

	v, ok := e.ObserveRSSI("agent-a", "3C:22:FB:10:20:30", -60)
	require.True(t, ok)
	assert.InDelta(t, -60.0, v, 1e-9)

	v, _ = e.ObserveRSSI("agent-a", "3C:22:FB:10:20:30", -90)
	assert.InDelta(t, -69.0, v, 1e-9)

	_, ok = e.ObserveRSSI("agent-a", "3C:22:FB:10:20:30", 0)
	assert.False(t, ok, "a missing reading is not a reading")

	r := e.Ranges("3C:22:FB:10:20:30")
	require.Len(t, r, 1)
	assert.InDelta(t, RSSIToDistance(-69, DefaultReferenceRSSI, DefaultPathLossExponent), r[0].Distance, 1e-9)
}

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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

var estimates = []models.LocationEstimate{
	{X: 1.25, Y: 7.5, Confidence: 0.61},
	{X: 100, Y: -40, Confidence: 0.2},
	{X: -3, Y: 12, Confidence: 0.9},
}

func TestFuseSingleWeightIsExact(t *testing.T) {
	got, err := Fuse(estimates, []float64{1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, estimates[0], got)

	got, err = Fuse(estimates, []float64{0, 0, 5})
	require.NoError(t, err)
	assert.Equal(t, estimates[2], got)
}

func TestFuseNormalizesWeights(t *testing.T) {
	got, err := Fuse(estimates[:2], []float64{3, 1})
	require.NoError(t, err)

	assert.InDelta(t, 0.75*1.25+0.25*100, got.X, 1e-9)
	assert.InDelta(t, 0.75*7.5+0.25*-40, got.Y, 1e-9)
	assert.InDelta(t, 0.75*0.61+0.25*0.2, got.Confidence, 1e-9)
}

func TestFuseRejectsBadInput(t *testing.T) {
	tests := []struct {
		name      string
		estimates []models.LocationEstimate
		weights   []float64
		want      error
	}{
		{name: "empty", want: ErrNoEstimates},
		{name: "too many", estimates: append(estimates, estimates[0]), weights: []float64{1, 1, 1, 1}, want: ErrTooManyEstimates},
		{name: "count mismatch", estimates: estimates, weights: []float64{1}, want: ErrWeightCount},
		{name: "negative", estimates: estimates, weights: []float64{1, -1, 0}, want: ErrNegativeWeight},
		{name: "all zero", estimates: estimates, weights: []float64{0, 0, 0}, want: ErrZeroWeights},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fuse(tt.estimates, tt.weights)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

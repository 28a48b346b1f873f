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

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

// Fuse combines up to three position estimates with non-negative weights
// normalised to sum to one. Zero-weight estimates do not contribute.
func Fuse(estimates []models.LocationEstimate, weights []float64) (models.LocationEstimate, error) {
	switch {
	case len(estimates) == 0:
		return models.LocationEstimate{}, ErrNoEstimates
	case len(estimates) > maxEstimates:
		return models.LocationEstimate{}, ErrTooManyEstimates
	case len(weights) != len(estimates):
		return models.LocationEstimate{}, fmt.Errorf("%w: %d estimates, %d weights", ErrWeightCount, len(estimates), len(weights))
	}

	var total float64

	for i, w := range weights {
		if w < 0 {
			return models.LocationEstimate{}, fmt.Errorf("%w: weights[%d]=%v", ErrNegativeWeight, i, w)
		}

		total += w
	}

	if total == 0 {
		return models.LocationEstimate{}, ErrZeroWeights
	}

	var out models.LocationEstimate

	for i, est := range estimates {
		if weights[i] == 0 {
			continue
		}

		w := weights[i] / total
		out.X += w * est.X
		out.Y += w * est.Y
		out.Confidence += w * est.Confidence
	}

	out.Confidence = clamp01(out.Confidence)

	return out, nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

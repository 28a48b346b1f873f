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

import "math"

const (
	DefaultProcessVariance     = 1e-3
	DefaultMeasurementVariance = 0.1
	DefaultEWMAAlpha           = 0.3
)

// Kalman is a scalar Kalman filter over RSSI readings. Copies share no
// state.
type Kalman struct {
	ProcessVariance     float64
	MeasurementVariance float64

	estimate float64
	errorEst float64
	primed   bool
}

// NewKalman returns a filter with the default variances.
func NewKalman() Kalman {
	return Kalman{
		ProcessVariance:     DefaultProcessVariance,
		MeasurementVariance: DefaultMeasurementVariance,
		errorEst:            1,
	}
}

// Update folds z into the estimate and returns it. Non-finite readings
// are ignored.
func (k *Kalman) Update(z float64) float64 {
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return k.estimate
	}

	if !k.primed {
		k.estimate, k.primed = z, true

		return z
	}

	predErr := k.errorEst + k.ProcessVariance
	gain := predErr / (predErr + k.MeasurementVariance)

	k.estimate += gain * (z - k.estimate)
	k.errorEst = (1 - gain) * predErr

	return k.estimate
}

// Value returns the current estimate and whether any reading was seen.
func (k *Kalman) Value() (float64, bool) {
	return k.estimate, k.primed
}

// EWMA is an exponentially weighted moving average.
type EWMA struct {
	Alpha float64

	value  float64
	primed bool
}

// NewEWMA returns an average with the given smoothing factor. Values
// outside (0,1] use DefaultEWMAAlpha.
func NewEWMA(alpha float64) EWMA {
	if alpha <= 0 || alpha > 1 || math.IsNaN(alpha) {
		alpha = DefaultEWMAAlpha
	}

	return EWMA{Alpha: alpha}
}

// Update folds z into the average and returns it. Non-finite readings are
// ignored.
func (e *EWMA) Update(z float64) float64 {
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return e.value
	}

	if !e.primed {
		e.value, e.primed = z, true

		return z
	}

	e.value = e.Alpha*z + (1-e.Alpha)*e.value

	return e.value
}

// Value returns the current average and whether any reading was seen.
func (e *EWMA) Value() (float64, bool) {
	return e.value, e.primed
}

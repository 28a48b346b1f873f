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

import "errors"

var (
	ErrNotCalibrating   = errors.New("calibration is not active")
	ErrNoEstimates      = errors.New("at least one estimate is required")
	ErrTooManyEstimates = errors.New("at most three estimates can be fused")
	ErrWeightCount      = errors.New("weights must match estimates")
	ErrNegativeWeight   = errors.New("weights must be non-negative")
	ErrZeroWeights      = errors.New("weights must not all be zero")
	ErrNoHosts          = errors.New("no hosts to probe")
	ErrTooFewAnchors    = errors.New("at least three anchor ranges are required")
	ErrCollinearAnchors = errors.New("anchors are collinear")
	ErrEmptyAnchorID    = errors.New("anchor id is required")
	ErrInvalidAnchor    = errors.New("anchor position must be finite")
)

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
	"time"

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

// SpeedOfLight in metres per second.
const SpeedOfLight = 299792458.0

const maxEstimates = 3

// Config tunes distance derivation and probing.
type Config struct {
	ProcessingOffsetMS float64
	MaxDistanceM       float64
	ProbeCount         int
	ProbeTimeout       time.Duration
	Concurrency        int
}

// DefaultConfig returns the stock ranging configuration.
func DefaultConfig() Config {
	return Config{
		ProcessingOffsetMS: 5,
		MaxDistanceM:       100,
		ProbeCount:         4,
		ProbeTimeout:       time.Second,
		Concurrency:        8,
	}
}

// PingSample is an externally measured RTT, e.g. from a mobile scanner.
type PingSample struct {
	Source     string  `json:"source"`
	RTT        float64 `json:"rtt"` // milliseconds
	PacketLoss float64 `json:"packetLoss,omitempty"`
	Success    *bool   `json:"success,omitempty"`
}

// Sink receives each round of live probing results.
type Sink func([]models.RangingMeasurement)

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

package scan

import "time"

// ProbeResult is the raw outcome of probing one host.
type ProbeResult struct {
	Host     string          `json:"host"`
	Sent     int             `json:"sent"`
	Received int             `json:"received"`
	RTTs     []time.Duration `json:"rtts"`
}

// AvgRTT is the mean round trip of answered requests, zero if none.
func (r *ProbeResult) AvgRTT() time.Duration {
	if len(r.RTTs) == 0 {
		return 0
	}

	var total time.Duration
	for _, d := range r.RTTs {
		total += d
	}

	return total / time.Duration(len(r.RTTs))
}

// PacketLoss is the percentage of unanswered requests.
func (r *ProbeResult) PacketLoss() float64 {
	if r.Sent <= 0 {
		return 100
	}

	return float64(r.Sent-r.Received) / float64(r.Sent) * 100
}

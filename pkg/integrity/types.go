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

package integrity

// Violation describes one field that matched a placeholder signature.
type Violation struct {
	MAC     string `json:"mac"`
	Field   string `json:"field"`
	Value   string `json:"value"`
	Pattern string `json:"pattern"`
}

const (
	PatternGenericName   = "generic_name"
	PatternDemoMAC       = "demo_mac"
	PatternDemoIP        = "demo_ip"
	PatternRoundSignal   = "round_signal"
	PatternRepeatedValue = "repeated_value"
)

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

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mock_scanner.go -package=scan github.com/mfreeman451/smartblueprint/pkg/scan Prober

// Prober measures round-trip times to a single host.
type Prober interface {
	// Probe sends count echo requests, waiting up to timeout for each reply.
	// Unanswered requests are counted as lost, not returned as errors.
	Probe(ctx context.Context, host string, count int, timeout time.Duration) (ProbeResult, error)
}

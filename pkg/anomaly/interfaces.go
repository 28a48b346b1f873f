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

// Package anomaly pkg/anomaly/interfaces.go
package anomaly

import "github.com/mfreeman451/smartblueprint/pkg/models"

//go:generate mockgen -destination=mock_anomaly.go -package=anomaly github.com/mfreeman451/smartblueprint/pkg/anomaly Scorer

// Scorer turns one observation into an anomaly record. Implementations
// keep their own bounded per-device history and must never return NaN.
type Scorer interface {
	Name() string
	Score(obs Observation) models.AnomalyRecord
}

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

// Package maintenance pkg/maintenance/interfaces.go
package maintenance

//go:generate mockgen -destination=mock_maintenance.go -package=maintenance github.com/mfreeman451/smartblueprint/pkg/maintenance AnomalySource

// AnomalySource reports the fraction of a device's recent anomaly records
// that were flagged.
type AnomalySource interface {
	Density(mac string) float64
}

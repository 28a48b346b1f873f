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

// Package metrics pkg/metrics/interfaces.go
package metrics

import (
	"time"

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

//go:generate mockgen -destination=mock_buffer.go -package=metrics github.com/mfreeman451/smartblueprint/pkg/metrics SampleStore,SampleCollector

// SampleStore is a bounded ring of telemetry samples for one device.
type SampleStore interface {
	Add(sample models.TelemetrySample)
	GetSamples() []models.TelemetrySample
	GetLastSample() *models.TelemetrySample
	Len() int
}

// SampleCollector keeps one SampleStore per device.
type SampleCollector interface {
	AddSample(mac string, sample models.TelemetrySample)
	GetSamples(mac string) []models.TelemetrySample
	CleanupStaleDevices(staleDuration time.Duration) int
}

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

package metrics

import (
	"sync"

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

// DefaultRetention is the number of samples kept per device.
const DefaultRetention = 100

// RingBuffer keeps the most recent samples, dropping the oldest once full.
type RingBuffer struct {
	mu     sync.RWMutex
	points []models.TelemetrySample
	pos    int
	count  int
}

// NewBuffer creates a SampleStore with room for size samples.
func NewBuffer(size int) SampleStore {
	if size <= 0 {
		size = DefaultRetention
	}

	return &RingBuffer{
		points: make([]models.TelemetrySample, size),
	}
}

// Add appends a sample, overwriting the oldest when full.
func (b *RingBuffer) Add(sample models.TelemetrySample) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.points[b.pos] = sample
	b.pos = (b.pos + 1) % len(b.points)

	if b.count < len(b.points) {
		b.count++
	}
}

// GetSamples returns the retained samples, oldest first.
func (b *RingBuffer) GetSamples() []models.TelemetrySample {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]models.TelemetrySample, 0, b.count)
	start := (b.pos - b.count + len(b.points)) % len(b.points)

	for i := 0; i < b.count; i++ {
		out = append(out, b.points[(start+i)%len(b.points)])
	}

	return out
}

// GetLastSample returns the newest sample, or nil when empty.
func (b *RingBuffer) GetLastSample() *models.TelemetrySample {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.count == 0 {
		return nil
	}

	last := b.points[(b.pos-1+len(b.points))%len(b.points)]

	return &last
}

// Len reports how many samples are retained.
func (b *RingBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.count
}

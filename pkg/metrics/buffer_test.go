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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

func sampleAt(i int) models.TelemetrySample {
	return models.TelemetrySample{
		Timestamp: time.Unix(int64(i), 0),
		RSSI:      -40 - float64(i),
	}
}

func TestRingBufferDropsOldest(t *testing.T) {
	b := NewBuffer(3)
	assert.Nil(t, b.GetLastSample())

	for i := 0; i < 5; i++ {
		b.Add(sampleAt(i))
	}

	got := b.GetSamples()
	require.Len(t, got, 3)
	assert.Equal(t, time.Unix(2, 0), got[0].Timestamp)
	assert.Equal(t, time.Unix(4, 0), got[2].Timestamp)
	assert.Equal(t, time.Unix(4, 0), b.GetLastSample().Timestamp)
	assert.Equal(t, 3, b.Len())
}

func TestRingBufferPartial(t *testing.T) {
	b := NewBuffer(0)

	b.Add(sampleAt(1))
	b.Add(sampleAt(2))

	got := b.GetSamples()
	require.Len(t, got, 2)
	assert.Equal(t, time.Unix(1, 0), got[0].Timestamp)
}

func BenchmarkRingBuffer(b *testing.B) {
	buffer := NewBuffer(DefaultRetention)

	b.Run("Add", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			buffer.Add(sampleAt(i))
		}
	})

	b.Run("GetSamples", func(b *testing.B) {
		for i := 0; i < DefaultRetention; i++ {
			buffer.Add(sampleAt(i))
		}

		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = buffer.GetSamples()
		}
	})
}

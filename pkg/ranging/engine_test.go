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
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mfreeman451/smartblueprint/pkg/models"
	"github.com/mfreeman451/smartblueprint/pkg/scan"
)

func TestMeasure(t *testing.T) {
	ctrl := gomock.NewController(t)
	prober := scan.NewMockProber(ctrl)

	cfg := DefaultConfig()
	cfg.MaxDistanceM = 1e12
	e := NewEngine(prober, cfg)

	prober.EXPECT().
		Probe(gomock.Any(), "10.0.0.1", cfg.ProbeCount, cfg.ProbeTimeout).
		Return(scan.ProbeResult{Sent: 4, Received: 4, RTTs: []time.Duration{
			7 * time.Millisecond, 7 * time.Millisecond, 7 * time.Millisecond, 7 * time.Millisecond,
		}}, nil)
	prober.EXPECT().
		Probe(gomock.Any(), "10.0.0.2", cfg.ProbeCount, cfg.ProbeTimeout).
		Return(scan.ProbeResult{Sent: 4}, nil)
	prober.EXPECT().
		Probe(gomock.Any(), "10.0.0.3", cfg.ProbeCount, cfg.ProbeTimeout).
		Return(scan.ProbeResult{}, errors.New("permission denied"))

	got, err := e.Measure(context.Background(), []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "10.0.0.1", got[0].Source)
	assert.Equal(t, models.RangingSuccess, got[0].Status)
	assert.InDelta(t, DistanceFromRTT(7, 5), got[0].Distance, 1e-6)
	assert.Zero(t, got[0].PacketLoss)

	for _, m := range got[1:] {
		assert.Equal(t, models.RangingTimeout, m.Status)
		assert.Zero(t, m.Distance)
		assert.InDelta(t, 100.0, m.PacketLoss, 1e-9)
	}
}

func TestMeasureNoHosts(t *testing.T) {
	e := NewEngine(nil, DefaultConfig())

	_, err := e.Measure(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoHosts)
}

func TestLiveProbingReplacesPreviousTask(t *testing.T) {
	ctrl := gomock.NewController(t)
	prober := scan.NewMockProber(ctrl)

	prober.EXPECT().Probe(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(scan.ProbeResult{Sent: 1, Received: 1, RTTs: []time.Duration{6 * time.Millisecond}}, nil).
		AnyTimes()

	e := NewEngine(prober, DefaultConfig())

	var first, second atomic.Int32

	firstRound := make(chan struct{}, 1)

	require.NoError(t, e.StartLiveProbing(context.Background(), []string{"a"}, 5*time.Millisecond,
		func([]models.RangingMeasurement) {
			first.Add(1)
			select {
			case firstRound <- struct{}{}:
			default:
			}
		}))

	<-firstRound

	require.NoError(t, e.StartLiveProbing(context.Background(), []string{"b"}, 5*time.Millisecond,
		func([]models.RangingMeasurement) { second.Add(1) }))

	frozen := first.Load()

	assert.Eventually(t, func() bool { return second.Load() >= 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, frozen, first.Load(), "replaced task must not keep running")
	assert.True(t, e.LiveProbing())

	assert.True(t, e.StopLiveProbing())
	assert.False(t, e.StopLiveProbing())
	assert.False(t, e.LiveProbing())
}

func TestStartLiveProbingNoHosts(t *testing.T) {
	e := NewEngine(nil, DefaultConfig())
	assert.ErrorIs(t, e.StartLiveProbing(context.Background(), nil, time.Second, nil), ErrNoHosts)
}

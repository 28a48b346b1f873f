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

package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestEmitterBroadcastOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	b := NewMockBroadcaster(ctrl)
	b.EXPECT().Broadcast(EventDeviceUpdate, gomock.Any()).Return(2)

	e := NewEmitter(b)

	assert.Equal(t, 2, e.Emit(Event{Type: EventDeviceUpdate, MAC: "AA:00:00:00:00:01"}))
	assert.Zero(t, e.Dropped())
}

func TestEmitterNilBroadcaster(t *testing.T) {
	e := NewEmitter(nil)

	assert.Zero(t, e.Emit(Event{Type: EventDeviceUpdate}))
}

func TestEmitterDeliversToSinks(t *testing.T) {
	ctrl := gomock.NewController(t)
	j := NewMockJournal(ctrl)
	p := NewMockPublisher(ctrl)
	hook := NewMockAlertService(ctrl)

	hook.EXPECT().IsEnabled().Return(true)

	e := NewEmitter(nil, WithJournal(j), WithPublisher(p, "sbp"), WithWebhooks(hook))

	j.EXPECT().RecordEvent(gomock.Any(), EventAnomalyDetected, "AA:00:00:00:00:01", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, payload []byte) error {
			var ev Event
			require.NoError(t, json.Unmarshal(payload, &ev))
			assert.Equal(t, SeverityCritical, ev.Severity)

			return nil
		})
	p.EXPECT().Publish(gomock.Any(), "sbp/"+EventAnomalyDetected, gomock.Any()).Return(errors.New("broker gone"))
	hook.EXPECT().Alert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, a *WebhookAlert) error {
		assert.Equal(t, SeverityCritical, a.Severity)
		assert.Equal(t, DiscordColorRed, a.Color)
		assert.Equal(t, EventAnomalyDetected, a.Event)
		assert.Equal(t, "AA:00:00:00:00:01", a.MAC)

		return nil
	})

	e.Emit(Event{Type: EventAnomalyDetected, MAC: "AA:00:00:00:00:01", Severity: SeverityCritical})

	ev := <-e.queue
	e.deliver(context.Background(), &ev)
}

func TestEmitterSkipsWebhookBelowCritical(t *testing.T) {
	ctrl := gomock.NewController(t)
	j := NewMockJournal(ctrl)
	hook := NewMockAlertService(ctrl)

	hook.EXPECT().IsEnabled().Return(true)
	j.EXPECT().RecordEvent(gomock.Any(), EventHealthMetrics, "", gomock.Any()).Return(nil)

	e := NewEmitter(nil, WithJournal(j), WithWebhooks(hook))
	e.deliver(context.Background(), &Event{Type: EventHealthMetrics, Severity: "high"})
}

func TestEmitterSkipsDisabledWebhook(t *testing.T) {
	ctrl := gomock.NewController(t)
	hook := NewMockAlertService(ctrl)
	hook.EXPECT().IsEnabled().Return(false)

	e := NewEmitter(nil, WithWebhooks(hook))

	assert.Empty(t, e.webhooks)
	assert.False(t, e.hasSinks())
}

func TestEmitterDropsWhenQueueFull(t *testing.T) {
	ctrl := gomock.NewController(t)
	j := NewMockJournal(ctrl)

	e := NewEmitter(nil, WithJournal(j), WithQueueSize(1))

	e.Emit(Event{Type: EventDeviceUpdate})
	e.Emit(Event{Type: EventDeviceUpdate})

	assert.Equal(t, uint64(1), e.Dropped())
}

func TestEmitterRunStopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	j := NewMockJournal(ctrl)
	done := make(chan struct{})

	j.EXPECT().RecordEvent(gomock.Any(), EventDeviceOffline, gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, string, []byte) error {
			close(done)

			return nil
		})

	e := NewEmitter(nil, WithJournal(j))

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})

	go func() {
		e.Run(ctx)
		close(stopped)
	}()

	e.Emit(Event{Type: EventDeviceOffline})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("emitter did not stop")
	}
}

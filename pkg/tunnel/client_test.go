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

package tunnel

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{6, 32 * time.Second},
		{7, time.Minute},
		{200, time.Minute},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Backoff(tt.attempt, time.Second, time.Minute), "attempt %d", tt.attempt)
	}
}

func TestClientGivesUp(t *testing.T) {
	c := NewClient(ClientConfig{
		URL:         "ws://core.invalid/ws",
		AgentID:     "agent-1",
		MaxAttempts: 4,
	}, nil)

	dialErr := errors.New("connection refused")
	dials := 0

	c.dial = func(context.Context, string, http.Header) (Conn, error) {
		dials++

		return nil, dialErr
	}

	var delays []time.Duration

	c.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)

		return nil
	}

	err := c.Run(context.Background())

	require.ErrorIs(t, err, ErrMaxAttempts)
	require.ErrorIs(t, err, dialErr)
	assert.Equal(t, 4, dials)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, delays)
	assert.Equal(t, models.AgentDisconnected, c.Status())
}

func TestClientBacksOffBetweenSessions(t *testing.T) {
	ctrl := gomock.NewController(t)

	c := NewClient(ClientConfig{URL: "ws://core.invalid/ws", AgentID: "agent-1", MaxAttempts: 3}, nil)

	ack, err := json.Marshal(&Message{Type: MsgRegistrationSuccess})
	require.NoError(t, err)

	dials := 0

	c.dial = func(context.Context, string, http.Header) (Conn, error) {
		dials++

		conn := NewMockConn(ctrl)
		conn.EXPECT().SetWriteDeadline(gomock.Any()).Return(nil).AnyTimes()
		conn.EXPECT().WriteMessage(websocket.TextMessage, gomock.Any()).Return(nil).AnyTimes()
		conn.EXPECT().Close().Return(nil).AnyTimes()

		if dials <= 5 {
			gomock.InOrder(
				conn.EXPECT().ReadMessage().Return(websocket.TextMessage, ack, nil),
				conn.EXPECT().ReadMessage().Return(0, nil, io.EOF),
			)
		} else {
			conn.EXPECT().ReadMessage().Return(0, nil, io.EOF)
		}

		return conn, nil
	}

	var delays []time.Duration

	c.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)

		return nil
	}

	err = c.Run(context.Background())

	require.ErrorIs(t, err, ErrMaxAttempts)
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 7, dials)
	assert.Equal(t, []time.Duration{
		time.Second, time.Second, time.Second, time.Second, time.Second, 2 * time.Second,
	}, delays, "registered sessions reset the backoff, refused ones grow it")
}

func TestClientStopsOnCancelDuringBackoff(t *testing.T) {
	c := NewClient(ClientConfig{AgentID: "agent-1"}, nil)

	ctx, cancel := context.WithCancel(context.Background())

	c.dial = func(context.Context, string, http.Header) (Conn, error) {
		return nil, errors.New("down")
	}
	c.sleep = func(context.Context, time.Duration) error {
		cancel()

		return context.Canceled
	}

	require.ErrorIs(t, c.Run(ctx), context.Canceled)
	assert.Equal(t, models.AgentDisconnected, c.Status())
}

func TestClientSendNotConnected(t *testing.T) {
	c := NewClient(ClientConfig{AgentID: "agent-1"}, nil)

	assert.ErrorIs(t, c.Send(&Message{Type: MsgHeartbeat}), ErrNotConnected)
}

func TestClientSession(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AuthToken = "secret"

	s, _, _ := newTestServer(t, cfg)

	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)

	commands := make(chan *Message, 4)

	c := NewClient(ClientConfig{
		URL:               "ws" + strings.TrimPrefix(srv.URL, "http"),
		AgentID:           "agent-1",
		AuthToken:         "secret",
		Capabilities:      []string{"wifi"},
		HeartbeatInterval: 20 * time.Millisecond,
	}, func(_ context.Context, msg *Message) {
		if msg.Type == MsgDeviceCommand {
			commands <- msg
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool {
		return c.Status() == models.AgentActive
	}, 2*time.Second, 10*time.Millisecond)

	a, ok := s.Agent("agent-1")
	require.True(t, ok)
	assert.Equal(t, []string{"wifi"}, a.Capabilities)

	cmdID, ok := s.SendCommand("agent-1", "identify", nil)
	require.True(t, ok)

	select {
	case msg := <-commands:
		assert.Equal(t, cmdID, msg.CommandID)
		assert.Equal(t, "identify", msg.Command)
	case <-time.After(2 * time.Second):
		t.Fatal("command not delivered")
	}

	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("client did not stop")
	}

	assert.Equal(t, models.AgentDisconnected, c.Status())
}

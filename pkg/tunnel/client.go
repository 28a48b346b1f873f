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
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mfreeman451/smartblueprint/pkg/logger"
	"github.com/mfreeman451/smartblueprint/pkg/models"
)

const (
	defaultHeartbeat   = 30 * time.Second
	defaultBackoffBase = time.Second
	defaultBackoffMax  = time.Minute
	defaultMaxAttempts = 10
)

// ClientConfig configures the agent side of the tunnel.
type ClientConfig struct {
	URL               string
	AgentID           string
	AuthToken         string
	Capabilities      []string
	SystemInfo        map[string]any
	HeartbeatInterval time.Duration
	BackoffBase       time.Duration
	BackoffMax        time.Duration
	MaxAttempts       int
	WriteTimeout      time.Duration
}

// MessageFunc receives every frame the core sends to the agent.
type MessageFunc func(ctx context.Context, msg *Message)

// DialFunc opens a tunnel connection.
type DialFunc func(ctx context.Context, url string, header http.Header) (Conn, error)

// Client keeps an agent connected to the core, reconnecting with
// exponential backoff.
type Client struct {
	cfg       ClientConfig
	onMessage MessageFunc
	dial      DialFunc
	sleep     func(ctx context.Context, d time.Duration) error
	log       zerolog.Logger

	mu     sync.Mutex
	conn   Conn
	status models.AgentStatus

	writeMu sync.Mutex
}

// NewClient creates a tunnel client. onMessage may be nil.
func NewClient(cfg ClientConfig, onMessage MessageFunc) *Client {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = defaultHeartbeat
	}

	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = defaultBackoffBase
	}

	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = defaultBackoffMax
	}

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}

	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultConfig().WriteTimeout
	}

	return &Client{
		cfg:       cfg,
		onMessage: onMessage,
		dial:      dialWebsocket,
		sleep:     sleepContext,
		log:       logger.Component("tunnel-client").With().Str("agent_id", cfg.AgentID).Logger(),
		status:    models.AgentDisconnected,
	}
}

func dialWebsocket(ctx context.Context, url string, header http.Header) (Conn, error) {
	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	if err != nil {
		return nil, err
	}

	return ws, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Backoff returns the delay before reconnect attempt n (1-based):
// base doubled per attempt, capped at max.
func Backoff(attempt int, base, maxDelay time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	d := base

	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxDelay || d <= 0 {
			return maxDelay
		}
	}

	return min(d, maxDelay)
}

// Status reports the client's connection state.
func (c *Client) Status() models.AgentStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.status
}

func (c *Client) setStatus(s models.AgentStatus) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

// Run connects and serves the tunnel until ctx ends or reconnecting
// fails MaxAttempts times in a row. Only a session that registered with
// the core resets the attempt count, and every redial waits out a backoff.
func (c *Client) Run(ctx context.Context) error {
	attempt := 0

	for {
		if err := ctx.Err(); err != nil {
			c.setStatus(models.AgentDisconnected)

			return err
		}

		c.setStatus(models.AgentConnecting)

		conn, err := c.dial(ctx, c.cfg.URL, c.header())
		if err == nil {
			var registered bool

			registered, err = c.session(ctx, conn)
			if ctx.Err() != nil {
				continue
			}

			if registered {
				attempt = 0
			}

			c.log.Warn().Err(err).Bool("registered", registered).Msg("tunnel session ended")
		}

		attempt++

		if attempt >= c.cfg.MaxAttempts {
			c.setStatus(models.AgentDisconnected)
			c.log.Error().Err(err).Int("attempts", attempt).Msg("giving up on core connection")

			return fmt.Errorf("%w: %d attempts: %w", ErrMaxAttempts, attempt, err)
		}

		delay := Backoff(attempt, c.cfg.BackoffBase, c.cfg.BackoffMax)
		c.log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("reconnecting to core")

		if err := c.sleep(ctx, delay); err != nil {
			c.setStatus(models.AgentDisconnected)

			return err
		}
	}
}

func (c *Client) header() http.Header {
	h := http.Header{}
	if c.cfg.AuthToken != "" {
		h.Set("Authorization", "Bearer "+c.cfg.AuthToken)
	}

	return h
}

// session serves one connection and reports whether the core accepted the
// registration before it ended.
func (c *Client) session(ctx context.Context, conn Conn) (bool, error) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)

	defer func() {
		cancel()

		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()

		_ = conn.Close()
	}()

	if err := c.Send(&Message{
		Type:            MsgAgentRegister,
		AgentID:         c.cfg.AgentID,
		Capabilities:    c.cfg.Capabilities,
		SystemInfo:      c.cfg.SystemInfo,
		ProtocolVersion: ProtocolVersion,
	}); err != nil {
		return false, err
	}

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	go c.heartbeat(ctx)

	registered := false

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return registered, err
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Warn().Err(err).Msg("discarding malformed frame")

			continue
		}

		switch msg.Type {
		case MsgRegistrationSuccess:
			registered = true
			c.setStatus(models.AgentRegistered)
			c.log.Info().Str("core_version", msg.CloudVersion).Strs("features", msg.Features).Msg("registered with core")
		case MsgError:
			c.log.Warn().Str("error", msg.Error).Str("severity", msg.Severity).Msg("core reported an error")
		}

		if c.onMessage != nil {
			c.onMessage(ctx, &msg)
		}
	}
}

func (c *Client) heartbeat(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Send(&Message{Type: MsgHeartbeat, AgentID: c.cfg.AgentID}); err != nil {
				c.log.Debug().Err(err).Msg("heartbeat failed")

				continue
			}

			c.mu.Lock()
			if c.status == models.AgentRegistered {
				c.status = models.AgentActive
			}
			c.mu.Unlock()
		}
	}
}

// Send writes one message to the core.
func (c *Client) Send(msg *Message) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProtocol, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))

	return conn.WriteMessage(websocket.TextMessage, data)
}

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
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/mfreeman451/smartblueprint/pkg/logger"
)

const (
	EventAnomalyDetected      = "anomaly_detected"
	EventDeviceOffline        = "device_offline"
	EventDeviceUpdate         = "device_update"
	EventIntegrityViolation   = "integrity_violation"
	EventHealthMetrics        = "health_metrics"
	EventFailurePrediction    = "failure_prediction"
	EventMaintenanceScheduled = "maintenance_scheduled"
	EventMaintenanceUpdated   = "maintenance_updated"
	EventRangingUpdate        = "ranging_update"
	EventAgentError           = "agent_error"
	EventDeviceRecovered      = "device_recovered"

	SeverityCritical = "critical"

	defaultQueueSize = 256
	sinkTimeout      = 10 * time.Second
)

// Event is one alert flowing to subscribers and sinks.
type Event struct {
	Type      string    `json:"type"`
	MAC       string    `json:"mac,omitempty"`
	Severity  string    `json:"severity,omitempty"`
	Title     string    `json:"title,omitempty"`
	Message   string    `json:"message,omitempty"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Emitter broadcasts events over the tunnel synchronously and hands them
// to the slower sinks through a bounded queue.
type Emitter struct {
	broadcaster Broadcaster
	webhooks    []AlertService
	publisher   Publisher
	topicPrefix string
	journal     Journal
	queue       chan Event
	dropped     atomic.Uint64
	now         func() time.Time
	log         zerolog.Logger
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithWebhooks adds webhook sinks for critical events.
func WithWebhooks(services ...AlertService) Option {
	return func(e *Emitter) {
		for _, s := range services {
			if s != nil && s.IsEnabled() {
				e.webhooks = append(e.webhooks, s)
			}
		}
	}
}

// WithPublisher publishes every event to <prefix>/<event>.
func WithPublisher(p Publisher, prefix string) Option {
	return func(e *Emitter) {
		e.publisher = p
		e.topicPrefix = prefix
	}
}

// WithJournal appends every event to j.
func WithJournal(j Journal) Option {
	return func(e *Emitter) {
		e.journal = j
	}
}

// WithQueueSize bounds the sink queue.
func WithQueueSize(n int) Option {
	return func(e *Emitter) {
		if n > 0 {
			e.queue = make(chan Event, n)
		}
	}
}

// NewEmitter creates an emitter broadcasting through b, which may be nil.
func NewEmitter(b Broadcaster, opts ...Option) *Emitter {
	e := &Emitter{
		broadcaster: b,
		queue:       make(chan Event, defaultQueueSize),
		now:         time.Now,
		log:         logger.Component("alerts"),
	}

	for _, o := range opts {
		o(e)
	}

	return e
}

// Emit broadcasts ev and queues it for the sinks. It never blocks; when
// the sink queue is full the event only reaches tunnel subscribers.
func (e *Emitter) Emit(ev Event) int {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = e.now()
	}

	peers := 0
	if e.broadcaster != nil {
		peers = e.broadcaster.Broadcast(ev.Type, ev)
	}

	if !e.hasSinks() {
		return peers
	}

	select {
	case e.queue <- ev:
	default:
		e.dropped.Add(1)
		e.log.Warn().Str("event", ev.Type).Str("mac", ev.MAC).Msg("sink queue full, event not delivered to sinks")
	}

	return peers
}

// Dropped reports how many events skipped the sinks.
func (e *Emitter) Dropped() uint64 {
	return e.dropped.Load()
}

// Run delivers queued events to the sinks until ctx is done.
func (e *Emitter) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-e.queue:
			e.deliver(ctx, &ev)
		}
	}
}

func (e *Emitter) hasSinks() bool {
	return e.journal != nil || e.publisher != nil || len(e.webhooks) > 0
}

func (e *Emitter) deliver(ctx context.Context, ev *Event) {
	ctx, cancel := context.WithTimeout(ctx, sinkTimeout)
	defer cancel()

	payload, err := json.Marshal(ev)
	if err != nil {
		e.log.Error().Err(err).Str("event", ev.Type).Msg("failed to encode event")

		return
	}

	if e.journal != nil {
		if err := e.journal.RecordEvent(ctx, ev.Type, ev.MAC, payload); err != nil {
			e.log.Warn().Err(err).Str("event", ev.Type).Msg("failed to journal event")
		}
	}

	if e.publisher != nil {
		topic := fmt.Sprintf("%s/%s", e.topicPrefix, ev.Type)
		if err := e.publisher.Publish(ctx, topic, payload); err != nil {
			e.log.Warn().Err(err).Str("topic", topic).Msg("failed to publish event")
		}
	}

	if ev.Severity != SeverityCritical {
		return
	}

	alert := NewWebhookAlert(ev)

	for _, w := range e.webhooks {
		if err := w.Alert(ctx, alert); err != nil && !errors.Is(err, ErrWebhookCooldown) {
			e.log.Warn().Err(err).Str("event", ev.Type).Msg("failed to send webhook alert")
		}
	}
}

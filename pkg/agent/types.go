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

package agent

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mfreeman451/smartblueprint/pkg/config"
	"github.com/mfreeman451/smartblueprint/pkg/scan"
	"github.com/mfreeman451/smartblueprint/pkg/tunnel"
)

const (
	defaultProbeCount   = 3
	defaultProbeTimeout = time.Second
	defaultConcurrency  = 16
	arpTablePath        = "/proc/net/arp"
)

// Capabilities advertised at registration.
var Capabilities = []string{
	tunnel.MsgDeviceUpdates, tunnel.MsgProbe, tunnel.MsgScanRequest, tunnel.MsgDeviceCommand,
}

// Agent ties a sweep loop and command handling to a tunnel client.
type Agent struct {
	cfg       *config.AgentConfig
	client    *tunnel.Client
	sender    Sender
	prober    scan.Prober
	neighbors NeighborFunc
	now       func() time.Time
	log       zerolog.Logger

	probeCount   int
	probeTimeout time.Duration
	concurrency  int

	mu    sync.Mutex
	known map[string]bool // mac -> answered on the last sweep

	wg sync.WaitGroup
}

// Option customizes an Agent.
type Option func(*Agent)

// WithProber replaces the ICMP prober.
func WithProber(p scan.Prober) Option {
	return func(a *Agent) { a.prober = p }
}

// WithNeighbors replaces the neighbor table reader.
func WithNeighbors(fn NeighborFunc) Option {
	return func(a *Agent) { a.neighbors = fn }
}

// WithSender routes outgoing frames somewhere other than the tunnel client.
func WithSender(s Sender) Option {
	return func(a *Agent) { a.sender = s }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Agent) { a.now = now }
}

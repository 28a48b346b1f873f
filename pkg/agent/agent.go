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
	"context"
	"encoding/json"
	"errors"
	"os"
	"runtime"
	"time"

	"github.com/mfreeman451/smartblueprint/pkg/config"
	"github.com/mfreeman451/smartblueprint/pkg/logger"
	"github.com/mfreeman451/smartblueprint/pkg/scan"
	"github.com/mfreeman451/smartblueprint/pkg/tunnel"
)

// New builds an agent and its tunnel client.
func New(cfg *config.AgentConfig, opts ...Option) *Agent {
	a := &Agent{
		cfg:          cfg,
		neighbors:    func() (map[string]string, error) { return ReadARPTable(arpTablePath) },
		now:          time.Now,
		log:          logger.Component("agent").With().Str("agent_id", cfg.AgentID).Logger(),
		probeCount:   defaultProbeCount,
		probeTimeout: defaultProbeTimeout,
		concurrency:  defaultConcurrency,
		known:        make(map[string]bool),
	}

	for _, o := range opts {
		o(a)
	}

	if a.prober == nil {
		a.prober = scan.NewICMPProber(cfg.Privileged)
	}

	a.client = tunnel.NewClient(tunnel.ClientConfig{
		URL:               cfg.CoreURL,
		AgentID:           cfg.AgentID,
		AuthToken:         cfg.AuthToken,
		Capabilities:      Capabilities,
		SystemInfo:        systemInfo(),
		HeartbeatInterval: time.Duration(cfg.HeartbeatInterval),
		BackoffBase:       time.Duration(cfg.BackoffBase),
		BackoffMax:        time.Duration(cfg.BackoffMax),
		MaxAttempts:       cfg.MaxAttempts,
	}, a.HandleMessage)

	if a.sender == nil {
		a.sender = a.client
	}

	return a
}

func systemInfo() map[string]any {
	host, _ := os.Hostname()

	return map[string]any{
		"hostname": host,
		"os":       runtime.GOOS,
		"arch":     runtime.GOARCH,
	}
}

// Run sweeps on the configured interval and keeps the tunnel up until ctx
// ends or the client gives up.
func (a *Agent) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.goRun(func() { a.sweepLoop(ctx, time.Duration(a.cfg.ScanInterval)) })

	err := a.client.Run(ctx)

	cancel()
	a.wg.Wait()

	return err
}

func (a *Agent) goRun(fn func()) {
	a.wg.Add(1)

	go func() {
		defer a.wg.Done()
		fn()
	}()
}

// HandleMessage reacts to frames from the core. Probes and scans run off
// the read loop.
func (a *Agent) HandleMessage(ctx context.Context, msg *tunnel.Message) {
	switch msg.Type {
	case tunnel.MsgRegistrationSuccess:
		a.log.Info().Str("core_version", msg.CloudVersion).Strs("features", msg.Features).Msg("registered with core")
	case tunnel.MsgProbe, tunnel.MsgPing:
		req := *msg
		a.goRun(func() { a.answerProbe(ctx, &req) })
	case tunnel.MsgScanRequest:
		req := *msg
		a.goRun(func() { a.answerScan(ctx, &req) })
	case tunnel.MsgDeviceCommand:
		a.answerCommand(ctx, msg)
	case tunnel.MsgDeviceUpdatesAck:
		a.log.Debug().Int("count", msg.Count).Msg("device updates acknowledged")
	case tunnel.MsgError:
		a.log.Warn().Str("error", msg.Error).Str("severity", msg.Severity).Msg("core reported an error")
	default:
		a.log.Debug().Str("type", msg.Type).Msg("ignoring message")
	}
}

func (a *Agent) answerProbe(ctx context.Context, req *tunnel.Message) {
	hosts := req.Targets
	if len(hosts) == 0 {
		hosts = a.cfg.Targets
	}

	hosts, err := scan.ExpandTargets(hosts, 0)
	if err == nil && len(hosts) == 0 {
		err = ErrNoTargets
	}

	if err != nil {
		a.reportError(req.CommandID, err)

		return
	}

	rtt := make(map[string]float64)

	for _, res := range a.probeAll(ctx, hosts) {
		if res.Received > 0 {
			rtt[res.Host] = float64(res.AvgRTT()) / float64(time.Millisecond)
		}
	}

	if len(rtt) == 0 {
		a.reportError(req.CommandID, ErrNoReplies)

		return
	}

	a.send(&tunnel.Message{Type: req.Type, CommandID: req.CommandID, RTT: rtt})
}

func (a *Agent) answerScan(ctx context.Context, req *tunnel.Message) {
	n, err := a.Sweep(ctx)
	if err != nil {
		a.reportError(req.CommandID, err)

		return
	}

	a.respond(req.CommandID, tunnel.MsgScanRequest, map[string]any{"scanType": req.ScanType, "devices": n})
}

// answerCommand acknowledges device commands. The reference agent drives no
// hardware, so only rescan has an effect.
func (a *Agent) answerCommand(ctx context.Context, req *tunnel.Message) {
	if req.Command == "rescan" {
		r := *req
		r.Type = tunnel.MsgScanRequest
		a.goRun(func() { a.answerScan(ctx, &r) })

		return
	}

	a.respond(req.CommandID, req.Command, map[string]any{"status": "unsupported"})
}

func (a *Agent) respond(commandID, command string, result any) {
	data, err := json.Marshal(result)
	if err != nil {
		a.log.Error().Err(err).Msg("failed to encode command result")

		return
	}

	a.send(&tunnel.Message{
		Type:      tunnel.MsgCommandResponse,
		CommandID: commandID,
		Command:   command,
		Result:    data,
	})
}

func (a *Agent) reportError(commandID string, err error) {
	a.log.Warn().Err(err).Str("command_id", commandID).Msg("command failed")

	a.send(&tunnel.Message{
		Type:     tunnel.MsgErrorReport,
		Error:    err.Error(),
		Severity: "warning",
		Context:  map[string]any{"commandId": commandID},
	})
}

func (a *Agent) send(msg *tunnel.Message) {
	msg.Timestamp = a.now()

	if err := a.sender.Send(msg); err != nil {
		if errors.Is(err, tunnel.ErrNotConnected) {
			a.log.Debug().Str("type", msg.Type).Msg("not connected, dropping frame")

			return
		}

		a.log.Warn().Err(err).Str("type", msg.Type).Msg("failed to send frame")
	}
}

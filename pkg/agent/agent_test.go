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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mfreeman451/smartblueprint/pkg/config"
	"github.com/mfreeman451/smartblueprint/pkg/models"
	"github.com/mfreeman451/smartblueprint/pkg/scan"
	"github.com/mfreeman451/smartblueprint/pkg/tunnel"
)

type recorder struct {
	mu   sync.Mutex
	sent []*tunnel.Message
}

func (r *recorder) Send(msg *tunnel.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sent = append(r.sent, msg)

	return nil
}

func (r *recorder) messages() []*tunnel.Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]*tunnel.Message(nil), r.sent...)
}

func answered(host string, rtt time.Duration) scan.ProbeResult {
	return scan.ProbeResult{Host: host, Sent: 3, Received: 3, RTTs: []time.Duration{rtt, rtt, rtt}}
}

func silent(host string) scan.ProbeResult {
	return scan.ProbeResult{Host: host, Sent: 3}
}

func newTestAgent(t *testing.T, targets ...string) (*Agent, *scan.MockProber, *recorder) {
	t.Helper()

	ctrl := gomock.NewController(t)
	prober := scan.NewMockProber(ctrl)
	rec := &recorder{}

	cfg := config.DefaultAgentConfig()
	cfg.AgentID = "agent-1"
	cfg.Targets = targets

	table := map[string]string{
		"10.0.0.1": "A4:2B:B0:11:22:33",
		"10.0.0.3": "3C:22:FB:0A:0B:0C",
	}

	a := New(&cfg,
		WithProber(prober),
		WithSender(rec),
		WithNeighbors(func() (map[string]string, error) { return table, nil }),
	)

	return a, prober, rec
}

func TestSweepTracksDeviceState(t *testing.T) {
	a, prober, rec := newTestAgent(t, "10.0.0.1", "10.0.0.2", "10.0.0.3")
	ctx := context.Background()

	gomock.InOrder(
		prober.EXPECT().Probe(gomock.Any(), "10.0.0.1", 3, time.Second).Return(answered("10.0.0.1", 4*time.Millisecond), nil),
		prober.EXPECT().Probe(gomock.Any(), "10.0.0.1", 3, time.Second).Return(silent("10.0.0.1"), nil),
		prober.EXPECT().Probe(gomock.Any(), "10.0.0.1", 3, time.Second).Return(silent("10.0.0.1"), nil),
	)
	prober.EXPECT().Probe(gomock.Any(), "10.0.0.2", 3, time.Second).Return(answered("10.0.0.2", time.Millisecond), nil).Times(3)
	prober.EXPECT().Probe(gomock.Any(), "10.0.0.3", 3, time.Second).Return(silent("10.0.0.3"), nil).Times(3)

	// 10.0.0.2 answers but has no neighbor entry, 10.0.0.3 never answers
	n, err := a.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	first := rec.messages()[0]
	assert.Equal(t, tunnel.MsgDeviceUpdates, first.Type)
	require.Len(t, first.Updates, 1)
	assert.Equal(t, models.ActionDiscovered, first.Updates[0].Action)
	assert.Equal(t, "A4:2B:B0:11:22:33", first.Updates[0].Device.MAC)
	assert.True(t, *first.Updates[0].Device.Online)
	assert.InDelta(t, 4.0, first.Updates[0].Device.Telemetry["latency"], 1e-9)
	assert.InDelta(t, 0.0, first.Updates[0].Device.Telemetry["packetLoss"], 1e-9)

	n, err = a.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	second := rec.messages()[1]
	assert.Equal(t, models.ActionUpdated, second.Updates[0].Action)
	assert.False(t, *second.Updates[0].Device.Online)

	n, err = a.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, rec.messages(), 2)
}

func TestSweepWithoutTargets(t *testing.T) {
	a, _, _ := newTestAgent(t)

	_, err := a.Sweep(context.Background())
	assert.ErrorIs(t, err, ErrNoTargets)
}

func TestProbeCommand(t *testing.T) {
	a, prober, rec := newTestAgent(t)

	prober.EXPECT().Probe(gomock.Any(), "10.0.0.1", 3, time.Second).Return(answered("10.0.0.1", 2*time.Millisecond), nil)
	prober.EXPECT().Probe(gomock.Any(), "10.0.0.2", 3, time.Second).Return(silent("10.0.0.2"), nil)

	a.HandleMessage(context.Background(), &tunnel.Message{
		Type:      tunnel.MsgProbe,
		CommandID: "c1",
		Targets:   []string{"10.0.0.1", "10.0.0.2"},
	})
	a.wg.Wait()

	msgs := rec.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, tunnel.MsgProbe, msgs[0].Type)
	assert.Equal(t, "c1", msgs[0].CommandID)
	assert.Equal(t, map[string]float64{"10.0.0.1": 2}, msgs[0].RTT)
}

func TestProbeCommandNoReplies(t *testing.T) {
	a, prober, rec := newTestAgent(t)

	prober.EXPECT().Probe(gomock.Any(), "10.0.0.9", 3, time.Second).Return(silent("10.0.0.9"), nil)

	a.HandleMessage(context.Background(), &tunnel.Message{Type: tunnel.MsgPing, CommandID: "c2", Targets: []string{"10.0.0.9"}})
	a.wg.Wait()

	msgs := rec.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, tunnel.MsgErrorReport, msgs[0].Type)
	assert.Equal(t, ErrNoReplies.Error(), msgs[0].Error)
	assert.Equal(t, "c2", msgs[0].Context["commandId"])
}

func TestScanRequest(t *testing.T) {
	a, prober, rec := newTestAgent(t, "10.0.0.1")

	prober.EXPECT().Probe(gomock.Any(), "10.0.0.1", 3, time.Second).Return(answered("10.0.0.1", time.Millisecond), nil)

	a.HandleMessage(context.Background(), &tunnel.Message{Type: tunnel.MsgScanRequest, CommandID: "c3", ScanType: "full"})
	a.wg.Wait()

	msgs := rec.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, tunnel.MsgDeviceUpdates, msgs[0].Type)
	assert.Equal(t, tunnel.MsgCommandResponse, msgs[1].Type)
	assert.Equal(t, "c3", msgs[1].CommandID)

	var result map[string]any
	require.NoError(t, json.Unmarshal(msgs[1].Result, &result))
	assert.InDelta(t, 1.0, result["devices"], 1e-9)
}

func TestUnsupportedDeviceCommand(t *testing.T) {
	a, _, rec := newTestAgent(t)

	a.HandleMessage(context.Background(), &tunnel.Message{Type: tunnel.MsgDeviceCommand, CommandID: "c4", Command: "reboot"})

	msgs := rec.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, tunnel.MsgCommandResponse, msgs[0].Type)
	assert.Equal(t, "reboot", msgs[0].Command)
	assert.JSONEq(t, `{"status":"unsupported"}`, string(msgs[0].Result))
}

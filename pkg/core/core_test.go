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

package core

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mfreeman451/smartblueprint/pkg/alerts"
	"github.com/mfreeman451/smartblueprint/pkg/config"
	"github.com/mfreeman451/smartblueprint/pkg/db"
	"github.com/mfreeman451/smartblueprint/pkg/integrity"
	"github.com/mfreeman451/smartblueprint/pkg/models"
	"github.com/mfreeman451/smartblueprint/pkg/ranging"
	"github.com/mfreeman451/smartblueprint/pkg/scan"
	"github.com/mfreeman451/smartblueprint/pkg/tunnel"
)

// chanConn is a subscriber connection collecting every broadcast.
type chanConn struct {
	out    chan []byte
	closed chan struct{}
	once   sync.Once
}

func (c *chanConn) ReadMessage() (int, []byte, error) {
	<-c.closed

	return 0, nil, io.EOF
}

func (c *chanConn) WriteMessage(_ int, data []byte) error {
	select {
	case c.out <- data:
		return nil
	case <-c.closed:
		return io.ErrClosedPipe
	}
}

func (*chanConn) SetWriteDeadline(time.Time) error { return nil }

func (c *chanConn) Close() error {
	c.once.Do(func() { close(c.closed) })

	return nil
}

type harness struct {
	core  *Core
	clock *time.Time
	mu    sync.Mutex
	conn  *chanConn
}

func (h *harness) now() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()

	return *h.clock
}

func (h *harness) advance(d time.Duration) {
	h.mu.Lock()
	*h.clock = h.clock.Add(d)
	h.mu.Unlock()
}

// next returns the next broadcast event of the given type, skipping others.
func (h *harness) next(t *testing.T, event string) alerts.Event {
	t.Helper()

	deadline := time.After(2 * time.Second)

	for {
		select {
		case data := <-h.conn.out:
			var msg tunnel.Message
			require.NoError(t, json.Unmarshal(data, &msg))

			if msg.Type != event {
				continue
			}

			raw, err := json.Marshal(msg.Data)
			require.NoError(t, err)

			var ev alerts.Event
			require.NoError(t, json.Unmarshal(raw, &ev))

			return ev
		case <-deadline:
			t.Fatalf("no %s event broadcast", event)

			return alerts.Event{}
		}
	}
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	clock := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	h := &harness{clock: &clock}

	cfg := config.DefaultCoreConfig()
	opts = append([]Option{WithClock(h.now), WithWebhooks()}, opts...)

	c, err := New(&cfg, opts...)
	require.NoError(t, err)

	h.core = c
	h.conn = &chanConn{out: make(chan []byte, 128), closed: make(chan struct{})}

	t.Cleanup(c.Tunnel().Close)

	id := c.Tunnel().RegisterConnection(h.conn)
	c.Tunnel().OnMessage(context.Background(), id, []byte(`{"type":"subscribe"}`))

	return h
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func tv() models.DeviceUpdate {
	return models.DeviceUpdate{
		Action: models.ActionDiscovered,
		Device: models.DevicePatch{
			MAC:        "3C:22:FB:1A:2B:3C",
			Name:       strPtr("Living Room TV"),
			DeviceType: strPtr("smart_tv"),
			Protocol:   strPtr("wifi"),
			Vendor:     strPtr("LG Electronics"),
			IP:         strPtr("192.168.1.42"),
			RSSI:       floatPtr(-57),
			Telemetry:  map[string]any{"latency": 12.0},
		},
	}
}

func TestRejectedBatchLeavesLedgerUnchanged(t *testing.T) {
	h := newHarness(t)

	updates := []models.DeviceUpdate{
		tv(),
		{
			Action: models.ActionDiscovered,
			Device: models.DevicePatch{
				MAC:        "AA:BB:CC:DD:EE:01",
				RSSI:       floatPtr(-90),
				DeviceType: strPtr("router"),
			},
		},
	}

	n, err := h.core.HandleDeviceUpdates(context.Background(), "agent-1", updates)

	require.ErrorIs(t, err, integrity.ErrAdmission)
	assert.Zero(t, n)
	assert.Empty(t, h.core.Devices(), "no part of a rejected batch is applied")

	ev := h.next(t, alerts.EventIntegrityViolation)
	assert.Equal(t, "high", ev.Severity)
}

func TestDeviceUpdatesFlowThroughPipeline(t *testing.T) {
	h := newHarness(t)

	n, err := h.core.HandleDeviceUpdates(context.Background(), "agent-1", []models.DeviceUpdate{tv()})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	d, ok := h.core.Device("3c:22:fb:1a:2b:3c")
	require.True(t, ok)
	assert.Equal(t, "agent-1", d.AgentID)
	assert.True(t, d.Online)

	samples := h.core.Samples(d.MAC)
	require.Len(t, samples, 1)
	assert.InDelta(t, -57.0, samples[0].RSSI, 1e-9)
	assert.InDelta(t, 12.0, samples[0].Latency, 1e-9)

	assert.Equal(t, d.MAC, h.next(t, alerts.EventDeviceUpdate).MAC)

	ev := h.next(t, alerts.EventAnomalyDetected)
	assert.Equal(t, d.MAC, ev.MAC)
	assert.Contains(t, ev.Message, "fingerprint_change")
	assert.NotEmpty(t, h.core.Anomalies(d.MAC))
}

func TestInvalidUpdateIsSkipped(t *testing.T) {
	h := newHarness(t)

	updates := []models.DeviceUpdate{
		tv(),
		{Action: models.ActionRemoved, Device: models.DevicePatch{MAC: "3C:22:FB:00:00:99"}},
	}

	n, err := h.core.HandleDeviceUpdates(context.Background(), "agent-1", updates)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDeviceRecovery(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.core.HandleDeviceUpdates(ctx, "agent-1", []models.DeviceUpdate{tv()})
	require.NoError(t, err)

	removed := models.DeviceUpdate{Action: models.ActionRemoved, Device: models.DevicePatch{MAC: "3C:22:FB:1A:2B:3C"}}
	_, err = h.core.HandleDeviceUpdates(ctx, "agent-1", []models.DeviceUpdate{removed})
	require.NoError(t, err)

	d, _ := h.core.Device("3C:22:FB:1A:2B:3C")
	require.False(t, d.Online)

	h.advance(time.Hour)

	back := tv()
	back.Action = models.ActionUpdated
	_, err = h.core.HandleDeviceUpdates(ctx, "agent-1", []models.DeviceUpdate{back})
	require.NoError(t, err)

	ev := h.next(t, alerts.EventDeviceRecovered)
	assert.Equal(t, "3C:22:FB:1A:2B:3C", ev.MAC)
	assert.Contains(t, ev.Message, "Living Room TV")
}

func TestAnalyzeHealthSchedulesEmergency(t *testing.T) {
	h := newHarness(t)

	failing := &models.HealthTelemetry{
		Performance:       0.1,
		SignalStability:   0.1,
		ConnectionQuality: 0.1,
		ErrorCount:        40,
		RestartCount:      8,
	}

	report, err := h.core.AnalyzeHealth(context.Background(), "3C:22:FB:1A:2B:3C", failing)
	require.NoError(t, err)

	require.NotNil(t, report.Schedule)
	assert.True(t, report.Created)
	assert.Equal(t, models.MaintenanceEmergency, report.Schedule.Type)
	assert.Equal(t, models.RiskCritical, report.Prediction.RiskLevel)

	assert.Equal(t, "3C:22:FB:1A:2B:3C", h.next(t, alerts.EventHealthMetrics).MAC)
	assert.Equal(t, "critical", h.next(t, alerts.EventFailurePrediction).Severity)
	assert.Equal(t, alerts.SeverityCritical, h.next(t, alerts.EventMaintenanceScheduled).Severity)

	s, err := h.core.UpdateSchedule(report.Schedule.ID, models.ScheduleInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleInProgress, s.Status)

	ev := h.next(t, alerts.EventMaintenanceUpdated)
	assert.Equal(t, "Maintenance in_progress", ev.Title)

	_, err = h.core.AnalyzeHealth(context.Background(), "", failing)
	require.Error(t, err)
}

func TestHandleProbe(t *testing.T) {
	h := newHarness(t)

	msg := &tunnel.Message{
		Type:         tunnel.MsgProbe,
		RTT:          map[string]float64{"gateway": 25, "printer": 5.0000002},
		PingDistance: map[string]float64{"gateway": 4.2},
	}

	require.NoError(t, h.core.HandleProbe(context.Background(), "agent-1", msg))

	ev := h.next(t, alerts.EventRangingUpdate)

	raw, err := json.Marshal(ev.Payload)
	require.NoError(t, err)

	var report RangingReport
	require.NoError(t, json.Unmarshal(raw, &report))

	require.Len(t, report.Measurements, 2)
	assert.Equal(t, "gateway", report.Measurements[0].Source)
	assert.True(t, report.Measurements[0].Clamped, "3,000 km is clamped to the sanity bound")
	assert.InDelta(t, 100.0, report.Measurements[0].Distance, 1e-9)
	assert.Equal(t, "agent-1", report.AgentID)

	err = h.core.HandleProbe(context.Background(), "agent-1", &tunnel.Message{Type: tunnel.MsgProbe})
	require.ErrorIs(t, err, tunnel.ErrProtocol)
}

func TestSweepOfflineUsesDeviceClass(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	router := models.DeviceUpdate{
		Action: models.ActionDiscovered,
		Device: models.DevicePatch{MAC: "F4:92:BF:10:20:30", DeviceType: strPtr("router"), RSSI: floatPtr(-41)},
	}
	printer := models.DeviceUpdate{
		Action: models.ActionDiscovered,
		Device: models.DevicePatch{MAC: "F4:92:BF:10:20:31", DeviceType: strPtr("printer"), RSSI: floatPtr(-63)},
	}

	_, err := h.core.HandleDeviceUpdates(ctx, "agent-1", []models.DeviceUpdate{router, printer})
	require.NoError(t, err)

	h.advance(61 * time.Second)
	h.core.sweepOffline(ctx)

	ev := h.next(t, alerts.EventDeviceOffline)
	assert.Equal(t, "F4:92:BF:10:20:30", ev.MAC)

	r, _ := h.core.Device("F4:92:BF:10:20:30")
	p, _ := h.core.Device("F4:92:BF:10:20:31")
	assert.False(t, r.Online)
	assert.True(t, p.Online)
}

func TestSweepsTolerateEmptyLedger(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	assert.NotPanics(t, func() {
		h.core.sweepOffline(ctx)
		h.core.sweepHealth(ctx)
		h.core.sweepAnomalies(ctx)
		h.core.housekeeping(ctx)
	})

	assert.Empty(t, h.core.Predictions())
	assert.Zero(t, h.core.HealthSummary().TotalDevices)
}

func TestSweepHealthCoversLedger(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.core.HandleDeviceUpdates(ctx, "agent-1", []models.DeviceUpdate{tv()})
	require.NoError(t, err)

	h.core.sweepHealth(ctx)

	dh, ok := h.core.DeviceHealth("3C:22:FB:1A:2B:3C")
	require.True(t, ok)
	assert.Len(t, dh.History, 1)
	assert.Len(t, h.core.Predictions(), 1)
}

func TestRepeatedHealthSweepsOverStableDevices(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	phone := models.DeviceUpdate{
		Action: models.ActionDiscovered,
		Device: models.DevicePatch{MAC: "F4:92:BF:10:20:40", DeviceType: strPtr("smartphone"), RSSI: floatPtr(-62)},
	}

	_, err := h.core.HandleDeviceUpdates(ctx, "agent-1", []models.DeviceUpdate{tv(), phone})
	require.NoError(t, err)

	for i := 0; i < 2*24*12; i++ {
		if i == 30 {
			gone := models.DeviceUpdate{Action: models.ActionRemoved, Device: models.DevicePatch{MAC: "F4:92:BF:10:20:40"}}
			_, err = h.core.HandleDeviceUpdates(ctx, "agent-1", []models.DeviceUpdate{gone})
			require.NoError(t, err)
		}

		if i%2 == 0 {
			update := tv()
			update.Action = models.ActionUpdated
			_, err = h.core.HandleDeviceUpdates(ctx, "agent-1", []models.DeviceUpdate{update})
			require.NoError(t, err)
		}

		h.core.sweepHealth(ctx)
		h.advance(5 * time.Minute)
	}

	assert.Empty(t, h.core.Schedules())

	for _, p := range h.core.Predictions() {
		assert.Equal(t, models.RiskLow, p.RiskLevel, p.MAC)
	}

	dh, ok := h.core.DeviceHealth("F4:92:BF:10:20:40")
	require.True(t, ok)
	assert.Len(t, dh.History, 30, "offline devices are not analyzed")
}

func TestLocateFromAgentAnchors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	anchors := []ranging.Anchor{{ID: "agent-a"}, {ID: "agent-b", X: 10}, {ID: "agent-c", Y: 10}}
	for _, a := range anchors {
		_, err := h.core.SetAnchor(a)
		require.NoError(t, err)
	}

	_, err := h.core.Locate("3C:22:FB:1A:2B:3C")
	require.ErrorIs(t, err, ranging.ErrTooFewAnchors)

	for _, a := range anchors {
		u := tv()
		u.Device.RSSI = floatPtr(ranging.DefaultReferenceRSSI - 20*math.Log10(math.Hypot(3-a.X, 4-a.Y)))

		_, err := h.core.HandleDeviceUpdates(ctx, a.ID, []models.DeviceUpdate{u})
		require.NoError(t, err)
	}

	est, err := h.core.Locate("3C:22:FB:1A:2B:3C")
	require.NoError(t, err)
	assert.InDelta(t, 3.0, est.X, 1e-6)
	assert.InDelta(t, 4.0, est.Y, 1e-6)
	assert.InDelta(t, 1.0, est.Confidence, 1e-6)
	assert.Len(t, h.core.Anchors(), 3)
}

func TestNewRejectsBadAnchor(t *testing.T) {
	cfg := config.DefaultCoreConfig()
	cfg.Ranging.Anchors = []config.Anchor{{ID: "agent-a", X: math.Inf(1)}}

	_, err := New(&cfg, WithWebhooks())
	require.ErrorIs(t, err, ranging.ErrInvalidAnchor)
}

func TestEventsJournal(t *testing.T) {
	h := newHarness(t)

	_, err := h.core.Events(context.Background(), "", 10)
	require.ErrorIs(t, err, ErrJournalDisabled)

	ctrl := gomock.NewController(t)
	j := db.NewMockService(ctrl)

	h2 := newHarness(t, WithJournal(j))

	want := []db.EventRecord{{ID: 1, Event: alerts.EventDeviceOffline, MAC: "F4:92:BF:10:20:30"}}
	j.EXPECT().Events(gomock.Any(), "F4:92:BF:10:20:30", 5).Return(want, nil)
	j.EXPECT().Prune(gomock.Any(), 7*24*time.Hour).Return(int64(3), nil)

	got, err := h2.core.Events(context.Background(), "F4:92:BF:10:20:30", 5)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	h2.core.housekeeping(context.Background())
}

func TestStartStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	prober := scan.NewMockProber(ctrl)
	j := db.NewMockService(ctrl)

	prober.EXPECT().Probe(gomock.Any(), "192.168.1.1", gomock.Any(), gomock.Any()).
		Return(scan.ProbeResult{Host: "192.168.1.1", Sent: 4, Received: 4, RTTs: []time.Duration{
			5 * time.Millisecond, 5 * time.Millisecond, 5 * time.Millisecond, 5 * time.Millisecond,
		}}, nil).MinTimes(1)
	j.EXPECT().RecordEvent(gomock.Any(), alerts.EventRangingUpdate, "", gomock.Any()).Return(nil).AnyTimes()
	j.EXPECT().Close().Return(nil)

	h := newHarness(t, WithProber(prober), WithJournal(j))

	require.ErrorIs(t, h.core.StartLiveProbing([]string{"192.168.1.1"}, time.Hour), ErrNotStarted)

	require.NoError(t, h.core.Start(context.Background()))
	require.NoError(t, h.core.StartLiveProbing([]string{"192.168.1.1"}, time.Hour))

	ev := h.next(t, alerts.EventRangingUpdate)
	assert.NotNil(t, ev.Payload)

	require.NoError(t, h.core.Stop(context.Background()))
	assert.False(t, h.core.StopLiveProbing(), "stop ends live probing")
}

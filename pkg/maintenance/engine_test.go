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

package maintenance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

const testMAC = "AA:00:00:00:00:01"

func uniform(v float64) *models.HealthTelemetry {
	return &models.HealthTelemetry{Performance: v, SignalStability: v, ConnectionQuality: v}
}

func newTestEngine(t *testing.T) (*Engine, *time.Time) {
	t.Helper()

	ctrl := gomock.NewController(t)
	src := NewMockAnomalySource(ctrl)
	src.EXPECT().Density(gomock.Any()).Return(0.0).AnyTimes()

	clock := day0
	e := NewEngine(DefaultConfig(), src, WithClock(func() time.Time { return clock }))

	return e, &clock
}

func TestEngineHealthyDevice(t *testing.T) {
	e, _ := newTestEngine(t)

	res, err := e.Analyze(testMAC, uniform(1))
	require.NoError(t, err)

	assert.InDelta(t, 1.0, res.Metrics.Health, 1e-9)
	assert.Equal(t, models.RiskLow, res.Prediction.RiskLevel)
	assert.Equal(t, models.StateHealthy, res.State)
	assert.Nil(t, res.Schedule)
	assert.Empty(t, e.Schedules())
}

func TestEngineFrequentReportsDoNotSchedule(t *testing.T) {
	e, clock := newTestEngine(t)

	for i := 0; i < 30; i++ {
		*clock = day0.Add(time.Duration(i) * 5 * time.Minute)

		q := 0.75
		if i >= 28 {
			q = 0.72
		}

		res, err := e.Analyze(testMAC, &models.HealthTelemetry{Performance: 0.95, SignalStability: 0.9, ConnectionQuality: q})
		require.NoError(t, err)

		assert.Zero(t, res.Metrics.DegradationRate)
		assert.Equal(t, models.RiskLow, res.Prediction.RiskLevel)
		assert.Nil(t, res.Schedule)
	}

	assert.Empty(t, e.Schedules())
}

func TestEngineRejectsEmptyMAC(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.Analyze(" ", uniform(1))
	assert.ErrorIs(t, err, ErrEmptyMAC)
}

func TestEngineEscalatesInPlace(t *testing.T) {
	e, clock := newTestEngine(t)

	_, err := e.Analyze(testMAC, uniform(1))
	require.NoError(t, err)

	*clock = day0.Add(day)
	res, err := e.Analyze(testMAC, uniform(0.9))
	require.NoError(t, err)
	require.True(t, res.Created)
	require.NotNil(t, res.Schedule)
	assert.Equal(t, models.MaintenancePreventive, res.Schedule.Type)
	assert.Equal(t, day0.Add(8*day), res.Schedule.ScheduledDate)
	id := res.Schedule.ID

	*clock = day0.Add(2 * day)
	res, err = e.Analyze(testMAC, uniform(0.2))
	require.NoError(t, err)

	assert.False(t, res.Created)
	assert.True(t, res.Escalated)
	assert.Equal(t, id, res.Schedule.ID)
	assert.Equal(t, models.MaintenanceEmergency, res.Schedule.Type)
	assert.Equal(t, 3, res.Schedule.Priority)
	assert.Equal(t, time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC), res.Schedule.ScheduledDate)
	assert.Equal(t, 1, e.ActiveSchedules(testMAC))
	assert.Len(t, e.Schedules(), 1)
	assert.Equal(t, models.StateScheduled, e.State(testMAC))
}

func TestEngineScheduleExclusivity(t *testing.T) {
	e, clock := newTestEngine(t)

	for i, v := range []float64{1, 0.9, 0.7, 0.3, 0.95, 0.1, 0.1, 0.5} {
		*clock = day0.Add(time.Duration(i) * day)

		_, err := e.Analyze(testMAC, uniform(v))
		require.NoError(t, err)
		assert.LessOrEqual(t, e.ActiveSchedules(testMAC), 1)
	}
}

func TestEngineScheduleLifecycle(t *testing.T) {
	e, clock := newTestEngine(t)

	_, _ = e.Analyze(testMAC, uniform(1))
	*clock = day0.Add(day)
	res, _ := e.Analyze(testMAC, uniform(0.2))
	require.NotNil(t, res.Schedule)
	id := res.Schedule.ID

	s, err := e.UpdateSchedule(id, models.ScheduleInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleInProgress, s.Status)

	_, err = e.UpdateSchedule(id, models.ScheduleScheduled)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = e.UpdateSchedule("missing", models.ScheduleCompleted)
	assert.ErrorIs(t, err, ErrUnknownSchedule)

	_, err = e.UpdateSchedule(id, models.ScheduleCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StateCompleted, e.State(testMAC))
	assert.Zero(t, e.ActiveSchedules(testMAC))

	*clock = day0.Add(2 * day)
	res, err = e.Analyze(testMAC, uniform(0.1))
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.NotEqual(t, id, res.Schedule.ID)
	assert.Equal(t, 1, e.ActiveSchedules(testMAC))
	assert.Len(t, e.Schedules(), 2)
}

func TestEngineHistoryRetention(t *testing.T) {
	e, clock := newTestEngine(t)

	for i := 0; i < 100; i++ {
		*clock = day0.Add(time.Duration(i) * day)
		_, _ = e.Analyze(testMAC, uniform(1))
	}

	h, ok := e.Health(testMAC)
	require.True(t, ok)
	assert.Len(t, h.History, 91)
	assert.False(t, h.History[0].Timestamp.Before(clock.Add(-90*day)))
}

func TestEngineUsesAnomalyDensity(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := NewMockAnomalySource(ctrl)
	src.EXPECT().Density(testMAC).Return(1.0)

	e := NewEngine(DefaultConfig(), src)
	res, err := e.Analyze(testMAC, uniform(1))
	require.NoError(t, err)

	assert.InDelta(t, weightAnomalies, res.Prediction.Probability, 1e-9)
}

func TestEngineSummaryAndPredictions(t *testing.T) {
	e, _ := newTestEngine(t)

	_, _ = e.Analyze("AA:00:00:00:00:01", uniform(1))
	_, _ = e.Analyze("AA:00:00:00:00:02", uniform(0.3))

	s := e.Summary()
	assert.Equal(t, 2, s.TotalDevices)
	assert.Equal(t, 1, s.HealthyDevices)
	assert.Equal(t, 1, s.CriticalDevices+s.AtRiskDevices)
	assert.Equal(t, []string{"AA:00:00:00:00:02"}, s.Attention)

	preds := e.Predictions()
	require.Len(t, preds, 2)
	assert.Equal(t, "AA:00:00:00:00:02", preds[0].MAC)

	_, ok := e.Health("aa-00-00-00-00-02")
	assert.True(t, ok)
}

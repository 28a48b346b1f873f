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

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		name   string
		risk   models.RiskLevel
		ttf    float64
		want   models.MaintenanceType
		wantOK bool
	}{
		{"critical", models.RiskCritical, 365, models.MaintenanceEmergency, true},
		{"week horizon", models.RiskLow, 7, models.MaintenanceEmergency, true},
		{"high", models.RiskHigh, 365, models.MaintenancePreventive, true},
		{"month horizon", models.RiskMedium, 30, models.MaintenancePreventive, true},
		{"quarter horizon", models.RiskMedium, 90, models.MaintenanceRoutine, true},
		{"nothing", models.RiskMedium, 200, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Plan(&models.FailurePrediction{RiskLevel: tt.risk, TimeToFailureDays: tt.ttf})
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextBusinessDay(t *testing.T) {
	fri := time.Date(2026, time.October, 16, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC), NextBusinessDay(fri))

	wed := time.Date(2026, time.October, 14, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC), NextBusinessDay(wed))
}

func TestScheduledDate(t *testing.T) {
	assert.Equal(t, day0.Add(7*day), ScheduledDate(models.MaintenancePreventive, 4, day0))
	assert.Equal(t, day0.Add(10*day), ScheduledDate(models.MaintenancePreventive, 20, day0))
	assert.Equal(t, day0.Add(30*day), ScheduledDate(models.MaintenanceRoutine, 60, day0))
}

func TestEmergencyCostPremium(t *testing.T) {
	p := &models.FailurePrediction{MAC: "AA:00:00:00:00:01", FailureType: models.FailureBattery}

	e := newSchedule(p, models.MaintenanceEmergency, DefaultConfig(), day0)
	r := newSchedule(p, models.MaintenanceRoutine, DefaultConfig(), day0)

	assert.InDelta(t, r.EstimatedCost*1.5, e.EstimatedCost, 1e-9)
	assert.Equal(t, []string{"battery"}, e.RequiredParts)
	assert.NotEqual(t, e.ID, r.ID)
}

func TestCheckTransition(t *testing.T) {
	assert.NoError(t, checkTransition(models.ScheduleScheduled, models.ScheduleInProgress))
	assert.NoError(t, checkTransition(models.ScheduleScheduled, models.ScheduleCompleted))
	assert.NoError(t, checkTransition(models.ScheduleInProgress, models.ScheduleCompleted))
	assert.ErrorIs(t, checkTransition(models.ScheduleCompleted, models.ScheduleScheduled), ErrInvalidTransition)
	assert.ErrorIs(t, checkTransition(models.ScheduleInProgress, models.ScheduleScheduled), ErrInvalidTransition)
	assert.ErrorIs(t, checkTransition(models.ScheduleScheduled, "bogus"), ErrInvalidTransition)
}

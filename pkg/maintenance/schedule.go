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
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

// Plan picks the maintenance type a prediction calls for. ok is false when
// no maintenance is needed.
func Plan(p *models.FailurePrediction) (models.MaintenanceType, bool) {
	switch {
	case p.RiskLevel == models.RiskCritical || p.TimeToFailureDays <= 7:
		return models.MaintenanceEmergency, true
	case p.RiskLevel == models.RiskHigh || p.TimeToFailureDays <= 30:
		return models.MaintenancePreventive, true
	case p.TimeToFailureDays <= 90:
		return models.MaintenanceRoutine, true
	default:
		return "", false
	}
}

// Priority of a maintenance type; higher is more urgent.
func Priority(t models.MaintenanceType) int {
	switch t {
	case models.MaintenanceEmergency:
		return 3
	case models.MaintenancePreventive:
		return 2
	case models.MaintenanceRoutine:
		return 1
	default:
		return 0
	}
}

// ScheduledDate returns when maintenance of type t should happen.
func ScheduledDate(t models.MaintenanceType, ttfDays float64, now time.Time) time.Time {
	switch t {
	case models.MaintenanceEmergency:
		return NextBusinessDay(now)
	case models.MaintenancePreventive:
		days := math.Max(7, ttfDays/2)

		return now.Add(time.Duration(days * float64(day)))
	default:
		return now.Add(30 * day)
	}
}

// NextBusinessDay is 09:00 on the first weekday after now.
func NextBusinessDay(now time.Time) time.Time {
	d := time.Date(now.Year(), now.Month(), now.Day(), 9, 0, 0, 0, now.Location()).AddDate(0, 0, 1)

	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}

	return d
}

func estimateCost(t models.MaintenanceType, ft models.FailureType, premium float64) float64 {
	c, ok := baseCost[ft]
	if !ok {
		c = baseCost[models.FailureNone]
	}

	if t == models.MaintenanceEmergency {
		c *= premium
	}

	return c
}

func newSchedule(p *models.FailurePrediction, t models.MaintenanceType, cfg Config, now time.Time) *models.MaintenanceSchedule {
	return &models.MaintenanceSchedule{
		ID:            uuid.New().String(),
		MAC:           p.MAC,
		Type:          t,
		ScheduledDate: ScheduledDate(t, p.TimeToFailureDays, now),
		Priority:      Priority(t),
		RequiredParts: append([]string{}, requiredParts[p.FailureType]...),
		EstimatedCost: estimateCost(t, p.FailureType, cfg.EmergencyPremium),
		Status:        models.ScheduleScheduled,
		FailureType:   p.FailureType,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// escalate raises priority and pulls the date forward in place. It never
// relaxes an existing schedule and leaves work already in progress alone.
func escalate(s *models.MaintenanceSchedule, p *models.FailurePrediction, t models.MaintenanceType, cfg Config, now time.Time) bool {
	if s.Status != models.ScheduleScheduled {
		return false
	}

	changed := false

	if pr := Priority(t); pr > s.Priority {
		s.Priority = pr
		s.Type = t
		s.EstimatedCost = estimateCost(t, s.FailureType, cfg.EmergencyPremium)
		changed = true
	}

	if d := ScheduledDate(t, p.TimeToFailureDays, now); d.Before(s.ScheduledDate) {
		s.ScheduledDate = d
		changed = true
	}

	if changed {
		s.UpdatedAt = now
	}

	return changed
}

func statusRank(s models.ScheduleStatus) int {
	switch s {
	case models.ScheduleScheduled:
		return 0
	case models.ScheduleInProgress:
		return 1
	case models.ScheduleCompleted:
		return 2
	default:
		return -1
	}
}

func checkTransition(from, to models.ScheduleStatus) error {
	if statusRank(to) < 0 || statusRank(to) < statusRank(from) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	return nil
}

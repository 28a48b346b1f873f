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

package models

import "time"

// RiskLevel is the four-band failure risk classification.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Rank orders risk levels so they can be compared.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	case RiskCritical:
		return 3
	default:
		return 0
	}
}

// FailureType is the arg-max cause of a predicted failure.
type FailureType string

const (
	FailureNone         FailureType = "none"
	FailureBattery      FailureType = "battery_depletion"
	FailureConnectivity FailureType = "connectivity_loss"
	FailurePerformance  FailureType = "performance_degradation"
	FailureSoftware     FailureType = "software_fault"
	FailureThermal      FailureType = "overheating"
	FailureWear         FailureType = "hardware_wear"
)

// MaintenanceType is the urgency class of a schedule.
type MaintenanceType string

const (
	MaintenanceRoutine    MaintenanceType = "routine"
	MaintenancePreventive MaintenanceType = "preventive"
	MaintenanceEmergency  MaintenanceType = "emergency"
)

// ScheduleStatus is the lifecycle of a maintenance schedule.
type ScheduleStatus string

const (
	ScheduleScheduled  ScheduleStatus = "scheduled"
	ScheduleInProgress ScheduleStatus = "in_progress"
	ScheduleCompleted  ScheduleStatus = "completed"
)

// DeviceHealthState is the per-device maintenance state machine position.
type DeviceHealthState string

const (
	StateHealthy   DeviceHealthState = "healthy"
	StateAtRisk    DeviceHealthState = "at_risk"
	StateScheduled DeviceHealthState = "scheduled"
	StateCompleted DeviceHealthState = "completed"
)

// HealthTelemetry is the payload of a health_analysis message. Optional
// readings are pointers so an absent sensor is distinguishable from zero.
type HealthTelemetry struct {
	Performance       float64  `json:"performanceScore"`
	SignalStability   float64  `json:"signalStability"`
	ConnectionQuality float64  `json:"connectionQuality"`
	ErrorCount        int      `json:"errorCount"`
	RestartCount      int      `json:"restartCount"`
	ConnectionDrops   int      `json:"connectionDrops"`
	Latency           float64  `json:"latency"`
	RSSI              *float64 `json:"rssi,omitempty"`
	BatteryLevel      *float64 `json:"batteryLevel,omitempty"`
	Temperature       *float64 `json:"temperature,omitempty"`
	OperatingHours    float64  `json:"operatingHours"`
	CPUUsage          float64  `json:"cpuUsage"`
	MemoryUsage       float64  `json:"memoryUsage"`
}

// HealthMetrics is one evaluation-cycle health record for a device.
type HealthMetrics struct {
	MAC               string    `json:"mac"`
	Health            float64   `json:"health"`
	DegradationRate   float64   `json:"degradationRate"`
	Performance       float64   `json:"performance"`
	SignalStability   float64   `json:"signalStability"`
	ConnectionQuality float64   `json:"connectionQuality"`
	ErrorCount        int       `json:"errorCount"`
	RestartCount      int       `json:"restartCount"`
	Timestamp         time.Time `json:"timestamp"`
}

// FailurePrediction is the current prediction for a device.
type FailurePrediction struct {
	MAC                 string      `json:"mac"`
	Probability         float64     `json:"probability"`
	TimeToFailureDays   float64     `json:"timeToFailureDays"`
	FailureType         FailureType `json:"failureType"`
	RiskLevel           RiskLevel   `json:"riskLevel"`
	ContributingFactors []string    `json:"contributingFactors"`
	RecommendedActions  []string    `json:"recommendedActions"`
	Timestamp           time.Time   `json:"timestamp"`
}

// MaintenanceSchedule is a planned maintenance action. At most one
// non-completed schedule exists per device.
type MaintenanceSchedule struct {
	ID            string          `json:"id"`
	MAC           string          `json:"mac"`
	Type          MaintenanceType `json:"type"`
	ScheduledDate time.Time       `json:"scheduledDate"`
	Priority      int             `json:"priority"`
	RequiredParts []string        `json:"requiredParts"`
	EstimatedCost float64         `json:"estimatedCost"`
	Status        ScheduleStatus  `json:"status"`
	FailureType   FailureType     `json:"failureType"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Active reports whether the schedule still blocks a new one.
func (s *MaintenanceSchedule) Active() bool {
	return s.Status != ScheduleCompleted
}

// HealthSummary aggregates the fleet's current predictions.
type HealthSummary struct {
	TotalDevices    int       `json:"totalDevices"`
	HealthyDevices  int       `json:"healthyDevices"`
	AtRiskDevices   int       `json:"atRiskDevices"`
	CriticalDevices int       `json:"criticalDevices"`
	AverageHealth   float64   `json:"averageHealth"`
	Attention       []string  `json:"devicesNeedingAttention"`
	GeneratedAt     time.Time `json:"generatedAt"`
}

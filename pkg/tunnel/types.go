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
	"encoding/json"
	"time"

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

// Message types.
const (
	MsgAgentRegister       = "agent_register"
	MsgHeartbeat           = "heartbeat"
	MsgDeviceUpdates       = "device_updates"
	MsgHealthAnalysis      = "health_analysis"
	MsgCommandResponse     = "command_response"
	MsgErrorReport         = "error_report"
	MsgDeviceCommand       = "device_command"
	MsgScanRequest         = "scan_request"
	MsgRegistrationSuccess = "registration_success"
	MsgProbe               = "probe"
	MsgPing                = "ping"
	MsgSubscribe           = "subscribe"
	MsgSubscribed          = "subscribed"
	MsgDeviceUpdatesAck    = "device_updates_ack"
	MsgError               = "error"
	MsgNewAgent            = "new_agent"
	MsgAgentDisconnected   = "agent_disconnected"
	MsgCommandResult       = "command_result"
)

const (
	ProtocolVersion = "1.0"
	ServerVersion   = "1.0.0"
)

// Message is the flat JSON envelope of every tunnel frame. Type selects
// which of the other fields are meaningful.
type Message struct {
	Type string `json:"type"`

	AgentID         string         `json:"agentId,omitempty"`
	Capabilities    []string       `json:"capabilities,omitempty"`
	SystemInfo      map[string]any `json:"systemInfo,omitempty"`
	ProtocolVersion string         `json:"protocolVersion,omitempty"`

	Updates       []models.DeviceUpdate   `json:"updates,omitempty"`
	DeviceID      string                  `json:"deviceId,omitempty"`
	TelemetryData *models.HealthTelemetry `json:"telemetryData,omitempty"`

	CommandID  string          `json:"commandId,omitempty"`
	Command    string          `json:"command,omitempty"`
	Parameters map[string]any  `json:"parameters,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	ScanType   string          `json:"scanType,omitempty"`

	Error    string         `json:"error,omitempty"`
	Severity string         `json:"severity,omitempty"`
	Context  map[string]any `json:"context,omitempty"`

	CloudVersion string   `json:"cloudVersion,omitempty"`
	Features     []string `json:"features,omitempty"`

	Targets      []string           `json:"targets,omitempty"`
	RTT          map[string]float64 `json:"rtt,omitempty"`
	PingDistance map[string]float64 `json:"pingDistance,omitempty"`

	Count int `json:"count,omitempty"`
	Data  any `json:"data,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// Config tunes the tunnel server.
type Config struct {
	LivenessWindow time.Duration
	RateLimit      float64
	RateBurst      int
	SendQueueSize  int
	WriteTimeout   time.Duration
	CommandTTL     time.Duration
	MaxMessageSize int64
	AllowedOrigins []string
	AuthToken      string
	Features       []string
}

// DefaultConfig returns the stock server configuration.
func DefaultConfig() Config {
	return Config{
		LivenessWindow: 90 * time.Second,
		RateLimit:      50,
		RateBurst:      100,
		SendQueueSize:  64,
		WriteTimeout:   10 * time.Second,
		CommandTTL:     5 * time.Minute,
		MaxMessageSize: 1 << 20,
		AllowedOrigins: []string{"*"},
		Features: []string{
			"device_updates", "health_analysis", "probe", "device_command", "scan_request",
		},
	}
}

type pendingCommand struct {
	agentID string
	command string
	sentAt  time.Time
}

// CommandResult is broadcast when an agent answers a command.
type CommandResult struct {
	CommandID string          `json:"commandId"`
	AgentID   string          `json:"agentId"`
	Command   string          `json:"command"`
	Result    json.RawMessage `json:"result,omitempty"`
}

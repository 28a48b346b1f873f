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

// AgentStatus is the lifecycle state of a tunnel connection.
type AgentStatus string

const (
	AgentConnecting   AgentStatus = "connecting"
	AgentRegistered   AgentStatus = "registered"
	AgentActive       AgentStatus = "active"
	AgentStale        AgentStatus = "stale"
	AgentDisconnected AgentStatus = "disconnected"
)

// AgentConnection describes one live agent connection.
type AgentConnection struct {
	ConnectionID    string         `json:"connectionId"`
	AgentID         string         `json:"agentId"`
	Capabilities    []string       `json:"capabilities"`
	ProtocolVersion string         `json:"protocolVersion"`
	SystemInfo      map[string]any `json:"systemInfo,omitempty"`
	ConnectedAt     time.Time      `json:"connectedAt"`
	LastHeartbeat   time.Time      `json:"lastHeartbeat"`
	Status          AgentStatus    `json:"status"`
}

// Targetable reports whether commands may be routed to the agent.
func (a *AgentConnection) Targetable() bool {
	return a.Status == AgentRegistered || a.Status == AgentActive
}

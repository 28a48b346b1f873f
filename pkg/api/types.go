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

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/mfreeman451/smartblueprint/pkg/models"
	"github.com/mfreeman451/smartblueprint/pkg/ranging"
)

// APIServer serves the REST surface and mounts the tunnel endpoint.
type APIServer struct {
	router  *mux.Router
	backend Backend
	tunnel  http.Handler
	origins []string
	started time.Time
	log     zerolog.Logger
}

// SystemStatus is the fleet overview served at /api/status.
type SystemStatus struct {
	TotalDevices  int       `json:"total_devices"`
	OnlineDevices int       `json:"online_devices"`
	Agents        int       `json:"agents"`
	ActiveAgents  int       `json:"active_agents"`
	Uptime        string    `json:"uptime"`
	LastUpdate    time.Time `json:"last_update"`
}

type measurementRequest struct {
	Samples []ranging.PingSample `json:"samples"`
	Hosts   []string             `json:"hosts"`
}

type calibrationPointRequest struct {
	X            float64            `json:"x"`
	Y            float64            `json:"y"`
	Signal       map[string]float64 `json:"signal,omitempty"`
	RTT          map[string]float64 `json:"rtt,omitempty"`
	PingDistance map[string]float64 `json:"pingDistance,omitempty"`
}

type fuseRequest struct {
	Estimates []models.LocationEstimate `json:"estimates"`
	Weights   []float64                 `json:"weights"`
}

type liveProbeRequest struct {
	Hosts      []string `json:"hosts"`
	IntervalMS int      `json:"intervalMs"`
}

type scheduleUpdateRequest struct {
	Status models.ScheduleStatus `json:"status"`
}

type commandRequest struct {
	Command    string         `json:"command"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type commandResponse struct {
	CommandID string `json:"commandId"`
	AgentID   string `json:"agentId"`
}

type errorResponse struct {
	Error string `json:"error"`
}

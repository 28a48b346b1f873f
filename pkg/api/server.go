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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/mfreeman451/smartblueprint/pkg/core"
	httpx "github.com/mfreeman451/smartblueprint/pkg/http"
	"github.com/mfreeman451/smartblueprint/pkg/logger"
	"github.com/mfreeman451/smartblueprint/pkg/maintenance"
	"github.com/mfreeman451/smartblueprint/pkg/models"
	"github.com/mfreeman451/smartblueprint/pkg/ranging"
)

const (
	maxBodyBytes = 1 << 20
	defaultLimit = 100
)

// NewAPIServer builds the router. tunnel, when non-nil, is mounted at /ws.
func NewAPIServer(backend Backend, tunnel http.Handler, allowedOrigins []string) *APIServer {
	s := &APIServer{
		router:  mux.NewRouter(),
		backend: backend,
		tunnel:  tunnel,
		origins: allowedOrigins,
		started: time.Now(),
		log:     logger.Component("api"),
	}

	s.setupRoutes()

	return s
}

func (s *APIServer) setupRoutes() {
	if s.tunnel != nil {
		s.router.Handle("/ws", s.tunnel)
	}

	r := s.router.PathPrefix("/api").Subrouter()
	r.Use(httpx.CORS(s.origins), httpx.RequestLogger)

	r.HandleFunc("/status", s.getSystemStatus).Methods(http.MethodGet)

	r.HandleFunc("/devices", s.getDevices).Methods(http.MethodGet)
	r.HandleFunc("/devices/{mac}", s.getDevice).Methods(http.MethodGet)
	r.HandleFunc("/devices/{mac}/health", s.getDeviceHealth).Methods(http.MethodGet)
	r.HandleFunc("/devices/{mac}/health/analyze", s.analyzeDeviceHealth).Methods(http.MethodPost)
	r.HandleFunc("/devices/{mac}/anomalies", s.getDeviceAnomalies).Methods(http.MethodGet)
	r.HandleFunc("/devices/{mac}/samples", s.getDeviceSamples).Methods(http.MethodGet)
	r.HandleFunc("/devices/{mac}/location", s.getDeviceLocation).Methods(http.MethodGet)
	r.HandleFunc("/health/summary", s.getHealthSummary).Methods(http.MethodGet)

	r.HandleFunc("/maintenance/predictions", s.getPredictions).Methods(http.MethodGet)
	r.HandleFunc("/maintenance/schedules", s.getSchedules).Methods(http.MethodGet)
	r.HandleFunc("/maintenance/schedules/{id}", s.getSchedule).Methods(http.MethodGet)
	r.HandleFunc("/maintenance/schedules/{id}", s.patchSchedule).Methods(http.MethodPatch)

	r.HandleFunc("/ranging/measurements", s.postMeasurements).Methods(http.MethodPost)
	r.HandleFunc("/ranging/calibration/start", s.startCalibration).Methods(http.MethodPost)
	r.HandleFunc("/ranging/calibration/points", s.addCalibrationPoint).Methods(http.MethodPost)
	r.HandleFunc("/ranging/calibration/complete", s.completeCalibration).Methods(http.MethodPost)
	r.HandleFunc("/ranging/fuse", s.fuse).Methods(http.MethodPost)
	r.HandleFunc("/ranging/anchors", s.getAnchors).Methods(http.MethodGet)
	r.HandleFunc("/ranging/anchors/{id}", s.putAnchor).Methods(http.MethodPut)
	r.HandleFunc("/ranging/live", s.startLiveProbing).Methods(http.MethodPost)
	r.HandleFunc("/ranging/live", s.stopLiveProbing).Methods(http.MethodDelete)

	r.HandleFunc("/agents", s.getAgents).Methods(http.MethodGet)
	r.HandleFunc("/agents/{id}/commands", s.postCommand).Methods(http.MethodPost)

	r.HandleFunc("/events", s.getEvents).Methods(http.MethodGet)

	// preflight requests for every api path
	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(http.ResponseWriter, *http.Request) {})
}

// ServeHTTP dispatches to the router.
func (s *APIServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *APIServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("error encoding response")
	}
}

func (s *APIServer) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *APIServer) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))

		return false
	}

	return true
}

func (s *APIServer) getSystemStatus(w http.ResponseWriter, _ *http.Request) {
	devices := s.backend.Devices()
	agents := s.backend.Agents()

	status := SystemStatus{
		TotalDevices: len(devices),
		Agents:       len(agents),
		Uptime:       time.Since(s.started).Round(time.Second).String(),
		LastUpdate:   time.Now(),
	}

	for i := range devices {
		if devices[i].Online {
			status.OnlineDevices++
		}
	}

	for i := range agents {
		if agents[i].Targetable() {
			status.ActiveAgents++
		}
	}

	s.writeJSON(w, http.StatusOK, status)
}

func (s *APIServer) getDevices(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.backend.Devices())
}

func (s *APIServer) getDevice(w http.ResponseWriter, r *http.Request) {
	mac := mux.Vars(r)["mac"]

	d, ok := s.backend.Device(mac)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("device %s not found", mac))

		return
	}

	s.writeJSON(w, http.StatusOK, d)
}

func (s *APIServer) getDeviceHealth(w http.ResponseWriter, r *http.Request) {
	mac := mux.Vars(r)["mac"]

	h, ok := s.backend.DeviceHealth(mac)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("no health data for %s", mac))

		return
	}

	s.writeJSON(w, http.StatusOK, h)
}

func (s *APIServer) analyzeDeviceHealth(w http.ResponseWriter, r *http.Request) {
	var t models.HealthTelemetry
	if !s.decode(w, r, &t) {
		return
	}

	report, err := s.backend.AnalyzeHealth(r.Context(), mux.Vars(r)["mac"], &t)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)

		return
	}

	s.writeJSON(w, http.StatusOK, report)
}

func (s *APIServer) getDeviceAnomalies(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, nonNil(s.backend.Anomalies(mux.Vars(r)["mac"])))
}

func (s *APIServer) getDeviceSamples(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, nonNil(s.backend.Samples(mux.Vars(r)["mac"])))
}

func (s *APIServer) getHealthSummary(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.backend.HealthSummary())
}

func (s *APIServer) getPredictions(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, nonNil(s.backend.Predictions()))
}

func (s *APIServer) getSchedules(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, nonNil(s.backend.Schedules()))
}

func (s *APIServer) getSchedule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	sched, ok := s.backend.Schedule(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", maintenance.ErrUnknownSchedule, id))

		return
	}

	s.writeJSON(w, http.StatusOK, sched)
}

func (s *APIServer) patchSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleUpdateRequest
	if !s.decode(w, r, &req) {
		return
	}

	switch req.Status {
	case models.ScheduleScheduled, models.ScheduleInProgress, models.ScheduleCompleted:
	default:
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("unknown schedule status %q", req.Status))

		return
	}

	sched, err := s.backend.UpdateSchedule(mux.Vars(r)["id"], req.Status)

	switch {
	case errors.Is(err, maintenance.ErrUnknownSchedule):
		s.writeError(w, http.StatusNotFound, err)
	case errors.Is(err, maintenance.ErrInvalidTransition):
		s.writeError(w, http.StatusConflict, err)
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err)
	default:
		s.writeJSON(w, http.StatusOK, sched)
	}
}

func (s *APIServer) postMeasurements(w http.ResponseWriter, r *http.Request) {
	var req measurementRequest
	if !s.decode(w, r, &req) {
		return
	}

	if len(req.Samples) > 0 {
		s.writeJSON(w, http.StatusOK, s.backend.SubmitPings(req.Samples))

		return
	}

	ms, err := s.backend.Measure(r.Context(), req.Hosts)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ranging.ErrNoHosts) {
			status = http.StatusBadRequest
		}

		s.writeError(w, status, err)

		return
	}

	s.writeJSON(w, http.StatusOK, ms)
}

func (s *APIServer) startCalibration(w http.ResponseWriter, _ *http.Request) {
	s.backend.StartCalibration()
	s.writeJSON(w, http.StatusOK, map[string]bool{"calibrating": true})
}

func (s *APIServer) addCalibrationPoint(w http.ResponseWriter, r *http.Request) {
	var req calibrationPointRequest
	if !s.decode(w, r, &req) {
		return
	}

	ok := s.backend.AddCalibrationPoint(req.X, req.Y, models.CalibrationFeatures{
		Signal:       req.Signal,
		RTT:          req.RTT,
		PingDistance: req.PingDistance,
	})
	if !ok {
		s.writeError(w, http.StatusConflict, ranging.ErrNotCalibrating)

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]bool{"added": true})
}

func (s *APIServer) completeCalibration(w http.ResponseWriter, _ *http.Request) {
	summary, err := s.backend.CompleteCalibration()
	if err != nil {
		s.writeError(w, http.StatusConflict, err)

		return
	}

	s.writeJSON(w, http.StatusOK, summary)
}

func (s *APIServer) fuse(w http.ResponseWriter, r *http.Request) {
	var req fuseRequest
	if !s.decode(w, r, &req) {
		return
	}

	est, err := s.backend.Fuse(req.Estimates, req.Weights)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)

		return
	}

	s.writeJSON(w, http.StatusOK, est)
}

func (s *APIServer) getAnchors(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, nonNil(s.backend.Anchors()))
}

func (s *APIServer) putAnchor(w http.ResponseWriter, r *http.Request) {
	var a ranging.Anchor
	if !s.decode(w, r, &a) {
		return
	}

	a.ID = mux.Vars(r)["id"]

	saved, err := s.backend.SetAnchor(a)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)

		return
	}

	s.writeJSON(w, http.StatusOK, saved)
}

func (s *APIServer) getDeviceLocation(w http.ResponseWriter, r *http.Request) {
	est, err := s.backend.Locate(mux.Vars(r)["mac"])

	switch {
	case errors.Is(err, ranging.ErrTooFewAnchors):
		s.writeError(w, http.StatusNotFound, err)
	case errors.Is(err, ranging.ErrCollinearAnchors):
		s.writeError(w, http.StatusUnprocessableEntity, err)
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err)
	default:
		s.writeJSON(w, http.StatusOK, est)
	}
}

func (s *APIServer) startLiveProbing(w http.ResponseWriter, r *http.Request) {
	var req liveProbeRequest
	if !s.decode(w, r, &req) {
		return
	}

	err := s.backend.StartLiveProbing(req.Hosts, time.Duration(req.IntervalMS)*time.Millisecond)

	switch {
	case errors.Is(err, ranging.ErrNoHosts):
		s.writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, core.ErrNotStarted):
		s.writeError(w, http.StatusServiceUnavailable, err)
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err)
	default:
		s.writeJSON(w, http.StatusAccepted, map[string]bool{"probing": true})
	}
}

func (s *APIServer) stopLiveProbing(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]bool{"stopped": s.backend.StopLiveProbing()})
}

func (s *APIServer) getAgents(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.backend.Agents())
}

func (s *APIServer) postCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if !s.decode(w, r, &req) {
		return
	}

	agentID := mux.Vars(r)["id"]

	if req.Command == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("command is required"))

		return
	}

	id, ok := s.backend.SendCommand(agentID, req.Command, req.Parameters)
	if !ok {
		// unknown, stale or congested agents are retryable
		w.Header().Set("Retry-After", "5")
		s.writeError(w, http.StatusServiceUnavailable, fmt.Errorf("agent %s is not reachable", agentID))

		return
	}

	s.writeJSON(w, http.StatusAccepted, commandResponse{CommandID: id, AgentID: agentID})
}

func (s *APIServer) getEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultLimit

	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))

			return
		}

		limit = n
	}

	events, err := s.backend.Events(r.Context(), r.URL.Query().Get("mac"), limit)

	switch {
	case errors.Is(err, core.ErrJournalDisabled):
		s.writeError(w, http.StatusNotFound, err)
	case err != nil:
		s.log.Error().Err(err).Msg("failed to read event journal")
		s.writeError(w, http.StatusInternalServerError, err)
	default:
		s.writeJSON(w, http.StatusOK, nonNil(events))
	}
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}

	return xs
}

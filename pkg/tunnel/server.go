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
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/mfreeman451/smartblueprint/pkg/logger"
	"github.com/mfreeman451/smartblueprint/pkg/models"
)

type peer struct {
	id        string
	conn      Conn
	limiter   *rate.Limiter
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	// guarded by Server.mu
	info       models.AgentConnection
	subscriber bool
}

func (p *peer) close() {
	p.closeOnce.Do(func() {
		close(p.done)
		_ = p.conn.Close()
	})
}

func (p *peer) closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// enqueue never blocks; a full queue drops the frame for this peer only.
func (p *peer) enqueue(data []byte) bool {
	if p.closed() {
		return false
	}

	select {
	case p.send <- data:
		return true
	default:
		return false
	}
}

// Server is the agent tunnel hub. It tracks one record per open
// connection, relays commands to agents and fans events out to
// subscribers.
type Server struct {
	cfg      Config
	handler  Handler
	now      func() time.Time
	log      zerolog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	peers   map[string]*peer
	agents  map[string]string // agent id -> connection id
	pending map[string]pendingCommand
}

// NewServer creates a tunnel server dispatching agent telemetry to h.
func NewServer(cfg Config, h Handler) *Server {
	def := DefaultConfig()

	if cfg.LivenessWindow <= 0 {
		cfg.LivenessWindow = def.LivenessWindow
	}

	if cfg.RateLimit <= 0 {
		cfg.RateLimit = def.RateLimit
	}

	if cfg.RateBurst <= 0 {
		cfg.RateBurst = def.RateBurst
	}

	if cfg.SendQueueSize <= 0 {
		cfg.SendQueueSize = def.SendQueueSize
	}

	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}

	if cfg.CommandTTL <= 0 {
		cfg.CommandTTL = def.CommandTTL
	}

	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = def.MaxMessageSize
	}

	if cfg.Features == nil {
		cfg.Features = def.Features
	}

	return &Server{
		cfg:     cfg,
		handler: h,
		now:     time.Now,
		log:     logger.Component("tunnel"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// origins are checked in ServeHTTP before upgrading
			CheckOrigin: func(*http.Request) bool { return true },
		},
		peers:   make(map[string]*peer),
		agents:  make(map[string]string),
		pending: make(map[string]pendingCommand),
	}
}

// RegisterConnection starts tracking conn and returns its connection id.
func (s *Server) RegisterConnection(conn Conn) string {
	now := s.now()
	id := uuid.NewString()

	p := &peer{
		id:      id,
		conn:    conn,
		limiter: rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.RateBurst),
		send:    make(chan []byte, s.cfg.SendQueueSize),
		done:    make(chan struct{}),
		info: models.AgentConnection{
			ConnectionID:  id,
			ConnectedAt:   now,
			LastHeartbeat: now,
			Status:        models.AgentConnecting,
		},
	}

	s.mu.Lock()
	s.peers[id] = p
	s.mu.Unlock()

	go s.writeLoop(p)

	s.log.Debug().Str("connection_id", id).Msg("connection opened")

	return id
}

func (s *Server) writeLoop(p *peer) {
	for {
		select {
		case <-p.done:
			return
		case data := <-p.send:
			_ = p.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))

			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.log.Debug().Err(err).Str("connection_id", p.id).Msg("write failed, closing connection")
				p.close()

				return
			}
		}
	}
}

// OnClose forgets the connection. When it belonged to a registered agent
// the other peers are told the agent disconnected.
func (s *Server) OnClose(connID string) {
	s.mu.Lock()

	p, ok := s.peers[connID]
	if !ok {
		s.mu.Unlock()

		return
	}

	delete(s.peers, connID)

	agentID := p.info.AgentID
	if agentID != "" && s.agents[agentID] == connID {
		delete(s.agents, agentID)
	} else {
		agentID = ""
	}

	s.mu.Unlock()

	p.close()

	if agentID == "" {
		s.log.Debug().Str("connection_id", connID).Msg("connection closed")

		return
	}

	s.log.Info().Str("agent_id", agentID).Msg("agent disconnected")
	s.notifyPeers(connID, &Message{Type: MsgAgentDisconnected, AgentID: agentID})
}

// Serve runs the read loop of conn until it fails or ctx ends.
func (s *Server) Serve(ctx context.Context, conn Conn) {
	id := s.RegisterConnection(conn)
	defer s.OnClose(id)

	s.mu.RLock()
	p := s.peers[id]
	s.mu.RUnlock()

	go func() {
		select {
		case <-ctx.Done():
			p.close()
		case <-p.done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !p.closed() {
				s.log.Debug().Err(err).Str("connection_id", id).Msg("read failed")
			}

			return
		}

		s.OnMessage(ctx, id, data)
	}
}

// ServeHTTP checks origin and token, then upgrades to a websocket.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !s.originAllowed(r.Header.Get("Origin")) {
		s.log.Warn().Str("origin", r.Header.Get("Origin")).Msg("rejected connection from disallowed origin")
		http.Error(w, ErrOriginDenied.Error(), http.StatusForbidden)

		return
	}

	if !s.authorized(r) {
		s.log.Warn().Str("remote", r.RemoteAddr).Msg("rejected connection with bad token")
		http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)

		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")

		return
	}

	ws.SetReadLimit(s.cfg.MaxMessageSize)

	s.Serve(r.Context(), ws)
}

func (s *Server) originAllowed(origin string) bool {
	if origin == "" {
		return true
	}

	for _, o := range s.cfg.AllowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}

	return false
}

func (s *Server) authorized(r *http.Request) bool {
	if s.cfg.AuthToken == "" {
		return true
	}

	token := r.URL.Query().Get("token")
	if h := r.Header.Get("Authorization"); token == "" && strings.HasPrefix(h, "Bearer ") {
		token = strings.TrimPrefix(h, "Bearer ")
	}

	return subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AuthToken)) == 1
}

// OnMessage dispatches one inbound frame. Malformed frames get an error
// reply and never affect other connections.
func (s *Server) OnMessage(ctx context.Context, connID string, data []byte) {
	p := s.peer(connID)
	if p == nil {
		return
	}

	if !p.limiter.Allow() {
		s.replyError(p, ErrRateLimited)

		return
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		s.replyError(p, fmt.Errorf("%w: malformed message: %w", ErrProtocol, err))

		return
	}

	s.touch(p)

	switch msg.Type {
	case MsgAgentRegister:
		s.handleRegister(p, &msg)
	case MsgHeartbeat:
		s.handleHeartbeat(p)
	case MsgDeviceUpdates:
		s.handleDeviceUpdates(ctx, p, &msg)
	case MsgHealthAnalysis:
		s.handleHealthAnalysis(ctx, p, &msg)
	case MsgCommandResponse:
		s.handleCommandResponse(p, &msg)
	case MsgErrorReport:
		s.handler.HandleErrorReport(ctx, s.agentID(p), &msg)
	case MsgProbe, MsgPing:
		s.handleProbe(ctx, p, &msg)
	case MsgSubscribe:
		s.mu.Lock()
		p.subscriber = true
		s.mu.Unlock()
		s.reply(p, &Message{Type: MsgSubscribed})
	case "":
		s.replyError(p, fmt.Errorf("%w: missing message type", ErrProtocol))
	default:
		s.replyError(p, fmt.Errorf("%w: unknown message type %q", ErrProtocol, msg.Type))
	}
}

func (s *Server) handleRegister(p *peer, msg *Message) {
	agentID := strings.TrimSpace(msg.AgentID)
	if agentID == "" {
		s.replyError(p, fmt.Errorf("%w: agentId is required", ErrProtocol))

		return
	}

	version := msg.ProtocolVersion
	if version == "" {
		version = ProtocolVersion
	}

	s.mu.Lock()

	var replaced *peer

	if oldID, ok := s.agents[agentID]; ok && oldID != p.id {
		if old := s.peers[oldID]; old != nil {
			old.info.AgentID = ""
			old.info.Status = models.AgentDisconnected
			replaced = old
		}
	}

	p.info.AgentID = agentID
	p.info.Capabilities = msg.Capabilities
	p.info.SystemInfo = msg.SystemInfo
	p.info.ProtocolVersion = version
	p.info.Status = models.AgentRegistered
	p.info.LastHeartbeat = s.now()
	s.agents[agentID] = p.id

	s.mu.Unlock()

	if replaced != nil {
		s.log.Warn().Str("agent_id", agentID).Msg("agent re-registered, closing previous connection")
		replaced.close()
	}

	s.log.Info().Str("agent_id", agentID).Strs("capabilities", msg.Capabilities).Msg("agent registered")

	s.reply(p, &Message{
		Type:         MsgRegistrationSuccess,
		AgentID:      agentID,
		CloudVersion: ServerVersion,
		Features:     s.cfg.Features,
	})

	s.notifyPeers(p.id, &Message{Type: MsgNewAgent, AgentID: agentID, Capabilities: msg.Capabilities})
}

func (s *Server) handleHeartbeat(p *peer) {
	if s.requireAgent(p) == "" {
		return
	}

	s.mu.Lock()
	p.info.Status = models.AgentActive
	s.mu.Unlock()
}

func (s *Server) handleDeviceUpdates(ctx context.Context, p *peer, msg *Message) {
	agentID := s.requireAgent(p)
	if agentID == "" {
		return
	}

	n, err := s.handler.HandleDeviceUpdates(ctx, agentID, msg.Updates)
	if err != nil {
		s.log.Warn().Err(err).Str("agent_id", agentID).Int("updates", len(msg.Updates)).Msg("device update batch rejected")
		s.replyError(p, err)

		return
	}

	s.reply(p, &Message{Type: MsgDeviceUpdatesAck, Count: n})
}

func (s *Server) handleHealthAnalysis(ctx context.Context, p *peer, msg *Message) {
	agentID := s.requireAgent(p)
	if agentID == "" {
		return
	}

	if msg.DeviceID == "" || msg.TelemetryData == nil {
		s.replyError(p, fmt.Errorf("%w: deviceId and telemetryData are required", ErrProtocol))

		return
	}

	if err := s.handler.HandleHealthAnalysis(ctx, agentID, msg.DeviceID, msg.TelemetryData); err != nil {
		s.replyError(p, err)
	}
}

func (s *Server) handleProbe(ctx context.Context, p *peer, msg *Message) {
	agentID := s.requireAgent(p)
	if agentID == "" {
		return
	}

	if err := s.handler.HandleProbe(ctx, agentID, msg); err != nil {
		s.replyError(p, err)
	}
}

func (s *Server) handleCommandResponse(p *peer, msg *Message) {
	s.mu.Lock()
	pc, ok := s.pending[msg.CommandID]
	delete(s.pending, msg.CommandID)
	s.mu.Unlock()

	if !ok {
		s.log.Warn().Str("command_id", msg.CommandID).Str("agent_id", s.agentID(p)).Msg("response for unknown command")

		return
	}

	s.Broadcast(MsgCommandResult, CommandResult{
		CommandID: msg.CommandID,
		AgentID:   pc.agentID,
		Command:   pc.command,
		Result:    msg.Result,
	})
}

// SendCommand queues a command for an agent and returns its command id.
// It reports false when the agent is unknown, stale or its queue is full;
// callers should retry later.
func (s *Server) SendCommand(agentID, command string, params map[string]any) (string, bool) {
	s.mu.Lock()

	connID, ok := s.agents[agentID]
	if !ok {
		s.mu.Unlock()
		s.log.Warn().Err(ErrUnknownAgent).Str("agent_id", agentID).Str("command", command).Msg("command not sent")

		return "", false
	}

	p := s.peers[connID]
	if p == nil || p.closed() || !p.info.Targetable() {
		s.mu.Unlock()
		s.log.Warn().Err(ErrAgentNotOpen).Str("agent_id", agentID).Str("command", command).Msg("command not sent")

		return "", false
	}

	cmdID := uuid.NewString()
	s.pending[cmdID] = pendingCommand{agentID: agentID, command: command, sentAt: s.now()}

	s.mu.Unlock()

	if !s.reply(p, commandMessage(cmdID, command, params)) {
		s.mu.Lock()
		delete(s.pending, cmdID)
		s.mu.Unlock()

		s.log.Warn().Err(ErrQueueFull).Str("agent_id", agentID).Str("command", command).Msg("command not sent")

		return "", false
	}

	s.log.Info().Str("agent_id", agentID).Str("command", command).Str("command_id", cmdID).Msg("command sent")

	return cmdID, true
}

func commandMessage(id, command string, params map[string]any) *Message {
	switch command {
	case MsgScanRequest:
		scanType, _ := params["scanType"].(string)
		if scanType == "" {
			scanType = "full"
		}

		return &Message{Type: MsgScanRequest, CommandID: id, ScanType: scanType}
	case MsgProbe, MsgPing:
		return &Message{Type: command, CommandID: id, Targets: stringList(params["targets"])}
	default:
		return &Message{Type: MsgDeviceCommand, CommandID: id, Command: command, Parameters: params}
	}
}

func stringList(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))

		for _, x := range t {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}

		return out
	case string:
		return []string{t}
	default:
		return nil
	}
}

// Broadcast sends an event to every subscriber and unregistered
// connection and returns how many peers it was queued for.
func (s *Server) Broadcast(event string, payload any) int {
	data, err := json.Marshal(&Message{Type: event, Data: payload, Timestamp: s.now()})
	if err != nil {
		s.log.Error().Err(err).Str("event", event).Msg("failed to encode broadcast")

		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sent := 0

	for _, p := range s.peers {
		if p.info.AgentID != "" && !p.subscriber {
			continue
		}

		if p.enqueue(data) {
			sent++
		} else {
			s.log.Debug().Str("connection_id", p.id).Str("event", event).Msg("send queue full, dropping broadcast")
		}
	}

	return sent
}

func (s *Server) notifyPeers(exclude string, msg *Message) {
	msg.Timestamp = s.now()

	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, p := range s.peers {
		if id != exclude {
			p.enqueue(data)
		}
	}
}

// CheckLiveness marks agents not heard from within the liveness window
// stale and prunes expired pending commands. It returns the agents that
// went stale.
func (s *Server) CheckLiveness() []string {
	now := s.now()

	s.mu.Lock()

	var stale []string

	for _, p := range s.peers {
		if p.info.AgentID == "" || !p.info.Targetable() {
			continue
		}

		if now.Sub(p.info.LastHeartbeat) > s.cfg.LivenessWindow {
			p.info.Status = models.AgentStale
			stale = append(stale, p.info.AgentID)
		}
	}

	expired := 0

	for id, pc := range s.pending {
		if now.Sub(pc.sentAt) > s.cfg.CommandTTL {
			delete(s.pending, id)
			expired++
		}
	}

	s.mu.Unlock()

	for _, id := range stale {
		s.log.Warn().Str("agent_id", id).Dur("window", s.cfg.LivenessWindow).Msg("agent is stale")
	}

	if expired > 0 {
		s.log.Info().Int("expired", expired).Msg("pruned unanswered commands")
	}

	sort.Strings(stale)

	return stale
}

// MonitorAgents runs CheckLiveness every interval until ctx is done.
func (s *Server) MonitorAgents(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CheckLiveness()
		}
	}
}

// Agents returns the registered agent connections ordered by agent id.
func (s *Server) Agents() []models.AgentConnection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.AgentConnection, 0, len(s.agents))

	for _, connID := range s.agents {
		if p := s.peers[connID]; p != nil {
			out = append(out, p.info)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].AgentID < out[j].AgentID })

	return out
}

// Agent returns the connection record of one agent.
func (s *Server) Agent(agentID string) (models.AgentConnection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p := s.peers[s.agents[agentID]]; p != nil {
		return p.info, true
	}

	return models.AgentConnection{}, false
}

// PendingCommands counts commands awaiting a response.
func (s *Server) PendingCommands() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.pending)
}

// Close drops every connection.
func (s *Server) Close() {
	s.mu.RLock()
	peers := make([]*peer, 0, len(s.peers))

	for _, p := range s.peers {
		peers = append(peers, p)
	}
	s.mu.RUnlock()

	for _, p := range peers {
		p.close()
	}
}

func (s *Server) peer(connID string) *peer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.peers[connID]
}

func (s *Server) agentID(p *peer) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return p.info.AgentID
}

// touch refreshes the liveness of a registered agent on any frame.
func (s *Server) touch(p *peer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.info.AgentID == "" {
		return
	}

	p.info.LastHeartbeat = s.now()

	if p.info.Status == models.AgentStale {
		p.info.Status = models.AgentActive
	}
}

func (s *Server) requireAgent(p *peer) string {
	id := s.agentID(p)
	if id == "" {
		s.replyError(p, ErrNotRegistered)
	}

	return id
}

func (s *Server) reply(p *peer, msg *Message) bool {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		s.log.Error().Err(err).Str("type", msg.Type).Msg("failed to encode message")

		return false
	}

	if !p.enqueue(data) {
		s.log.Debug().Str("connection_id", p.id).Str("type", msg.Type).Msg("send queue full, dropping message")

		return false
	}

	return true
}

func (s *Server) replyError(p *peer, err error) {
	sev := "warning"
	if errors.Is(err, ErrProtocol) {
		sev = "error"
	}

	s.reply(p, &Message{Type: MsgError, Error: err.Error(), Severity: sev})
}

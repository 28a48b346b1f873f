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

// Package tunnel pkg/tunnel/interfaces.go
package tunnel

import (
	"context"
	"time"

	"github.com/mfreeman451/smartblueprint/pkg/models"
)

//go:generate mockgen -destination=mock_tunnel.go -package=tunnel github.com/mfreeman451/smartblueprint/pkg/tunnel Conn,Handler

// Conn is the duplex message channel of one peer. *websocket.Conn
// satisfies it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Handler receives the telemetry agents send over the tunnel.
type Handler interface {
	// HandleDeviceUpdates applies a device_updates batch and returns how
	// many updates were applied. A rejected batch returns an error.
	HandleDeviceUpdates(ctx context.Context, agentID string, updates []models.DeviceUpdate) (int, error)
	HandleHealthAnalysis(ctx context.Context, agentID, mac string, telemetry *models.HealthTelemetry) error
	HandleProbe(ctx context.Context, agentID string, msg *Message) error
	HandleErrorReport(ctx context.Context, agentID string, msg *Message)
}

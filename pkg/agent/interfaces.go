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

// Package agent is the reference edge agent: it sweeps the local network,
// reports discovered devices over the tunnel and answers probe and scan
// commands from the core.
package agent

import "github.com/mfreeman451/smartblueprint/pkg/tunnel"

// Sender delivers a frame to the core. *tunnel.Client implements it.
type Sender interface {
	Send(msg *tunnel.Message) error
}

// NeighborFunc returns the local IP to hardware address table.
type NeighborFunc func() (map[string]string, error)

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

import "errors"

var (
	ErrProtocol      = errors.New("protocol error")
	ErrUnknownAgent  = errors.New("unknown agent")
	ErrAgentNotOpen  = errors.New("agent connection not open")
	ErrNotRegistered = errors.New("connection is not a registered agent")
	ErrRateLimited   = errors.New("rate limit exceeded")
	ErrQueueFull     = errors.New("send queue full")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrOriginDenied  = errors.New("origin not allowed")
	ErrMaxAttempts   = errors.New("reconnect attempts exhausted")
	ErrNotConnected  = errors.New("not connected")
)

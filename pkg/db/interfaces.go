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

// Package db pkg/db/interfaces.go
package db

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mock_db.go -package=db github.com/mfreeman451/smartblueprint/pkg/db Service

// Service is the event journal.
type Service interface {
	RecordEvent(ctx context.Context, event, mac string, payload []byte) error
	Events(ctx context.Context, mac string, limit int) ([]EventRecord, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Close() error
}

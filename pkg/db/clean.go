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

package db

import (
	"context"
	"fmt"
	"time"
)

// Prune deletes events older than the retention period.
func (db *DB) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := db.now().UTC().Add(-olderThan)

	res, err := db.ExecContext(ctx, "DELETE FROM events WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w events: %w", ErrFailedToClean, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w events: %w", ErrFailedToClean, err)
	}

	if n > 0 {
		db.log.Info().Int64("removed", n).Dur("retention", olderThan).Msg("pruned event journal")
	}

	return n, nil
}

package store

import (
	"context"
	"fmt"
	"time"
)

// RecordAccess appends one row to the authoritative access log. The
// façade is the only caller permitted to write this; in-memory
// access_count on the memory row is a cache derived from this log.
func (s *SQLiteStore) RecordAccess(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO access_log (memory_id, accessed_at) VALUES (?, ?)`, id, at)
	if err != nil {
		return fmt.Errorf("store: record access: %w", err)
	}
	return nil
}

// GetAccessTimes returns every access_log timestamp for id, oldest first.
// Used by pkg/activation to compute base-level activation.
func (s *SQLiteStore) GetAccessTimes(ctx context.Context, id string) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT accessed_at FROM access_log WHERE memory_id = ? ORDER BY accessed_at ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("store: get access times: %w", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("store: get access times: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

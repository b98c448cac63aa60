package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// StrengthenLink writes directed links a->b and b->a, incrementing
// strength (capped at ceiling) and coactivation_count, inserting at
// strength=1.0 if no row exists yet.
func (s *SQLiteStore) StrengthenLink(ctx context.Context, a, b string, ceiling float64) error {
	if a == b {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: strengthen link: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, pair := range [][2]string{{a, b}, {b, a}} {
		if err := strengthenOne(ctx, tx, pair[0], pair[1], ceiling, now); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: strengthen link: %w", err)
	}
	return nil
}

func strengthenOne(ctx context.Context, tx *sql.Tx, source, target string, ceiling float64, now time.Time) error {
	var strength float64
	err := tx.QueryRowContext(ctx, `SELECT strength FROM hebbian_links WHERE source_id = ? AND target_id = ?`, source, target).Scan(&strength)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, `INSERT INTO hebbian_links (source_id, target_id, strength, coactivation_count, created_at) VALUES (?, ?, 1.0, 1, ?)`,
			source, target, now)
		if err != nil {
			return fmt.Errorf("store: strengthen link: insert: %w", err)
		}
	case err != nil:
		return fmt.Errorf("store: strengthen link: select: %w", err)
	default:
		newStrength := strength + 1
		if newStrength > ceiling {
			newStrength = ceiling
		}
		_, err = tx.ExecContext(ctx, `UPDATE hebbian_links SET strength = ?, coactivation_count = coactivation_count + 1 WHERE source_id = ? AND target_id = ?`,
			newStrength, source, target)
		if err != nil {
			return fmt.Errorf("store: strengthen link: update: %w", err)
		}
	}
	return nil
}

// GetHebbianNeighbors returns links out of id sorted by descending
// strength, limited to k (k<=0 means unlimited).
func (s *SQLiteStore) GetHebbianNeighbors(ctx context.Context, id string, k int) ([]HebbianLink, error) {
	q := `SELECT source_id, target_id, strength, coactivation_count, created_at
		FROM hebbian_links WHERE source_id = ? ORDER BY strength DESC`
	args := []any{id}
	if k > 0 {
		q += ` LIMIT ?`
		args = append(args, k)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: get hebbian neighbors: %w", err)
	}
	defer rows.Close()

	var out []HebbianLink
	for rows.Next() {
		var l HebbianLink
		if err := rows.Scan(&l.SourceID, &l.TargetID, &l.Strength, &l.CoactivationCount, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: get hebbian neighbors: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

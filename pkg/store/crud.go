package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tonitangpotato/engram-ai/internal/encoding"
)

// ErrNotFound is returned by Get/Update/Delete when the id does not exist.
var ErrNotFound = errors.New("store: not found")

func (s *SQLiteStore) Add(ctx context.Context, r *Record) error {
	ctxJSON, err := encoding.EncodeMetadata(r.Context)
	if err != nil {
		return fmt.Errorf("store: add: encode context: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO memories (
			id, content, memory_type, layer, importance, working_strength, core_strength,
			access_count, consolidation_count, created_at, last_accessed, last_consolidated,
			pinned, context, vector, contradicts, contradicted_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''))`,
		r.ID, r.Content, r.MemoryType, r.Layer, r.Importance, r.WorkingStrength, r.CoreStrength,
		r.AccessCount, r.ConsolidationCount, r.CreatedAt, r.LastAccessed, nullTime(r.LastConsolidated),
		r.Pinned, ctxJSON, encodeVector(r.Vector), r.Contradicts, r.ContradictedBy,
	)
	if err != nil {
		return fmt.Errorf("store: add: %w", err)
	}
	if r.Contradicts != "" {
		if _, err := s.db.ExecContext(ctx, `UPDATE memories SET contradicted_by = ? WHERE id = ?`, r.ID, r.Contradicts); err != nil {
			return fmt.Errorf("store: add: link contradiction: %w", err)
		}
	}
	if s.semantic != nil && len(r.Vector) > 0 {
		if err := s.semantic.Upsert(r.ID, r.Vector); err != nil {
			return fmt.Errorf("store: add: semantic index: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, content, memory_type, layer, importance, working_strength, core_strength,
			access_count, consolidation_count, created_at, last_accessed, last_consolidated,
			pinned, context, vector, COALESCE(contradicts, ''), COALESCE(contradicted_by, '')
		FROM memories WHERE id = ?`, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get: %w", err)
	}
	return r, nil
}

func (s *SQLiteStore) Update(ctx context.Context, r *Record) error {
	ctxJSON, err := encoding.EncodeMetadata(r.Context)
	if err != nil {
		return fmt.Errorf("store: update: encode context: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE memories SET
			content = ?, memory_type = ?, layer = ?, importance = ?, working_strength = ?,
			core_strength = ?, access_count = ?, consolidation_count = ?, last_accessed = ?,
			last_consolidated = ?, pinned = ?, context = ?, vector = ?,
			contradicts = NULLIF(?, ''), contradicted_by = NULLIF(?, '')
		WHERE id = ?`,
		r.Content, r.MemoryType, r.Layer, r.Importance, r.WorkingStrength,
		r.CoreStrength, r.AccessCount, r.ConsolidationCount, r.LastAccessed,
		nullTime(r.LastConsolidated), r.Pinned, ctxJSON, encodeVector(r.Vector),
		r.Contradicts, r.ContradictedBy, r.ID,
	)
	if err != nil {
		return fmt.Errorf("store: update: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	if s.semantic != nil && len(r.Vector) > 0 {
		if err := s.semantic.Upsert(r.ID, r.Vector); err != nil {
			return fmt.Errorf("store: update: semantic index: %w", err)
		}
	}
	return nil
}

// Delete removes the row and cascades: access-log rows, graph-links, and
// Hebbian links in both directions are removed via ON DELETE CASCADE;
// contradicts/contradicted_by back-references on other endpoints are
// cleared via ON DELETE SET NULL (see schema).
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	if s.semantic != nil {
		s.semantic.Delete(id)
	}
	return nil
}

func (s *SQLiteStore) All(ctx context.Context, includeArchive bool) ([]*Record, error) {
	q := `SELECT id, content, memory_type, layer, importance, working_strength, core_strength,
			access_count, consolidation_count, created_at, last_accessed, last_consolidated,
			pinned, context, vector, COALESCE(contradicts, ''), COALESCE(contradicted_by, '')
		FROM memories`
	if !includeArchive {
		q += ` WHERE layer != 'L4_archive'`
	}
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("store: all: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var r Record
	var ctxJSON string
	var vec []byte
	var lastConsolidated sql.NullTime
	err := row.Scan(
		&r.ID, &r.Content, &r.MemoryType, &r.Layer, &r.Importance, &r.WorkingStrength, &r.CoreStrength,
		&r.AccessCount, &r.ConsolidationCount, &r.CreatedAt, &r.LastAccessed, &lastConsolidated,
		&r.Pinned, &ctxJSON, &vec, &r.Contradicts, &r.ContradictedBy,
	)
	if err != nil {
		return nil, err
	}
	if lastConsolidated.Valid {
		r.LastConsolidated = lastConsolidated.Time
	}
	r.Context, err = encoding.DecodeMetadata(ctxJSON)
	if err != nil {
		return nil, err
	}
	r.Vector = decodeVector(vec)
	return &r, nil
}

func scanRecords(rows *sql.Rows) ([]*Record, error) {
	var out []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

package store

import (
	"context"
	"fmt"
	"strings"
)

// ftsMetaChars are stripped before a query reaches SQLite's FTS5 parser;
// left in, any of them would make MATCH return a syntax error instead of
// sanitizing client input (spec: "core MUST sanitize, never propagate").
const ftsMetaChars = `?*-'",`

// stopWords are dropped from a query before building the OR expression so
// that "the" or "and" don't swamp ranking with noise matches.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"to": true, "in": true, "on": true, "is": true, "it": true, "for": true,
	"with": true, "as": true, "at": true, "by": true, "this": true, "that": true,
}

// Sanitize strips FTS meta-characters and stop-words from a raw query and
// returns the surviving lowercased tokens. An empty result means the
// caller should fall back to a non-archive full scan.
func Sanitize(query string) []string {
	stripped := strings.Map(func(r rune) rune {
		if strings.ContainsRune(ftsMetaChars, r) {
			return ' '
		}
		return r
	}, query)

	var tokens []string
	for _, tok := range strings.Fields(strings.ToLower(stripped)) {
		if stopWords[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// BuildFTSQuery joins sanitized tokens with OR semantics for FTS5's MATCH
// operator. Returns "" when tokens is empty.
func BuildFTSQuery(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = `"` + t + `"`
	}
	return strings.Join(quoted, " OR ")
}

// SearchFTS runs query (already sanitized; see Sanitize/BuildFTSQuery)
// against the memories_fts virtual table, joining back to memories for the
// full record. query == "" returns no rows — callers fall back to All.
func (s *SQLiteStore) SearchFTS(ctx context.Context, query string, limit int) ([]*Record, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	q := `
		SELECT m.id, m.content, m.memory_type, m.layer, m.importance, m.working_strength, m.core_strength,
			m.access_count, m.consolidation_count, m.created_at, m.last_accessed, m.last_consolidated,
			m.pinned, m.context, m.vector, COALESCE(m.contradicts, ''), COALESCE(m.contradicted_by, '')
		FROM memories_fts
		JOIN memories m ON m.rowid = memories_fts.rowid
		WHERE memories_fts MATCH ?
		ORDER BY rank`
	args := []any{query}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: search fts: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

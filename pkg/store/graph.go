package store

import (
	"context"
	"fmt"
)

// AddGraphLink writes one (memory, entity, relation) occurrence. The host
// extracts entities; core never does.
func (s *SQLiteStore) AddGraphLink(ctx context.Context, link GraphLink) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO graph_links (memory_id, node_id, relation) VALUES (?, ?, ?)`,
		link.MemoryID, link.NodeID, link.Relation)
	if err != nil {
		return fmt.Errorf("store: add graph link: %w", err)
	}
	return nil
}

// SearchByEntity returns every memory id with a graph_links row for entity.
func (s *SQLiteStore) SearchByEntity(ctx context.Context, entity string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT memory_id FROM graph_links WHERE node_id = ?`, entity)
	if err != nil {
		return nil, fmt.Errorf("store: search by entity: %w", err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

// GetEntities returns every node_id linked to memoryID.
func (s *SQLiteStore) GetEntities(ctx context.Context, memoryID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT node_id FROM graph_links WHERE memory_id = ?`, memoryID)
	if err != nil {
		return nil, fmt.Errorf("store: get entities: %w", err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

// GetRelatedEntities does a breadth-first walk of the implicit bipartite
// entity-memory-entity graph starting from entity, capped at hops. The
// queue-and-visited-set shape mirrors a plain graph BFS: each hop widens
// from entities to the memories that mention them, then back out to the
// entities those memories also mention.
func (s *SQLiteStore) GetRelatedEntities(ctx context.Context, entity string, hops int) ([]string, error) {
	if hops < 1 {
		hops = 1
	}
	visitedEntities := map[string]bool{entity: true}
	frontier := []string{entity}
	var related []string

	for hop := 0; hop < hops; hop++ {
		var nextFrontier []string
		for _, e := range frontier {
			memIDs, err := s.SearchByEntity(ctx, e)
			if err != nil {
				return nil, err
			}
			for _, mid := range memIDs {
				neighbors, err := s.GetEntities(ctx, mid)
				if err != nil {
					return nil, err
				}
				for _, n := range neighbors {
					if visitedEntities[n] {
						continue
					}
					visitedEntities[n] = true
					related = append(related, n)
					nextFrontier = append(nextFrontier, n)
				}
			}
		}
		frontier = nextFrontier
		if len(frontier) == 0 {
			break
		}
	}
	return related, nil
}

func scanStrings(rows interface{ Next() bool; Scan(...any) error; Err() error }) ([]string, error) {
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

package store

import (
	"context"
	"math"
	"sync"
)

// SemanticIndex is the optional fourth retrieval channel. It is populated
// incrementally as vectors are added and never participates in ranking
// directly; it only widens the recall candidate set with
// cosine-similarity neighbors activation's FTS probe would miss.
//
// Embedded corpora attached to a single engram store rarely carry enough
// vectors to justify an approximate-nearest-neighbor graph, so this scans
// the full set rather than maintaining one; Search scores every vector
// currently upserted and insertion-sorts the scores, so its cost grows
// quadratically with that count in the worst case.
type SemanticIndex struct {
	mu   sync.RWMutex
	flat map[string][]float32
}

// NewSemanticIndex builds an empty index.
func NewSemanticIndex() *SemanticIndex {
	return &SemanticIndex{
		flat: make(map[string][]float32),
	}
}

// cosineDistance turns cosine similarity into a distance (smaller=closer).
func cosineDistance(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return float32(1 - sim)
}

func (si *SemanticIndex) Upsert(id string, vector []float32) error {
	if len(vector) == 0 {
		return nil
	}
	si.mu.Lock()
	defer si.mu.Unlock()
	si.flat[id] = vector
	return nil
}

func (si *SemanticIndex) Delete(id string) error {
	si.mu.Lock()
	defer si.mu.Unlock()
	delete(si.flat, id)
	return nil
}

func (si *SemanticIndex) Search(query []float32, k int) []string {
	si.mu.RLock()
	defer si.mu.RUnlock()
	if len(query) == 0 || k <= 0 {
		return nil
	}
	return si.flatSearch(query, k)
}

func (si *SemanticIndex) flatSearch(query []float32, k int) []string {
	type scored struct {
		id   string
		dist float32
	}
	candidates := make([]scored, 0, len(si.flat))
	for id, v := range si.flat {
		candidates = append(candidates, scored{id, cosineDistance(query, v)})
	}
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].dist < candidates[j-1].dist; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.id
	}
	return out
}

// SQLiteStore.SearchSemantic satisfies the Store interface; the in-process
// SemanticIndex is attached separately via SQLiteStore.AttachSemanticIndex
// since it is an in-memory structure, not a SQL concern.
func (s *SQLiteStore) SearchSemantic(ctx context.Context, vector []float32, k int) ([]string, error) {
	if s.semantic == nil {
		return nil, nil
	}
	return s.semantic.Search(vector, k), nil
}

// AttachSemanticIndex enables the optional channel and backfills it from
// every row already carrying a vector.
func (s *SQLiteStore) AttachSemanticIndex(ctx context.Context) error {
	idx := NewSemanticIndex()
	records, err := s.All(ctx, true)
	if err != nil {
		return err
	}
	for _, r := range records {
		if len(r.Vector) > 0 {
			if err := idx.Upsert(r.ID, r.Vector); err != nil {
				return err
			}
		}
	}
	s.semantic = idx
	return nil
}

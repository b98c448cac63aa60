// Package store implements the persistence contract memory dynamics are
// built on: CRUD over memory records, full-text search, an append-only
// access log, an entity-graph table, and a Hebbian-link table. Core logic
// (pkg/activation, pkg/forgetting, pkg/consolidation, ...) depends only on
// the Store interface, never on SQLiteStore directly.
package store

import (
	"context"
	"time"
)

// Record is the backend-agnostic row shape of the memories table. The
// façade package converts to/from its own MemoryEntry at the boundary.
type Record struct {
	ID                 string
	Content            string
	MemoryType         string
	Layer              string
	Importance         float64
	WorkingStrength    float64
	CoreStrength       float64
	AccessCount        int
	ConsolidationCount int
	CreatedAt          time.Time
	LastAccessed       time.Time
	LastConsolidated   time.Time
	Pinned             bool
	Contradicts        string
	ContradictedBy     string
	Context            map[string]string
	Vector             []float32
}

// GraphLink is one (memory, entity, relation) occurrence.
type GraphLink struct {
	MemoryID string
	NodeID   string
	Relation string
}

// HebbianLink is one directed co-activation edge.
type HebbianLink struct {
	SourceID          string
	TargetID          string
	Strength          float64
	CoactivationCount int
	CreatedAt         time.Time
}

// Store is the persistence contract. A backend must provide CRUD, a
// sanitized-OR-of-keywords full-text search, an append-only access log,
// an entity-graph table, and a Hebbian-link table.
type Store interface {
	Add(ctx context.Context, r *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	Update(ctx context.Context, r *Record) error
	Delete(ctx context.Context, id string) error
	All(ctx context.Context, includeArchive bool) ([]*Record, error)

	// SearchFTS runs a sanitized OR-of-keywords query. query is assumed
	// already sanitized by the caller (the façade, via Sanitize and
	// BuildFTSQuery); limit<=0 means unbounded.
	SearchFTS(ctx context.Context, query string, limit int) ([]*Record, error)

	RecordAccess(ctx context.Context, id string, at time.Time) error
	GetAccessTimes(ctx context.Context, id string) ([]time.Time, error)

	AddGraphLink(ctx context.Context, link GraphLink) error
	SearchByEntity(ctx context.Context, entity string) ([]string, error) // memory ids
	GetEntities(ctx context.Context, memoryID string) ([]string, error)
	GetRelatedEntities(ctx context.Context, entity string, hops int) ([]string, error)

	StrengthenLink(ctx context.Context, a, b string, ceiling float64) error
	GetHebbianNeighbors(ctx context.Context, id string, k int) ([]HebbianLink, error)

	// SearchSemantic is only meaningful when the semantic channel is
	// enabled; backends without vector support return an empty slice.
	SearchSemantic(ctx context.Context, vector []float32, k int) ([]string, error)

	Close() error
	Export(path string) error
}

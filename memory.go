package engram

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tonitangpotato/engram-ai/pkg/anomaly"
	"github.com/tonitangpotato/engram-ai/pkg/session"
	"github.com/tonitangpotato/engram-ai/pkg/store"
)

// Memory is the façade: it owns the Store, the session-WM registry, and
// the anomaly tracker, and enforces ordering between writes, access-log
// appends, and link updates.
//
// Locking: mutating operations (Add, Consolidate, Reward, Forget, Prune,
// Downscale, Pin/Unpin, Delete) take the write lock for their whole
// body, as does SessionRecall, which updates the session registry.
// Recall/Get/Stats take the read lock.
type Memory struct {
	mu       sync.RWMutex
	store    store.Store
	cfg      *Config
	logger   Logger
	sessions *session.Registry
	anomaly  *anomaly.Tracker
	rng      *rand.Rand
}

// Open opens (or creates) the embedded store at cfg.Path and returns a
// ready Memory façade.
func Open(ctx context.Context, cfg *Config) (*Memory, error) {
	return OpenWithLogger(ctx, cfg, NopLogger(), nil)
}

// OpenWithLogger is Open with an explicit Logger and (optional)
// Prometheus registerer for the anomaly tracker's metric export.
func OpenWithLogger(ctx context.Context, cfg *Config, logger Logger, reg prometheus.Registerer) (*Memory, error) {
	if cfg == nil {
		return nil, invalidInput("Open", "config must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = NopLogger()
	}

	sqliteLogger := storeLoggerAdapter{logger}
	db, err := store.Open(ctx, cfg.Path, sqliteLogger)
	if err != nil {
		return nil, wrapError("Open", err)
	}
	if cfg.EnableSemanticChannel {
		if err := db.AttachSemanticIndex(ctx); err != nil {
			db.Close()
			return nil, wrapError("Open", err)
		}
	}

	m := &Memory{
		store:    db,
		cfg:      cfg,
		logger:   logger,
		sessions: session.NewRegistry(cfg.SessionCapacity, time.Duration(cfg.SessionDecay*float64(time.Second))),
		anomaly:  anomaly.NewTracker(cfg.AnomalyWindow, reg),
		rng:      rand.New(rand.NewSource(1)),
	}
	return m, nil
}

// storeLoggerAdapter narrows engram.Logger to pkg/store's Logger surface.
type storeLoggerAdapter struct{ Logger }

// trackedMetrics are the operational metrics the façade feeds to the
// anomaly tracker; Stats reports a baseline for each one the tracker has
// seen at least one sample of.
var trackedMetrics = []string{
	"add_importance",
	"recall_latency_ms",
	"recall_result_count",
	"consolidate_duration_ms",
	"consolidate_promoted",
	"prune_count",
	"reward_confidence",
}

// observeMetric feeds value to the anomaly tracker under the configured
// sigma/min-samples thresholds.
func (m *Memory) observeMetric(metric string, value float64) {
	m.anomaly.Observe(metric, value, m.cfg.AnomalySigma, m.cfg.AnomalyMinSamples)
}

// Add creates a new L3_working entry with working_strength=1.0,
// core_strength=0.0, created_at=now, and writes one access-log row. If
// Contradicts is set, the referenced memory's contradicted_by is updated
// (bidirectional edge), enforced by the Store's Add implementation.
func (m *Memory) Add(ctx context.Context, in AddInput) (string, error) {
	if in.Content == "" {
		return "", invalidInput("Add", "content must not be empty")
	}
	memType := in.MemoryType
	if memType == "" {
		memType = TypeFactual
	}
	if !validMemoryTypes[memType] {
		return "", invalidInput("Add", "unknown memory type "+string(memType))
	}
	importance := in.Importance
	if importance < 0 || importance > 1 {
		return "", invalidInput("Add", "importance must be in [0,1]")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	id := uuid.New().String()
	rec := &store.Record{
		ID:              id,
		Content:         in.Content,
		MemoryType:      string(memType),
		Layer:           string(LayerWorking),
		Importance:      importance,
		WorkingStrength: 1.0,
		CoreStrength:    0.0,
		AccessCount:     1,
		CreatedAt:       now,
		LastAccessed:    now,
		Pinned:          in.Pinned,
		Contradicts:     in.Contradicts,
		Context:         in.Context,
		Vector:          in.Vector,
	}
	if err := m.store.Add(ctx, rec); err != nil {
		return "", wrapError("Add", err)
	}
	if err := m.store.RecordAccess(ctx, id, now); err != nil {
		return "", wrapError("Add", err)
	}
	m.observeMetric("add_importance", importance)
	return id, nil
}

// Get returns the memory for id, or ErrNotFound.
func (m *Memory) Get(ctx context.Context, id string) (*MemoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, translateStoreErr("Get", id, err)
	}
	entry := fromRecord(rec)
	return &entry, nil
}

// Pin marks an entry pinned, exempting it from decay/archival/suppression/
// downscaling, and immediately places it in L2_core (the invariant
// pinned ⇒ layer ∈ {L2_core} holds after any rebalance, but Pin applies
// it eagerly rather than waiting for the next consolidation cycle).
func (m *Memory) Pin(ctx context.Context, id string) error {
	return m.setPinned(ctx, id, true)
}

// Unpin clears the pin; the entry remains in its current layer until the
// next consolidation/forgetting cycle re-evaluates it.
func (m *Memory) Unpin(ctx context.Context, id string) error {
	return m.setPinned(ctx, id, false)
}

func (m *Memory) setPinned(ctx context.Context, id string, pinned bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.store.Get(ctx, id)
	if err != nil {
		return translateStoreErr("Pin", id, err)
	}
	rec.Pinned = pinned
	if pinned {
		rec.Layer = string(LayerCore)
	}
	if err := m.store.Update(ctx, rec); err != nil {
		return wrapError("Pin", err)
	}
	return nil
}

// Delete removes the row and cascades: access-log rows, graph-links,
// Hebbian links in both directions, and contradiction back-references
// (enforced by the Store's schema).
func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Delete(ctx, id); err != nil {
		return translateStoreErr("Delete", id, err)
	}
	return nil
}

// LinkContradiction records a directed contradiction edge between two
// existing memories. Add's Contradicts field only covers the
// creation-time path; this covers the retroactive one.
func (m *Memory) LinkContradiction(ctx context.Context, a, b string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	recA, err := m.store.Get(ctx, a)
	if err != nil {
		return translateStoreErr("LinkContradiction", a, err)
	}
	recB, err := m.store.Get(ctx, b)
	if err != nil {
		return translateStoreErr("LinkContradiction", b, err)
	}
	recA.ContradictedBy = b
	recB.Contradicts = a
	if err := m.store.Update(ctx, recA); err != nil {
		return wrapError("LinkContradiction", err)
	}
	if err := m.store.Update(ctx, recB); err != nil {
		return wrapError("LinkContradiction", err)
	}
	return nil
}

// Stats summarizes the store for host dashboards.
func (m *Memory) Stats(ctx context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records, err := m.store.All(ctx, true)
	if err != nil {
		return nil, wrapError("Stats", err)
	}
	out := &Stats{CountsByLayer: map[Layer]int{}, AnomalyMetrics: map[string]AnomalySummary{}}
	var totalWorking, totalCore float64
	for _, r := range records {
		out.CountsByLayer[Layer(r.Layer)]++
		totalWorking += r.WorkingStrength
		totalCore += r.CoreStrength
	}
	if len(records) > 0 {
		out.AvgWorking = totalWorking / float64(len(records))
		out.AvgCore = totalCore / float64(len(records))
	}
	for _, id := range records {
		neighbors, err := m.store.GetHebbianNeighbors(ctx, id.ID, 0)
		if err == nil {
			out.HebbianCount += len(neighbors)
		}
	}
	for _, metric := range trackedMetrics {
		baseline := m.anomaly.GetBaseline(metric)
		if baseline.N == 0 {
			continue
		}
		out.AnomalyMetrics[metric] = AnomalySummary{
			Mean:      baseline.Mean,
			StdDev:    baseline.StdDev,
			Samples:   baseline.N,
			Anomalous: baseline.Anomalous,
		}
	}
	return out, nil
}

// Close flushes and invalidates the façade; it is the only operation
// permitted after all other in-flight operations have returned.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Close()
}

// Export copies the backing database file to path.
func (m *Memory) Export(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store.Export(path)
}

// ClearSession removes a session's working-memory set from the registry.
func (m *Memory) ClearSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions.ClearSession(sessionID)
}

// ListSessions returns every known session id in the registry.
func (m *Memory) ListSessions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions.ListSessions()
}

func translateStoreErr(op, id string, err error) error {
	if err == store.ErrNotFound {
		return notFound(op, id)
	}
	return wrapError(op, err)
}

func fromRecord(r *store.Record) MemoryEntry {
	return MemoryEntry{
		ID:                 r.ID,
		Content:             r.Content,
		MemoryType:          MemoryType(r.MemoryType),
		Layer:               Layer(r.Layer),
		Importance:          r.Importance,
		WorkingStrength:     r.WorkingStrength,
		CoreStrength:        r.CoreStrength,
		AccessCount:         r.AccessCount,
		ConsolidationCount:  r.ConsolidationCount,
		CreatedAt:           r.CreatedAt,
		LastAccessed:        r.LastAccessed,
		LastConsolidated:    r.LastConsolidated,
		Pinned:              r.Pinned,
		Contradicts:         r.Contradicts,
		ContradictedBy:      r.ContradictedBy,
		Context:             r.Context,
		Vector:              r.Vector,
	}
}

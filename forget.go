package engram

import (
	"context"
	"time"

	"github.com/tonitangpotato/engram-ai/pkg/forgetting"
)

// Forget moves id to L4_archive without deleting its content; a no-op if
// it is already archived. Returns ErrNotFound if id doesn't exist.
func (m *Memory) Forget(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.store.Get(ctx, id)
	if err != nil {
		return translateStoreErr("Forget", id, err)
	}
	if rec.Layer == string(LayerArchive) {
		return nil
	}
	rec.Layer = string(LayerArchive)
	if err := m.store.Update(ctx, rec); err != nil {
		return wrapError("Forget", err)
	}
	return nil
}

// Prune moves every non-pinned, non-archived entry whose effective
// strength has fallen below threshold into L4_archive, and returns the
// ids moved.
func (m *Memory) Prune(ctx context.Context, threshold float64) ([]string, error) {
	if threshold < 0 {
		threshold = 0.01
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	all, err := m.store.All(ctx, false)
	if err != nil {
		return nil, wrapError("Prune", err)
	}

	now := time.Now()
	var pruned []string
	for _, r := range all {
		tDays := forgetting.TDays(now, r.LastAccessed, r.CreatedAt)
		baseDecay := m.cfg.DecayRates[MemoryType(r.MemoryType)]
		stability := forgetting.Stability(baseDecay, r.AccessCount, r.ConsolidationCount, r.Importance)
		effective := forgetting.EffectiveStrength(r.WorkingStrength, r.CoreStrength, forgetting.Retrievability(tDays, stability))

		if !forgetting.ShouldForget(r.Pinned, effective, threshold) {
			continue
		}
		r.Layer = string(LayerArchive)
		if err := m.store.Update(ctx, r); err != nil {
			return nil, wrapError("Prune", err)
		}
		pruned = append(pruned, r.ID)
	}
	m.observeMetric("prune_count", float64(len(pruned)))
	return pruned, nil
}

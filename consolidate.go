package engram

import (
	"context"
	"time"

	"github.com/tonitangpotato/engram-ai/pkg/consolidation"
	"github.com/tonitangpotato/engram-ai/pkg/store"
)

// Consolidate runs one Memory-Chain consolidation cycle: steps every
// L3_working entry, interleaves replay of a random sample of L4_archive
// entries, decays L2_core entries, and rebalances layers.
func (m *Memory) Consolidate(ctx context.Context, opts ConsolidateOptions) (*ConsolidateStats, error) {
	dt := opts.DtDays
	if dt <= 0 {
		dt = 1.0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()

	all, err := m.store.All(ctx, true)
	if err != nil {
		return nil, wrapError("Consolidate", err)
	}

	now := time.Now()
	stats := &ConsolidateStats{}
	var archiveIDs []string
	for _, r := range all {
		if r.Layer == string(LayerArchive) {
			archiveIDs = append(archiveIDs, r.ID)
		}
	}

	for _, r := range all {
		if r.Pinned {
			continue
		}
		switch Layer(r.Layer) {
		case LayerWorking:
			r.WorkingStrength, r.CoreStrength = consolidation.Step(
				r.WorkingStrength, r.CoreStrength, r.Importance, m.cfg.Alpha, m.cfg.Mu1, m.cfg.Mu2, dt)
			r.ConsolidationCount++
			r.LastConsolidated = now
			stats.Stepped++
			if err := m.store.Update(ctx, r); err != nil {
				return nil, wrapError("Consolidate", err)
			}
		case LayerCore:
			r.CoreStrength = consolidation.DecayCoreOnly(r.CoreStrength, m.cfg.Mu2, dt)
			if err := m.store.Update(ctx, r); err != nil {
				return nil, wrapError("Consolidate", err)
			}
		}
	}

	replaySample := consolidation.SampleReplaySet(m.rng, archiveIDs, m.cfg.InterleaveRatio)
	byID := make(map[string]*store.Record, len(all))
	for _, r := range all {
		byID[r.ID] = r
	}
	for _, id := range replaySample {
		r := byID[id]
		if r == nil || r.Pinned {
			continue
		}
		r.CoreStrength += consolidation.ReplayBoostFor(m.cfg.ReplayBoost, r.Importance)
		r.ConsolidationCount++
		r.LastConsolidated = now
		stats.Replayed++
		if err := m.store.Update(ctx, r); err != nil {
			return nil, wrapError("Consolidate", err)
		}
	}

	for _, r := range all {
		if r.Pinned {
			if r.Layer != string(LayerCore) {
				r.Layer = string(LayerCore)
				if err := m.store.Update(ctx, r); err != nil {
					return nil, wrapError("Consolidate", err)
				}
			}
			continue
		}
		switch Layer(r.Layer) {
		case LayerWorking:
			switch consolidation.RebalanceWorking(r.WorkingStrength, r.CoreStrength, m.cfg.PromoteThreshold, m.cfg.ArchiveThreshold) {
			case consolidation.PromoteCore:
				r.Layer = string(LayerCore)
				stats.Promoted++
				if err := m.store.Update(ctx, r); err != nil {
					return nil, wrapError("Consolidate", err)
				}
			case consolidation.ArchiveEntry:
				r.Layer = string(LayerArchive)
				stats.Archived++
				if err := m.store.Update(ctx, r); err != nil {
					return nil, wrapError("Consolidate", err)
				}
			}
		case LayerCore:
			if consolidation.RebalanceCore(r.WorkingStrength, r.CoreStrength, m.cfg.DemoteThreshold) == consolidation.ArchiveEntry {
				r.Layer = string(LayerArchive)
				stats.Demoted++
				if err := m.store.Update(ctx, r); err != nil {
					return nil, wrapError("Consolidate", err)
				}
			}
		}
	}

	m.observeMetric("consolidate_duration_ms", float64(time.Since(start).Milliseconds()))
	m.observeMetric("consolidate_promoted", float64(stats.Promoted))

	return stats, nil
}

// Downscale multiplies every non-pinned entry's strengths by factor,
// bounding unconstrained reward/replay growth. Callable independently of
// a consolidation cycle.
func (m *Memory) Downscale(ctx context.Context, factor float64) error {
	if factor <= 0 || factor > 1 {
		return wrapError("Downscale", ErrConfigError)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	all, err := m.store.All(ctx, true)
	if err != nil {
		return wrapError("Downscale", err)
	}
	for _, r := range all {
		if r.Pinned {
			continue
		}
		r.WorkingStrength, r.CoreStrength = consolidation.Downscale(r.WorkingStrength, r.CoreStrength, factor)
		if err := m.store.Update(ctx, r); err != nil {
			return wrapError("Downscale", err)
		}
	}
	return nil
}

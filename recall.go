package engram

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tonitangpotato/engram-ai/pkg/activation"
	"github.com/tonitangpotato/engram-ai/pkg/confidence"
	"github.com/tonitangpotato/engram-ai/pkg/forgetting"
	"github.com/tonitangpotato/engram-ai/pkg/store"
)

// Recall runs the activation-ranked retrieval procedure: gather
// candidates via four channels fanned out concurrently (FTS probe,
// Hebbian neighbors, entity-graph neighbors, and — when enabled — the
// optional semantic channel), score by retrieval activation, append
// access-log rows and strengthen Hebbian links for the returned set, and
// decorate each result with its confidence.
func (m *Memory) Recall(ctx context.Context, query string, opts RecallOptions) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.recallLocked(ctx, query, opts, true)
}

// recallLocked performs the retrieval procedure assuming the caller
// already holds at least a read lock (shared by SessionRecall's cheap
// probe, which takes its own lock once up front).
func (m *Memory) recallLocked(ctx context.Context, query string, opts RecallOptions, sideEffects bool) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 5
	}
	start := time.Now()

	candidateIDs, candidates, err := m.gatherCandidates(ctx, query, opts)
	if err != nil {
		return nil, wrapError("Recall", err)
	}
	if len(candidateIDs) == 0 {
		if sideEffects {
			m.observeMetric("recall_latency_ms", float64(time.Since(start).Milliseconds()))
			m.observeMetric("recall_result_count", 0)
		}
		return nil, nil
	}

	now := time.Now()
	maxE, err := m.maxEffectiveStrength(ctx)
	if err != nil {
		return nil, wrapError("Recall", err)
	}

	scored := make([]activation.Candidate, 0, len(candidates))
	byID := make(map[string]*store.Record, len(candidates))
	for _, rec := range candidates {
		byID[rec.ID] = rec

		if rec.Layer == string(LayerArchive) && !opts.IncludeArchive {
			continue
		}
		if rec.ContradictedBy != "" {
			continue
		}

		accessTimes, err := m.store.GetAccessTimes(ctx, rec.ID)
		if err != nil {
			return nil, wrapError("Recall", err)
		}
		base := activation.BaseLevel(now, accessTimes, m.cfg.RecencyExponent)
		spread := activation.Spreading(rec.Content, opts.ContextKeywords, m.cfg.ContextWeight)
		a := activation.Retrieval(base, spread, rec.Importance, m.cfg.ImportanceWeight)

		conf := m.confidenceFor(rec, now, maxE)
		if conf.Combined < opts.MinConfidence {
			continue
		}

		scored = append(scored, activation.Candidate{
			ID: rec.ID, Activation: a, Importance: rec.Importance, LastAccess: rec.LastAccessed,
		})
	}

	ranked := activation.Rank(scored, m.cfg.MinActivation)
	if len(ranked) > opts.Limit {
		ranked = ranked[:opts.Limit]
	}

	results := make([]Result, 0, len(ranked))
	returnedIDs := make([]string, 0, len(ranked))
	for _, c := range ranked {
		rec := byID[c.ID]
		entry := fromRecord(rec)
		results = append(results, Result{
			Entry:      entry,
			Activation: c.Activation,
			Confidence: m.confidenceFor(rec, now, maxE),
		})
		returnedIDs = append(returnedIDs, rec.ID)
	}

	if sideEffects && len(returnedIDs) > 0 {
		if err := m.applyRecallSideEffects(ctx, now, returnedIDs, byID); err != nil {
			return nil, wrapError("Recall", err)
		}
	}

	if sideEffects {
		m.observeMetric("recall_latency_ms", float64(time.Since(start).Milliseconds()))
		m.observeMetric("recall_result_count", float64(len(results)))
	}

	return results, nil
}

// gatherCandidates runs the four TEMPR-style channels concurrently and
// unions their id sets, then fetches the full records for the union.
func (m *Memory) gatherCandidates(ctx context.Context, query string, opts RecallOptions) ([]string, []*store.Record, error) {
	tokens := store.Sanitize(query)
	ftsQuery := store.BuildFTSQuery(tokens)

	var (
		ftsResults      []*store.Record
		hebbianIDs      []string
		graphIDs        []string
		semanticIDs     []string
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		if ftsQuery == "" {
			ftsResults, err = m.store.All(gctx, opts.IncludeArchive)
		} else {
			ftsResults, err = m.store.SearchFTS(gctx, ftsQuery, 0)
		}
		return err
	})

	if opts.GraphExpand {
		g.Go(func() error {
			// Hebbian expansion seeds from an initial FTS probe limited to a
			// small set, since we don't have candidate ids until that probe
			// resolves; a lightweight independent probe keeps the channel
			// decoupled from the others in the fan-out.
			seedTokens := tokens
			seedQuery := store.BuildFTSQuery(seedTokens)
			var seeds []*store.Record
			var err error
			if seedQuery == "" {
				return nil
			}
			seeds, err = m.store.SearchFTS(gctx, seedQuery, 10)
			if err != nil {
				return err
			}
			seen := make(map[string]bool)
			for _, s := range seeds {
				neighbors, err := m.store.GetHebbianNeighbors(gctx, s.ID, 0)
				if err != nil {
					return err
				}
				for _, n := range neighbors {
					if !seen[n.TargetID] {
						seen[n.TargetID] = true
						hebbianIDs = append(hebbianIDs, n.TargetID)
					}
				}
			}
			return nil
		})

		g.Go(func() error {
			for _, kw := range opts.ContextKeywords {
				related, err := m.store.GetRelatedEntities(gctx, kw, 2)
				if err != nil {
					return err
				}
				for _, entity := range related {
					ids, err := m.store.SearchByEntity(gctx, entity)
					if err != nil {
						return err
					}
					graphIDs = append(graphIDs, ids...)
				}
			}
			return nil
		})
	}

	if m.cfg.EnableSemanticChannel && len(opts.Vector) > 0 {
		g.Go(func() error {
			var err error
			semanticIDs, err = m.store.SearchSemantic(gctx, opts.Vector, opts.Limit*3)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	union := make(map[string]bool)
	byID := make(map[string]*store.Record)
	for _, r := range ftsResults {
		if !union[r.ID] {
			union[r.ID] = true
			byID[r.ID] = r
		}
	}
	extraIDs := append(append([]string{}, hebbianIDs...), graphIDs...)
	extraIDs = append(extraIDs, semanticIDs...)
	for _, id := range extraIDs {
		if union[id] {
			continue
		}
		rec, err := m.store.Get(ctx, id)
		if err != nil {
			continue // neighbor reference to a since-deleted entry
		}
		union[id] = true
		byID[id] = rec
	}

	ids := make([]string, 0, len(union))
	records := make([]*store.Record, 0, len(union))
	for id := range union {
		ids = append(ids, id)
		records = append(records, byID[id])
	}
	return ids, records, nil
}

// applyRecallSideEffects appends access-log rows, strengthens Hebbian
// links between every returned pair, and applies retrieval-induced
// forgetting to the top result (or, if configured, every returned
// result).
func (m *Memory) applyRecallSideEffects(ctx context.Context, now time.Time, returnedIDs []string, byID map[string]*store.Record) error {
	for _, id := range returnedIDs {
		if err := m.store.RecordAccess(ctx, id, now); err != nil {
			return err
		}
		rec := byID[id]
		rec.AccessCount++
		rec.LastAccessed = now
		if err := m.store.Update(ctx, rec); err != nil {
			return err
		}
	}

	for i := 0; i < len(returnedIDs); i++ {
		for j := i + 1; j < len(returnedIDs); j++ {
			if err := m.store.StrengthenLink(ctx, returnedIDs[i], returnedIDs[j], m.cfg.HebbianCeiling); err != nil {
				return err
			}
		}
	}

	suppressTargets := returnedIDs[:1]
	if m.cfg.ExtendSuppressionToAll {
		suppressTargets = returnedIDs
	}
	for _, rid := range suppressTargets {
		if err := m.applyRetrievalInducedForgetting(ctx, byID[rid]); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) applyRetrievalInducedForgetting(ctx context.Context, r *store.Record) error {
	all, err := m.store.All(ctx, false)
	if err != nil {
		return err
	}
	rTokens := forgetting.Tokenize(r.Content)
	for _, c := range all {
		if c.ID == r.ID || c.Pinned || c.MemoryType != r.MemoryType {
			continue
		}
		cTokens := forgetting.Tokenize(c.Content)
		overlap := forgetting.TokenOverlap(rTokens, cTokens)
		if overlap <= m.cfg.OverlapThreshold {
			continue
		}
		c.WorkingStrength = forgetting.SuppressedStrength(c.WorkingStrength, overlap, m.cfg.SuppressionFactor)
		if err := m.store.Update(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) confidenceFor(r *store.Record, now time.Time, maxE float64) Confidence {
	tDays := forgetting.TDays(now, r.LastAccessed, r.CreatedAt)
	baseDecay := m.cfg.DecayRates[MemoryType(r.MemoryType)]
	stability := forgetting.Stability(baseDecay, r.AccessCount, r.ConsolidationCount, r.Importance)
	retrievability := forgetting.Retrievability(tDays, stability)
	effective := forgetting.EffectiveStrength(r.WorkingStrength, r.CoreStrength, retrievability)

	rel := confidence.Reliability(r.MemoryType, r.ContradictedBy != "", r.Pinned, r.Importance)
	sal := confidence.Salience(effective, maxE)
	combined := confidence.Combined(rel, sal)
	return Confidence{
		Reliability: rel,
		Salience:    sal,
		Combined:    combined,
		Label:       ConfidenceLabel(confidence.Label(combined)),
	}
}

// maxEffectiveStrength normalizes salience against the maximum effective
// strength across the whole store — the store handle is always
// available here, so the sigmoid fallback in pkg/confidence.Salience is
// only exercised when no entry has a positive effective strength.
func (m *Memory) maxEffectiveStrength(ctx context.Context) (float64, error) {
	all, err := m.store.All(ctx, true)
	if err != nil {
		return 0, err
	}
	now := time.Now()
	var max float64
	for _, r := range all {
		tDays := forgetting.TDays(now, r.LastAccessed, r.CreatedAt)
		baseDecay := m.cfg.DecayRates[MemoryType(r.MemoryType)]
		stability := forgetting.Stability(baseDecay, r.AccessCount, r.ConsolidationCount, r.Importance)
		e := forgetting.EffectiveStrength(r.WorkingStrength, r.CoreStrength, forgetting.Retrievability(tDays, stability))
		if e > max {
			max = e
		}
	}
	return max, nil
}

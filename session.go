package engram

import (
	"context"
	"time"
)

// SessionRecall is the session-gated recall entry point: a cheap
// probe decides whether the topic has changed enough to warrant a full
// Recall, or whether the session's currently-active entries (with fresh
// confidence) can be returned directly.
func (m *Memory) SessionRecall(ctx context.Context, sessionID, query string, opts RecallOptions) (*SessionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	wm := m.sessions.Get(sessionID)
	now := time.Now()
	wm.Prune(now)

	needsFull, reason, err := m.needsRecallLocked(ctx, wm, query, now)
	if err != nil {
		return nil, wrapError("SessionRecall", err)
	}

	if needsFull {
		results, err := m.recallLocked(ctx, query, opts, true)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(results))
		for i, r := range results {
			ids[i] = r.Entry.ID
		}
		wm.Activate(ids, now)
		return &SessionResult{Results: results, Reason: reason, FullRecall: true}, nil
	}

	results, err := m.projectActiveLocked(ctx, wm, now)
	if err != nil {
		return nil, wrapError("SessionRecall", err)
	}
	return &SessionResult{Results: results, Reason: reason, FullRecall: false}, nil
}

func (m *Memory) needsRecallLocked(ctx context.Context, wm sessionWM, query string, now time.Time) (bool, string, error) {
	if wm.Size() == 0 {
		return true, "empty_wm", nil
	}

	current := make(map[string]bool)
	for _, id := range wm.ActiveIDs() {
		current[id] = true
	}
	neighbors := make(map[string]bool)
	for id := range current {
		links, err := m.store.GetHebbianNeighbors(ctx, id, 0)
		if err != nil {
			return false, "", err
		}
		for _, l := range links {
			neighbors[l.TargetID] = true
		}
	}

	probeOpts := RecallOptions{Limit: 3, GraphExpand: false}
	probe, err := m.recallLocked(ctx, query, probeOpts, false)
	if err != nil {
		return false, "", err
	}
	if len(probe) == 0 {
		return true, "empty_probe", nil
	}

	probeIDs := make([]string, len(probe))
	for i, r := range probe {
		probeIDs[i] = r.Entry.ID
	}
	overlap := overlapOf(probeIDs, current, neighbors)
	if overlap < m.cfg.SessionOverlap {
		return true, "topic_change", nil
	}
	return false, "topic_continuous", nil
}

func overlapOf(probe []string, current, neighbors map[string]bool) float64 {
	if len(probe) == 0 {
		return 0
	}
	var hits int
	for _, id := range probe {
		if current[id] || neighbors[id] {
			hits++
		}
	}
	return float64(hits) / float64(len(probe))
}

// projectActiveLocked returns the currently-active session entries with
// freshly recomputed confidence, without appending access-log rows.
func (m *Memory) projectActiveLocked(ctx context.Context, wm sessionWM, now time.Time) ([]Result, error) {
	maxE, err := m.maxEffectiveStrength(ctx)
	if err != nil {
		return nil, err
	}
	var results []Result
	for _, id := range wm.ActiveIDs() {
		rec, err := m.store.Get(ctx, id)
		if err != nil {
			continue
		}
		results = append(results, Result{
			Entry:      fromRecord(rec),
			Confidence: m.confidenceFor(rec, now, maxE),
		})
	}
	return results, nil
}

// sessionWM narrows pkg/session.WM to what this file needs, keeping the
// façade decoupled from the session package's concrete type in signatures.
type sessionWM interface {
	Size() int
	ActiveIDs() []string
	Activate(ids []string, now time.Time)
	Prune(now time.Time)
}

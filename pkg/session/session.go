// Package session implements SessionWM, a per-conversation bounded set of
// active memory ids used to gate full recalls, and a process-scoped
// registry of sessions owned by the façade.
package session

import (
	"sort"
	"time"
)

// WM is one session's bounded, decaying working-memory set.
type WM struct {
	Capacity int
	Decay    time.Duration

	active map[string]time.Time // id -> activated_at
}

// NewWM builds an empty working-memory set with the given capacity
// (Miller's default 7) and decay window (default 300s).
func NewWM(capacity int, decay time.Duration) *WM {
	return &WM{
		Capacity: capacity,
		Decay:    decay,
		active:   make(map[string]time.Time),
	}
}

// Activate sets each id's timestamp to now, then prunes: drops items past
// the decay window, then keeps only the Capacity most-recent if still
// over capacity.
func (w *WM) Activate(ids []string, now time.Time) {
	for _, id := range ids {
		w.active[id] = now
	}
	w.Prune(now)
}

// Prune drops items whose age has reached the decay window, then, if
// still over capacity, keeps only the Capacity most-recently-activated.
func (w *WM) Prune(now time.Time) {
	if w.Decay > 0 {
		for id, t := range w.active {
			if now.Sub(t) >= w.Decay {
				delete(w.active, id)
			}
		}
	}
	if w.Capacity <= 0 || len(w.active) <= w.Capacity {
		return
	}
	type entry struct {
		id string
		t  time.Time
	}
	entries := make([]entry, 0, len(w.active))
	for id, t := range w.active {
		entries = append(entries, entry{id, t})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].t.After(entries[j].t) })
	w.active = make(map[string]time.Time, w.Capacity)
	for _, e := range entries[:w.Capacity] {
		w.active[e.id] = e.t
	}
}

// ActiveIDs returns the currently active ids in no particular order.
func (w *WM) ActiveIDs() []string {
	ids := make([]string, 0, len(w.active))
	for id := range w.active {
		ids = append(ids, id)
	}
	return ids
}

// Size returns the number of currently active ids.
func (w *WM) Size() int {
	return len(w.active)
}

// Registry owns every session's WM for one façade instance. It is
// process-scoped and never shared across façade instances.
type Registry struct {
	sessions map[string]*WM
	capacity int
	decay    time.Duration
}

// NewRegistry builds an empty registry; capacity/decay are applied to
// every session created via Get.
func NewRegistry(capacity int, decay time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*WM),
		capacity: capacity,
		decay:    decay,
	}
}

// Get returns the WM for sessionID, creating one if it doesn't exist.
func (r *Registry) Get(sessionID string) *WM {
	wm, ok := r.sessions[sessionID]
	if !ok {
		wm = NewWM(r.capacity, r.decay)
		r.sessions[sessionID] = wm
	}
	return wm
}

// ClearSession removes a session's WM entirely.
func (r *Registry) ClearSession(sessionID string) {
	delete(r.sessions, sessionID)
}

// ListSessions returns every known session id.
func (r *Registry) ListSessions() []string {
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}

package engram

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestMemory(t *testing.T) *Memory {
	t.Helper()
	cfg := DefaultConfig(filepath.Join(t.TempDir(), "engram.db"))
	m, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestAddGetRoundTrip(t *testing.T) {
	m := openTestMemory(t)
	ctx := context.Background()

	id, err := m.Add(ctx, AddInput{Content: "Alice prefers dark roast coffee", MemoryType: TypeFactual, Importance: 0.6})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	entry, err := m.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if entry.Content == "" || entry.Layer != LayerWorking {
		t.Fatalf("Get() = %+v, want non-empty content in L3_working", entry)
	}
	if entry.AccessCount != 1 {
		t.Fatalf("AccessCount = %d, want 1 after Add", entry.AccessCount)
	}
}

func TestAddRejectsEmptyContent(t *testing.T) {
	m := openTestMemory(t)
	if _, err := m.Add(context.Background(), AddInput{Content: ""}); err == nil {
		t.Fatal("Add() with empty content should error")
	}
}

func TestAddRejectsBadImportance(t *testing.T) {
	m := openTestMemory(t)
	if _, err := m.Add(context.Background(), AddInput{Content: "x", Importance: 1.5}); err == nil {
		t.Fatal("Add() with importance > 1 should error")
	}
}

func TestAddRejectsUnknownType(t *testing.T) {
	m := openTestMemory(t)
	if _, err := m.Add(context.Background(), AddInput{Content: "x", MemoryType: "bogus"}); err == nil {
		t.Fatal("Add() with unknown memory type should error")
	}
}

func TestGetNotFound(t *testing.T) {
	m := openTestMemory(t)
	if _, err := m.Get(context.Background(), "missing-id"); err == nil {
		t.Fatal("Get() of missing id should error")
	}
}

func TestPinMovesToCoreAndExemptsFromPrune(t *testing.T) {
	m := openTestMemory(t)
	ctx := context.Background()
	id, err := m.Add(ctx, AddInput{Content: "critical preference", Importance: 0.9})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := m.Pin(ctx, id); err != nil {
		t.Fatalf("Pin() error = %v", err)
	}
	entry, err := m.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if entry.Layer != LayerCore || !entry.Pinned {
		t.Fatalf("Get() after Pin = %+v, want pinned in L2_core", entry)
	}

	pruned, err := m.Prune(ctx, 1.0) // an aggressive threshold that would sweep everything unpinned
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	for _, p := range pruned {
		if p == id {
			t.Fatal("Prune() should never archive a pinned entry")
		}
	}
}

func TestRecallFindsAddedMemory(t *testing.T) {
	m := openTestMemory(t)
	ctx := context.Background()
	_, err := m.Add(ctx, AddInput{Content: "Alice likes dark roast coffee in the morning", Importance: 0.6})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	results, err := m.Recall(ctx, "coffee", DefaultRecallOptions())
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	if len(results) == 0 {
		t.Fatal("Recall() found no results for a query matching the added content")
	}
}

func TestRecallEmptyStoreReturnsNoResults(t *testing.T) {
	m := openTestMemory(t)
	results, err := m.Recall(context.Background(), "anything", DefaultRecallOptions())
	if err != nil {
		t.Fatalf("Recall() on empty store error = %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("Recall() on empty store = %v, want none", results)
	}
}

func TestRecallStopWordOnlyQueryFallsBackToScan(t *testing.T) {
	m := openTestMemory(t)
	ctx := context.Background()
	if _, err := m.Add(ctx, AddInput{Content: "a fact worth remembering", Importance: 0.5}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	results, err := m.Recall(ctx, "the and of", DefaultRecallOptions())
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	if len(results) == 0 {
		t.Fatal("Recall() with a stop-word-only query should fall back to a full scan, not return empty")
	}
}

func TestContradictionHalvesReliability(t *testing.T) {
	m := openTestMemory(t)
	ctx := context.Background()
	firstID, err := m.Add(ctx, AddInput{Content: "the meeting is on Tuesday", MemoryType: TypeFactual, Importance: 0.5})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	before, err := m.Recall(ctx, "meeting Tuesday", DefaultRecallOptions())
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	var beforeConf Confidence
	for _, r := range before {
		if r.Entry.ID == firstID {
			beforeConf = r.Confidence
		}
	}

	secondID, err := m.Add(ctx, AddInput{Content: "the meeting is actually on Wednesday", MemoryType: TypeFactual, Importance: 0.5, Contradicts: firstID})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	after, err := m.Recall(ctx, "meeting Tuesday", DefaultRecallOptions())
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	for _, r := range after {
		if r.Entry.ID == firstID {
			t.Fatal("contradicted entry should be excluded from ranked results")
		}
	}

	rec, err := m.store.Get(ctx, firstID)
	if err != nil {
		t.Fatalf("store.Get() error = %v", err)
	}
	if rec.ContradictedBy != secondID {
		t.Fatalf("ContradictedBy = %q, want %q", rec.ContradictedBy, secondID)
	}
	afterConf := m.confidenceFor(rec, time.Now(), 0)
	if afterConf.Reliability >= 0.5*beforeConf.Reliability {
		t.Fatalf("reliability after contradiction = %v, want below half of %v", afterConf.Reliability, beforeConf.Reliability)
	}
}

func TestRewardAppliesToRecentlyAccessedAndIsPinIndependent(t *testing.T) {
	m := openTestMemory(t)
	ctx := context.Background()
	id, err := m.Add(ctx, AddInput{Content: "remember to buy milk", Importance: 0.5})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := m.Pin(ctx, id); err != nil {
		t.Fatalf("Pin() error = %v", err)
	}
	before, err := m.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if err := m.Reward(ctx, "thanks, that's exactly right", RewardOptions{}); err != nil {
		t.Fatalf("Reward() error = %v", err)
	}

	after, err := m.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if after.Importance <= before.Importance {
		t.Fatalf("Importance after positive reward = %v, want > %v (pin must not block reward)", after.Importance, before.Importance)
	}
	if after.CoreStrength != before.CoreStrength {
		t.Fatal("Reward must never touch core_strength")
	}
}

func TestRewardNeutralIsNoop(t *testing.T) {
	m := openTestMemory(t)
	ctx := context.Background()
	id, err := m.Add(ctx, AddInput{Content: "note to self", Importance: 0.5})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	before, err := m.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if err := m.Reward(ctx, "what time is it", RewardOptions{}); err != nil {
		t.Fatalf("Reward() error = %v", err)
	}
	after, err := m.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if after.Importance != before.Importance {
		t.Fatal("neutral feedback should not alter importance")
	}
}

func TestConsolidatePromotesAfterRepeatedCycles(t *testing.T) {
	m := openTestMemory(t)
	ctx := context.Background()
	id, err := m.Add(ctx, AddInput{Content: "frequently reinforced fact", Importance: 0.8})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	var promotedAt = -1
	for i := 0; i < 10; i++ {
		if _, err := m.Recall(ctx, "frequently reinforced fact", DefaultRecallOptions()); err != nil {
			t.Fatalf("Recall() error = %v", err)
		}
		if _, err := m.Consolidate(ctx, ConsolidateOptions{DtDays: 1}); err != nil {
			t.Fatalf("Consolidate() error = %v", err)
		}
		entry, err := m.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if entry.Layer == LayerCore {
			promotedAt = i
			break
		}
	}
	if promotedAt == -1 {
		t.Fatal("entry was never promoted to L2_core across 10 reinforced consolidation cycles")
	}
}

func TestForgetArchivesAndIsIdempotent(t *testing.T) {
	m := openTestMemory(t)
	ctx := context.Background()
	id, err := m.Add(ctx, AddInput{Content: "transient note", Importance: 0.2})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := m.Forget(ctx, id); err != nil {
		t.Fatalf("Forget() error = %v", err)
	}
	entry, err := m.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if entry.Layer != LayerArchive {
		t.Fatalf("Layer after Forget = %v, want L4_archive", entry.Layer)
	}
	if err := m.Forget(ctx, id); err != nil {
		t.Fatalf("Forget() on already-archived entry should be a no-op, got error = %v", err)
	}
}

func TestForgetNotFound(t *testing.T) {
	m := openTestMemory(t)
	if err := m.Forget(context.Background(), "missing"); err == nil {
		t.Fatal("Forget() of missing id should error")
	}
}

func TestDeleteRemovesEntry(t *testing.T) {
	m := openTestMemory(t)
	ctx := context.Background()
	id, err := m.Add(ctx, AddInput{Content: "ephemeral", Importance: 0.3})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := m.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := m.Get(ctx, id); err == nil {
		t.Fatal("Get() after Delete should error")
	}
}

func TestSessionRecallEmptyWMTriggersFullRecall(t *testing.T) {
	m := openTestMemory(t)
	ctx := context.Background()
	if _, err := m.Add(ctx, AddInput{Content: "project deadline is Friday", Importance: 0.5}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	res, err := m.SessionRecall(ctx, "session-1", "deadline", DefaultRecallOptions())
	if err != nil {
		t.Fatalf("SessionRecall() error = %v", err)
	}
	if !res.FullRecall || res.Reason != "empty_wm" {
		t.Fatalf("SessionRecall() on empty session = %+v, want FullRecall=true reason=empty_wm", res)
	}
}

func TestSessionRecallContinuousTopicSkipsFullRecall(t *testing.T) {
	m := openTestMemory(t)
	ctx := context.Background()
	if _, err := m.Add(ctx, AddInput{Content: "the quarterly report is due soon", Importance: 0.5}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	first, err := m.SessionRecall(ctx, "session-2", "quarterly report", DefaultRecallOptions())
	if err != nil {
		t.Fatalf("SessionRecall() error = %v", err)
	}
	if !first.FullRecall {
		t.Fatal("first SessionRecall on an empty session should trigger a full recall")
	}

	second, err := m.SessionRecall(ctx, "session-2", "quarterly report", DefaultRecallOptions())
	if err != nil {
		t.Fatalf("SessionRecall() error = %v", err)
	}
	if second.FullRecall || second.Reason != "topic_continuous" {
		t.Fatalf("second SessionRecall on the same topic = %+v, want a cheap continuation", second)
	}
}

func TestClearSessionAndListSessions(t *testing.T) {
	m := openTestMemory(t)
	ctx := context.Background()
	if _, err := m.Add(ctx, AddInput{Content: "hello world", Importance: 0.5}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := m.SessionRecall(ctx, "s1", "hello", DefaultRecallOptions()); err != nil {
		t.Fatalf("SessionRecall() error = %v", err)
	}
	if len(m.ListSessions()) != 1 {
		t.Fatalf("ListSessions() = %v, want one session", m.ListSessions())
	}
	m.ClearSession("s1")
	if len(m.ListSessions()) != 0 {
		t.Fatalf("ListSessions() after clear = %v, want none", m.ListSessions())
	}
}

func TestStatsCountsByLayer(t *testing.T) {
	m := openTestMemory(t)
	ctx := context.Background()
	if _, err := m.Add(ctx, AddInput{Content: "one", Importance: 0.5}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := m.Add(ctx, AddInput{Content: "two", Importance: 0.5}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	stats, err := m.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.CountsByLayer[LayerWorking] != 2 {
		t.Fatalf("CountsByLayer[L3_working] = %d, want 2", stats.CountsByLayer[LayerWorking])
	}
}

func TestStatsReportsAnomalyMetricsAfterObservations(t *testing.T) {
	m := openTestMemory(t)
	ctx := context.Background()
	if _, err := m.Add(ctx, AddInput{Content: "one", Importance: 0.5}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := m.Recall(ctx, "one", RecallOptions{}); err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	stats, err := m.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	addStats, ok := stats.AnomalyMetrics["add_importance"]
	if !ok {
		t.Fatal("Stats().AnomalyMetrics missing add_importance after an Add")
	}
	if addStats.Samples != 1 {
		t.Fatalf("add_importance Samples = %d, want 1", addStats.Samples)
	}
	if _, ok := stats.AnomalyMetrics["recall_latency_ms"]; !ok {
		t.Fatal("Stats().AnomalyMetrics missing recall_latency_ms after a Recall")
	}
	if _, ok := stats.AnomalyMetrics["recall_result_count"]; !ok {
		t.Fatal("Stats().AnomalyMetrics missing recall_result_count after a Recall")
	}
}

func TestLinkContradictionSetsBothDirections(t *testing.T) {
	m := openTestMemory(t)
	ctx := context.Background()
	a, err := m.Add(ctx, AddInput{Content: "the sky is blue", Importance: 0.5})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	b, err := m.Add(ctx, AddInput{Content: "the sky is green", Importance: 0.5})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := m.LinkContradiction(ctx, a, b); err != nil {
		t.Fatalf("LinkContradiction() error = %v", err)
	}
	entryA, err := m.Get(ctx, a)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	entryB, err := m.Get(ctx, b)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if entryA.ContradictedBy != b {
		t.Fatalf("entryA.ContradictedBy = %q, want %q", entryA.ContradictedBy, b)
	}
	if entryB.Contradicts != a {
		t.Fatalf("entryB.Contradicts = %q, want %q", entryB.Contradicts, a)
	}
}

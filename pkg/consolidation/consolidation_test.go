package consolidation

import (
	"math/rand"
	"testing"
)

func TestAlphaEffScalesWithImportance(t *testing.T) {
	low := AlphaEff(0.08, 0.0)
	high := AlphaEff(0.08, 1.0)
	if !(high > low) {
		t.Fatalf("AlphaEff should increase with importance: low=%v high=%v", low, high)
	}
	wantLow := 0.08 * 0.2
	if low != wantLow {
		t.Fatalf("AlphaEff(0.08,0) = %v, want %v", low, wantLow)
	}
}

func TestStepDecaysWorkingAndFeedsCore(t *testing.T) {
	// Step itself has no pinned concept; the façade must skip calling it
	// for pinned entries. Here we only verify the math composes sensibly.
	w, c := Step(1.0, 0.0, 0.5, 0.08, 0.15, 0.005, 1.0)
	if w >= 1.0 {
		t.Fatalf("working strength should decay after a step, got %v", w)
	}
	if c <= 0 {
		t.Fatalf("core strength should gain from transfer, got %v", c)
	}
}

func TestTwoHalfStepsApproximateOneFullStep(t *testing.T) {
	w1, c1 := Step(1.0, 0.0, 0.6, 0.08, 0.15, 0.005, 1.0)

	w2, c2 := Step(1.0, 0.0, 0.6, 0.08, 0.15, 0.005, 0.5)
	w2, c2 = Step(w2, c2, 0.6, 0.08, 0.15, 0.005, 0.5)

	if diff := abs(w1 - w2); diff/w1 > 0.01 {
		t.Fatalf("working strength diverges beyond 1%%: full=%v, split=%v", w1, w2)
	}
	if diff := abs(c1 - c2); diff/c1 > 0.01 {
		t.Fatalf("core strength diverges beyond 1%%: full=%v, split=%v", c1, c2)
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func TestRebalanceWorking(t *testing.T) {
	if got := RebalanceWorking(0.1, 0.3, 0.25, 0.15); got != PromoteCore {
		t.Fatalf("RebalanceWorking() = %v, want PromoteCore", got)
	}
	if got := RebalanceWorking(0.05, 0.05, 0.25, 0.15); got != ArchiveEntry {
		t.Fatalf("RebalanceWorking() = %v, want ArchiveEntry", got)
	}
	if got := RebalanceWorking(0.2, 0.2, 0.25, 0.15); got != KeepLayer {
		t.Fatalf("RebalanceWorking() = %v, want KeepLayer", got)
	}
}

func TestRebalanceCore(t *testing.T) {
	if got := RebalanceCore(0.01, 0.02, 0.05); got != ArchiveEntry {
		t.Fatalf("RebalanceCore() = %v, want ArchiveEntry", got)
	}
	if got := RebalanceCore(0.1, 0.1, 0.05); got != KeepLayer {
		t.Fatalf("RebalanceCore() = %v, want KeepLayer", got)
	}
}

func TestSampleReplaySetRatio(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := make([]string, 100)
	for i := range ids {
		ids[i] = string(rune('a' + i%26))
	}
	sample := SampleReplaySet(rng, ids, 0.3)
	if len(sample) != 30 {
		t.Fatalf("SampleReplaySet() len = %d, want 30", len(sample))
	}
}

func TestSampleReplaySetDeterministicWithSeed(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	s1 := SampleReplaySet(rand.New(rand.NewSource(7)), ids, 0.5)
	s2 := SampleReplaySet(rand.New(rand.NewSource(7)), ids, 0.5)
	if len(s1) != len(s2) {
		t.Fatalf("sample lengths differ: %d vs %d", len(s1), len(s2))
	}
	for i := range s1 {
		if s1[i] != s2[i] {
			t.Fatalf("same-seed samples diverge at %d: %s vs %s", i, s1[i], s2[i])
		}
	}
}

func TestDownscale(t *testing.T) {
	w, c := Downscale(1.0, 1.0, 0.95)
	if w != 0.95 || c != 0.95 {
		t.Fatalf("Downscale() = (%v,%v), want (0.95,0.95)", w, c)
	}
}

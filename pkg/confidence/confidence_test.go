package confidence

import (
	"math"
	"testing"
)

func TestReliabilityContradictionPenalty(t *testing.T) {
	clean := Reliability("factual", false, false, 0)
	contradicted := Reliability("factual", true, false, 0)
	if contradicted >= clean {
		t.Fatalf("contradicted reliability %v should be less than clean %v", contradicted, clean)
	}
	want := 0.85 * 0.3
	if math.Abs(contradicted-want) > 1e-9 {
		t.Fatalf("Reliability(contradicted) = %v, want %v", contradicted, want)
	}
}

func TestReliabilityPinFloor(t *testing.T) {
	got := Reliability("opinion", false, true, 0)
	if got < 0.95 {
		t.Fatalf("pinned reliability = %v, want >= 0.95", got)
	}
}

func TestReliabilityClampedToOne(t *testing.T) {
	got := Reliability("emotional", false, false, 1.0)
	if got > 1 {
		t.Fatalf("Reliability() = %v, want <= 1", got)
	}
}

func TestReliabilityUnknownTypeFallsBack(t *testing.T) {
	got := Reliability("unknown-type", false, false, 0)
	if got != 0.75 {
		t.Fatalf("Reliability(unknown) = %v, want 0.75 fallback base", got)
	}
}

func TestSalienceNormalizesAgainstMax(t *testing.T) {
	got := Salience(0.5, 1.0)
	if got != 0.5 {
		t.Fatalf("Salience() = %v, want 0.5", got)
	}
	clamped := Salience(2.0, 1.0)
	if clamped != 1 {
		t.Fatalf("Salience() over max = %v, want clamp to 1", clamped)
	}
}

func TestSalienceSigmoidFallbackWhenNoMax(t *testing.T) {
	got := Salience(0, 0)
	if math.Abs(got) > 1e-9 {
		t.Fatalf("Salience(0,0) = %v, want ~0 (sigmoid midpoint)", got)
	}
	pos := Salience(5, 0)
	if pos <= 0 {
		t.Fatalf("Salience() with positive strength and no max = %v, want > 0", pos)
	}
}

func TestCombinedWeighting(t *testing.T) {
	got := Combined(1.0, 0.0)
	if math.Abs(got-0.7) > 1e-9 {
		t.Fatalf("Combined(1,0) = %v, want 0.7", got)
	}
	got2 := Combined(0.0, 1.0)
	if math.Abs(got2-0.3) > 1e-9 {
		t.Fatalf("Combined(0,1) = %v, want 0.3", got2)
	}
}

func TestLabelLadder(t *testing.T) {
	tests := []struct {
		combined float64
		want     string
	}{
		{0.95, "certain"},
		{0.8, "certain"},
		{0.7, "likely"},
		{0.6, "likely"},
		{0.5, "uncertain"},
		{0.4, "uncertain"},
		{0.1, "vague"},
	}
	for _, tt := range tests {
		if got := Label(tt.combined); got != tt.want {
			t.Errorf("Label(%v) = %q, want %q", tt.combined, got, tt.want)
		}
	}
}

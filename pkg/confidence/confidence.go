// Package confidence computes the two-dimensional (reliability, salience)
// score decorating recall results, and its labeling ladder.
package confidence

import "math"

// BaseReliability is the per-type starting reliability before
// contradiction/pin/importance adjustments.
var BaseReliability = map[string]float64{
	"factual":    0.85,
	"episodic":   0.90,
	"relational": 0.75,
	"emotional":  0.95,
	"procedural": 0.90,
	"opinion":    0.60,
}

// Reliability applies the contradiction penalty (x0.3), the pin floor
// (max(base,0.95)), and the importance boost (+0.1*importance), clamped
// to [0,1].
func Reliability(memoryType string, contradicted, pinned bool, importance float64) float64 {
	base, ok := BaseReliability[memoryType]
	if !ok {
		base = 0.75
	}
	rel := base
	if contradicted {
		rel *= 0.3
	}
	if pinned {
		rel = math.Max(rel, 0.95)
	}
	rel += 0.1 * importance
	if rel > 1 {
		rel = 1
	}
	if rel < 0 {
		rel = 0
	}
	return rel
}

// Salience normalizes effectiveStrength against maxEffectiveStrength
// across the store when a maximum is available (maxE > 0); otherwise it
// passes through a sigmoid: 2*sigmoid(2E) - 1.
func Salience(effectiveStrength, maxEffectiveStrength float64) float64 {
	if maxEffectiveStrength > 0 {
		s := effectiveStrength / maxEffectiveStrength
		if s > 1 {
			s = 1
		}
		if s < 0 {
			s = 0
		}
		return s
	}
	sig := 1 / (1 + math.Exp(-2*effectiveStrength))
	return 2*sig - 1
}

// Combined computes c = 0.7*reliability + 0.3*salience.
func Combined(reliability, salience float64) float64 {
	return 0.7*reliability + 0.3*salience
}

// Label applies the labeling ladder: certain>=0.8, likely>=0.6,
// uncertain>=0.4, else vague.
func Label(combined float64) string {
	switch {
	case combined >= 0.8:
		return "certain"
	case combined >= 0.6:
		return "likely"
	case combined >= 0.4:
		return "uncertain"
	default:
		return "vague"
	}
}

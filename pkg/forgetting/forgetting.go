// Package forgetting implements Ebbinghaus retrievability, effective
// strength, pruning, and retrieval-induced suppression of overlapping
// competitors.
package forgetting

import (
	"math"
	"strings"
	"time"
)

// Stability computes S = (1/baseDecay) * (1+0.5*ln(1+accessCount)) *
// (0.5+importance) * (1+0.2*consolidationCount). Grows with practice,
// importance, and consolidation — the time constant of retrievability.
func Stability(baseDecay float64, accessCount, consolidationCount int, importance float64) float64 {
	if baseDecay <= 0 {
		baseDecay = 1.0
	}
	return (1 / baseDecay) *
		(1 + 0.5*math.Log(1+float64(accessCount))) *
		(0.5 + importance) *
		(1 + 0.2*float64(consolidationCount))
}

// Retrievability computes R(t) = exp(-t_days/S). t_days <= 0 returns 1.
func Retrievability(tDays, stability float64) float64 {
	if tDays <= 0 {
		return 1
	}
	if stability <= 0 {
		return 0
	}
	return math.Exp(-tDays / stability)
}

// TDays converts now minus the later of lastAccess/createdAt into days.
func TDays(now, lastAccess, createdAt time.Time) float64 {
	ref := lastAccess
	if createdAt.After(ref) {
		ref = createdAt
	}
	return now.Sub(ref).Seconds() / 86400
}

// EffectiveStrength computes E = (working+core) * R.
func EffectiveStrength(working, core, retrievability float64) float64 {
	return (working + core) * retrievability
}

// ShouldForget reports whether a non-pinned entry's effective strength has
// dropped below threshold. Pinned entries are never forgotten.
func ShouldForget(pinned bool, effectiveStrength, threshold float64) bool {
	if pinned {
		return false
	}
	return effectiveStrength < threshold
}

// Tokenize lowercases and splits on whitespace/punctuation for the
// token-overlap computation retrieval-induced forgetting needs. It is
// intentionally simple: substring/stop-word handling belongs to the FTS
// sanitizer (pkg/store), not here.
func Tokenize(text string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f != "" {
			set[f] = true
		}
	}
	return set
}

// TokenOverlap computes |tokens(r) ∩ tokens(c)| / |tokens(c)|.
func TokenOverlap(rTokens, cTokens map[string]bool) float64 {
	if len(cTokens) == 0 {
		return 0
	}
	var shared int
	for t := range rTokens {
		if cTokens[t] {
			shared++
		}
	}
	return float64(shared) / float64(len(cTokens))
}

// SuppressedStrength applies retrieval-induced forgetting's multiplicative
// penalty: working *= (1 - suppression*overlap). Only called for
// same-type, non-pinned competitors with overlap > overlapThreshold.
func SuppressedStrength(working, overlap, suppression float64) float64 {
	factor := 1 - suppression*overlap
	if factor < 0 {
		factor = 0
	}
	return working * factor
}

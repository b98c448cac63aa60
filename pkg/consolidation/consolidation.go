// Package consolidation implements the Memory-Chain differential dynamics
// (Murre & Chessa, 2011) governing the dual-trace working/core strength
// transfer, interleaved replay of archived traces, and layer rebalancing.
package consolidation

import (
	"math"
	"math/rand"
)

// Constants bundles the ODE's tunables. The façade does not build one: it
// passes the matching Config values to each function as plain arguments,
// so nothing here depends on the engram package.
type Constants struct {
	Mu1              float64
	Mu2              float64
	Alpha            float64
	PromoteThreshold float64
	ArchiveThreshold float64
	DemoteThreshold  float64
	InterleaveRatio  float64
	ReplayBoost      float64
}

// AlphaEff computes the importance-modulated transfer rate
// alpha * (0.2 + importance^2).
func AlphaEff(alpha, importance float64) float64 {
	return alpha * (0.2 + importance*importance)
}

// Step applies one discrete Δt-day ODE step to a single non-pinned
// L3_working entry: first transfer alphaEff*working*dt into core, then
// decay both traces by exp(-mu*dt) with mu1 for working and mu2 for core.
func Step(working, core, importance, alpha, mu1, mu2, dtDays float64) (newWorking, newCore float64) {
	alphaEff := AlphaEff(alpha, importance)
	core += alphaEff * working * dtDays
	working *= expNegMu(mu1, dtDays)
	core *= expNegMu(mu2, dtDays)
	return working, core
}

// DecayCoreOnly applies only the mu2 decay, used for L2_core entries
// during a cycle (they no longer carry a working trace worth stepping).
func DecayCoreOnly(core, mu2, dtDays float64) float64 {
	return core * expNegMu(mu2, dtDays)
}

func expNegMu(mu, dt float64) float64 {
	return math.Exp(-mu * dt)
}

// ReplayBoostFor computes the interleaved-replay addition to an archived
// entry's core_strength: replayBoost * (0.5 + importance).
func ReplayBoostFor(replayBoost, importance float64) float64 {
	return replayBoost * (0.5 + importance)
}

// SampleReplaySet picks floor(ratio*len(ids)) ids from ids without
// replacement using rng, for interleaved replay of archived traces.
func SampleReplaySet(rng *rand.Rand, ids []string, ratio float64) []string {
	n := int(float64(len(ids)) * ratio)
	if n <= 0 || len(ids) == 0 {
		return nil
	}
	if n > len(ids) {
		n = len(ids)
	}
	shuffled := make([]string, len(ids))
	copy(shuffled, ids)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled[:n]
}

// RebalanceDecision is the outcome of applying the layer-transition rules
// to one entry for this cycle.
type RebalanceDecision string

const (
	KeepLayer    RebalanceDecision = "keep"
	PromoteCore  RebalanceDecision = "promote_core"   // L3 -> L2
	ArchiveEntry RebalanceDecision = "archive"          // L3 or L2 -> L4
)

// RebalanceWorking applies the L3_working transition rule.
func RebalanceWorking(working, core, promoteThreshold, archiveThreshold float64) RebalanceDecision {
	if core >= promoteThreshold {
		return PromoteCore
	}
	if working < archiveThreshold && core < archiveThreshold {
		return ArchiveEntry
	}
	return KeepLayer
}

// RebalanceCore applies the L2_core transition rule.
func RebalanceCore(working, core, demoteThreshold float64) RebalanceDecision {
	if working+core < demoteThreshold {
		return ArchiveEntry
	}
	return KeepLayer
}

// Downscale multiplies a non-pinned entry's strengths by factor,
// bounding unconstrained reward/replay growth.
func Downscale(working, core, factor float64) (float64, float64) {
	return working * factor, core * factor
}

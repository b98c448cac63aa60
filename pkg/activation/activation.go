// Package activation computes ACT-R style retrieval activation: a
// base-level term from access-time history, a spreading term from context
// keyword overlap, and an importance boost. This is the sole ranking
// signal recall uses — never embedding similarity.
package activation

import (
	"math"
	"sort"
	"strings"
	"time"
)

// NegInf stands in for "no access history" base-level activation.
var NegInf = math.Inf(-1)

// BaseLevel computes B_i = ln(Σ_k (now-t_k)^-d) over access times, per the
// ACT-R declarative memory equation (Anderson & Schooler). Any (now-t_k) <=
// 0 is clamped to 0.001 to avoid a singularity at the instant of access.
// Returns NegInf when accessTimes is empty.
func BaseLevel(now time.Time, accessTimes []time.Time, d float64) float64 {
	if len(accessTimes) == 0 {
		return NegInf
	}
	var sum float64
	for _, t := range accessTimes {
		delta := now.Sub(t).Seconds()
		if delta <= 0 {
			delta = 0.001
		}
		sum += math.Pow(delta, -d)
	}
	if sum <= 0 {
		return NegInf
	}
	return math.Log(sum)
}

// Spreading computes the fraction of keywords (lowercased) that appear as
// a substring of content (lowercased), scaled by contextWeight.
func Spreading(content string, keywords []string, contextWeight float64) float64 {
	if len(keywords) == 0 {
		return 0
	}
	lowerContent := strings.ToLower(content)
	var hits int
	for _, k := range keywords {
		if k == "" {
			continue
		}
		if strings.Contains(lowerContent, strings.ToLower(k)) {
			hits++
		}
	}
	return (float64(hits) / float64(len(keywords))) * contextWeight
}

// Retrieval computes A_i = B_i + spreading + importanceWeight*importance.
// If base is NegInf, the result is NegInf (an entry with no access history
// is unreachable by activation ranking regardless of other terms).
func Retrieval(base, spreading, importance, importanceWeight float64) float64 {
	if math.IsInf(base, -1) {
		return NegInf
	}
	return base + spreading + importanceWeight*importance
}

// Candidate is one scored entry going through the ranking pipeline.
type Candidate struct {
	ID         string
	Activation float64
	Importance float64
	LastAccess time.Time
}

// Rank sorts candidates descending by Activation, ties broken by
// Importance then newer LastAccess, and drops anything below minActivation.
func Rank(candidates []Candidate, minActivation float64) []Candidate {
	kept := candidates[:0:0]
	for _, c := range candidates {
		if c.Activation < minActivation {
			continue
		}
		kept = append(kept, c)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Activation != kept[j].Activation {
			return kept[i].Activation > kept[j].Activation
		}
		if kept[i].Importance != kept[j].Importance {
			return kept[i].Importance > kept[j].Importance
		}
		return kept[i].LastAccess.After(kept[j].LastAccess)
	})
	return kept
}

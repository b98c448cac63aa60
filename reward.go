package engram

import (
	"context"
	"sort"

	"github.com/tonitangpotato/engram-ai/pkg/reward"
	"github.com/tonitangpotato/engram-ai/pkg/store"
)

// DetectFeedback classifies free text as positive/negative/neutral
// feedback, using the default wordlists.
func DetectFeedback(text string) FeedbackResult {
	fb := reward.DetectFeedback(text, reward.DefaultPositiveWords, reward.DefaultNegativeWords)
	return FeedbackResult{Polarity: Polarity(fb.Polarity), Confidence: fb.Confidence}
}

// Reward detects feedback polarity in text and, if not neutral, applies
// discount-modulated importance/working_strength updates to the RecentN
// most-recently-accessed memories (newest first). Reward never touches
// core_strength and pins do not exempt an entry from reward.
func (m *Memory) Reward(ctx context.Context, text string, opts RewardOptions) error {
	recentN := opts.RecentN
	if recentN <= 0 {
		recentN = 3
	}
	magnitude := opts.Magnitude
	if magnitude <= 0 {
		magnitude = 0.15
	}

	fb := DetectFeedback(text)
	if fb.Polarity == PolarityNeutral {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	all, err := m.store.All(ctx, true)
	if err != nil {
		return wrapError("Reward", err)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].LastAccessed.After(all[j].LastAccessed) })
	if len(all) > recentN {
		all = all[:recentN]
	}

	for i, r := range all {
		discount := reward.Discount(i)
		applyRewardOne(r, fb.Polarity, magnitude, discount)
		if err := m.store.Update(ctx, r); err != nil {
			return wrapError("Reward", err)
		}
	}
	m.observeMetric("reward_confidence", fb.Confidence)
	return nil
}

func applyRewardOne(r *store.Record, polarity Polarity, magnitude, discount float64) {
	switch polarity {
	case PolarityPositive:
		r.Importance, r.WorkingStrength = reward.ApplyPositive(r.Importance, r.WorkingStrength, magnitude, discount)
	case PolarityNegative:
		r.Importance, r.WorkingStrength = reward.ApplyNegative(r.Importance, r.WorkingStrength, magnitude, discount)
	}
}

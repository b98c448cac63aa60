// Package reward implements feedback-polarity detection and
// discount-modulated reward application over the most-recently-accessed
// memories.
package reward

import "strings"

// Polarity is the outcome of detecting feedback sentiment in free text.
type Polarity string

const (
	Positive Polarity = "positive"
	Negative Polarity = "negative"
	Neutral  Polarity = "neutral"
)

// DefaultPositiveWords and DefaultNegativeWords are the default wordlists;
// hosts may supply their own via DetectFeedback's word-list arguments.
var (
	DefaultPositiveWords = []string{
		"great", "perfect", "thanks", "thank you", "exactly", "correct",
		"awesome", "love it", "nice", "good job", "well done", "helpful",
	}
	DefaultNegativeWords = []string{
		"wrong", "no", "not right", "incorrect", "bad", "terrible",
		"useless", "hate it", "stop", "never mind", "mistake",
	}
)

// Feedback is the result of DetectFeedback: a polarity plus a confidence
// in [0,1].
type Feedback struct {
	Polarity   Polarity
	Confidence float64
}

// DetectFeedback matches lowercased substrings of text against positive
// and negative wordlists. Confidence follows min(0.95, 0.3+0.2*#matches)
// over whichever polarity had the most hits; a tie or no hits is neutral
// with confidence 0.
func DetectFeedback(text string, positiveWords, negativeWords []string) Feedback {
	lower := strings.ToLower(text)
	posHits := countMatches(lower, positiveWords)
	negHits := countMatches(lower, negativeWords)

	switch {
	case posHits == 0 && negHits == 0:
		return Feedback{Polarity: Neutral, Confidence: 0}
	case posHits > negHits:
		return Feedback{Polarity: Positive, Confidence: confidenceFor(posHits)}
	case negHits > posHits:
		return Feedback{Polarity: Negative, Confidence: confidenceFor(negHits)}
	default:
		return Feedback{Polarity: Neutral, Confidence: 0}
	}
}

func countMatches(lowerText string, words []string) int {
	var n int
	for _, w := range words {
		if w == "" {
			continue
		}
		if strings.Contains(lowerText, strings.ToLower(w)) {
			n++
		}
	}
	return n
}

func confidenceFor(matches int) float64 {
	c := 0.3 + 0.2*float64(matches)
	if c > 0.95 {
		c = 0.95
	}
	return c
}

// Discount computes 1/(1+0.5*i) for the i-th (0-indexed) most-recently
// accessed entry in a reward batch.
func Discount(i int) float64 {
	return 1 / (1 + 0.5*float64(i))
}

// ApplyPositive computes the new importance and working_strength for a
// positive-polarity reward at the given discount. importance is capped at
// 1; working_strength is not capped.
func ApplyPositive(importance, workingStrength, magnitude, discount float64) (newImportance, newWorking float64) {
	newImportance = importance + magnitude*discount
	if newImportance > 1 {
		newImportance = 1
	}
	newWorking = workingStrength + 0.05*discount
	return newImportance, newWorking
}

// ApplyNegative computes the new importance and working_strength for a
// negative-polarity reward at the given discount.
func ApplyNegative(importance, workingStrength, magnitude, discount float64) (newImportance, newWorking float64) {
	newImportance = importance - magnitude*discount
	if newImportance < 0 {
		newImportance = 0
	}
	newWorking = workingStrength * (1 - 0.1*discount)
	return newImportance, newWorking
}

package search

import (
	"math"
	"time"
)

// Relevance is a fixed linear blend of three factors. The weights and the
// recency thresholds are design constants; changing them changes ranking
// output for identical inputs.
const (
	weightTermFreq = 0.5
	weightRecency  = 0.3
	weightUsage    = 0.2

	// usageSaturation is the access count at which the usage score caps
	// out at 1.0.
	usageSaturation = 10
)

// relevance computes the document's score for the given query terms at time
// now. Caller holds e.mu.
func (e *Engine) relevance(id string, terms []string, now time.Time) float64 {
	avgTF := 0.0
	if len(terms) > 0 {
		sum := 0.0
		for _, term := range terms {
			sum += e.termFrequency(id, term)
		}
		avgTF = sum / float64(len(terms))
	}

	score := weightTermFreq*avgTF +
		weightRecency*e.recencyScore(id, now) +
		weightUsage*e.usageScore(id)
	return math.Round(score*10000) / 10000
}

// termFrequency returns the term's occurrence count in the document
// normalized by the document's total token count. Absent terms and empty
// documents score 0.
func (e *Engine) termFrequency(id, term string) float64 {
	freqs, ok := e.termFreqs[id]
	if !ok {
		return 0
	}
	count := freqs[term]
	if count == 0 {
		return 0
	}
	total := e.docLengths[id]
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total)
}

// recencyScore step-decays with the time since the most recent recorded
// access: 1.0 within an hour, 0.7 within a day, 0.4 within a week, 0.1
// beyond that. Documents never accessed score 0.
func (e *Engine) recencyScore(id string, now time.Time) float64 {
	entries := e.history[id]
	if len(entries) == 0 {
		return 0.0
	}
	elapsed := now.Sub(entries[len(entries)-1])
	switch {
	case elapsed < time.Hour:
		return 1.0
	case elapsed < 24*time.Hour:
		return 0.7
	case elapsed < 7*24*time.Hour:
		return 0.4
	default:
		return 0.1
	}
}

// usageScore grows linearly with the recorded access count and saturates at
// 1.0 once the document has been touched usageSaturation times.
func (e *Engine) usageScore(id string) float64 {
	count := len(e.history[id])
	return math.Min(1.0, float64(count)/usageSaturation)
}

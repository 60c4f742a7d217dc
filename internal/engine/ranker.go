package engine

import (
	"math"
	"sort"

	"github.com/clinical-dss-server/internal/domain"
)

// Ranker converts raw class probabilities into a ranked prediction list
// with integer percentage confidences.
type Ranker struct{}

// NewRanker creates a prediction ranker.
func NewRanker() *Ranker {
	return &Ranker{}
}

// Rank sorts disease probabilities into a non-increasing prediction list.
// Confidence is the probability rounded to the nearest whole percent. Ties
// keep the fixed disease declaration order; entries that round to the same
// confidence are kept separate, never merged. Only strictly positive
// probabilities appear, but the list always contains at least the argmax.
func (r *Ranker) Rank(probs map[domain.Disease]float64) domain.PredictionList {
	type scored struct {
		disease domain.Disease
		prob    float64
	}

	// Walk diseases in declaration order so the stable sort below resolves
	// equal probabilities deterministically.
	entries := make([]scored, 0, len(domain.AllDiseases))
	best := scored{prob: math.Inf(-1)}
	for _, d := range domain.AllDiseases {
		p, ok := probs[d]
		if !ok {
			continue
		}
		if p > best.prob {
			best = scored{disease: d, prob: p}
		}
		if p > 0 {
			entries = append(entries, scored{disease: d, prob: p})
		}
	}

	if len(entries) == 0 && best.disease != "" {
		entries = append(entries, best)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].prob > entries[j].prob
	})

	ranked := make(domain.PredictionList, len(entries))
	for i, e := range entries {
		ranked[i] = domain.PredictionEntry{
			Disease:    e.disease,
			Confidence: int(math.Round(e.prob * 100)),
		}
	}
	return ranked
}

package stats

import (
	"sort"

	"github.com/verte-zerg/kanadrill/internal/model"
	"github.com/verte-zerg/kanadrill/internal/quiz"
)

// SelectWeakKana selects the lowest-accuracy symbols from aggregates.
// Symbols never missed are not weak and are skipped.
func SelectWeakKana(aggs []model.KanaAggregate, top int) map[string]struct{} {
	weakSet := map[string]struct{}{}
	candidates := make([]model.KanaAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Incorrect > 0 {
			candidates = append(candidates, agg)
		}
	}
	if len(candidates) == 0 {
		return weakSet
	}
	sort.Slice(candidates, func(i, j int) bool {
		ai := quiz.Accuracy(candidates[i].Correct, candidates[i].Incorrect)
		aj := quiz.Accuracy(candidates[j].Correct, candidates[j].Incorrect)
		if ai == aj {
			if candidates[i].Incorrect == candidates[j].Incorrect {
				return candidates[i].Symbol < candidates[j].Symbol
			}
			return candidates[i].Incorrect > candidates[j].Incorrect
		}
		return ai < aj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	for i := 0; i < top; i++ {
		weakSet[candidates[i].Symbol] = struct{}{}
	}
	return weakSet
}

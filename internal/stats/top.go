package stats

import (
	"sort"

	"github.com/verte-zerg/kanadrill/internal/model"
)

// TopKanaByMisses returns the top N symbols by incorrect answers.
func TopKanaByMisses(aggs []model.KanaAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	items := make([]model.KanaAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Incorrect > 0 {
			items = append(items, agg)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Incorrect == items[j].Incorrect {
			return items[i].Symbol < items[j].Symbol
		}
		return items[i].Incorrect > items[j].Incorrect
	})
	if n > len(items) {
		n = len(items)
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, items[i].Symbol)
	}
	return out
}

// internal/scoring/ranker.go
package scoring

import (
	"sort"

	"pushgen-workers/internal/models"
)

// Rank orders a BenefitMap into a deterministic descending list. Equal
// benefits keep catalog declaration order (the slice is seeded in catalog
// order and the sort is stable). Products missing from the map rank with a
// zero benefit so the output always covers the full catalog.
func Rank(benefits BenefitMap) []models.RankedProduct {
	ranked := make([]models.RankedProduct, 0, len(Catalog))
	for _, product := range Catalog {
		ranked = append(ranked, models.RankedProduct{
			Product: product,
			Benefit: benefits[product],
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Benefit > ranked[j].Benefit
	})
	return ranked
}

// RuleConfidence converts a ranking into a confidence in [0, 1]: the top
// benefit's share of the total. A map that sums to zero carries no signal
// and yields zero.
func RuleConfidence(ranked []models.RankedProduct) float64 {
	if len(ranked) == 0 {
		return 0
	}
	total := 0.0
	for _, r := range ranked {
		total += r.Benefit
	}
	if total <= 0 {
		return 0
	}
	return ranked[0].Benefit / total
}

// internal/push/behavior.go
package push

import (
	"sort"

	"pushgen-workers/internal/models"
)

// TaxiCategory is the spend category counted for the taxi-usage fact.
const TaxiCategory = "Taxi"

// BehaviorSummary is the compact spending picture handed to prompt building
// and the template fallback.
type BehaviorSummary struct {
	TopCategories []string `json:"topCategories"`
	TaxiCount     int      `json:"taxiCount"`
	TravelSum     float64  `json:"travelSum"`
}

// BuildBehavior summarizes 3 months of transactions. travelCategories is the
// same list the scoring rates carry. Safe on empty input.
func BuildBehavior(tx []models.Transaction, travelCategories []string) BehaviorSummary {
	summary := BehaviorSummary{TopCategories: []string{}}
	if len(tx) == 0 {
		return summary
	}

	travel := make(map[string]bool, len(travelCategories))
	for _, c := range travelCategories {
		travel[c] = true
	}

	catSpend := make(map[string]float64)
	for _, t := range tx {
		amount := t.Amount
		if amount < 0 {
			amount = 0
		}
		catSpend[t.Category] += amount
		if t.Category == TaxiCategory {
			summary.TaxiCount++
		}
		if travel[t.Category] {
			summary.TravelSum += amount
		}
	}

	type entry struct {
		category string
		spend    float64
	}
	entries := make([]entry, 0, len(catSpend))
	for c, s := range catSpend {
		entries = append(entries, entry{c, s})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].spend != entries[j].spend {
			return entries[i].spend > entries[j].spend
		}
		return entries[i].category < entries[j].category
	})
	for i, e := range entries {
		if i == 3 {
			break
		}
		summary.TopCategories = append(summary.TopCategories, e.category)
	}
	return summary
}

// internal/push/format.go
package push

import (
	"fmt"
	"strings"
	"time"

	"pushgen-workers/internal/models"
)

// FormatKZT renders an amount the way the channel guidelines require:
// thousands separated by spaces, no decimals, tenge sign at the end,
// e.g. "27 400 ₸".
func FormatKZT(amount float64) string {
	if amount < 0 {
		amount = 0
	}
	raw := fmt.Sprintf("%.0f", amount)
	var b strings.Builder
	for i, d := range raw {
		if i > 0 && (len(raw)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(d)
	}
	return b.String() + " ₸"
}

// ReferenceMonth picks the month the push text refers to: the most frequent
// month among the transaction dates, or the previous calendar month when no
// dates parse. Ties between equally frequent months go to the earlier one.
func ReferenceMonth(tx []models.Transaction, now time.Time) time.Month {
	counts := make(map[time.Month]int)
	for _, t := range tx {
		parsed, err := time.Parse("2006-01-02", t.Date)
		if err != nil {
			continue
		}
		counts[parsed.Month()]++
	}
	if len(counts) == 0 {
		prev := now.Month() - 1
		if prev < time.January {
			prev = time.December
		}
		return prev
	}
	best := time.January
	bestCount := -1
	for m := time.January; m <= time.December; m++ {
		if counts[m] > bestCount {
			best = m
			bestCount = counts[m]
		}
	}
	return best
}

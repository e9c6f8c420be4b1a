// internal/push/format_test.go
package push

import (
	"testing"
	"time"

	"pushgen-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestFormatKZT(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected string
	}{
		{"thousands separator", 27400, "27 400 ₸"},
		{"millions", 1234567, "1 234 567 ₸"},
		{"below a thousand", 990, "990 ₸"},
		{"rounds to whole tenge", 27400.49, "27 400 ₸"},
		{"zero", 0, "0 ₸"},
		{"negative clamps to zero", -500, "0 ₸"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatKZT(tt.amount))
		})
	}
}

func TestReferenceMonth_ModeOfTransactionMonths(t *testing.T) {
	tx := []models.Transaction{
		{Date: "2025-05-20"},
		{Date: "2025-06-03"},
		{Date: "2025-06-17"},
		{Date: "2025-06-29"},
	}

	month := ReferenceMonth(tx, time.Date(2025, 8, 30, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, time.June, month)
}

func TestReferenceMonth_TieGoesToEarlierMonth(t *testing.T) {
	tx := []models.Transaction{
		{Date: "2025-05-20"},
		{Date: "2025-06-03"},
	}

	month := ReferenceMonth(tx, time.Date(2025, 8, 30, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, time.May, month)
}

func TestReferenceMonth_NoParsableDates(t *testing.T) {
	tests := []struct {
		name     string
		tx       []models.Transaction
		now      time.Time
		expected time.Month
	}{
		{"empty", nil, time.Date(2025, 8, 30, 0, 0, 0, 0, time.UTC), time.July},
		{"garbage dates", []models.Transaction{{Date: "not-a-date"}}, time.Date(2025, 8, 30, 0, 0, 0, 0, time.UTC), time.July},
		{"january wraps to december", nil, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), time.December},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ReferenceMonth(tt.tx, tt.now))
		})
	}
}

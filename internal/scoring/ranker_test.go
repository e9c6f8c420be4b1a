// internal/scoring/ranker_test.go
package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRank_SortedDescending(t *testing.T) {
	benefits := BenefitMap{
		ProductTravelCard:     12000,
		ProductDepositSavings: 20625,
		ProductCreditCard:     8000,
	}

	ranked := Rank(benefits)

	require.Len(t, ranked, len(Catalog))
	assert.Equal(t, ProductDepositSavings, ranked[0].Product)
	assert.Equal(t, ProductTravelCard, ranked[1].Product)
	assert.Equal(t, ProductCreditCard, ranked[2].Product)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Benefit, ranked[i].Benefit)
	}
}

func TestRank_CatalogOrderOnTies(t *testing.T) {
	// All zero: the output must be exactly the catalog declaration order.
	ranked := Rank(BenefitMap{})

	require.Len(t, ranked, len(Catalog))
	for i, product := range Catalog {
		assert.Equal(t, product, ranked[i].Product)
		assert.Zero(t, ranked[i].Benefit)
	}
}

func TestRank_PartialTiesKeepCatalogOrder(t *testing.T) {
	benefits := BenefitMap{
		ProductDepositMulti:   5000,
		ProductDepositSavings: 5000,
		ProductInvestments:    5000,
	}

	ranked := Rank(benefits)

	assert.Equal(t, ProductDepositMulti, ranked[0].Product)
	assert.Equal(t, ProductDepositSavings, ranked[1].Product)
	assert.Equal(t, ProductInvestments, ranked[2].Product)
}

func TestRank_MissingProductsRankZero(t *testing.T) {
	ranked := Rank(BenefitMap{ProductGoldBars: 1000})

	assert.Equal(t, ProductGoldBars, ranked[0].Product)
	for _, r := range ranked[1:] {
		assert.Zero(t, r.Benefit)
	}
}

func TestRank_Idempotent(t *testing.T) {
	benefits := BenefitMap{
		ProductTravelCard:  300,
		ProductPremiumCard: 300,
		ProductCreditCard:  900,
	}

	first := Rank(benefits)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Rank(benefits))
	}
}

func TestRuleConfidence(t *testing.T) {
	tests := []struct {
		name     string
		benefits BenefitMap
		expected float64
	}{
		{"dominant top", BenefitMap{ProductTravelCard: 9000, ProductCreditCard: 1000}, 0.9},
		{"even split keeps top share", BenefitMap{ProductTravelCard: 500, ProductCreditCard: 500}, 0.5},
		{"all zero", BenefitMap{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := RuleConfidence(Rank(tt.benefits))
			assert.InDelta(t, tt.expected, conf, 0.001)
		})
	}
}

func TestRuleConfidence_EmptyRanking(t *testing.T) {
	assert.Zero(t, RuleConfidence(nil))
}

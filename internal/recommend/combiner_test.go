// internal/recommend/combiner_test.go
package recommend

import (
	"testing"

	"pushgen-workers/internal/models"
	"pushgen-workers/internal/scoring"

	"github.com/stretchr/testify/assert"
)

func TestCombine_DecisionTable(t *testing.T) {
	tests := []struct {
		name               string
		ruleTop            *models.Prediction
		mlTop              *models.Prediction
		expectedProduct    string
		expectedConfidence float64
	}{
		{
			name:               "agreement boosts classifier confidence",
			ruleTop:            &models.Prediction{Product: scoring.ProductTravelCard, Confidence: 0.9},
			mlTop:              &models.Prediction{Product: scoring.ProductTravelCard, Confidence: 0.85},
			expectedProduct:    scoring.ProductTravelCard,
			expectedConfidence: 0.94,
		},
		{
			name:               "agreement caps at one",
			ruleTop:            &models.Prediction{Product: scoring.ProductPremiumCard, Confidence: 1.0},
			mlTop:              &models.Prediction{Product: scoring.ProductPremiumCard, Confidence: 0.95},
			expectedProduct:    scoring.ProductPremiumCard,
			expectedConfidence: 1.0,
		},
		{
			name:               "disagreement discounts classifier",
			ruleTop:            &models.Prediction{Product: scoring.ProductDepositSavings, Confidence: 0.6},
			mlTop:              &models.Prediction{Product: scoring.ProductCreditCard, Confidence: 0.7},
			expectedProduct:    scoring.ProductCreditCard,
			expectedConfidence: 0.56,
		},
		{
			name:               "rules only pass through",
			ruleTop:            &models.Prediction{Product: scoring.ProductDepositSavings, Confidence: 0.62},
			mlTop:              nil,
			expectedProduct:    scoring.ProductDepositSavings,
			expectedConfidence: 0.62,
		},
		{
			name:               "classifier only passes through",
			ruleTop:            nil,
			mlTop:              &models.Prediction{Product: scoring.ProductGoldBars, Confidence: 0.55},
			expectedProduct:    scoring.ProductGoldBars,
			expectedConfidence: 0.55,
		},
		{
			name:               "no signal falls back",
			ruleTop:            nil,
			mlTop:              nil,
			expectedProduct:    scoring.ProductInvestments,
			expectedConfidence: 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Combine(tt.ruleTop, tt.mlTop)

			assert.Equal(t, tt.expectedProduct, result.Product)
			assert.InDelta(t, tt.expectedConfidence, result.Confidence, 0.0001)
		})
	}
}

func TestCombine_DoesNotMutateInputs(t *testing.T) {
	ruleTop := &models.Prediction{Product: scoring.ProductTravelCard, Confidence: 0.9}
	mlTop := &models.Prediction{Product: scoring.ProductTravelCard, Confidence: 0.85}

	Combine(ruleTop, mlTop)

	assert.Equal(t, 0.9, ruleTop.Confidence)
	assert.Equal(t, 0.85, mlTop.Confidence)
}

// internal/workers/recommendation/combine-recommendation/handler_test.go
package combinerecommendation

import (
	"context"
	"testing"
	"time"

	"pushgen-workers/internal/common/logger"
	"pushgen-workers/internal/models"
	"pushgen-workers/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func newTestLogger(t *testing.T) logger.Logger {
	return &testLogger{t: t}
}

func newHandler(t *testing.T) *Handler {
	return NewHandler(&Config{Timeout: time.Second}, newTestLogger(t))
}

func testRanking() []models.RankedProduct {
	return []models.RankedProduct{
		{Product: scoring.ProductTravelCard, Benefit: 27400},
		{Product: scoring.ProductCreditCard, Benefit: 18000},
		{Product: scoring.ProductDepositSavings, Benefit: 9000},
	}
}

// ==========================
// Decision Table Tests
// ==========================

func TestHandler_Execute_Agreement(t *testing.T) {
	handler := newHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		ClientCode:     7,
		RankedProducts: testRanking(),
		RuleTop:        &models.Prediction{Product: scoring.ProductTravelCard, Confidence: 0.4},
		MLAvailable:    true,
		MLTop:          &models.Prediction{Product: scoring.ProductTravelCard, Confidence: 0.9},
	})

	require.NoError(t, err)
	assert.Equal(t, scoring.ProductTravelCard, output.Product)
	// 0.9 + 0.4*0.1
	assert.InDelta(t, 0.94, output.Confidence, 0.0001)
	assert.Equal(t, MethodHybrid, output.PredictionMethod)
	assert.InDelta(t, 27400.0, output.ExpectedBenefit, 0.001)
}

func TestHandler_Execute_AgreementCappedAtOne(t *testing.T) {
	handler := newHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		RankedProducts: testRanking(),
		RuleTop:        &models.Prediction{Product: scoring.ProductTravelCard, Confidence: 0.9},
		MLAvailable:    true,
		MLTop:          &models.Prediction{Product: scoring.ProductTravelCard, Confidence: 0.98},
	})

	require.NoError(t, err)
	assert.Equal(t, 1.0, output.Confidence)
}

func TestHandler_Execute_Disagreement(t *testing.T) {
	handler := newHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		ClientCode:     8,
		RankedProducts: testRanking(),
		RuleTop:        &models.Prediction{Product: scoring.ProductTravelCard, Confidence: 0.4},
		MLAvailable:    true,
		MLTop:          &models.Prediction{Product: scoring.ProductCreditCard, Confidence: 0.7},
	})

	require.NoError(t, err)
	// The classifier's pick wins, discounted: 0.7 * 0.8
	assert.Equal(t, scoring.ProductCreditCard, output.Product)
	assert.InDelta(t, 0.56, output.Confidence, 0.0001)
	assert.Equal(t, MethodHybrid, output.PredictionMethod)
	assert.InDelta(t, 18000.0, output.ExpectedBenefit, 0.001)
}

func TestHandler_Execute_RulesOnly(t *testing.T) {
	handler := newHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		RankedProducts: testRanking(),
		RuleTop:        &models.Prediction{Product: scoring.ProductTravelCard, Confidence: 0.62},
		MLAvailable:    false,
	})

	require.NoError(t, err)
	assert.Equal(t, scoring.ProductTravelCard, output.Product)
	assert.InDelta(t, 0.62, output.Confidence, 0.0001)
	assert.Equal(t, MethodRules, output.PredictionMethod)
}

func TestHandler_Execute_MLOnly(t *testing.T) {
	handler := newHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		RankedProducts: testRanking(),
		RuleTop:        nil,
		MLAvailable:    true,
		MLTop:          &models.Prediction{Product: scoring.ProductGoldBars, Confidence: 0.55},
	})

	require.NoError(t, err)
	assert.Equal(t, scoring.ProductGoldBars, output.Product)
	assert.InDelta(t, 0.55, output.Confidence, 0.0001)
	assert.Equal(t, MethodML, output.PredictionMethod)
	assert.Equal(t, 0.0, output.ExpectedBenefit, "product outside the ranking has no benefit estimate")
}

func TestHandler_Execute_Fallback(t *testing.T) {
	handler := newHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		ClientCode:  9,
		MLAvailable: false,
	})

	require.NoError(t, err)
	assert.Equal(t, scoring.ProductInvestments, output.Product)
	assert.InDelta(t, 0.1, output.Confidence, 0.0001)
	assert.Equal(t, MethodFallback, output.PredictionMethod)
}

func TestHandler_Execute_ZeroConfidenceRulesTreatedAsAbsent(t *testing.T) {
	handler := newHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		RankedProducts: []models.RankedProduct{
			{Product: scoring.ProductTravelCard, Benefit: 0},
		},
		RuleTop:     &models.Prediction{Product: scoring.ProductTravelCard, Confidence: 0},
		MLAvailable: false,
	})

	require.NoError(t, err)
	assert.Equal(t, scoring.ProductInvestments, output.Product)
	assert.Equal(t, MethodFallback, output.PredictionMethod)
}

func TestHandler_Execute_MLAvailableButNilPrediction(t *testing.T) {
	handler := newHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		RankedProducts: testRanking(),
		RuleTop:        &models.Prediction{Product: scoring.ProductTravelCard, Confidence: 0.5},
		MLAvailable:    true,
		MLTop:          nil,
	})

	require.NoError(t, err)
	assert.Equal(t, scoring.ProductTravelCard, output.Product)
	assert.Equal(t, MethodRules, output.PredictionMethod)
}

func TestHandler_Execute_NilInput(t *testing.T) {
	handler := newHandler(t)

	output, err := handler.Execute(context.Background(), nil)
	assert.Error(t, err)
	assert.Nil(t, output)
}

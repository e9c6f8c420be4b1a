// internal/recommend/combiner.go
package recommend

import (
	"pushgen-workers/internal/models"
	"pushgen-workers/internal/scoring"
)

const (
	// agreementBoost scales the rule confidence added on top of the
	// classifier confidence when both pick the same product.
	agreementBoost = 0.1
	// disagreementDiscount scales the classifier confidence down when the
	// rule-based top pick differs.
	disagreementDiscount = 0.8
	// fallbackConfidence is attached to the hard-coded fallback product
	// when neither signal is available.
	fallbackConfidence = 0.1
)

// Combine merges the rule-based top pick with the classifier's top pick.
// Either side may be nil (absent). The decision table:
//
//   - rules only: the rule pick, unchanged
//   - classifier only: the classifier pick, unchanged
//   - both, same product: that product, confidence min(ml + rule*0.1, 1.0)
//   - both, different products: the classifier's product at ml*0.8
//
// With neither signal the caller still gets a recommendation: the fixed
// fallback product at low confidence.
func Combine(ruleTop, mlTop *models.Prediction) models.Prediction {
	switch {
	case ruleTop == nil && mlTop == nil:
		return models.Prediction{Product: scoring.ProductInvestments, Confidence: fallbackConfidence}
	case mlTop == nil:
		return *ruleTop
	case ruleTop == nil:
		return *mlTop
	case ruleTop.Product == mlTop.Product:
		confidence := mlTop.Confidence + ruleTop.Confidence*agreementBoost
		if confidence > 1.0 {
			confidence = 1.0
		}
		return models.Prediction{Product: mlTop.Product, Confidence: confidence}
	default:
		return models.Prediction{Product: mlTop.Product, Confidence: mlTop.Confidence * disagreementDiscount}
	}
}

// internal/workers/recommendation/combine-recommendation/models.go
package combinerecommendation

import "pushgen-workers/internal/models"

// Input joins the outputs of score-products and classify-client for one
// client. RuleTop is nil when the ranking carried no signal at all.
type Input struct {
	ClientCode     int                    `json:"clientCode"`
	RankedProducts []models.RankedProduct `json:"rankedProducts"`
	RuleTop        *models.Prediction     `json:"ruleTop,omitempty"`
	MLAvailable    bool                   `json:"classifierAvailable"`
	MLTop          *models.Prediction     `json:"mlTop,omitempty"`
}

type Output struct {
	ClientCode       int     `json:"clientCode"`
	Product          string  `json:"product"`
	Confidence       float64 `json:"confidence"`
	ExpectedBenefit  float64 `json:"expectedBenefit"`
	PredictionMethod string  `json:"predictionMethod"`
}

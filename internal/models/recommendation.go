// internal/models/recommendation.go
package models

// Prediction is a (product, confidence) pair produced either by the
// rule-based ranking or by the external classifier.
type Prediction struct {
	Product    string  `json:"product"`
	Confidence float64 `json:"confidence"`
}

// RankedProduct is one entry of the deterministic benefit ranking.
type RankedProduct struct {
	Product string  `json:"product"`
	Benefit float64 `json:"benefit"`
}

// Recommendation is the final per-client result handed to push generation
// and eventually serialized by orchestration code.
type Recommendation struct {
	ClientCode       int                    `json:"clientCode"`
	Product          string                 `json:"product"`
	Confidence       float64                `json:"confidence"`
	ExpectedBenefit  float64                `json:"expectedBenefit"`
	PredictionMethod string                 `json:"predictionMethod"`
	PushNotification string                 `json:"pushNotification,omitempty"`
	Facts            map[string]interface{} `json:"facts,omitempty"`
}

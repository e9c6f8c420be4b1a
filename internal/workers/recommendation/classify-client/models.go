// internal/workers/recommendation/classify-client/models.go
package classifyclient

import "pushgen-workers/internal/models"

// Input is the same client bundle the scoring worker sees. The classifier
// derives its own features from it server-side.
type Input struct {
	Profile      models.ClientProfile `json:"profile"`
	Transactions []models.Transaction `json:"transactions"`
	Transfers    []models.Transfer    `json:"transfers"`
}

// Output reports the classifier verdict. Available=false is an expected
// outcome, not an error: the process continues on rules alone.
type Output struct {
	Available  bool               `json:"classifierAvailable"`
	Prediction *models.Prediction `json:"mlTop,omitempty"`
}

// classifierRequest is the wire shape sent to the classifier service.
type classifierRequest struct {
	ClientCode   int                  `json:"clientCode"`
	Status       string               `json:"status"`
	Age          int                  `json:"age"`
	AvgBalance   float64              `json:"avgMonthlyBalanceKZT"`
	Transactions []models.Transaction `json:"transactions"`
	Transfers    []models.Transfer    `json:"transfers"`
}

// classifierResponse is the wire shape returned by the classifier service.
type classifierResponse struct {
	Product    string  `json:"product"`
	Confidence float64 `json:"confidence"`
}

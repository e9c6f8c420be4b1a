// internal/workers/recommendation/score-products/models.go
package scoreproducts

import (
	"pushgen-workers/internal/models"
	"pushgen-workers/internal/scoring"
)

// Input carries one client's observation window, usually produced by the
// fetch-client-data worker earlier in the process.
type Input struct {
	Profile      models.ClientProfile `json:"profile"`
	Transactions []models.Transaction `json:"transactions"`
	Transfers    []models.Transfer    `json:"transfers"`
}

type Output struct {
	RankedProducts []models.RankedProduct `json:"rankedProducts"`
	RuleTop        models.Prediction      `json:"ruleTop"`
	Facts          scoring.FactMap        `json:"facts"`
}

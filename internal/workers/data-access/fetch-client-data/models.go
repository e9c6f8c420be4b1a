// internal/workers/data-access/fetch-client-data/models.go
package fetchclientdata

import "pushgen-workers/internal/models"

type Input struct {
	ClientCode int `json:"clientCode"`
}

// Output is the bundle every downstream worker consumes. Empty transaction
// or transfer tables are a valid state and serialize as empty arrays.
type Output struct {
	Profile      models.ClientProfile `json:"profile"`
	Transactions []models.Transaction `json:"transactions"`
	Transfers    []models.Transfer    `json:"transfers"`
	FromCache    bool                 `json:"fromCache"`
}

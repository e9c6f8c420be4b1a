// internal/recommend/predictor.go
package recommend

import (
	"context"

	"pushgen-workers/internal/models"
)

// Predictor is the single capability the Combiner depends on: produce a
// ranked list of (product, score) pairs for a client. Adapters hide whether
// the underlying model emits probabilities, margin scores, or a bare label.
type Predictor interface {
	Predict(ctx context.Context, data models.ClientData) ([]models.Prediction, error)
}

// internal/workers/push/generate-push/models.go
package generatepush

import "pushgen-workers/internal/models"

type Input struct {
	Profile         models.ClientProfile `json:"profile"`
	Transactions    []models.Transaction `json:"transactions"`
	Product         string               `json:"product"`
	ExpectedBenefit float64              `json:"expectedBenefit"`
}

type Output struct {
	PushText  string `json:"pushText"`
	Generator string `json:"generator"` // "genai" or "template"
}

// Generators
const (
	GeneratorGenAI    = "genai"
	GeneratorTemplate = "template"
)

// Chat-completions wire format, the subset we use.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// internal/workers/push/send-push/models.go
package sendpush

type Input struct {
	ClientCode int    `json:"clientCode"`
	Product    string `json:"product"`
	PushText   string `json:"pushText"`
}

type Output struct {
	MessageID string `json:"messageId"`
	Status    string `json:"status"` // "sent", "failed", "disabled"
	SentAt    string `json:"sentAt"` // ISO 8601
}

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

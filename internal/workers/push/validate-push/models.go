// internal/workers/push/validate-push/models.go
package validatepush

type Input struct {
	ClientCode      int     `json:"clientCode"`
	Product         string  `json:"product"`
	Confidence      float64 `json:"confidence"`
	ExpectedBenefit float64 `json:"expectedBenefit"`
	PushText        string  `json:"pushText"`
}

type Output struct {
	PushText  string   `json:"pushText"`
	Valid     bool     `json:"pushValid"`
	Corrected bool     `json:"pushCorrected"`
	Issues    []string `json:"pushIssues,omitempty"`
}

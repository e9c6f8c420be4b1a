// internal/workers/push/generate-push/handler.go
package generatepush

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	httpclient "pushgen-workers/internal/common/http"
	"pushgen-workers/internal/common/logger"
	"pushgen-workers/internal/common/metrics"
	"pushgen-workers/internal/push"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "generate-push"
)

const systemPrompt = `You write short push notifications for a retail bank. ` +
	`Address the client in second person, keep the text between 180 and 220 characters, ` +
	`use at most one exclamation mark, no shouting in caps, and end with a short call to action. ` +
	`Amounts are in tenge, formatted like "27 400 ₸". Reply with the notification text only.`

type Handler struct {
	config     *Config
	httpClient *httpclient.Client
	logger     logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config:     config,
		httpClient: httpclient.NewClient(config.Timeout),
		logger:     log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "GENERATION_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("nil input")
	}
	if input.Product == "" {
		return nil, fmt.Errorf("missing product")
	}

	refMonth := push.ReferenceMonth(input.Transactions, time.Now())
	behavior := push.BuildBehavior(input.Transactions, h.config.TravelCategories)

	if h.config.BaseURL != "" {
		text, err := h.callGenAI(ctx, input, behavior, refMonth)
		if err == nil && text != "" {
			return &Output{PushText: text, Generator: GeneratorGenAI}, nil
		}
		// Generation is best-effort. The template path always produces
		// a deliverable text, so a dead endpoint never stalls the flow.
		h.logger.Warn("generation fell back to template", map[string]interface{}{
			"clientCode": input.Profile.ClientCode,
			"product":    input.Product,
			"error":      err,
		})
	}

	text := push.GenerateTemplatePush(input.Profile, behavior, input.Product, input.ExpectedBenefit, refMonth)
	return &Output{PushText: text, Generator: GeneratorTemplate}, nil
}

// callGenAI sends the facts block to a chat-completions endpoint. Any
// transport, status, or decode problem is reported to the caller, which
// owns the template fallback.
func (h *Handler) callGenAI(ctx context.Context, input *Input, behavior push.BehaviorSummary, refMonth time.Month) (string, error) {
	facts := h.buildFacts(input, behavior, refMonth)

	payload := chatRequest{
		Model: h.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: facts},
		},
		Temperature: 0.4,
		MaxTokens:   200,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal generation request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, h.config.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.config.APIKey)
	}

	resp, err := h.httpClient.DoWithContext(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation endpoint returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode generation response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("generation response has no choices")
	}

	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	text = strings.Trim(text, `"`)
	return text, nil
}

func (h *Handler) buildFacts(input *Input, behavior push.BehaviorSummary, refMonth time.Month) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Client name: %s\n", input.Profile.Name)
	fmt.Fprintf(&b, "Status: %s, city: %s\n", input.Profile.Status, input.Profile.City)
	fmt.Fprintf(&b, "Recommended product: %s\n", input.Product)
	fmt.Fprintf(&b, "Expected monthly benefit: %s\n", push.FormatKZT(input.ExpectedBenefit))
	fmt.Fprintf(&b, "Reference month: %s\n", refMonth)
	if len(behavior.TopCategories) > 0 {
		fmt.Fprintf(&b, "Top spending categories: %s\n", strings.Join(behavior.TopCategories, ", "))
	}
	if behavior.TaxiCount > 0 {
		fmt.Fprintf(&b, "Taxi rides: %d\n", behavior.TaxiCount)
	}
	if behavior.TravelSum > 0 {
		fmt.Fprintf(&b, "Travel spend: %s\n", push.FormatKZT(behavior.TravelSum))
	}
	return b.String()
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

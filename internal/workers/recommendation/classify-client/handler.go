// internal/workers/recommendation/classify-client/handler.go
package classifyclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	httpclient "pushgen-workers/internal/common/http"
	"pushgen-workers/internal/common/logger"
	"pushgen-workers/internal/common/metrics"
	"pushgen-workers/internal/models"
	"pushgen-workers/internal/scoring"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "classify-client"
)

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

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout*time.Duration(h.config.Retries+1))
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		// The classifier never blocks the workflow. Anything unexpected
		// still completes the job, just without an ML verdict.
		h.logger.Warn("classification skipped", map[string]interface{}{
			"clientCode": input.Profile.ClientCode,
			"error":      err,
		})
		output = &Output{Available: false}
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("nil input")
	}
	if h.config.BaseURL == "" {
		// No classifier deployed. Expected in rules-only environments.
		return &Output{Available: false}, nil
	}

	resp, err := h.callClassifier(ctx, input)
	if err != nil {
		h.logger.Warn("classifier unavailable", map[string]interface{}{
			"clientCode": input.Profile.ClientCode,
			"error":      err,
		})
		return &Output{Available: false}, nil
	}

	if !scoring.IsCatalogProduct(resp.Product) {
		h.logger.Warn("classifier returned unknown product", map[string]interface{}{
			"clientCode": input.Profile.ClientCode,
			"product":    resp.Product,
		})
		return &Output{Available: false}, nil
	}

	confidence := resp.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return &Output{
		Available: true,
		Prediction: &models.Prediction{
			Product:    resp.Product,
			Confidence: confidence,
		},
	}, nil
}

// callClassifier posts the client bundle with bounded retries. Only the
// transport layer is retried; a well-formed non-200 answer is final.
func (h *Handler) callClassifier(ctx context.Context, input *Input) (*classifierResponse, error) {
	payload := classifierRequest{
		ClientCode:   input.Profile.ClientCode,
		Status:       string(input.Profile.Status),
		Age:          input.Profile.Age,
		AvgBalance:   input.Profile.AvgMonthlyBalance,
		Transactions: input.Transactions,
		Transfers:    input.Transfers,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal classifier request: %w", err)
	}

	var lastErr error
	delay := 200 * time.Millisecond

	for attempt := 0; attempt <= h.config.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			delay *= 2
		}

		req, err := http.NewRequest(http.MethodPost, h.config.BaseURL+"/predict", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("build classifier request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := h.httpClient.DoWithContext(ctx, req)
		if err != nil {
			lastErr = err
			continue
		}

		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("classifier returned status %d", resp.StatusCode)
		}

		var parsed classifierResponse
		if err := json.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("decode classifier response: %w", err)
		}
		return &parsed, nil
	}

	return nil, fmt.Errorf("classifier unreachable after %d attempts: %w", h.config.Retries+1, lastErr)
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

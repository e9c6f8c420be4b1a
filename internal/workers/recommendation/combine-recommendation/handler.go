// internal/workers/recommendation/combine-recommendation/handler.go
package combinerecommendation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pushgen-workers/internal/common/logger"
	"pushgen-workers/internal/common/metrics"
	"pushgen-workers/internal/models"
	"pushgen-workers/internal/recommend"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "combine-recommendation"
)

// Prediction methods reported downstream.
const (
	MethodHybrid   = "hybrid"
	MethodRules    = "rules"
	MethodML       = "ml"
	MethodFallback = "fallback"
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		h.failJob(client, job, "COMBINE_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("nil input")
	}

	ruleTop := input.RuleTop
	if ruleTop != nil && ruleTop.Confidence <= 0 {
		// A zero-confidence ranking carries no signal.
		ruleTop = nil
	}

	var mlTop *models.Prediction
	if input.MLAvailable {
		mlTop = input.MLTop
	}

	combined := recommend.Combine(ruleTop, mlTop)
	method := predictionMethod(ruleTop, mlTop)

	output := &Output{
		ClientCode:       input.ClientCode,
		Product:          combined.Product,
		Confidence:       combined.Confidence,
		ExpectedBenefit:  benefitFor(input.RankedProducts, combined.Product),
		PredictionMethod: method,
	}

	h.logger.Info("recommendation combined", map[string]interface{}{
		"clientCode": output.ClientCode,
		"product":    output.Product,
		"confidence": output.Confidence,
		"method":     method,
	})
	metrics.RecommendationsByProduct.WithLabelValues(output.Product, method).Inc()

	return output, nil
}

func predictionMethod(ruleTop, mlTop *models.Prediction) string {
	switch {
	case ruleTop != nil && mlTop != nil:
		return MethodHybrid
	case ruleTop != nil:
		return MethodRules
	case mlTop != nil:
		return MethodML
	default:
		return MethodFallback
	}
}

func benefitFor(ranked []models.RankedProduct, product string) float64 {
	for _, r := range ranked {
		if r.Product == product {
			return r.Benefit
		}
	}
	return 0
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

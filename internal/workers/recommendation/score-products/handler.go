// internal/workers/recommendation/score-products/handler.go
package scoreproducts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pushgen-workers/internal/common/logger"
	"pushgen-workers/internal/common/metrics"
	"pushgen-workers/internal/models"
	"pushgen-workers/internal/scoring"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "score-products"
)

var (
	ErrScoringFailed = errors.New("SCORING_FAILED")
)

type Handler struct {
	config     *Config
	calculator *scoring.Calculator
	logger     logger.Logger
}

// NewHandler expects an already validated Calculator: rate configuration
// problems abort process startup, not individual jobs.
func NewHandler(config *Config, calc *scoring.Calculator, log logger.Logger) *Handler {
	return &Handler{
		config:     config,
		calculator: calc,
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
		h.failJob(client, job, "SCORING_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: nil input", ErrScoringFailed)
	}

	benefits, facts := h.calculator.ComputeBenefits(input.Profile, input.Transactions, input.Transfers)
	ranked := scoring.Rank(benefits)
	confidence := scoring.RuleConfidence(ranked)

	h.logger.Info("products scored", map[string]interface{}{
		"clientCode": input.Profile.ClientCode,
		"topProduct": ranked[0].Product,
		"topBenefit": ranked[0].Benefit,
		"confidence": confidence,
	})

	return &Output{
		RankedProducts: ranked,
		RuleTop: models.Prediction{
			Product:    ranked[0].Product,
			Confidence: confidence,
		},
		Facts: facts,
	}, nil
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

// internal/workers/push/validate-push/handler.go
package validatepush

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"pushgen-workers/internal/common/logger"
	"pushgen-workers/internal/common/metrics"
	"pushgen-workers/internal/push"
	"pushgen-workers/internal/scoring"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/xeipuuv/gojsonschema"
)

const (
	TaskType = "validate-push"
)

// envelopeSchema guards the structured part of the result before the text
// rules run. Field names match the recommendation payload on the wire.
const envelopeSchema = `{
	"type": "object",
	"required": ["clientCode", "product", "pushText"],
	"properties": {
		"clientCode": {"type": "integer", "minimum": 1},
		"product": {"type": "string", "minLength": 1},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"expectedBenefit": {"type": "number", "minimum": 0},
		"pushText": {"type": "string", "minLength": 1}
	}
}`

type Handler struct {
	config *Config
	schema *gojsonschema.Schema
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) (*Handler, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(envelopeSchema))
	if err != nil {
		return nil, fmt.Errorf("compile envelope schema: %w", err)
	}

	return &Handler{
		config: config,
		schema: schema,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}, nil
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
		h.failJob(client, job, "PUSH_VALIDATION_FAILED", err.Error())
		return
	}

	if !output.Valid {
		h.failJob(client, job, "PUSH_VALIDATION_FAILED", strings.Join(output.Issues, "; "))
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("nil input")
	}

	issues := h.validateEnvelope(input)

	text := input.PushText
	result := push.ValidatePush(text)
	corrected := false

	if !result.OK && h.config.AutocorrectOnce {
		// One corrective pass only. If the fixed text still breaks the
		// rules the job fails, it never loops.
		text = push.Autocorrect(text)
		result = push.ValidatePush(text)
		corrected = true
	}

	issues = append(issues, result.Issues...)

	if len(issues) > 0 {
		for _, issue := range issues {
			metrics.PushValidationFailures.WithLabelValues(ruleLabel(issue)).Inc()
		}
		h.logger.Warn("push rejected", map[string]interface{}{
			"clientCode": input.ClientCode,
			"product":    input.Product,
			"issues":     issues,
		})
	}

	return &Output{
		PushText:  text,
		Valid:     len(issues) == 0,
		Corrected: corrected,
		Issues:    issues,
	}, nil
}

// validateEnvelope runs the JSON schema over the structured payload and
// layers the catalog membership check on top.
func (h *Handler) validateEnvelope(input *Input) []string {
	var issues []string

	doc, err := json.Marshal(input)
	if err != nil {
		return []string{fmt.Sprintf("marshal payload: %v", err)}
	}

	result, err := h.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return []string{fmt.Sprintf("schema validation: %v", err)}
	}
	for _, desc := range result.Errors() {
		issues = append(issues, fmt.Sprintf("schema: %s", desc))
	}

	if input.Product != "" && !scoring.IsCatalogProduct(input.Product) {
		issues = append(issues, fmt.Sprintf("schema: product %q is not in the catalog", input.Product))
	}

	return issues
}

// ruleLabel collapses free-form issue text into a bounded metric label.
func ruleLabel(issue string) string {
	switch {
	case strings.HasPrefix(issue, "schema"):
		return "schema"
	case strings.HasPrefix(issue, "length"):
		return "length"
	case strings.Contains(issue, "uppercase"):
		return "caps"
	case strings.Contains(issue, "address"):
		return "address"
	case strings.Contains(issue, "exclamation"):
		return "exclamation"
	case strings.Contains(issue, "call-to-action"):
		return "cta"
	default:
		return "other"
	}
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

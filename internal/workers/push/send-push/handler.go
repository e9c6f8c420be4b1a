// internal/workers/push/send-push/handler.go
package sendpush

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	commonaws "pushgen-workers/internal/common/aws"
	"pushgen-workers/internal/common/logger"
	"pushgen-workers/internal/common/metrics"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "send-push"
)

var (
	ErrPushSendFailed = errors.New("PUSH_SEND_FAILED")
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput) (*sns.PublishOutput, error)
}

type Handler struct {
	config    *Config
	db        *sql.DB
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) (*Handler, error) {
	sesClient, err := commonaws.NewSESClient(context.Background(), config.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("init SES client: %w", err)
	}
	snsClient, err := commonaws.NewSNSClient(context.Background(), config.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("init SNS client: %w", err)
	}

	return &Handler{
		config:    config,
		db:        db,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
		sesClient: sesClient,
		snsClient: snsClient,
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
		h.failJob(client, job, "PUSH_SEND_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.PushText == "" {
		return nil, fmt.Errorf("missing push text")
	}

	messageID := uuid.New().String()
	sentAt := time.Now().UTC().Format(time.RFC3339)

	if !h.config.SMSEnabled && !h.config.EmailEnabled {
		return &Output{MessageID: messageID, Status: StatusDisabled, SentAt: sentAt}, nil
	}

	email, phone, err := h.getClientContact(ctx, input.ClientCode)
	if err != nil {
		h.logger.Warn("client contact not found", map[string]interface{}{
			"clientCode": input.ClientCode,
		})
		return &Output{MessageID: messageID, Status: StatusDisabled, SentAt: sentAt}, nil
	}

	smsSent := false
	emailSent := false

	if h.config.SMSEnabled && phone != "" {
		if err := h.sendSMS(ctx, phone, input.PushText); err != nil {
			return nil, fmt.Errorf("%w: sms to client %d: %v", ErrPushSendFailed, input.ClientCode, err)
		}
		smsSent = true
	}

	if h.config.EmailEnabled && email != "" {
		subject := fmt.Sprintf("Your offer: %s", input.Product)
		if err := h.sendEmail(ctx, email, subject, input.PushText); err != nil {
			return nil, fmt.Errorf("%w: email to client %d: %v", ErrPushSendFailed, input.ClientCode, err)
		}
		emailSent = true
	}

	status := StatusDisabled
	if smsSent || emailSent {
		status = StatusSent
	}

	h.logger.Info("push delivered", map[string]interface{}{
		"clientCode": input.ClientCode,
		"messageId":  messageID,
		"sms":        smsSent,
		"email":      emailSent,
	})

	return &Output{MessageID: messageID, Status: status, SentAt: sentAt}, nil
}

func (h *Handler) getClientContact(ctx context.Context, clientCode int) (string, string, error) {
	var email, phone sql.NullString
	err := h.db.QueryRowContext(ctx,
		`SELECT email, phone FROM clients WHERE client_code = $1`, clientCode).
		Scan(&email, &phone)
	if err != nil {
		return "", "", err
	}
	return email.String, phone.String, nil
}

func (h *Handler) sendSMS(ctx context.Context, to, message string) error {
	_, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}

func (h *Handler) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
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

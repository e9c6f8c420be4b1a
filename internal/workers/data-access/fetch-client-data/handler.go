// internal/workers/data-access/fetch-client-data/handler.go
package fetchclientdata

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pushgen-workers/internal/common/logger"
	"pushgen-workers/internal/common/metrics"
	"pushgen-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "fetch-client-data"
)

var (
	ErrClientNotFound = errors.New("CLIENT_NOT_FOUND")
)

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		redis:  redis,
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
		errorCode := "CLIENT_DATA_LOAD_FAILED"
		if errors.Is(err, ErrClientNotFound) {
			errorCode = "CLIENT_NOT_FOUND"
		}
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.ClientCode <= 0 {
		return nil, fmt.Errorf("%w: invalid client code", ErrClientNotFound)
	}

	if cached := h.getCached(ctx, input.ClientCode); cached != nil {
		cached.FromCache = true
		return cached, nil
	}

	profile, err := h.getProfile(ctx, input.ClientCode)
	if err != nil {
		return nil, err
	}

	transactions, err := h.getTransactions(ctx, input.ClientCode)
	if isMissingTable(err) {
		h.logger.Warn("transactions table missing, continuing with no transactions", map[string]interface{}{
			"clientCode": input.ClientCode,
		})
		transactions, err = []models.Transaction{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	transfers, err := h.getTransfers(ctx, input.ClientCode)
	if isMissingTable(err) {
		h.logger.Warn("transfers table missing, continuing with no transfers", map[string]interface{}{
			"clientCode": input.ClientCode,
		})
		transfers, err = []models.Transfer{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load transfers: %w", err)
	}

	output := &Output{
		Profile:      *profile,
		Transactions: transactions,
		Transfers:    transfers,
	}
	h.putCached(ctx, input.ClientCode, output)

	h.logger.Info("client data loaded", map[string]interface{}{
		"clientCode":   input.ClientCode,
		"transactions": len(transactions),
		"transfers":    len(transfers),
	})

	return output, nil
}

// isMissingTable reports whether err is a Postgres undefined_table error.
func isMissingTable(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "42P01"
}

func cacheKey(clientCode int) string {
	return fmt.Sprintf("client:data:%d", clientCode)
}

func (h *Handler) getCached(ctx context.Context, clientCode int) *Output {
	if h.redis == nil {
		return nil
	}
	val, err := h.redis.Get(ctx, cacheKey(clientCode)).Result()
	if err != nil {
		return nil
	}
	var output Output
	if err := json.Unmarshal([]byte(val), &output); err != nil {
		return nil
	}
	return &output
}

func (h *Handler) putCached(ctx context.Context, clientCode int, output *Output) {
	if h.redis == nil {
		return
	}
	data, err := json.Marshal(output)
	if err != nil {
		return
	}
	h.redis.Set(ctx, cacheKey(clientCode), data, h.config.CacheTTL)
}

func (h *Handler) getProfile(ctx context.Context, clientCode int) (*models.ClientProfile, error) {
	row := h.db.QueryRowContext(ctx, `
		SELECT name, status, age, city, avg_monthly_balance
		FROM clients WHERE client_code = $1`, clientCode)

	profile := models.ClientProfile{ClientCode: clientCode}
	var status string
	err := row.Scan(&profile.Name, &status, &profile.Age, &profile.City, &profile.AvgMonthlyBalance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: clientCode %d", ErrClientNotFound, clientCode)
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	profile.Status = models.ClientStatus(status)

	return &profile, nil
}

func (h *Handler) getTransactions(ctx context.Context, clientCode int) ([]models.Transaction, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT to_char(date, 'YYYY-MM-DD'), category, amount, currency
		FROM transactions WHERE client_code = $1
		ORDER BY date`, clientCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.Date, &t.Category, &t.Amount, &t.Currency); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (h *Handler) getTransfers(ctx context.Context, clientCode int) ([]models.Transfer, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT to_char(date, 'YYYY-MM-DD'), type, direction, amount, currency
		FROM transfers WHERE client_code = $1
		ORDER BY date`, clientCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transfers := []models.Transfer{}
	for rows.Next() {
		var t models.Transfer
		var transferType string
		if err := rows.Scan(&t.Date, &transferType, &t.Direction, &t.Amount, &t.Currency); err != nil {
			return nil, err
		}
		t.Type = models.TransferType(transferType)
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
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

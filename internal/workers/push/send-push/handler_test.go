// internal/workers/push/send-push/handler_test.go
package sendpush

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"pushgen-workers/internal/common/logger"
	"pushgen-workers/internal/scoring"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params)
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params)
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		SMSEnabled:   true,
		EmailEnabled: true,
		FromEmail:    "offers@bank.kz",
		AWSRegion:    "eu-central-1",
		Timeout:      30 * time.Second,
	}
}

func createTestInput() *Input {
	return &Input{
		ClientCode: 42,
		Product:    scoring.ProductTravelCard,
		PushText:   "Aigerim, you took taxis often in June. The travel card returns part of every trip as cashback. Open the card in the app.",
	}
}

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func newTestLogger(t *testing.T) logger.Logger {
	return &testLogger{t: t}
}

func newTestHandler(t *testing.T, cfg *Config, db *sql.DB, sesClient SESService, snsClient SNSService) *Handler {
	return &Handler{
		config:    cfg,
		db:        db,
		logger:    newTestLogger(t),
		sesClient: sesClient,
		snsClient: snsClient,
	}
}

func expectContactQuery(mock sqlmock.Sqlmock, email, phone string) {
	mock.ExpectQuery(`SELECT email, phone FROM clients WHERE client_code = \$1`).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}).AddRow(email, phone))
}

// ==========================
// Execute Tests
// ==========================

func TestHandler_Execute_SMSAndEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectContactQuery(mock, "aigerim@example.com", "+77011234567")

	input := createTestInput()
	smsCalled := false
	emailCalled := false

	mockSNS := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput) (*sns.PublishOutput, error) {
			smsCalled = true
			assert.Equal(t, "+77011234567", *params.PhoneNumber)
			assert.Equal(t, input.PushText, *params.Message)
			return &sns.PublishOutput{}, nil
		},
	}
	mockSES := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
			emailCalled = true
			assert.Equal(t, "aigerim@example.com", params.Destination.ToAddresses[0])
			assert.Equal(t, "offers@bank.kz", *params.Source)
			return &ses.SendEmailOutput{}, nil
		},
	}

	handler := newTestHandler(t, createTestConfig(), db, mockSES, mockSNS)

	output, err := handler.Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, StatusSent, output.Status)
	assert.NotEmpty(t, output.MessageID)
	assert.NotEmpty(t, output.SentAt)
	assert.True(t, smsCalled)
	assert.True(t, emailCalled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_SMSOnly(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectContactQuery(mock, "", "+77011234567")

	mockSNS := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput) (*sns.PublishOutput, error) {
			return &sns.PublishOutput{}, nil
		},
	}
	mockSES := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
			t.Fatal("email must not be sent without an address")
			return nil, nil
		},
	}

	handler := newTestHandler(t, createTestConfig(), db, mockSES, mockSNS)

	output, err := handler.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, StatusSent, output.Status)
}

func TestHandler_Execute_AllChannelsDisabled(t *testing.T) {
	cfg := createTestConfig()
	cfg.SMSEnabled = false
	cfg.EmailEnabled = false

	// No DB lookup and no AWS call should happen.
	handler := newTestHandler(t, cfg, nil, nil, nil)

	output, err := handler.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, output.Status)
	assert.NotEmpty(t, output.MessageID)
}

func TestHandler_Execute_ContactNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT email, phone FROM clients WHERE client_code = \$1`).
		WithArgs(42).
		WillReturnError(sql.ErrNoRows)

	handler := newTestHandler(t, createTestConfig(), db, &MockSESService{}, &MockSNSService{})

	output, err := handler.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, output.Status)
}

func TestHandler_Execute_SMSFailureIsRetryable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectContactQuery(mock, "", "+77011234567")

	mockSNS := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput) (*sns.PublishOutput, error) {
			return nil, errors.New("throttled")
		},
	}

	handler := newTestHandler(t, createTestConfig(), db, &MockSESService{}, mockSNS)

	output, err := handler.Execute(context.Background(), createTestInput())

	assert.Nil(t, output)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPushSendFailed)
}

func TestHandler_Execute_MissingPushText(t *testing.T) {
	handler := newTestHandler(t, createTestConfig(), nil, nil, nil)

	input := createTestInput()
	input.PushText = ""

	output, err := handler.Execute(context.Background(), input)

	assert.Nil(t, output)
	assert.Error(t, err)
}

// internal/workers/data-access/fetch-client-data/handler_test.go
package fetchclientdata

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"pushgen-workers/internal/common/logger"
	"pushgen-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		CacheTTL: time.Minute,
		Timeout:  3 * time.Second,
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

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock
}

func setupTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func expectProfileQuery(mock sqlmock.Sqlmock, clientCode int) {
	mock.ExpectQuery("SELECT name, status, age, city, avg_monthly_balance").
		WithArgs(clientCode).
		WillReturnRows(sqlmock.NewRows([]string{"name", "status", "age", "city", "avg_monthly_balance"}).
			AddRow("Aigerim", "Salaried", 29, "Almaty", 420000.0))
}

func expectTransactionQuery(mock sqlmock.Sqlmock, clientCode int) {
	mock.ExpectQuery("category, amount, currency").
		WithArgs(clientCode).
		WillReturnRows(sqlmock.NewRows([]string{"date", "category", "amount", "currency"}).
			AddRow("2025-06-03", "Taxi", 3200.0, "KZT").
			AddRow("2025-06-09", "Travel", 88000.0, "KZT"))
}

func expectTransferQuery(mock sqlmock.Sqlmock, clientCode int) {
	mock.ExpectQuery("type, direction, amount, currency").
		WithArgs(clientCode).
		WillReturnRows(sqlmock.NewRows([]string{"date", "type", "direction", "amount", "currency"}).
			AddRow("2025-06-15", "fx_buy", "out", 150000.0, "KZT"))
}

// ==========================
// Execute Tests
// ==========================

func TestHandler_Execute_LoadsClientData(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	expectProfileQuery(mock, 42)
	expectTransactionQuery(mock, 42)
	expectTransferQuery(mock, 42)

	handler := NewHandler(createTestConfig(), db, setupTestRedis(t), newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{ClientCode: 42})

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.False(t, output.FromCache)
	assert.Equal(t, 42, output.Profile.ClientCode)
	assert.Equal(t, "Aigerim", output.Profile.Name)
	assert.Equal(t, models.StatusSalaried, output.Profile.Status)
	assert.Equal(t, 420000.0, output.Profile.AvgMonthlyBalance)
	assert.Len(t, output.Transactions, 2)
	assert.Equal(t, "Taxi", output.Transactions[0].Category)
	assert.Len(t, output.Transfers, 1)
	assert.Equal(t, models.TransferFXBuy, output.Transfers[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_PopulatesCache(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	expectProfileQuery(mock, 42)
	expectTransactionQuery(mock, 42)
	expectTransferQuery(mock, 42)

	rdb := setupTestRedis(t)
	handler := NewHandler(createTestConfig(), db, rdb, newTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{ClientCode: 42})
	require.NoError(t, err)

	val, err := rdb.Get(context.Background(), "client:data:42").Result()
	require.NoError(t, err)

	var cached Output
	require.NoError(t, json.Unmarshal([]byte(val), &cached))
	assert.Equal(t, "Aigerim", cached.Profile.Name)
	assert.Len(t, cached.Transactions, 2)
}

func TestHandler_Execute_CacheHitSkipsDatabase(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	rdb := setupTestRedis(t)
	seeded := Output{
		Profile: models.ClientProfile{
			ClientCode:        7,
			Name:              "Nurlan",
			Status:            models.StatusPremium,
			AvgMonthlyBalance: 7200000,
		},
		Transactions: []models.Transaction{},
		Transfers:    []models.Transfer{},
	}
	data, err := json.Marshal(seeded)
	require.NoError(t, err)
	require.NoError(t, rdb.Set(context.Background(), "client:data:7", data, time.Minute).Err())

	handler := NewHandler(createTestConfig(), db, rdb, newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{ClientCode: 7})

	require.NoError(t, err)
	assert.True(t, output.FromCache)
	assert.Equal(t, "Nurlan", output.Profile.Name)
	// No queries were registered on the mock; any DB access would fail.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ClientNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT name, status, age, city, avg_monthly_balance").
		WithArgs(999).
		WillReturnError(sql.ErrNoRows)

	handler := NewHandler(createTestConfig(), db, setupTestRedis(t), newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{ClientCode: 999})

	assert.Nil(t, output)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestHandler_Execute_QueryFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	expectProfileQuery(mock, 42)
	mock.ExpectQuery("category, amount, currency").
		WithArgs(42).
		WillReturnError(sql.ErrConnDone)

	handler := NewHandler(createTestConfig(), db, setupTestRedis(t), newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{ClientCode: 42})

	assert.Nil(t, output)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrClientNotFound)
	assert.Contains(t, err.Error(), "load transactions")
}

func TestHandler_Execute_MissingTablesDegradeToEmpty(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	expectProfileQuery(mock, 42)
	mock.ExpectQuery("category, amount, currency").
		WithArgs(42).
		WillReturnError(&pq.Error{Code: "42P01"})
	mock.ExpectQuery("type, direction, amount, currency").
		WithArgs(42).
		WillReturnError(&pq.Error{Code: "42P01"})

	handler := NewHandler(createTestConfig(), db, setupTestRedis(t), newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{ClientCode: 42})

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.Equal(t, "Aigerim", output.Profile.Name)
	assert.Empty(t, output.Transactions)
	assert.Empty(t, output.Transfers)
}

func TestHandler_Execute_InvalidClientCode(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, nil, newTestLogger(t))

	for _, code := range []int{0, -5} {
		output, err := handler.Execute(context.Background(), &Input{ClientCode: code})
		assert.Nil(t, output)
		assert.ErrorIs(t, err, ErrClientNotFound)
	}
}

func TestHandler_Execute_NilInput(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, nil, newTestLogger(t))

	output, err := handler.Execute(context.Background(), nil)

	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestHandler_Execute_NilRedisStillLoads(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	expectProfileQuery(mock, 42)
	expectTransactionQuery(mock, 42)
	expectTransferQuery(mock, 42)

	handler := NewHandler(createTestConfig(), db, nil, newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{ClientCode: 42})

	require.NoError(t, err)
	assert.False(t, output.FromCache)
	assert.NoError(t, mock.ExpectationsWereMet())
}

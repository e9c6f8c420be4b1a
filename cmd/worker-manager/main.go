// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"pushgen-workers/internal/common/camunda"
	"pushgen-workers/internal/common/config"
	"pushgen-workers/internal/common/database"
	"pushgen-workers/internal/common/logger"
	"pushgen-workers/internal/common/observability"
	"pushgen-workers/internal/scoring"

	// Data Access Workers (1)
	fcd "pushgen-workers/internal/workers/data-access/fetch-client-data"

	// Recommendation Workers (3)
	cc "pushgen-workers/internal/workers/recommendation/classify-client"
	cr "pushgen-workers/internal/workers/recommendation/combine-recommendation"
	sp "pushgen-workers/internal/workers/recommendation/score-products"

	// Push Workers (3)
	gp "pushgen-workers/internal/workers/push/generate-push"
	spu "pushgen-workers/internal/workers/push/send-push"
	vp "pushgen-workers/internal/workers/push/validate-push"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// The calculator is built once from the validated rate table and shared
	// across workers. A broken rate table stops the process here.
	calculator, err := scoring.NewCalculator(cfg.Rates)
	if err != nil {
		zapLog.Fatal("rate configuration rejected", zap.Error(err))
	}

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- START: Register ALL 7 Workers ---
	var workers []*camunda.CamundaWorker

	// --- 1. Data Access Workers (1) ---
	if cfg.Workers[fcd.TaskType].Enabled {
		handler := fcd.NewHandler(
			&fcd.Config{
				CacheTTL: time.Duration(cfg.Database.Redis.TTL) * time.Second,
				Timeout:  config.GetDuration(cfg.Workers[fcd.TaskType].Timeout),
			},
			pg.DB, redisClient.Client, log,
		)
		workers = append(workers, startWorker(zeebeClient, fcd.TaskType, cfg.Workers[fcd.TaskType], handler, zapLog))
	}

	// --- 2. Recommendation Workers (3) ---
	if cfg.Workers[sp.TaskType].Enabled {
		handler := sp.NewHandler(
			&sp.Config{
				Timeout: config.GetDuration(cfg.Workers[sp.TaskType].Timeout),
			},
			calculator, log,
		)
		workers = append(workers, startWorker(zeebeClient, sp.TaskType, cfg.Workers[sp.TaskType], handler, zapLog))
	}

	if cfg.Workers[cc.TaskType].Enabled {
		handler := cc.NewHandler(
			&cc.Config{
				BaseURL: cfg.APIs.Classifier.BaseURL,
				Timeout: config.GetDuration(cfg.APIs.Classifier.Timeout),
				Retries: cfg.APIs.Classifier.Retries,
			},
			log,
		)
		workers = append(workers, startWorker(zeebeClient, cc.TaskType, cfg.Workers[cc.TaskType], handler, zapLog))
	}

	if cfg.Workers[cr.TaskType].Enabled {
		handler := cr.NewHandler(
			&cr.Config{
				Timeout: config.GetDuration(cfg.Workers[cr.TaskType].Timeout),
			},
			log,
		)
		workers = append(workers, startWorker(zeebeClient, cr.TaskType, cfg.Workers[cr.TaskType], handler, zapLog))
	}

	// --- 3. Push Workers (3) ---
	if cfg.Workers[gp.TaskType].Enabled {
		handler := gp.NewHandler(
			&gp.Config{
				BaseURL:          cfg.APIs.GenAI.BaseURL,
				APIKey:           cfg.APIs.GenAI.APIKey,
				Model:            cfg.APIs.GenAI.Model,
				TravelCategories: cfg.Rates.TravelCategories,
				Timeout:          config.GetDuration(cfg.APIs.GenAI.Timeout),
			},
			log,
		)
		workers = append(workers, startWorker(zeebeClient, gp.TaskType, cfg.Workers[gp.TaskType], handler, zapLog))
	}

	if cfg.Workers[vp.TaskType].Enabled {
		handler, err := vp.NewHandler(
			&vp.Config{
				AutocorrectOnce: cfg.Push.AutocorrectOnce,
				Timeout:         config.GetDuration(cfg.Workers[vp.TaskType].Timeout),
			},
			log,
		)
		if err != nil {
			zapLog.Fatal("failed to create validate-push handler", zap.Error(err))
		}
		workers = append(workers, startWorker(zeebeClient, vp.TaskType, cfg.Workers[vp.TaskType], handler, zapLog))
	}

	if cfg.Workers[spu.TaskType].Enabled {
		handler, err := spu.NewHandler(
			&spu.Config{
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
				EmailEnabled: cfg.Notifications.Email.Enabled,
				FromEmail:    cfg.Notifications.Email.FromEmail,
				AWSRegion:    cfg.Notifications.AWS.Region,
				Timeout:      config.GetDuration(cfg.Workers[spu.TaskType].Timeout),
			},
			pg.DB, log,
		)
		if err != nil {
			zapLog.Fatal("failed to create send-push handler", zap.Error(err))
		}
		workers = append(workers, startWorker(zeebeClient, spu.TaskType, cfg.Workers[spu.TaskType], handler, zapLog))
	}

	zapLog.Info("All 7 workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop(shutdownCtx)
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler camunda.JobHandler, log *zap.Logger) *camunda.CamundaWorker {
	return camunda.NewWorker(
		client,
		taskType,
		wcfg.MaxJobsActive,
		time.Duration(wcfg.Timeout)*time.Millisecond,
		handler,
		log,
	)
}

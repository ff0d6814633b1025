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

	"mortgage-workers/internal/audit"
	awsclients "mortgage-workers/internal/common/aws"
	"mortgage-workers/internal/common/camunda"
	"mortgage-workers/internal/common/config"
	"mortgage-workers/internal/common/database"
	httpclient "mortgage-workers/internal/common/http"
	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/common/observability"
	"mortgage-workers/internal/underwriting/lender"
	"mortgage-workers/internal/underwriting/ratios"
	"mortgage-workers/internal/underwriting/rules"

	cl "mortgage-workers/internal/workers/underwriting/compare-lenders"
	er "mortgage-workers/internal/workers/underwriting/evaluate-rules"
	eu "mortgage-workers/internal/workers/underwriting/evaluate-underwriting"
	nd "mortgage-workers/internal/workers/underwriting/notify-decision"
	rda "mortgage-workers/internal/workers/underwriting/run-dual-aus"
	vla "mortgage-workers/internal/workers/underwriting/validate-loan-application"
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

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.Timeout),
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
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
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Load underwriting knowledge base ---
	// Postgres rules win when a version is configured and loadable; the
	// built-in set keeps the engine evaluating when they are not.
	kb := rules.NewDefaultKnowledgeBase()
	if version := cfg.Underwriting.GuidelineVersion; version != "" {
		loaded, err := rules.NewPostgresStore(pg.DB).LoadKnowledgeBase(ctx, version)
		if err != nil {
			zapLog.Warn("guideline rules load failed, using built-in set",
				zap.String("version", version),
				zap.Error(err),
			)
		} else {
			kb = loaded
		}
	}
	zapLog.Info("Knowledge base ready", zap.String("version", kb.Version()))

	// --- Register Underwriting Workers (6) ---

	var openWorkers []*camunda.Worker
	register := func(taskType string, wcfg config.WorkerConfig, handlerFunc camunda.JobHandlerFunc) {
		if w := startWorker(zeebeClient, taskType, wcfg, handlerFunc, zapLog); w != nil {
			openWorkers = append(openWorkers, w)
		}
	}

	if config.IsWorkerEnabled(cfg, vla.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, vla.TaskType)
		handler, err := vla.NewHandler(
			&vla.Config{
				Timeout: time.Duration(wcfg.Timeout) * time.Millisecond,
			},
			log,
		)
		if err != nil {
			zapLog.Fatal("failed to create validate-loan-application handler", zap.Error(err))
		}
		register(vla.TaskType, wcfg, handler.Handle)
	}

	if config.IsWorkerEnabled(cfg, er.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, er.TaskType)
		handler := er.NewHandler(
			&er.Config{
				Timeout:           time.Duration(wcfg.Timeout) * time.Millisecond,
				AssumedAnnualRate: cfg.Underwriting.AssumedAnnualRate,
			},
			kb, log,
		)
		register(er.TaskType, wcfg, handler.Handle)
	}

	if config.IsWorkerEnabled(cfg, rda.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, rda.TaskType)
		handler := rda.NewHandler(
			&rda.Config{
				Timeout:           time.Duration(wcfg.Timeout) * time.Millisecond,
				AssumedAnnualRate: cfg.Underwriting.AssumedAnnualRate,
			},
			log,
		)
		register(rda.TaskType, wcfg, handler.Handle)
	}

	if config.IsWorkerEnabled(cfg, eu.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, eu.TaskType)
		indexer := audit.NewIndexer(esClient.Client, cfg.Underwriting.AuditIndex, log)
		handler := eu.NewHandler(
			&eu.Config{
				Timeout:           time.Duration(wcfg.Timeout) * time.Millisecond,
				AssumedAnnualRate: cfg.Underwriting.AssumedAnnualRate,
			},
			indexer, log,
		)
		register(eu.TaskType, wcfg, handler.Handle)
	}

	if config.IsWorkerEnabled(cfg, cl.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, cl.TaskType)
		httpProvider := lender.NewHTTPRateProvider(
			httpclient.NewClient(config.GetDuration(cfg.Lenders.RequestTimeout)),
		)
		cachedProvider := lender.NewCachedRateProvider(
			httpProvider,
			redis.Client,
			time.Duration(cfg.Lenders.QuoteCacheTTL)*time.Second,
			log,
		)
		selector := lender.NewSelector(
			cachedProvider,
			ratios.NewCalculator(cfg.Underwriting.AssumedAnnualRate),
			cfg.Lenders.BaseRate,
			time.Duration(cfg.Lenders.QuoteTimeout)*time.Millisecond,
			log,
		)
		roster := lender.NewPostgresRosterStore(pg.DB, cfg.Lenders.RosterTable)

		handler := cl.NewHandler(
			&cl.Config{
				Timeout:           time.Duration(wcfg.Timeout) * time.Millisecond,
				AssumedAnnualRate: cfg.Underwriting.AssumedAnnualRate,
				BaseRate:          cfg.Lenders.BaseRate,
				QuoteTimeout:      time.Duration(cfg.Lenders.QuoteTimeout) * time.Millisecond,
			},
			selector, roster, log,
		)
		register(cl.TaskType, wcfg, handler.Handle)
	}

	if config.IsWorkerEnabled(cfg, nd.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, nd.TaskType)
		var emailSender nd.EmailSender
		if cfg.Notifications.Email.Enabled {
			sesClient, err := awsclients.NewSESClient(ctx, cfg.Integrations.AWS.Region)
			if err != nil {
				zapLog.Fatal("failed to create SES client", zap.Error(err))
			}
			emailSender = sesClient
		}

		var smsSender nd.SMSSender
		if cfg.Notifications.SMS.Enabled {
			snsClient, err := awsclients.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
			if err != nil {
				zapLog.Fatal("failed to create SNS client", zap.Error(err))
			}
			smsSender = snsClient
		}

		handler := nd.NewHandler(
			&nd.Config{
				Timeout:           time.Duration(wcfg.Timeout) * time.Millisecond,
				EmailEnabled:      cfg.Notifications.Email.Enabled,
				FromEmail:         cfg.Notifications.Email.FromEmail,
				SMSEnabled:        cfg.Notifications.SMS.Enabled,
				SMSOnApprovalOnly: cfg.Notifications.SMS.NotifyOnApproval,
			},
			emailSender, smsSender, log,
		)
		register(nd.TaskType, wcfg, handler.Handle)
	}

	zapLog.Info("All workers registered successfully")

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

	for _, w := range openWorkers {
		w.Close()
	}
	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc camunda.JobHandlerFunc, log *zap.Logger) *camunda.Worker {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return nil
	}

	return camunda.NewWorker(
		client,
		taskType,
		wcfg.MaxJobsActive,
		config.GetDuration(wcfg.Timeout),
		handlerFunc,
		log,
	)
}

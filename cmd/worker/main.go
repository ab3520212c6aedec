package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/backoffice/admin-system/internal/app"
	"github.com/backoffice/admin-system/internal/audit"
	jobmetrics "github.com/backoffice/admin-system/internal/jobs"
	"github.com/backoffice/admin-system/internal/observability"
	"github.com/backoffice/admin-system/internal/platform/db"
	"github.com/backoffice/admin-system/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	purgeNow := flag.Bool("purge-now", false, "enqueue one operation log purge and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	redisOpts := cfg.RedisOptions().AsynqOpt()

	if *purgeNow {
		client := jobs.NewClient(redisOpts)
		defer client.Close()
		info, err := client.EnqueueOplogPurge(ctx, jobs.OplogPurgePayload{})
		if err != nil {
			logger.Error("enqueue purge", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("purge enqueued", slog.String("task_id", info.ID), slog.String("queue", info.Queue))
		return
	}

	pool, err := db.New(ctx, cfg.PoolOptions())
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	registry := observability.NewMetrics()
	metrics := jobmetrics.NewMetrics(registry.Registerer())
	if cfg.WorkerMetricsAddr != "" {
		metricsServer := &http.Server{Addr: cfg.WorkerMetricsAddr, Handler: registry.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("worker metrics listener", slog.Any("error", err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}
	auditService := audit.NewService(audit.NewRepository(pool), cfg.OplogRetentionDays)
	purgeJob := jobs.NewOplogPurgeJob(auditService, logger, metrics)

	purgeTask, err := jobs.NewOplogPurgeTask(jobs.OplogPurgePayload{})
	if err != nil {
		logger.Error("build purge task", slog.Any("error", err))
		os.Exit(1)
	}

	var cron []jobs.CronRegistration
	if cfg.OplogEnabled && cfg.OplogPurgeCron != "" {
		cron = append(cron, jobs.CronRegistration{Spec: cfg.OplogPurgeCron, Task: purgeTask, Options: []asynq.Option{asynq.Queue(jobs.QueueDefault)}})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   redisOpts,
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskOplogPurge, Handler: purgeJob.Handle},
		},
		Cron: cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started", slog.String("purge_cron", cfg.OplogPurgeCron), slog.Int("retention_days", cfg.OplogRetentionDays))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

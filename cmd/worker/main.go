package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/uzzysan/Klauzule-zakazane/internal/activities"
	"github.com/uzzysan/Klauzule-zakazane/internal/config"
	"github.com/uzzysan/Klauzule-zakazane/internal/storage"
	"github.com/uzzysan/Klauzule-zakazane/internal/workflows"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	c, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		logger.Fatal("temporal dial failed", zap.Error(err))
	}
	defer c.Close()

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{})
	workflows.Register(w)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Fatal("postgres connect failed", zap.Error(err))
	}
	defer db.Close()

	a, err := activities.New(cfg, db, logger)
	if err != nil {
		logger.Fatal("activities init failed", zap.Error(err))
	}
	activities.Register(w, a)

	startCrons(ctx, c, cfg, logger)

	logger.Info("worker listening",
		zap.String("temporal", cfg.TemporalAddress),
		zap.String("queue", cfg.TemporalTaskQueue),
		zap.String("embed_providers", cfg.EmbedProviders))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Fatal("worker stopped", zap.Error(err))
	}
}

// startCrons registers the recurring sync and sweep workflows. Both use
// fixed IDs so a restart does not stack duplicate schedules.
func startCrons(ctx context.Context, c client.Client, cfg config.Config, logger *zap.Logger) {
	if cfg.SourceDatabaseURL != "" {
		_, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
			ID:           "clause-sync-cron",
			TaskQueue:    cfg.TemporalTaskQueue,
			CronSchedule: cfg.SyncCron,
		}, workflows.ClauseSyncWorkflow)
		if err != nil {
			logger.Warn("clause sync cron not started", zap.Error(err))
		}
	}
	_, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:           "document-sweep-cron",
		TaskQueue:    cfg.TemporalTaskQueue,
		CronSchedule: cfg.SweepCron,
	}, workflows.StuckDocumentSweepWorkflow)
	if err != nil {
		logger.Warn("document sweep cron not started", zap.Error(err))
	}
}

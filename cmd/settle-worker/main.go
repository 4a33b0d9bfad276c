package main

import (
	"context"
	"os"
	"time"

	"kakeibo/internal/cli"
	"kakeibo/internal/log"
	"kakeibo/internal/settlement"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger("info", nil).WithComponent(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel, nil).WithComponent(log.ComponentWorker)
	logger.Info("Starting settle-worker", log.FieldOperation, log.OpStartup)

	store, err := cli.OpenStore(logger, cfg)
	if err != nil {
		logger.Error("Failed to open storage", log.FieldError, err)
		os.Exit(1)
	}
	defer store.Close()

	opts := []settlement.Option{
		settlement.WithLogger(logger.WithComponent(log.ComponentSettlement)),
	}
	if client := cli.OpenPublisher(logger, cfg); client != nil {
		defer client.Close()
		opts = append(opts, settlement.WithPublisher(client))
	}
	reconciler := settlement.NewReconciler(store, opts...)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	// Settlement always runs once at startup.
	sweep(ctx, logger, reconciler, time.Now())

	if cfg.SettleInterval <= 0 {
		logger.Info("No settle interval configured, exiting after one sweep")
		return
	}

	logger.Info("Settlement sweep scheduled", "interval", cfg.SettleInterval)
	ticker := time.NewTicker(cfg.SettleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			cli.WaitForShutdown(ctx, done)
			logger.Info("settle-worker stopped")
			return
		case now := <-ticker.C:
			sweep(ctx, logger, reconciler, now)
		}
	}
}

func sweep(ctx context.Context, logger *log.Logger, reconciler *settlement.Reconciler, now time.Time) {
	result, err := reconciler.SettleOverdue(ctx, now)
	if err != nil {
		logger.Error("Settlement sweep failed", log.FieldError, err)
		return
	}
	if len(result.Failures) > 0 {
		logger.Warn("Some transactions could not be settled", "failed", len(result.Failures))
	}
}

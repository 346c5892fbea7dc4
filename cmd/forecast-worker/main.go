package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ifm1912/dashboard-financiero-sub001/internal/amqp"
	"github.com/ifm1912/dashboard-financiero-sub001/internal/cli"
	"github.com/ifm1912/dashboard-financiero-sub001/internal/forecast"
	applog "github.com/ifm1912/dashboard-financiero-sub001/internal/log"
	"github.com/ifm1912/dashboard-financiero-sub001/internal/storage"
	"github.com/ifm1912/dashboard-financiero-sub001/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)

	logger.Info("Starting forecast-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	// The worker persists snapshot history, so it always runs on SQLite.
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	engine := forecast.NewEngine(time.Month(cfg.FiscalYearStartMonth))
	refreshWorker := worker.NewRefreshWorker(repo, repo, repo, engine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Recover history missed while the worker was down.
	if err := refreshWorker.StartupCheck(ctx); err != nil {
		logger.Error("Startup snapshot check failed", applog.FieldError, err)
		// Don't exit - continue with normal operation
	}

	cronRunner, err := refreshWorker.ScheduleSnapshots(ctx, cfg.SnapshotCron)
	if err != nil {
		logger.Error("Failed to start snapshot schedule", applog.FieldError, err)
		os.Exit(1)
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		err := amqpClient.ConsumeInvoiceUpserts(groupCtx, func(msg *amqp.InvoiceUpsertMessage) error {
			return refreshWorker.HandleInvoiceUpsert(groupCtx, msg)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	group.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-groupCtx.Done():
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.Error("Worker failed", applog.FieldError, err)
	}

	// Let an in-flight snapshot finish before stopping the scheduler.
	stopCtx := cronRunner.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		logger.Warn("Snapshot schedule stop timeout reached")
	}

	logger.Info("Worker shutdown complete")
}

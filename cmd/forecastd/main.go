package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/ifm1912/dashboard-financiero-sub001/internal/amqp"
	"github.com/ifm1912/dashboard-financiero-sub001/internal/backend"
	"github.com/ifm1912/dashboard-financiero-sub001/internal/cache"
	"github.com/ifm1912/dashboard-financiero-sub001/internal/cli"
	"github.com/ifm1912/dashboard-financiero-sub001/internal/core"
	"github.com/ifm1912/dashboard-financiero-sub001/internal/forecast"
	apphttp "github.com/ifm1912/dashboard-financiero-sub001/internal/http"
	applog "github.com/ifm1912/dashboard-financiero-sub001/internal/log"
	"github.com/ifm1912/dashboard-financiero-sub001/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(context.Background(), backend.Config{
		Type:          backend.Type(cfg.DataBackend),
		SQLiteDBPath:  cfg.SQLiteDBPath,
		DataDirectory: cfg.DataDir,
	})
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", applog.FieldError, err)
			}
		}()
	}

	// AMQP is optional: without it invoices are still stored, only the
	// worker's event-driven snapshots are skipped.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", applog.FieldError, err)
		} else {
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	engine := forecast.NewEngine(time.Month(cfg.FiscalYearStartMonth))
	forecastCache := cache.NewLRUCache[core.ForecastData](cfg.CacheSize, cfg.CacheTTL)

	cacheManager := cache.NewManager()
	cacheManager.Register(forecastCache)
	cacheManager.StartCleanup(10 * time.Minute)
	defer cacheManager.Stop()

	service := services.NewForecastService(
		result.Backend, result.Backend, result.Backend,
		engine, forecastCache, amqpClient,
	)
	defer service.Close()

	srv := apphttp.NewServer(":"+cfg.Port, service)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	})

	logger.Info("Starting forecastd server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"fiscal_year_start_month", cfg.FiscalYearStartMonth)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

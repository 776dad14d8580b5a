package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"masareef/internal/cache"
	"masareef/internal/config"
	"masareef/internal/events"
	apphttp "masareef/internal/http"
	"masareef/internal/insights"
	applog "masareef/internal/log"
	"masareef/internal/services"
	"masareef/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Change events fan out to in-process SSE subscribers and, when a broker
	// is configured, to the notification worker's queue. A bridge consumer
	// then feeds the worker's notification events back into the hub so SSE
	// subscribers see them too.
	hub := events.NewHub()
	publishers := events.MultiPublisher{hub}

	if cfg.AMQPURL != "" {
		amqpClient, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
			events.CollectionExpenses, events.CollectionGoals, events.CollectionProfiles)
		if err != nil {
			logger.Error("Failed to connect to AMQP", applog.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publishers = append(publishers, amqpClient)

		bridge, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, "", events.CollectionNotifications)
		if err != nil {
			logger.Error("Failed to open AMQP notification bridge", applog.FieldError, err)
			os.Exit(1)
		}
		defer bridge.Close()
		go func() {
			if err := bridge.Consume(ctx, events.BridgeTo(hub)); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Notification bridge stopped", applog.FieldError, err)
			}
		}()
		logger.Info("AMQP event feed enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled, change events stay in-process")
	}

	var gatewayClient insights.Client
	if cfg.InsightsGatewayURL != "" {
		gatewayClient = insights.NewGatewayClient(cfg.InsightsGatewayURL, cfg.InsightsAPIKey, cfg.InsightsModel, cfg.InsightsTimeout)
		logger.Info("Insights gateway enabled", "model", cfg.InsightsModel)
	} else {
		logger.Info("Insights gateway disabled, serving deterministic fallback")
	}
	generator := insights.NewGenerator(gatewayClient, cfg.InsightsCacheSize, cfg.InsightsCacheTTL, logger)

	cacheManager := cache.NewManager()
	cacheManager.Register(generator.Cache())
	cacheManager.StartCleanup(10 * time.Minute)
	defer cacheManager.Stop()

	recordSvc := services.NewRecordService(repo, publishers, generator, logger)
	reportSvc := services.NewReportService(repo, generator)

	srv := apphttp.NewServer(":"+cfg.Port, recordSvc, reportSvc, hub, cfg.JWTSecret, cfg.WriteRateLimit, cfg.WriteRateWindow, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting masareef server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/citypulse/dashboard/internal/alerts"
	"github.com/citypulse/dashboard/internal/api"
	"github.com/citypulse/dashboard/internal/dashboard"
	"github.com/citypulse/dashboard/internal/feed"
	"github.com/citypulse/dashboard/internal/metrics"
	"github.com/citypulse/dashboard/internal/notify"
	"github.com/citypulse/dashboard/internal/sensors"
	"github.com/citypulse/dashboard/internal/server"
	"github.com/citypulse/dashboard/internal/timer"
	"github.com/citypulse/dashboard/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Logging)
	defer logger.Sync()

	logger.Info("Starting CityPulse dashboard",
		zap.String("port", cfg.Server.Port),
		zap.String("backend", cfg.Backend.BaseURL),
		zap.String("feed_mode", cfg.Feed.Mode),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	client := api.NewClient(cfg.Backend.BaseURL, cfg.Backend.Token, cfg.Backend.Timeout, logger)
	source := newFeedSource(cfg, client, logger)

	scheduler := timer.NewScheduler()
	scheduler.Start()
	defer scheduler.Stop()

	dash := dashboard.New(
		client,
		source,
		sensors.NewRegistry(),
		alerts.NewStore(),
		metrics.NewEngine(metrics.DefaultSeriesCap),
		notify.NewCenter(scheduler, notify.DefaultTTL, notify.DefaultMax),
		logger,
	)
	dash.SetSeedLimit(cfg.Backend.SeedLimit)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := dash.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("Dashboard engine stopped", zap.Error(err))
		}
	}()

	srv := server.NewServer(&cfg.Server, dash, logger, registry)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}

	logger.Info("Dashboard exited")
}

// newFeedSource picks the live event source for the configured mode.
// Load has already validated the mode.
func newFeedSource(cfg *config.Config, client *api.Client, logger *zap.Logger) feed.Source {
	switch cfg.Feed.Mode {
	case feed.ModeKafka:
		return feed.NewKafkaSource(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, logger)
	case feed.ModePoll:
		return feed.NewPoller(client, cfg.Feed.PollInterval, logger)
	default:
		return feed.NewWSSource(cfg.Feed.WebsocketURL, cfg.Backend.Token, logger)
	}
}

// initLogger builds the process logger from configuration
func initLogger(cfg config.LoggingConfig) *zap.Logger {
	level := zap.InfoLevel
	_ = level.Set(cfg.Level)

	var zapConfig zap.Config
	if cfg.Format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapConfig = zap.NewProductionConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

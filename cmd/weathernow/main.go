// Command weathernow is an interactive weather widget for the terminal.
// Type a city name, pick a suggestion with ":N", quit with ":q".
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/couchcryptid/weathernow/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/weathernow/internal/adapter/kafka"
	"github.com/couchcryptid/weathernow/internal/adapter/openmeteo"
	"github.com/couchcryptid/weathernow/internal/adapter/terminal"
	"github.com/couchcryptid/weathernow/internal/config"
	"github.com/couchcryptid/weathernow/internal/coordinator"
	"github.com/couchcryptid/weathernow/internal/domain"
	"github.com/couchcryptid/weathernow/internal/observability"
	"github.com/couchcryptid/weathernow/internal/presentation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := openmeteo.NewClient(cfg.GeocodingBaseURL, cfg.WeatherBaseURL, cfg.RequestTimeout, metrics, logger)
	coord := coordinator.New(client, client, logger, metrics)

	renderer := presentation.NewTextRenderer(os.Stdout, domain.CurrentTimeOfDay(), logger)
	driver := terminal.NewDriver(coord, logger)
	coord.AddListener(renderer)
	coord.AddListener(driver)

	var publisher *kafkaadapter.Publisher
	if cfg.FeedEnabled() {
		publisher = kafkaadapter.NewPublisher(cfg, logger, metrics)
		coord.AddListener(publisher)
		logger.Info("reading feed enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaReadingsTopic)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	wg.Go(func() {
		if err := coord.Run(ctx); err != nil {
			logger.Error("coordinator error", "error", err)
		}
	})

	if cfg.HTTPAddr != "" {
		srv := httpadapter.NewServer(cfg.HTTPAddr, cfg.ShutdownTimeout, coord, logger)
		wg.Go(func() {
			if err := srv.Run(ctx); err != nil {
				logger.Error("ops server error", "error", err)
			}
		})
	}

	if publisher != nil {
		wg.Go(func() {
			if err := publisher.Run(ctx); err != nil {
				logger.Error("reading feed error", "error", err)
			}
		})
	}

	renderer.StateChanged(coordinator.State{})
	if err := driver.Run(ctx, os.Stdin); err != nil {
		logger.Error("input error", "error", err)
	}

	stop()
	logger.Info("shutting down")
	wg.Wait()

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

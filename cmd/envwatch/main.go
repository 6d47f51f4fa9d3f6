package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/envwatch-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/envwatch-service/internal/adapter/kafka"
	"github.com/couchcryptid/envwatch-service/internal/adapter/sqlite"
	"github.com/couchcryptid/envwatch-service/internal/adapter/weatherapi"
	"github.com/couchcryptid/envwatch-service/internal/config"
	"github.com/couchcryptid/envwatch-service/internal/domain"
	"github.com/couchcryptid/envwatch-service/internal/monitor"
	"github.com/couchcryptid/envwatch-service/internal/observability"
	"github.com/couchcryptid/envwatch-service/internal/sensors"
	"github.com/couchcryptid/envwatch-service/internal/simulator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		logger.Error("failed to open history database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}

	registry, err := sensors.LoadRegistry(cfg.SensorsFile)
	if err != nil {
		logger.Error("failed to load sensor registry", "path", cfg.SensorsFile, "error", err)
		os.Exit(1)
	}
	if registry.Default {
		logger.Info("sensor registry not found, using default sensor", "path", cfg.SensorsFile)
	}

	// Weather overlay (feature-flagged via WEATHER_ENABLED / WEATHER_API_KEY).
	var weather domain.WeatherLookup
	if cfg.WeatherEnabled {
		client := weatherapi.NewClient(cfg.WeatherAPIKey, cfg.WeatherTimeout, metrics, logger)
		weather = weatherapi.NewCachedLookup(client, cfg.WeatherCacheSize, cfg.WeatherCacheTTL, clock, metrics)
		metrics.WeatherEnabled.Set(1)
		logger.Info("weather overlay enabled", "cache_size", cfg.WeatherCacheSize, "cache_ttl", cfg.WeatherCacheTTL, "timeout", cfg.WeatherTimeout)
	} else {
		logger.Info("weather overlay disabled")
	}

	var (
		publisher monitor.Publisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaReadingsTopic)
	}

	rng := simulator.NewRandomSource()
	source := simulator.NewSource(
		simulator.NewStore(rng),
		simulator.NewDrift(rng, clock),
		weather,
		cfg.WeatherTimeout,
		clock,
		logger,
	)

	svc := monitor.New(monitor.Deps{
		Source:          source,
		History:         store,
		Publisher:       publisher,
		Enricher:        sensors.NewEnricher(source, rng, clock, cfg.SensorCacheTTL),
		Sensors:         registry.Sensors,
		DefaultLocation: cfg.DefaultLocation,
		HistoryLimit:    cfg.HistoryLimit,
		Metrics:         metrics,
		Logger:          logger,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, svc, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	if cfg.SampleInterval > 0 {
		sampler := monitor.NewSampler(svc, cfg.SampleLocations, cfg.SampleInterval, clock, logger, metrics)
		go func() {
			if err := sampler.Run(ctx); err != nil {
				logger.Error("sampler error", "error", err)
			}
		}()
	} else if _, err := svc.Monitor(ctx, cfg.DefaultLocation); err != nil {
		// Readiness waits for the first recorded reading.
		logger.Warn("initial reading failed", "location", cfg.DefaultLocation, "error", err)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := store.Close(); err != nil {
		logger.Error("history database close error", "error", err)
	}

	logger.Info("shutdown complete")
}

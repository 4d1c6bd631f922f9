package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chapak/internal/api"
	"chapak/internal/auth"
	"chapak/internal/config"
	"chapak/internal/console"
	"chapak/internal/events"
	"chapak/internal/logging"
	"chapak/internal/metrics"
	"chapak/internal/repository"
	"chapak/internal/service"
	"chapak/internal/validation"
	"chapak/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, stateService := initStateService(ctx, cfg, logger)
	defer func() { _ = repository.Close(redisClient) }()

	metrics.Register()
	if cfg.Monitoring.PrometheusEnabled {
		startMetricsServer(cfg.Monitoring.PrometheusPort, logger)
	}

	tokens := auth.NewTokenStore(cfg.Auth.TokenFile)
	client := api.NewClient(cfg.API.BaseURL, tokens, time.Duration(cfg.API.TimeoutSeconds)*time.Second)
	if redisClient != nil && cfg.API.CacheTTL > 0 {
		client.UseRedisCache(redisClient, time.Duration(cfg.API.CacheTTL)*time.Second)
	}
	client.UsePricingLimiter(cfg.API.PricingRPS, cfg.API.PricingBurst)

	exportWorker := worker.NewExportWorker(client, cfg.Exports.Path, worker.RetryPolicy{}, logger)
	go exportWorker.Start(ctx)

	eventBus := events.NewEventBus()
	subscribeEvents(eventBus, logger)

	app := console.New(
		cfg, client, tokens, stateService, exportWorker,
		validation.UnavailableCamera{}, eventBus, logger,
		os.Stdin, os.Stdout,
	)

	logger.Info().Str("base_url", cfg.API.BaseURL).Msg("console started")
	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info().Msg("Shutdown complete.")
	return nil
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App.Name)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := baseLogger.With().Str("component", "console-main").Logger()
	return cfg, &logger, closer, nil
}

func initStateService(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *service.StateService) {
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if errPing := repository.Ping(ctx, redisClient); errPing != nil {
			logger.Warn().Err(errPing).Msg("Redis unavailable")
		}
	}

	ttl := time.Duration(cfg.Session.TTLSeconds) * time.Second
	primaryRepo := repository.NewRedisStateRepository(redisClient, ttl)
	fallbackRepo := repository.NewMemoryStateRepository(ttl)
	stateRepo := repository.NewFailoverStateRepository(primaryRepo, fallbackRepo, logger)
	return redisClient, service.NewStateService(stateRepo, logger)
}

func startMetricsServer(port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		addr := fmt.Sprintf(":%d", port)
		logger.Info().Str("addr", addr).Msg("metrics server listening")
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()
}

// subscribeEvents mirrors checkout and check-in activity into the log stream;
// external consumers can hang off the same bus.
func subscribeEvents(bus *events.EventBus, logger *zerolog.Logger) {
	bookingHandler := func(ev *events.Event) error {
		var payload events.BookingEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		logger.Info().
			Str("event", ev.Type).
			Str("booking_id", payload.BookingID).
			Int("adults", payload.Adults).
			Int("kids", payload.Kids).
			Int64("final_amount", payload.FinalAmount).
			Msg("booking event")
		return nil
	}

	validationHandler := func(ev *events.Event) error {
		var payload events.ValidationEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		logger.Info().
			Str("event", ev.Type).
			Str("booking_id", payload.BookingID).
			Bool("valid", payload.Valid).
			Msg("validation event")
		return nil
	}

	bus.Subscribe(events.EventBookingCreated, bookingHandler)
	bus.Subscribe(events.EventPaymentConfirmed, bookingHandler)
	bus.Subscribe(events.EventTicketValidated, validationHandler)
}

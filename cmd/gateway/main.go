package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/gateway"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/repository"

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
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var limiter domain.RateLimiter
	if cfg.Gateway.RateLimit.Enabled {
		redisClient := initRedis(ctx, cfg, logger)
		if redisClient != nil {
			defer repository.Close(redisClient)
		}
		limiter = newRateLimiter(cfg.Gateway.RateLimit, redisClient, logging.Component(logger, "rate-limit"))
	}

	client, err := gateway.NewClient(cfg.Gateway.ServerURL, cfg.Gateway.RequestTimeout, logging.Component(logger, "upstream"))
	if err != nil {
		return err
	}
	client.WithRetry(gateway.RetryPolicy{
		MaxRetries:   cfg.Gateway.Retry.MaxRetries,
		InitialDelay: cfg.Gateway.Retry.InitialDelay,
		MaxDelay:     cfg.Gateway.Retry.MaxDelay,
	})
	gw := gateway.New(client, gateway.NewValidator(), limiter, logging.Component(logger, "http"))

	httpServer := api.NewHTTPServer(cfg.Gateway.Port, gw.Router(), cfg.Gateway.ReadHeaderTimeout, cfg.Gateway.WriteTimeout, logger)

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.GatewayPrometheusPort, logger)
	}

	return serve(ctx, httpServer, cfg.Gateway.ServerURL, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	return cfg, logging.Component(baseLogger, "gateway-main"), closer, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, rate limiting from memory")
		_ = redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func newRateLimiter(cfg config.RateLimitConfig, redisClient *redis.Client, logger *zerolog.Logger) domain.RateLimiter {
	memory := repository.NewMemoryRateLimiter(cfg.Requests, cfg.Window)
	if redisClient == nil {
		return memory
	}
	primary := repository.NewRedisRateLimiter(redisClient, cfg.Requests, cfg.Window)
	return repository.NewFailoverRateLimiter(primary, memory, logger)
}

func serve(ctx context.Context, httpServer *api.HTTPServer, serverURL string, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info().Str("addr", httpServer.Addr()).Str("server_url", serverURL).Msg("ShareIt gateway started")

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown")
	}

	logger.Info().Msg("ShareIt gateway stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

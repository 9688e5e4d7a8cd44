package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/armorhq/armor/internal/config"
	"github.com/armorhq/armor/internal/httpserver"
	"github.com/armorhq/armor/internal/lifecycle"
	"github.com/armorhq/armor/internal/logger"
	"github.com/armorhq/armor/internal/metrics"
	"github.com/armorhq/armor/internal/proxy"
	"github.com/armorhq/armor/internal/report"
)

const version = "0.1.0"

const shutdownGrace = 15 * time.Second

func main() {
	// Optional .env file for local development. Real deployments set the
	// environment directly.
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("ARMOR_CONFIG"), "Path to YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Error().Err(err).Msg("main.config_load_failed")
		os.Exit(1)
	}

	appLogger := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Service:     "armord",
		Version:     version,
		Environment: cfg.Logging.Environment,
	})

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error().Err(err).Msg("main.exit")
		os.Exit(1)
	}
}

func run(cfg *config.Config, appLogger zerolog.Logger) error {
	resources := lifecycle.NewManager()
	defer func() {
		if err := resources.Close(); err != nil {
			appLogger.Error().Err(err).Msg("main.cleanup_failed")
		}
	}()

	if err := report.Setup(cfg.Sentry.DSN, cfg.Logging.Environment); err != nil {
		return err
	}
	resources.RegisterFunc("sentry", func() error {
		report.Flush()
		return nil
	})

	policy, err := cfg.Headers.Policy()
	if err != nil {
		return err
	}

	metricsCollector := metrics.New(prometheus.DefaultRegisterer)

	var upstreamProxy *proxy.Proxy
	if cfg.Upstream.URL != "" {
		upstreamProxy, err = proxy.New(cfg.Upstream, policy, appLogger, metricsCollector)
		if err != nil {
			return err
		}
		appLogger.Info().
			Str("upstream", cfg.Upstream.URL).
			Bool("circuit_breaker", cfg.Upstream.Breaker.Enabled).
			Msg("main.upstream_configured")
	} else {
		appLogger.Warn().Msg("main.no_upstream_configured")
	}

	srv := httpserver.New(cfg, policy, upstreamProxy, metricsCollector, appLogger)

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info().
			Str("address", cfg.Server.Address).
			Strs("headers", policy.HeaderNames()).
			Msg("main.server_starting")
		serverErr <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case sig := <-stop:
		appLogger.Info().Str("signal", sig.String()).Msg("main.shutdown_started")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	appLogger.Info().Msg("main.shutdown_complete")
	return nil
}

// Command status-service serves the single-endpoint status payload.
//
// Purpose:
//
//	GET / returns a JSON object carrying a fixed "ok" status, the configured
//	greeting, the current time rendered in the configured UTC offset, and the
//	configured secret. A second listener exposes /metrics and /healthz.
//
// Dependencies:
//   - internal/config: Environment and .env configuration
//   - internal/logging: zap logger with redaction
//   - internal/observability: OpenTelemetry tracing and Prometheus metrics
//   - internal/server: Public and admin routers
//   - internal/status: GET / handler
//
// Debugging Notes:
//   - Public listener defaults to :8000, admin listener to :9090
//   - A malformed TIMEZONE_OFFSET does not stop startup; GET / returns 500
//     CONFIG_INVALID and /healthz reports degraded until it is fixed
//   - Set RELOAD_PER_REQUEST=true to pick up payload variable changes without restart
//
// Error Handling:
//   - Configuration errors exit with code 1
//   - Listener failures stop both servers and exit with code 1
//   - Shutdown is bounded by SHUTDOWN_TIMEOUT
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/otherjamesbrown/ai-aas/services/status-service/internal/config"
	"github.com/otherjamesbrown/ai-aas/services/status-service/internal/health"
	"github.com/otherjamesbrown/ai-aas/services/status-service/internal/logging"
	"github.com/otherjamesbrown/ai-aas/services/status-service/internal/observability"
	"github.com/otherjamesbrown/ai-aas/services/status-service/internal/server"
	"github.com/otherjamesbrown/ai-aas/services/status-service/internal/status"
)

func main() {
	envFile := config.EnvFilePath()
	loaded, err := config.LoadEnvFile(envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", envFile, err)
		os.Exit(1)
	}

	cfg := config.MustLoad()

	logger, err := logging.New(logging.Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting status service", append(logging.Fields(map[string]string{
		"http_address":    cfg.HTTPAddress,
		"admin_address":   cfg.AdminAddress,
		"greeting":        cfg.Greeting,
		"timezone_offset": cfg.TimezoneOffset,
		"secret_message":  cfg.SecretMessage,
		"env_file":        envFile,
	}), zap.Bool("env_file_loaded", loaded), zap.Bool("reload_per_request", cfg.ReloadPerRequest))...)

	if err := cfg.OffsetError(); err != nil {
		logger.Warn("configured offset is invalid; GET / will fail until it is corrected", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger.Logger); err != nil {
		logger.Error("status service stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("status service stopped")
}

// run serves until ctx is cancelled or a listener fails, then shuts down.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	telemetry, err := observability.Init(ctx, observability.Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.TelemetryEndpoint,
		Protocol:    cfg.TelemetryProtocol,
		Headers:     cfg.Headers(),
		Insecure:    cfg.TelemetryInsecure,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	switch {
	case telemetry.Disabled():
		logger.Info("trace export disabled")
	case telemetry.Fallback():
		logger.Warn("trace exporter unavailable, running with no-op provider", zap.String("endpoint", cfg.TelemetryEndpoint))
	}

	servers := []*http.Server{
		server.New(server.Options{
			Address: cfg.HTTPAddress,
			Logger:  logger,
			Status: status.NewHandler(status.Options{
				Source: cfg.Source(),
				Logger: logger,
			}),
		}),
	}
	if cfg.AdminAddress != "" {
		servers = append(servers, server.NewAdmin(server.AdminOptions{
			Address: cfg.AdminAddress,
			Health:  newHealthRegistry(cfg),
		}))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			logger.Info("listening", zap.String("address", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", srv.Addr, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
			}
		}
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

// newHealthRegistry registers the probes reported on /healthz.
func newHealthRegistry(cfg *config.Config) *health.Registry {
	reg := health.NewRegistry()
	reg.Register("self", func(context.Context) error { return nil })
	reg.Register("timezone_offset", func(context.Context) error {
		if cfg.ReloadPerRequest {
			payload, err := config.EnvSource{}.Current()
			if err != nil {
				return err
			}
			return (&config.Config{Payload: payload}).OffsetError()
		}
		return cfg.OffsetError()
	})
	return reg
}

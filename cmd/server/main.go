package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"

	metadatahandler "dicomviewer/internal/metadata/handler"
	metadatametrics "dicomviewer/internal/metadata/metrics"
	"dicomviewer/internal/metadata/service"
	"dicomviewer/internal/platform/config"
	"dicomviewer/internal/platform/httpserver"
	"dicomviewer/internal/platform/logger"
	"dicomviewer/internal/platform/metrics"
	"dicomviewer/internal/platform/tracing"
	httptransport "dicomviewer/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Extraction logic lives in internal/metadata.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Logging)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers cleanup
	defer closers.run(log)

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	closers.add("tracing", shutdownTracing)

	fetcher, err := buildFetcher(ctx, cfg, log, &closers)
	if err != nil {
		return err
	}
	auditor, err := buildAuditor(ctx, cfg, log, &closers)
	if err != nil {
		return err
	}

	limiter, err := buildRateLimiter(ctx, cfg, log, &closers)
	if err != nil {
		return err
	}

	var handlerOpts []metadatahandler.Option
	if limiter != nil {
		handlerOpts = append(handlerOpts, metadatahandler.WithExtractMiddleware(limiter))
	}

	svc, err := service.New(fetcher,
		service.WithMetrics(metadatametrics.New()),
		service.WithTracer(otel.Tracer("dicomviewer/metadata")),
	)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:         log,
		Metrics:        metrics.New(),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
	}, metadatahandler.New(svc, auditor, log, handlerOpts...))

	srv := httpserver.New(cfg.Server, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting dicomviewer",
			"addr", cfg.Server.Addr,
			"storage", cfg.Storage.Backend,
			"cache", cfg.Cache.Backend,
			"audit", cfg.Audit.Sink,
			"rate_limit", cfg.RateLimit.Requests,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

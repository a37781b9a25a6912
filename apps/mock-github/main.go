package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tilsley/cgs/pkg/ghfake"
	"github.com/tilsley/cgs/pkg/logging"
	"github.com/tilsley/cgs/pkg/telemetry"
)

const serviceName = "mock-github"

func main() {
	log := logging.New(os.Stdout, logging.FormatJSON)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, log)
	stop()
	if err != nil {
		log.Error("mock-github failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	// --- Observability ---

	tel, err := telemetry.New(ctx, os.Getenv("OTEL_ENABLED") == "true", serviceName)
	if err != nil {
		return fmt.Errorf("telemetry init: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetry.ShutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Error("telemetry shutdown failed", "error", err)
		}
	}()

	// --- Fake GitHub ---

	s, err := newServer(log)
	if err != nil {
		return err
	}
	log.Info("seeded repos", "files", s.Files())

	port := envOr("PORT", "9090")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	log.Info("mock-github starting", "port", port, "otel", tel.Enabled())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// newServer builds the seeded fake with request tracing. Spans go to the
// global tracer provider, so telemetry must be initialised first.
func newServer(log *slog.Logger) (*ghfake.Server, error) {
	s := ghfake.New(log, otelgin.Middleware(serviceName))
	if err := seed(s); err != nil {
		return nil, fmt.Errorf("seeding: %w", err)
	}
	return s, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

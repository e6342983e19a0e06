// clinic-stub is the in-memory clinic backend for local development. It
// serves the full REST surface with seeded demo accounts; all state is lost
// on exit.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"clinicdesk/internal/config"
	"clinicdesk/internal/observability/metrics"
	"clinicdesk/internal/stubclinic"
	"clinicdesk/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic stub server",
		"env", cfg.Env,
		"port", cfg.StubPort,
	)

	store := stubclinic.NewStore()
	stubclinic.SeedDemo(store)

	srv := stubclinic.NewServer(store, cfg.StubJWTSecret, cfg.StubTokenTTL, logger)
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		srv = srv.WithMetrics(metrics.NewRequestMetrics(nil))
		metricsHandler = promhttp.Handler()
	}

	httpSrv := &http.Server{
		Addr:         ":" + cfg.StubPort,
		Handler:      srv.Routes(metricsHandler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

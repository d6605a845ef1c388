package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config()
	cfg.logger.Debug("configuration loaded")

	if err := cfg.ConnectDB(); err != nil {
		os.Exit(1)
	}
	if err := cfg.ConnectCache(context.Background()); err != nil {
		os.Exit(1)
	}

	scheduler, err := NewScheduler(cfg)
	if err != nil {
		cfg.logger.Error("could not build scheduler", "error", err)
		os.Exit(1)
	}
	cfg.scheduler = scheduler

	cfg.logger.Info(
		"starting scheduler",
		"fetch", cfg.cronFetch,
		"aggregate", cfg.cronAggregate,
		"alert_check", cfg.cronAlertCheck,
		"cleanup", cfg.cronCleanup,
		"timezone", cfg.timezone.String(),
	)
	scheduler.Start()

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/dashboard/summary", cfg.handlerDashboardSummary)
	mux.HandleFunc("GET /api/dashboard/trends", cfg.handlerDashboardTrends)
	mux.HandleFunc("GET /api/alerts/active", cfg.handlerActiveAlerts)
	mux.HandleFunc("GET /api/alerts/history", cfg.handlerAlertHistory)
	mux.HandleFunc("POST /api/alerts/{id}/resolve", cfg.handlerResolveAlert)
	mux.HandleFunc("GET /api/rules", cfg.handlerListRules)
	mux.HandleFunc("POST /api/rules", cfg.handlerCreateRule)
	mux.HandleFunc("PUT /api/rules/{id}", cfg.handlerUpdateRule)
	mux.HandleFunc("DELETE /api/rules/{id}", cfg.handlerDisableRule)
	mux.HandleFunc("POST /api/jobs/{name}/run", cfg.handlerRunJob)
	mux.HandleFunc("GET /api/jobs/status", cfg.handlerJobStatus)
	mux.Handle("GET /metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    ":" + cfg.port,
		Handler: corsMiddleware(metricsMiddleware(mux)),
	}

	go func() {
		cfg.logger.Info("starting server", "port", cfg.port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			cfg.logger.Error("server startup failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	cfg.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := scheduler.Stop(shutdownCtx); err != nil {
		cfg.logger.Warn("scheduler did not stop cleanly", "error", err)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		cfg.logger.Warn("server did not stop cleanly", "error", err)
	}
	cfg.logger.Info("shutdown complete")
}

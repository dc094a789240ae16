package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront-backend/pkg/container"
	"storefront-backend/pkg/logger"
)

// startServices runs startup checks, then exposes health and metrics
func startServices(c *container.Container, srv *asynqServer) error {
	checks := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"redis", c.Redis.HealthCheck},
		{"database", c.DB.Ping},
		{"asynq", func(context.Context) error { return srv.Ping() }},
	}

	for _, check := range checks {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := check.fn(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("%s check failed: %w", check.name, err)
		}
	}

	go startHealthServer(c.Config.Worker.HealthAddr)
	return nil
}

func startHealthServer(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"UP","service":"storefront-worker"}`))
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	logger.Info("worker health server starting", map[string]interface{}{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("worker health server failed", err)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/infrastructure/database"
	"storefront-backend/pkg/container"
	"storefront-backend/pkg/logger"
)

func main() {
	// Logs before the container is up go to the default writer
	logger.Init(os.Getenv("APP_ENV"))

	if err := Serve(); err != nil {
		logger.Fatal("server stopped", err)
	}
}

func Serve() error {
	// ========================================
	// 1. BUILD DI CONTAINER
	// ========================================
	appContainer, err := container.NewContainer()
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer appContainer.Cleanup()

	cfg := appContainer.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// ========================================
	// 2. MIGRATIONS (opt-in)
	// ========================================
	if cfg.Migrations.AutoMigrate {
		if err := database.Migrate(context.Background(), appContainer.DB.Pool); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
	}

	// ========================================
	// 3. HTTP SERVER
	// ========================================
	srv := &http.Server{
		Addr:           fmt.Sprintf(":%s", cfg.App.Port),
		Handler:        SetupRouter(appContainer),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", map[string]interface{}{
			"port":        cfg.App.Port,
			"environment": cfg.App.Environment,
			"version":     cfg.App.Version,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// ========================================
	// 4. GRACEFUL SHUTDOWN
	// ========================================
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info("shutting down server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited gracefully", nil)
	return nil
}

package main

import (
	"os"
	"os/signal"
	"syscall"

	"storefront-backend/pkg/container"
	"storefront-backend/pkg/logger"
)

func main() {
	logger.Init(os.Getenv("APP_ENV"))

	c, err := container.NewContainer()
	if err != nil {
		logger.Fatal("failed to initialize container", err)
	}
	defer c.Cleanup()

	handlers := initializeHandlers(c)
	srv := setupAsynqServer(c, handlers)

	if err := startServices(c, srv); err != nil {
		logger.Fatal("worker startup failed", err)
	}

	waitForShutdown(srv)
}

func waitForShutdown(srv *asynqServer) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-srv.errs:
		logger.Error("worker stopped unexpectedly", err)
	}

	logger.Info("worker shutting down", nil)
	srv.Shutdown()
}

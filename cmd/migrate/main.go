package main

import (
	"context"
	"flag"
	"os"

	"storefront-backend/internal/config"
	"storefront-backend/internal/infrastructure/database"
	"storefront-backend/pkg/logger"
)

func main() {
	down := flag.Int("down", 0, "roll back this many migrations instead of migrating up")
	flag.Parse()

	logger.Init(os.Getenv("APP_ENV"))

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", err)
	}

	ctx := context.Background()
	db := database.NewPostgresDB(&cfg.Database)
	if err := db.Connect(ctx); err != nil {
		logger.Fatal("connect db", err)
	}
	defer db.Close()

	if *down > 0 {
		if err := database.Rollback(ctx, db.Pool, *down); err != nil {
			logger.Fatal("rollback migrations", err)
		}
		logger.Info("migrations rolled back", map[string]interface{}{"steps": *down})
		return
	}

	if err := database.Migrate(ctx, db.Pool); err != nil {
		logger.Fatal("apply migrations", err)
	}
}

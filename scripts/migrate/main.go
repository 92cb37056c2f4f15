package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/mo-amir99/course-progress-server/internal/bootstrap"
	"github.com/mo-amir99/course-progress-server/pkg/config"
	"github.com/mo-amir99/course-progress-server/pkg/database"
	"github.com/mo-amir99/course-progress-server/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.Database, appLogger)
	if err != nil {
		appLogger.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close(db, appLogger)

	appLogger.Info("Starting database migrations...")
	if err := bootstrap.Migrate(ctx, db, appLogger); err != nil {
		appLogger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	appLogger.Info("Database migrations completed successfully")
	fmt.Println("\nAll database tables created/updated successfully!")
}

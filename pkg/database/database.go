package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mo-amir99/course-progress-server/pkg/config"
)

// Connect establishes a GORM connection using the provided configuration with retry logic.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	return ConnectWithRetry(ctx, cfg, log, 5, time.Second)
}

// ConnectWithRetry retries connectOnce with exponential backoff and jitter.
func ConnectWithRetry(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger, maxRetries int, initialBackoff time.Duration) (*gorm.DB, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			wait := backoff(initialBackoff, attempt)
			log.Warn("retrying database connection",
				slog.Int("attempt", attempt),
				slog.Int("max_retries", maxRetries),
				slog.Duration("backoff", wait),
				slog.String("error", lastErr.Error()),
			)

			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("connection cancelled: %w", ctx.Err())
			case <-time.After(wait):
			}
		}

		db, err := connectOnce(ctx, cfg, log)
		if err == nil {
			if attempt > 0 {
				log.Info("database connection established after retry", slog.Int("attempts", attempt+1))
			}
			return db, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", maxRetries+1, lastErr)
}

func backoff(initial time.Duration, attempt int) time.Duration {
	base := time.Duration(float64(initial) * math.Pow(2, float64(attempt-1)))
	jitter := time.Duration(rand.Float64() * 0.25 * float64(base))
	return base + jitter
}

func connectOnce(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 NewSlogLogger(log, 200*time.Millisecond),
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Second)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := db.Use(NewReconnectPlugin(log)); err != nil {
		return nil, fmt.Errorf("register reconnect plugin: %w", err)
	}

	// gen_random_uuid() backs every primary key default.
	if err := db.WithContext(ctx).Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		return nil, fmt.Errorf("create pgcrypto extension: %w", err)
	}

	return db, nil
}

// AutoMigrate creates or updates the tables for models.
func AutoMigrate(ctx context.Context, db *gorm.DB, log *slog.Logger, models ...interface{}) error {
	log.Info("running database migrations", slog.Int("models", len(models)))
	if err := db.WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Info("database schema migrated successfully")
	return nil
}

// IsUniqueViolation reports whether err came from a unique constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// Ping checks the underlying pool. A nil db is reported as healthy in-memory mode.
func Ping(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close gracefully closes the underlying sql.DB connection pool.
func Close(db *gorm.DB, log *slog.Logger) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	log.Info("database connection closed")
	return nil
}

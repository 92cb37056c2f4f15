package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mo-amir99/course-progress-server/pkg/metrics"
)

// SlogLogger implements gorm's logger interface on top of slog and feeds query metrics.
type SlogLogger struct {
	logger        *slog.Logger
	slowThreshold time.Duration
	logLevel      logger.LogLevel
}

// NewSlogLogger creates a gorm logger that warns on queries slower than slowThreshold.
func NewSlogLogger(appLogger *slog.Logger, slowThreshold time.Duration) logger.Interface {
	return &SlogLogger{
		logger:        appLogger,
		slowThreshold: slowThreshold,
		logLevel:      logger.Warn,
	}
}

func (l *SlogLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.logLevel = level
	return &clone
}

func (l *SlogLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Info {
		l.logger.InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *SlogLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Warn {
		l.logger.WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *SlogLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Error {
		l.logger.ErrorContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *SlogLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.logLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	operation, table := describeSQL(sql)
	metrics.RecordDBQuery(operation, table, elapsed)

	switch {
	case err != nil && l.logLevel >= logger.Error && !expected(err):
		l.logger.ErrorContext(ctx, "database query error",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", elapsed),
			slog.String("sql", sql),
			slog.Int64("rows", rows),
		)
	case l.slowThreshold != 0 && elapsed > l.slowThreshold && l.logLevel >= logger.Warn:
		l.logger.WarnContext(ctx, "slow query detected",
			slog.Duration("elapsed", elapsed),
			slog.String("operation", operation),
			slog.String("table", table),
			slog.Int64("rows", rows),
		)
	case l.logLevel >= logger.Info:
		l.logger.DebugContext(ctx, "database query",
			slog.Duration("elapsed", elapsed),
			slog.String("operation", operation),
			slog.String("table", table),
			slog.Int64("rows", rows),
		)
	}
}

// Not-found and unique violations are handled by callers.
func expected(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || IsUniqueViolation(err)
}

// describeSQL returns the statement verb and the first table it touches.
func describeSQL(sql string) (operation, table string) {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "UNKNOWN", "unknown"
	}
	operation = strings.ToUpper(fields[0])

	table = "unknown"
	for i := 0; i < len(fields)-1; i++ {
		switch strings.ToUpper(fields[i]) {
		case "FROM", "INTO", "UPDATE":
			table = strings.Trim(fields[i+1], "\"`(;,")
			return operation, table
		}
	}
	return operation, table
}

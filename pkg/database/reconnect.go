package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"gorm.io/gorm"
)

// ReconnectPlugin watches statement errors and, when one looks like a dropped connection,
// pings the pool with backoff so the next request gets a fresh connection.
type ReconnectPlugin struct {
	logger     *slog.Logger
	maxRetries int
	retryDelay time.Duration
	reconnects atomic.Int64
}

// NewReconnectPlugin creates a new reconnect plugin.
func NewReconnectPlugin(logger *slog.Logger) *ReconnectPlugin {
	return &ReconnectPlugin{
		logger:     logger,
		maxRetries: 3,
		retryDelay: 500 * time.Millisecond,
	}
}

// Name returns the plugin name.
func (p *ReconnectPlugin) Name() string {
	return "reconnect_plugin"
}

// Initialize hooks the plugin after every statement kind.
func (p *ReconnectPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		name     string
		register func() error
	}{
		{"query", func() error { return cb.Query().After("gorm:query").Register("reconnect:after_query", p.afterStatement) }},
		{"create", func() error { return cb.Create().After("gorm:create").Register("reconnect:after_create", p.afterStatement) }},
		{"update", func() error { return cb.Update().After("gorm:update").Register("reconnect:after_update", p.afterStatement) }},
		{"delete", func() error { return cb.Delete().After("gorm:delete").Register("reconnect:after_delete", p.afterStatement) }},
		{"raw", func() error { return cb.Raw().After("gorm:raw").Register("reconnect:after_raw", p.afterStatement) }},
	}
	for _, h := range hooks {
		if err := h.register(); err != nil {
			return err
		}
	}
	return nil
}

func (p *ReconnectPlugin) afterStatement(db *gorm.DB) {
	if !isConnectionError(db.Error) {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		return
	}

	p.logger.Warn("database connection lost, attempting to reconnect", slog.String("error", db.Error.Error()))
	if p.reconnect(db.Statement.Context, sqlDB) {
		p.logger.Info("database reconnection successful", slog.Int64("total_reconnects", p.reconnects.Load()))
	} else {
		p.logger.Error("database reconnection failed after retries")
	}
}

func (p *ReconnectPlugin) reconnect(ctx context.Context, sqlDB *sql.DB) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(p.retryDelay * time.Duration(attempt)):
		}

		if err := sqlDB.PingContext(ctx); err == nil {
			p.reconnects.Add(1)
			return true
		}
	}
	return false
}

// Reconnects returns the number of successful reconnections.
func (p *ReconnectPlugin) Reconnects() int64 {
	return p.reconnects.Load()
}

var connectionErrorPatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"no such host",
	"network is unreachable",
	"connection timed out",
	"bad connection",
	"closed network connection",
	"server closed",
	"unexpected eof",
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range connectionErrorPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

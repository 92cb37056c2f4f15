package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options tunes where log files are written.
type Options struct {
	Dir        string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New creates a structured slog.Logger based on the provided level string.
// Logs go to rotated files under dir and to the console.
func New(level, dir string) (*slog.Logger, error) {
	return NewWithOptions(level, Options{Dir: dir, MaxSizeMB: 100, MaxBackups: 5, MaxAgeDays: 30})
}

// NewWithOptions is New with explicit rotation settings.
func NewWithOptions(level string, opts Options) (*slog.Logger, error) {
	handlerLevel, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	if opts.Dir == "" {
		opts.Dir = "logs"
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, err
	}

	infoFile := rotatingFile(filepath.Join(opts.Dir, "info.log"), opts)
	errorFile := rotatingFile(filepath.Join(opts.Dir, "error.log"), opts)

	consoleHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: handlerLevel})
	infoFileHandler := slog.NewJSONHandler(infoFile, &slog.HandlerOptions{Level: handlerLevel})
	errorFileHandler := slog.NewJSONHandler(errorFile, &slog.HandlerOptions{Level: slog.LevelError})

	return slog.New(NewMultiLevelHandler(handlerLevel, consoleHandler, infoFileHandler, errorFileHandler)), nil
}

// Discard returns a logger that drops everything. Handy in tests and scripts.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rotatingFile(path string, opts Options) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}
}

// MultiLevelHandler routes logs to the console, the info file and, for errors, the error file.
type MultiLevelHandler struct {
	consoleHandler   slog.Handler
	infoFileHandler  slog.Handler
	errorFileHandler slog.Handler
	level            slog.Leveler
}

func NewMultiLevelHandler(level slog.Leveler, consoleHandler, infoFileHandler, errorFileHandler slog.Handler) *MultiLevelHandler {
	return &MultiLevelHandler{
		consoleHandler:   consoleHandler,
		infoFileHandler:  infoFileHandler,
		errorFileHandler: errorFileHandler,
		level:            level,
	}
}

func (h *MultiLevelHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *MultiLevelHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	if err := h.consoleHandler.Handle(ctx, r); err != nil {
		errs = append(errs, err)
	}
	if err := h.infoFileHandler.Handle(ctx, r); err != nil {
		errs = append(errs, err)
	}
	if r.Level >= slog.LevelError {
		if err := h.errorFileHandler.Handle(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *MultiLevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &MultiLevelHandler{
		consoleHandler:   h.consoleHandler.WithAttrs(attrs),
		infoFileHandler:  h.infoFileHandler.WithAttrs(attrs),
		errorFileHandler: h.errorFileHandler.WithAttrs(attrs),
		level:            h.level,
	}
}

func (h *MultiLevelHandler) WithGroup(name string) slog.Handler {
	return &MultiLevelHandler{
		consoleHandler:   h.consoleHandler.WithGroup(name),
		infoFileHandler:  h.infoFileHandler.WithGroup(name),
		errorFileHandler: h.errorFileHandler.WithGroup(name),
		level:            h.level,
	}
}

func parseLevel(level string) (slog.Leveler, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return nil, errors.New("invalid log level")
	}
}

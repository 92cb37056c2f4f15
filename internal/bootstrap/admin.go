package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mo-amir99/course-progress-server/internal/features/user"
	"github.com/mo-amir99/course-progress-server/pkg/config"
	"github.com/mo-amir99/course-progress-server/pkg/types"
)

// EnsureDefaultAdmin creates the configured admin account when it is missing.
func EnsureDefaultAdmin(ctx context.Context, users user.Store, cfg config.AdminConfig, logger *slog.Logger) error {
	if cfg.Password == "" {
		logger.Info("default admin skipped", slog.String("env_var", "LMS_ADMIN_PASSWORD is empty"))
		return nil
	}

	existing, err := users.GetByEmail(ctx, cfg.Email)
	switch {
	case err == nil:
		if existing.Role != types.UserTypeAdmin {
			logger.Warn("default admin email belongs to a non-admin account",
				slog.String("email", existing.Email),
				slog.String("role", string(existing.Role)))
			return nil
		}
		logger.Info("default admin already exists", slog.String("email", existing.Email))
		return nil
	case !errors.Is(err, user.ErrUserNotFound):
		if isUndefinedTableError(err) {
			logger.Warn("default admin skipped - users table missing", slog.String("email", cfg.Email))
			return nil
		}
		return fmt.Errorf("get admin: %w", err)
	}

	admin := user.User{
		FullName: cfg.FullName,
		Email:    cfg.Email,
		Role:     types.UserTypeAdmin,
		Active:   true,
	}
	if err := admin.SetPassword(cfg.Password); err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if err := users.Create(ctx, &admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	logger.Info("default admin created", slog.String("email", admin.Email))
	return nil
}

func isUndefinedTableError(err error) bool {
	if err == nil {
		return false
	}

	message := err.Error()
	return strings.Contains(message, "relation \"users\" does not exist") ||
		strings.Contains(message, "no such table: users")
}

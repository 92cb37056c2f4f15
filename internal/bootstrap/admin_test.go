package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mo-amir99/course-progress-server/internal/features/user"
	"github.com/mo-amir99/course-progress-server/internal/storage/memstore"
	"github.com/mo-amir99/course-progress-server/pkg/config"
	"github.com/mo-amir99/course-progress-server/pkg/logger"
	"github.com/mo-amir99/course-progress-server/pkg/types"
)

func TestEnsureDefaultAdmin(t *testing.T) {
	ctx := context.Background()
	users := memstore.New().Users()
	cfg := config.AdminConfig{Email: "Admin@Example.com", Password: "s3cret-pass", FullName: "Admin"}

	require.NoError(t, EnsureDefaultAdmin(ctx, users, cfg, logger.Discard()))
	admin, err := users.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, types.UserTypeAdmin, admin.Role)
	assert.True(t, admin.ComparePassword("s3cret-pass"))

	require.NoError(t, EnsureDefaultAdmin(ctx, users, cfg, logger.Discard()), "second run is a no-op")
}

func TestEnsureDefaultAdminSkipsWithoutPassword(t *testing.T) {
	ctx := context.Background()
	users := memstore.New().Users()

	require.NoError(t, EnsureDefaultAdmin(ctx, users, config.AdminConfig{Email: "admin@example.com"}, logger.Discard()))
	_, err := users.GetByEmail(ctx, "admin@example.com")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestMigrationStepsAreOrdered(t *testing.T) {
	steps := Migrations().Steps()
	require.Len(t, steps, 8)
	assert.Equal(t, "drop lessons order check", steps[0])
	assert.Len(t, Models(), 8)
}

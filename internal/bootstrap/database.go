package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/mo-amir99/course-progress-server/internal/features/course"
	"github.com/mo-amir99/course-progress-server/internal/features/enrollment"
	"github.com/mo-amir99/course-progress-server/internal/features/lesson"
	"github.com/mo-amir99/course-progress-server/internal/features/notification"
	"github.com/mo-amir99/course-progress-server/internal/features/progress"
	"github.com/mo-amir99/course-progress-server/internal/features/quiz"
	"github.com/mo-amir99/course-progress-server/internal/features/user"
	"github.com/mo-amir99/course-progress-server/pkg/config"
	"github.com/mo-amir99/course-progress-server/pkg/database"
	"github.com/mo-amir99/course-progress-server/pkg/database/migrations"
)

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&course.Course{},
		&lesson.Lesson{},
		&enrollment.Enrollment{},
		&progress.LessonProgress{},
		&quiz.Quiz{},
		&quiz.Attempt{},
		&notification.Notification{},
	}
}

// Migrations returns the schema steps AutoMigrate cannot express.
func Migrations() *migrations.Registry {
	return migrations.NewRegistry().
		Add("drop lessons order check", migrations.Exec(`ALTER TABLE lessons DROP CONSTRAINT IF EXISTS chk_lessons_order_positive`)).
		Add("lessons order check", migrations.Exec(`ALTER TABLE lessons ADD CONSTRAINT chk_lessons_order_positive CHECK ("order" >= 1)`)).
		Add("drop enrollments progress check", migrations.Exec(`ALTER TABLE enrollments DROP CONSTRAINT IF EXISTS chk_enrollments_progress_range`)).
		Add("enrollments progress check", migrations.Exec(`ALTER TABLE enrollments ADD CONSTRAINT chk_enrollments_progress_range CHECK (progress BETWEEN 0 AND 100)`)).
		Add("drop quizzes passing score check", migrations.Exec(`ALTER TABLE quizzes DROP CONSTRAINT IF EXISTS chk_quizzes_passing_score_range`)).
		Add("quizzes passing score check", migrations.Exec(`ALTER TABLE quizzes ADD CONSTRAINT chk_quizzes_passing_score_range CHECK (passing_score BETWEEN 0 AND 100)`)).
		Add("drop quiz attempts number check", migrations.Exec(`ALTER TABLE quiz_attempts DROP CONSTRAINT IF EXISTS chk_quiz_attempts_number_positive`)).
		Add("quiz attempts number check", migrations.Exec(`ALTER TABLE quiz_attempts ADD CONSTRAINT chk_quiz_attempts_number_positive CHECK (attempt_number >= 1)`))
}

// ApplyDatabaseMigrations runs database migrations when enabled via configuration.
func ApplyDatabaseMigrations(ctx context.Context, db *gorm.DB, cfg *config.Config, logger *slog.Logger) error {
	if !cfg.Database.RunMigrations {
		logger.Info("database migrations skipped", slog.String("env_var", "LMS_DB_RUN_MIGRATIONS=false"))
		return nil
	}
	return Migrate(ctx, db, logger)
}

// Migrate creates the schema and applies the extra constraints.
func Migrate(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	if err := database.AutoMigrate(ctx, db, logger, Models()...); err != nil {
		return err
	}
	if err := Migrations().Run(ctx, db, logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	logger.Info("database migrations applied successfully")
	return nil
}

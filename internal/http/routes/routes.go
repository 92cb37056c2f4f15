package routes

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mo-amir99/course-progress-server/internal/features/auth"
	"github.com/mo-amir99/course-progress-server/internal/features/course"
	"github.com/mo-amir99/course-progress-server/internal/features/enrollment"
	"github.com/mo-amir99/course-progress-server/internal/features/lesson"
	"github.com/mo-amir99/course-progress-server/internal/features/notification"
	"github.com/mo-amir99/course-progress-server/internal/features/progress"
	"github.com/mo-amir99/course-progress-server/internal/features/quiz"
	"github.com/mo-amir99/course-progress-server/internal/features/user"
	"github.com/mo-amir99/course-progress-server/internal/middleware"
	"github.com/mo-amir99/course-progress-server/internal/storage/memstore"
	"github.com/mo-amir99/course-progress-server/pkg/cache"
	"github.com/mo-amir99/course-progress-server/pkg/config"
	"github.com/mo-amir99/course-progress-server/pkg/database"
	"github.com/mo-amir99/course-progress-server/pkg/health"
	"github.com/mo-amir99/course-progress-server/pkg/metrics"
	"github.com/mo-amir99/course-progress-server/pkg/types"
)

// Stores bundles one store per feature.
type Stores struct {
	Users         user.Store
	Courses       course.Store
	Lessons       lesson.Store
	Enrollments   enrollment.Store
	Progress      progress.Store
	Quizzes       quiz.Store
	Notifications notification.Store
}

// GormStores returns postgres-backed stores sharing db.
func GormStores(db *gorm.DB) Stores {
	return Stores{
		Users:         user.NewGormStore(db),
		Courses:       course.NewGormStore(db),
		Lessons:       lesson.NewGormStore(db),
		Enrollments:   enrollment.NewGormStore(db),
		Progress:      progress.NewGormStore(db),
		Quizzes:       quiz.NewGormStore(db),
		Notifications: notification.NewGormStore(db),
	}
}

// MemoryStores returns in-process stores backed by m.
func MemoryStores(m *memstore.Store) Stores {
	return Stores{
		Users:         m.Users(),
		Courses:       m.Courses(),
		Lessons:       m.Lessons(),
		Enrollments:   m.Enrollments(),
		Progress:      m.Progress(),
		Quizzes:       m.Quizzes(),
		Notifications: m.Notifications(),
	}
}

// Deps carries everything Register needs. DB is nil in memory mode; Cache,
// Pusher and Mailer are optional.
type Deps struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *gorm.DB
	Stores Stores
	Cache  cache.Client
	Pusher notification.Pusher
	Mailer notification.Mailer
}

// Services exposes the wired services that live beyond request handling.
type Services struct {
	Auth          *middleware.Auth
	Enrollments   *enrollment.Service
	Progress      *progress.Service
	Notifications *notification.Dispatcher
}

// Register wires all feature routes onto the engine.
func Register(engine *gin.Engine, deps Deps) *Services {
	cfg, logger, stores := deps.Config, deps.Logger, deps.Stores

	// Health check endpoints (no /api prefix for Kubernetes probes)
	checks := map[string]health.Check{
		"database": func(ctx context.Context) error { return database.Ping(ctx, deps.DB) },
	}
	if deps.Cache != nil {
		checks["cache"] = deps.Cache.Ping
	}
	health.NewHandler(cfg.Version, checks, logger).RegisterRoutes(engine)

	// Metrics endpoint for Prometheus
	engine.GET("/metrics", metrics.Handler())

	api := engine.Group("/api")

	authMiddleware := middleware.NewAuth(cfg.JWTSecret, logger)

	// Admin automatically has access to everything (handled in RequireRoles)
	adminOnly := authMiddleware.RequireRoles(types.UserTypeAdmin)
	staff := authMiddleware.RequireRoles(types.UserTypeInstructor)
	allUsers := authMiddleware.RequireRoles(types.UserTypeAll)

	dispatcher := notification.NewDispatcher(stores.Notifications, deps.Pusher, deps.Mailer, stores.Users, logger)
	courseService := course.NewService(stores.Courses, stores.Lessons)
	progressService := progress.NewService(stores.Progress, stores.Lessons, stores.Enrollments,
		deps.Cache, cfg.Progress.CacheTTL, dispatcher, logger)
	lessonService := lesson.NewService(stores.Lessons, courseService, progressService)
	enrollmentService := enrollment.NewService(stores.Enrollments, stores.Courses, stores.Lessons,
		progressService, dispatcher, logger)
	quizService := quiz.NewService(stores.Quizzes, courseService, stores.Lessons, stores.Enrollments,
		dispatcher, logger, cfg.Quiz.AttemptInsertRetries)

	authHandler := auth.NewHandler(auth.NewService(stores.Users, cfg.JWTSecret, cfg.JWTExpiry), logger)
	auth.RegisterRoutes(api, authHandler, authMiddleware.Authenticate())

	course.RegisterRoutes(api, course.NewHandler(courseService, logger), allUsers, staff)
	lesson.RegisterRoutes(api, lesson.NewHandler(lessonService, logger), allUsers, staff)
	enrollment.RegisterRoutes(api, enrollment.NewHandler(enrollmentService, logger), allUsers, adminOnly)
	progress.RegisterRoutes(api, progress.NewHandler(progressService, logger), allUsers)
	quiz.RegisterRoutes(api, quiz.NewHandler(quizService, logger), allUsers, staff)
	notification.RegisterRoutes(api, notification.NewHandler(dispatcher, logger), allUsers)

	return &Services{
		Auth:          authMiddleware,
		Enrollments:   enrollmentService,
		Progress:      progressService,
		Notifications: dispatcher,
	}
}

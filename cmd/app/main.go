package main

import (
	"compress/gzip"
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mo-amir99/course-progress-server/internal/bootstrap"
	"github.com/mo-amir99/course-progress-server/internal/features/notification"
	"github.com/mo-amir99/course-progress-server/internal/http/routes"
	"github.com/mo-amir99/course-progress-server/internal/jobs"
	authmw "github.com/mo-amir99/course-progress-server/internal/middleware"
	"github.com/mo-amir99/course-progress-server/internal/storage/memstore"
	"github.com/mo-amir99/course-progress-server/pkg/cache"
	"github.com/mo-amir99/course-progress-server/pkg/config"
	"github.com/mo-amir99/course-progress-server/pkg/database"
	"github.com/mo-amir99/course-progress-server/pkg/email"
	"github.com/mo-amir99/course-progress-server/pkg/logger"
	"github.com/mo-amir99/course-progress-server/pkg/metrics"
	"github.com/mo-amir99/course-progress-server/pkg/middleware"
	"github.com/mo-amir99/course-progress-server/pkg/request"
	socketioserver "github.com/mo-amir99/course-progress-server/pkg/socketio"
	"github.com/mo-amir99/course-progress-server/pkg/tracing"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Tracing.Enabled {
		shutdownTracing, err := tracing.Init(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			appLogger.Error("tracing init failed", slog.String("error", err.Error()))
		} else {
			defer func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdownTracing(flushCtx)
			}()
		}
	}

	var (
		db     *gorm.DB
		stores routes.Stores
	)
	if cfg.UsesMemoryStore() {
		appLogger.Warn("using in-memory store, data is lost on restart")
		stores = routes.MemoryStores(memstore.New())
	} else {
		db, err = database.ConnectWithRetry(ctx, cfg.Database, appLogger, 5, 2*time.Second)
		if err != nil {
			appLogger.Error("database connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() {
			if err := database.Close(db, appLogger); err != nil {
				appLogger.Error("database close failed", slog.String("error", err.Error()))
			}
		}()

		if err := bootstrap.ApplyDatabaseMigrations(ctx, db, cfg, appLogger); err != nil {
			appLogger.Error("migrations failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		stores = routes.GormStores(db)
	}

	if err := bootstrap.EnsureDefaultAdmin(ctx, stores.Users, cfg.Admin, appLogger); err != nil {
		appLogger.Error("ensure default admin failed", slog.String("error", err.Error()))
	}

	var cacheClient cache.Client = cache.NewMemoryCache()
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("redis unavailable, falling back to memory cache", slog.String("error", err.Error()))
		} else {
			cacheClient = redisClient
			defer redisClient.Close()
		}
	}

	var mailer notification.Mailer
	if cfg.Email.Enabled() {
		mailer = email.NewClient(
			cfg.Email.Host,
			cfg.Email.Port,
			cfg.Email.Username,
			cfg.Email.Password,
			cfg.Email.From,
			cfg.Email.FrontendURL,
		)
	}

	tokenAuth := authmw.NewAuth(cfg.JWTSecret, appLogger)
	socketIOServer := socketioserver.NewServer(tokenAuth.VerifyToken, appLogger)
	defer socketIOServer.Close()

	router := gin.New()

	// Socket.IO only needs recovery and CORS.
	router.Use(middleware.Recovery(appLogger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	router.GET("/socket.io/*any", gin.WrapH(socketIOServer.Handler()))
	router.POST("/socket.io/*any", gin.WrapH(socketIOServer.Handler()))

	router.Use(middleware.RequestID())
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}
	router.Use(middleware.Compression(gzip.BestSpeed))
	router.Use(middleware.RequestLogger(appLogger))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.NoStore("/api"))
	router.Use(middleware.RequestSizeLimit(1 << 20)) // 1MB
	router.Use(middleware.Timeout(cfg.RequestTimeout))
	router.Use(metrics.Middleware())
	router.Use(request.Handler(appLogger))

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)
	go rateLimiter.Run(ctx)
	router.Use(rateLimiter.Middleware())

	services := routes.Register(router, routes.Deps{
		Config: cfg,
		Logger: appLogger,
		DB:     db,
		Stores: stores,
		Cache:  cacheClient,
		Pusher: socketIOServer,
		Mailer: mailer,
	})

	if cfg.Jobs.Enabled {
		scheduler := jobs.NewScheduler(appLogger)
		scheduler.AddJob(
			jobs.NewProgressRecalculationJob(services.Enrollments, appLogger),
			cfg.Jobs.ProgressJobInterval,
		)
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		appLogger.Info("server starting",
			slog.String("addr", cfg.ServerAddress()),
			slog.String("env", cfg.Env),
			slog.String("store", cfg.Store),
			slog.String("log_level", cfg.LogLevel),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("server listen failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("server shutdown failed", slog.String("error", err.Error()))
	} else {
		appLogger.Info("server stopped gracefully")
	}
	services.Notifications.Wait()
}

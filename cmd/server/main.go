package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/yukikurage/workforce-portal/internal/config"
	"github.com/yukikurage/workforce-portal/internal/constants"
	"github.com/yukikurage/workforce-portal/internal/database"
	"github.com/yukikurage/workforce-portal/internal/handlers"
	"github.com/yukikurage/workforce-portal/internal/middleware"
	"github.com/yukikurage/workforce-portal/internal/repository"
	"github.com/yukikurage/workforce-portal/internal/services"
	"github.com/yukikurage/workforce-portal/internal/storage"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := newLogger(cfg)
	defer logger.Sync()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Repositories and services
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	blobs := storage.NewFileStore(cfg.UploadDir)

	svc := handlers.Services{
		Auth:      services.NewAuthService(userRepo, logger),
		Users:     services.NewUserService(userRepo, taskRepo, logger),
		Directory: services.NewDirectoryService(repository.NewDirectoryRepository(db), logger),
		Tasks:     services.NewTaskService(taskRepo, userRepo, blobs, logger),
		Imports:   services.NewImportService(taskRepo, userRepo, logger),
		Notices:   services.NewNoticeService(repository.NewNoticeRepository(db), blobs, logger),
		Chat:      services.NewChatService(repository.NewChatRepository(db), userRepo, blobs, logger),
		Reports:   services.NewReportService(userRepo, taskRepo, logger),
	}

	// Seed the directory, the admin account and the broadcast chat
	if err := svc.Directory.SeedDefaults(); err != nil {
		logger.Fatal("failed to seed directory", zap.Error(err))
	}
	if _, err := svc.Auth.BootstrapAdmin(cfg.AdminPassword); err != nil {
		logger.Fatal("failed to create admin account", zap.Error(err))
	}
	if _, err := svc.Chat.EnsureBroadcast(); err != nil {
		logger.Fatal("failed to prepare broadcast chat", zap.Error(err))
	}

	// Initialize Gin router
	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxUploadMB << 20

	metrics := middleware.NewMetrics()
	r.Use(metrics.Middleware())

	store, err := newSessionStore(cfg)
	if err != nil {
		logger.Fatal("failed to create session store", zap.Error(err))
	}
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Workforce portal is running",
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API routes
	handlers.RegisterRoutes(r.Group("/api"), svc)

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: cors.New(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
		}).Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.GinMode == gin.ReleaseMode {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	return logger
}

// newSessionStore uses Redis when REDIS_HOST is set and signed cookies otherwise.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store

	if cfg.RedisHost != "" {
		rs, err := redisStore.NewStore(
			10,                              // Redis pool size
			"tcp",                           // network type
			cfg.RedisHost+":"+cfg.RedisPort, // Redis address
			"",                              // username (empty for default user)
			"",                              // password (empty = no password)
			[]byte(cfg.SessionSecret),       // authentication key
		)
		if err != nil {
			return nil, err
		}
		store = rs
	} else {
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	// Configure session options based on environment
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

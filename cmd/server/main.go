package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	documentapp "github.com/recyclemart/backend/internal/application/document"
	identityapp "github.com/recyclemart/backend/internal/application/identity"
	notificationapp "github.com/recyclemart/backend/internal/application/notification"
	orderapp "github.com/recyclemart/backend/internal/application/order"
	"github.com/recyclemart/backend/internal/infrastructure/auth"
	"github.com/recyclemart/backend/internal/infrastructure/config"
	"github.com/recyclemart/backend/internal/infrastructure/logger"
	"github.com/recyclemart/backend/internal/infrastructure/mailer"
	"github.com/recyclemart/backend/internal/infrastructure/persistence"
	"github.com/recyclemart/backend/internal/infrastructure/renderer"
	"github.com/recyclemart/backend/internal/infrastructure/storage"
	"github.com/recyclemart/backend/internal/infrastructure/telemetry"
	"github.com/recyclemart/backend/internal/interfaces/http/handler"
	"github.com/recyclemart/backend/internal/interfaces/http/middleware"
	"github.com/recyclemart/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting RecycleMart Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Tracing, exported over OTLP when enabled
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.App.Name,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database connection with GORM logging backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if tracerProvider.IsEnabled() {
		if err := telemetry.RegisterGormTracing(db.DB, log); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	// Token blacklist: Redis when reachable, in-memory otherwise
	blacklist := newTokenBlacklist(cfg, log)

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)

	// Infrastructure services
	jwtService := auth.NewJWTService(cfg.JWT)

	blobs, err := newBlobStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize blob storage", zap.Error(err))
	}

	pdfRenderer := renderer.NewChromedpRenderer(&renderer.ChromedpConfig{
		RenderTimeout: cfg.Documents.RenderTimeout,
		NoSandbox:     cfg.App.Env == "production",
		Logger:        log,
	})
	defer func() {
		if err := pdfRenderer.Close(); err != nil {
			log.Error("Error closing renderer", zap.Error(err))
		}
	}()

	// Application services
	fanout := notificationapp.NewFanout()
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	userService := identityapp.NewUserService(userRepo, log)
	orderService := orderapp.NewService(orderRepo, userRepo, fanout, log)
	documentService := documentapp.NewService(
		documentRepo,
		orderRepo,
		userRepo,
		pdfRenderer,
		blobs,
		fanout,
		documentapp.Limits{
			GenerationLimit:  cfg.Documents.GenerationLimit,
			GenerationWindow: cfg.Documents.GenerationWindow,
		},
		log,
	)
	notificationService := notificationapp.NewService(notificationRepo, log)

	// Best-effort email mirroring of in-app notifications
	emailNotifier := notificationapp.NewEmailNotifier(userRepo, mailer.NewFromConfig(&cfg.Mail, log), log)
	orderService.SetEmailNotifier(emailNotifier)
	documentService.SetEmailNotifier(emailNotifier)

	// HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	orderHandler := handler.NewOrderHandler(orderService)
	documentHandler := handler.NewDocumentHandler(documentService, cfg.Documents.SignedMaxBytes)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	systemHandler := handler.NewSystemHandler()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, outermost first
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.App.Name,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	r.Use(middleware.JWTAuth(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		SkipPathPrefixes: []string{
			"/api/v1/auth/register",
		},
		Logger: log,
	}))

	if cfg.Telemetry.Enabled {
		r.Use(middleware.TracingAttributes())
	}

	// Auth domain
	authRoutes := router.NewDomainGroup("auth", "/auth")
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		authRoutes.Use(middleware.RateLimit(authLimiter))
	}
	authRoutes.POST("/register/client", authHandler.RegisterClient)
	authRoutes.POST("/register/manager", authHandler.RegisterManager)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.Refresh)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.Me)

	// User domain (account-manager client portfolios)
	userRoutes := router.NewDomainGroup("users", "/users")
	userRoutes.GET("/clients", userHandler.ManagedClients)
	userRoutes.POST("/clients/:id/assign", userHandler.AssignClient)
	userRoutes.POST("/clients/:id/unassign", userHandler.UnassignClient)

	// Order domain
	orderRoutes := router.NewDomainGroup("orders", "/orders")
	orderRoutes.POST("", orderHandler.Create)
	orderRoutes.GET("", orderHandler.List)
	orderRoutes.GET("/:id", orderHandler.Get)
	orderRoutes.POST("/:id/approve", orderHandler.Approve)
	orderRoutes.PATCH("/:id/status", orderHandler.UpdateStatus)
	orderRoutes.PUT("/:id/draft", orderHandler.UpdateDraft)
	orderRoutes.POST("/:id/draft/confirm", orderHandler.ConfirmDraft)
	orderRoutes.DELETE("/:id/draft", orderHandler.DeleteDraft)
	orderRoutes.POST("/:id/documents", documentHandler.Generate)
	orderRoutes.GET("/:id/documents", documentHandler.OrderDocuments)
	orderRoutes.POST("/:id/documents/signed", documentHandler.UploadSigned)

	// Document domain
	documentRoutes := router.NewDomainGroup("documents", "/documents")
	documentRoutes.GET("", documentHandler.ClientDocuments)
	documentRoutes.GET("/signed", documentHandler.SignedDocuments)
	documentRoutes.GET("/:id/signing-status", documentHandler.SigningStatus)
	documentRoutes.GET("/:id/download", documentHandler.DownloadURL)
	documentRoutes.POST("/:id/regenerate", documentHandler.Regenerate)
	documentRoutes.POST("/:id/decline", documentHandler.Decline)
	documentRoutes.POST("/:id/expire", documentHandler.Expire)

	// Notification domain
	notificationRoutes := router.NewDomainGroup("notifications", "/notifications")
	notificationRoutes.GET("", notificationHandler.List)
	notificationRoutes.GET("/unread-count", notificationHandler.UnreadCount)
	notificationRoutes.POST("/:id/read", notificationHandler.MarkRead)

	// System domain
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.Info)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(authRoutes).
		Register(userRoutes).
		Register(orderRoutes).
		Register(documentRoutes).
		Register(notificationRoutes).
		Register(systemRoutes)

	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newTokenBlacklist connects to Redis and falls back to the in-memory
// blacklist when Redis is unreachable. Single-instance deployments lose
// nothing with the fallback; revocations just don't survive restarts.
func newTokenBlacklist(cfg *config.Config, log *zap.Logger) auth.TokenBlacklist {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unreachable, using in-memory token blacklist", zap.Error(err))
		_ = client.Close()
		return auth.NewInMemoryTokenBlacklist()
	}

	log.Info("Redis connected successfully",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)))
	return auth.NewRedisTokenBlacklist(client)
}

// newBlobStore builds the S3 store when credentials are configured and falls
// back to the in-memory stub for local development.
func newBlobStore(cfg *config.Config, log *zap.Logger) (documentapp.BlobStore, error) {
	if cfg.Storage.AccessKeyID == "" {
		log.Warn("Storage credentials missing, using in-memory blob store")
		return storage.NewStubBlobStore(), nil
	}

	s3Store, err := storage.NewS3BlobStore(&cfg.Storage, storage.WithLogger(log))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s3Store.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	log.Info("Blob storage ready", zap.String("bucket", cfg.Storage.Bucket))
	return s3Store, nil
}

// healthHandler reports liveness including database connectivity
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			logger.FromGin(c).Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-assistant/internal/adapter/handler"
	"github.com/johnquangdev/call-assistant/internal/adapter/repository"
	"github.com/johnquangdev/call-assistant/internal/domain/repositories"
	"github.com/johnquangdev/call-assistant/internal/infrastructure/cache"
	httpmw "github.com/johnquangdev/call-assistant/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/call-assistant/internal/infrastructure/metrics"
	"github.com/johnquangdev/call-assistant/internal/infrastructure/storage"
	"github.com/johnquangdev/call-assistant/internal/usecase/analytics"
	"github.com/johnquangdev/call-assistant/internal/usecase/callback"
	"github.com/johnquangdev/call-assistant/internal/usecase/conversation"
	"github.com/johnquangdev/call-assistant/internal/usecase/records"
	"github.com/johnquangdev/call-assistant/pkg/config"
	pkgvalidator "github.com/johnquangdev/call-assistant/pkg/validator"
)

// directoryTTL bounds how long a learned CallSid mapping is kept
const directoryTTL = 48 * time.Hour

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = false

	// Register validator for request validation
	e.Validator = pkgvalidator.New()
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(logger)

	// Custom logger format
	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human} | ${id}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		HSTSMaxAge:         15552000,
	}))

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
	}))

	logger.Info("🔧 Initializing dependencies...")

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Event store and call resolution
	store := repository.NewEventStore()
	resolver := newResolver(cfg, logger)

	// Optional export archive
	var archive records.Archive
	if cfg.Storage.Enabled {
		logger.Info("📦 Connecting to object storage...", zap.String("endpoint", cfg.Storage.Endpoint))
		exportArchive, err := storage.NewExportArchive(context.Background(), &cfg.Storage)
		if err != nil {
			logger.Fatal("Failed to connect to object storage", zap.Error(err))
		}
		archive = exportArchive
	} else {
		logger.Info("📦 Export archiving disabled")
	}

	// Rate limiting
	rateLimitStore := httpmw.NewMemoryRateLimitStore(cfg.RateLimit.PerMinute)
	if cfg.RateLimit.Backend == config.RateLimitRedis {
		logger.Info("📦 Connecting to Redis...", zap.String("addr", cfg.GetRedisAddr()))
		redisClient, err := cache.NewRedisClient(context.Background(), cfg)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		rateLimitStore = cache.NewRedisRateLimitStore(redisClient, cfg.RateLimit.PerMinute, time.Minute)
	}

	// Services
	logger.Info("⚙️  Initializing services...")
	callbackService := callback.NewService(store, resolver, analytics.NewAnalyzer(), m, logger, callback.Options{
		RetentionWindow:   cfg.Retention.Window,
		SweepInterval:     cfg.Retention.SweepInterval,
		ReprocessInterval: cfg.Analytics.ReprocessInterval,
		MaxRetries:        int(cfg.Analytics.MaxRetries),
	})
	conversationService := conversation.NewService(store, cfg.Location())
	recordsService := records.NewService(store, archive, cfg.Storage.PresignExpiry)

	webhookAuth := httpmw.NewWebhookAuthenticator(cfg.Twilio.AuthToken, cfg.Twilio.PublicBaseURL, m, logger)

	// Setup router with handlers
	logger.Info("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg,
		handler.NewVoiceHandler(callbackService, m, logger),
		handler.NewRecordsHandler(recordsService, logger),
		handler.NewContactHandler(conversationService, logger),
		webhookAuth.Middleware(),
		httpmw.RateLimit(rateLimitStore),
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	)
	router.Setup(e)

	// Background workers
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	if err := callbackService.StartWorkers(workerCtx); err != nil {
		logger.Fatal("Failed to start workers", zap.Error(err))
	}

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		logger.Info("🚀 Starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
			zap.Duration("retention_window", cfg.Retention.Window),
			zap.Duration("sweep_interval", cfg.Retention.SweepInterval),
		)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("🛑 Shutting down server...")

	if err := callbackService.StopWorkers(); err != nil {
		logger.Warn("Failed to stop workers", zap.Error(err))
	}
	if closer, ok := resolver.(interface{ Close() }); ok {
		closer.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("❌ Server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("✅ Server stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func newResolver(cfg *config.Config, logger *zap.Logger) repositories.CallResolver {
	if cfg.Twilio.CallResolver == config.ResolverDirectory {
		logger.Info("📇 Using directory call resolver", zap.Duration("ttl", directoryTTL))
		return repository.NewDirectoryResolver(directoryTTL)
	}
	logger.Warn("📇 Using identity call resolver; contacts are keyed by normalized CallSid")
	return repository.IdentityResolver{}
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"engitech-contact-backend/config"
	_ "engitech-contact-backend/docs" // Important for Swagger
	v1 "engitech-contact-backend/internal/delivery/http/v1"
	"engitech-contact-backend/internal/domain"
	"engitech-contact-backend/internal/repository/memory"
	"engitech-contact-backend/internal/repository/postgres"
	"engitech-contact-backend/internal/usecase"
	"engitech-contact-backend/pkg/database"
	"engitech-contact-backend/pkg/email"
	"engitech-contact-backend/pkg/logger"
	"engitech-contact-backend/pkg/redis"
	"engitech-contact-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title           Engitech Contact API
// @version         1.0
// @description     Contact inquiry relay and chat link service for the company website.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(logger.Options{
		Level:       cfg.LogLevel,
		Development: !cfg.IsProduction(),
		File:        cfg.LogFile,
	})
	defer logger.Sync()
	logger.Log.Info("Starting contact backend", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// 3. Setup follow-up ledger
	var followUps domain.FollowUpRepository
	healthChecks := map[string]usecase.HealthCheck{}
	if cfg.DBUrl != "" {
		dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			logger.Log.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer dbPool.Close()

		if err := postgres.Migrate(ctx, dbPool); err != nil {
			logger.Log.Fatal("Failed to migrate follow-up table", zap.Error(err))
		}
		followUps = postgres.NewFollowUpRepository(dbPool)
		healthChecks["database"] = dbPool.Ping
	} else {
		logger.Log.Warn("DATABASE_URL not set - follow-ups are kept in memory only")
		followUps = memory.NewFollowUpRepository()
	}

	// 4. Setup Redis (optional, rate limiting falls back to memory)
	if cfg.UpstashRedisURL != "" {
		if err := redis.Initialize(ctx, redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable - using in-memory rate limiting", zap.Error(err))
		} else {
			defer redis.Close()
			healthChecks["redis"] = redis.HealthCheck
		}
	}

	// 5. Setup Email
	var sender email.Sender
	if cfg.MailProvider == config.MailProviderDev {
		sender = email.NewDevSender(logger.Log)
	} else {
		sender = email.NewSMTPSender(cfg)
		if missing := cfg.MissingDelivery(); len(missing) > 0 {
			logger.Log.Warn("Mail relay not fully configured - inquiries will be held for follow-up",
				zap.Strings("missing", missing))
		}
	}
	transports := email.TransportsFromConfig(cfg)
	deliverer := email.NewDeliverer(sender, transports, email.RetryPolicy{
		MaxAttempts: cfg.MailMaxAttempts,
		BaseDelay:   cfg.MailRetryBaseDelay,
	}, email.WithLogger(logger.Log))

	renderer, err := email.NewRenderer(cfg.ChatCompanyName)
	if err != nil {
		logger.Log.Fatal("Failed to parse email templates", zap.Error(err))
	}

	// 6. Setup UseCases
	validate := validation.New()
	inquiryUC := usecase.NewInquiryUsecase(cfg, renderer, deliverer, followUps, validate, logger.Log)
	diagnosticsUC := usecase.NewDiagnosticsUsecase(cfg, sender, transports, followUps, logger.Log)
	healthUC := usecase.NewHealthUsecase(healthChecks)

	// 7. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		InquiryUC:     inquiryUC,
		DiagnosticsUC: diagnosticsUC,
		HealthUC:      healthUC,
		Config:        cfg,
		Logger:        logger.Log,
	})

	// 8. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Listen failed", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// In-flight deliveries may be mid-retry
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Log.Info("Server exiting")
}

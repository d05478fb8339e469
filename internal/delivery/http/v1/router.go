package v1

import (
	"net/http"
	"time"

	"engitech-contact-backend/config"
	"engitech-contact-backend/internal/delivery/http/middleware"
	"engitech-contact-backend/internal/delivery/http/response"
	"engitech-contact-backend/internal/domain"
	"engitech-contact-backend/pkg/auth"
	"engitech-contact-backend/pkg/redis"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

type RouterDeps struct {
	InquiryUC     domain.InquiryUsecase
	DiagnosticsUC domain.DiagnosticsUsecase
	HealthUC      domain.HealthUsecase
	Config        *config.Config
	Logger        *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Warn("invalid trusted proxies, forwarded headers ignored", zap.Strings("trusted_proxies", cfg.TrustedProxies), zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins, cfg.IsProduction())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler(log, cfg.DevMode))
	r.Use(middleware.SecurityHeadersMiddleware())

	r.NoMethod(func(c *gin.Context) {
		response.Error(c, http.StatusMethodNotAllowed, "Method not allowed. Only POST requests are accepted.", nil)
	})
	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "Route not found", nil)
	})

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		if deps.HealthUC == nil {
			response.Success(c, http.StatusOK, "System operational", nil)
			return
		}
		components, healthy := deps.HealthUC.Check(c.Request.Context())
		if !healthy {
			response.Error(c, http.StatusServiceUnavailable, "Degraded", components)
			return
		}
		response.Success(c, http.StatusOK, "System operational", components)
	})

	// Public routes
	contactLimit := middleware.RateLimitMiddleware(middleware.ContactRateLimitConfig(
		cfg.RateLimitContactThreshold,
		time.Duration(cfg.RateLimitWindowSeconds)*time.Second,
		redis.Client,
	), log)
	NewInquiryHandler(v1, deps.InquiryUC, contactLimit)
	NewChatHandler(v1, cfg.ChatPhone, cfg.ChatCompanyName, cfg.ChatRevealDelay)

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Operator routes, only mounted when a signing secret is configured
	if cfg.AdminEnabled() && deps.DiagnosticsUC != nil {
		var keys *auth.KeySet
		if cfg.AdminJWKSURL != "" {
			keys = auth.NewKeySet(cfg.AdminJWKSURL, nil)
		}
		admin := r.Group("/admin")
		admin.Use(middleware.AdminAuth(cfg.AdminJWTSecret, keys))
		NewDiagnosticsHandler(admin, deps.DiagnosticsUC)
	}

	return r
}

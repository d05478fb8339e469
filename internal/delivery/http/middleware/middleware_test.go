package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"engitech-contact-backend/internal/delivery/http/middleware"
	"engitech-contact-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimitMiddleware_InMemory(t *testing.T) {
	r := gin.New()
	cfg := middleware.ContactRateLimitConfig(2, time.Minute, nil)
	r.POST("/contact", middleware.RateLimitMiddleware(cfg, zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/contact", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
		if i == 2 {
			assert.NotEmpty(t, w.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	// other clients keep their own budget
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/contact", nil)
	req.RemoteAddr = "198.51.100.1:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("RequestID")) })

	t.Run("Should reuse a valid incoming id", func(t *testing.T) {
		id := uuid.NewString()
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.RequestIDHeader, id)
		r.ServeHTTP(w, req)
		assert.Equal(t, id, w.Body.String())
		assert.Equal(t, id, w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("Should replace a malformed id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.RequestIDHeader, "<script>")
		r.ServeHTTP(w, req)
		_, err := uuid.Parse(w.Body.String())
		assert.NoError(t, err)
	})
}

func TestAdminAuth(t *testing.T) {
	const secret = "test-secret"
	r := gin.New()
	r.GET("/admin", middleware.AdminAuth(secret, nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	sign := func(t *testing.T, claims jwt.MapClaims, key string) string {
		t.Helper()
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
		require.NoError(t, err)
		return s
	}
	do := func(header string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		return w.Code
	}
	exp := time.Now().Add(time.Hour).Unix()

	assert.Equal(t, http.StatusUnauthorized, do(""))
	assert.Equal(t, http.StatusUnauthorized, do("Bearer garbage"))
	assert.Equal(t, http.StatusUnauthorized, do("Bearer "+sign(t, jwt.MapClaims{"role": "admin", "exp": exp}, "other")))
	assert.Equal(t, http.StatusForbidden, do("Bearer "+sign(t, jwt.MapClaims{"role": "viewer", "exp": exp}, secret)))
	assert.Equal(t, http.StatusOK, do("Bearer "+sign(t, jwt.MapClaims{"role": "admin", "sub": "ops", "exp": exp}, secret)))
}

func TestErrorHandler(t *testing.T) {
	newEngine := func(devMode bool, err error) *gin.Engine {
		r := gin.New()
		r.Use(middleware.ErrorHandler(zap.NewNop(), devMode))
		r.GET("/", func(c *gin.Context) { _ = c.Error(err) })
		return r
	}

	t.Run("Should render client errors with their fields", func(t *testing.T) {
		w := httptest.NewRecorder()
		newEngine(false, apperror.MissingFields([]string{"name"})).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"fields":["name"]`)
	})

	t.Run("Should hide relay details outside dev mode", func(t *testing.T) {
		err := apperror.WithKind(apperror.KindDeliveryExhausted, "Failed to send email.", errors.New("535 bad password"))
		w := httptest.NewRecorder()
		newEngine(false, err).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "535")
	})

	t.Run("Should expose relay details in dev mode", func(t *testing.T) {
		err := apperror.WithKind(apperror.KindDeliveryExhausted, "Failed to send email.", errors.New("535 bad password"))
		w := httptest.NewRecorder()
		newEngine(true, err).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Contains(t, w.Body.String(), "535 bad password")
	})

	t.Run("Should mask unknown errors", func(t *testing.T) {
		w := httptest.NewRecorder()
		newEngine(false, errors.New("boom")).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "boom")
	})
}

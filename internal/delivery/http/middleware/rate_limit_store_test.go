package middleware

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRateLimitMiddleware_NoBackgroundGoroutines(t *testing.T) {
	before := runtime.NumGoroutine()

	for i := 0; i < 20; i++ {
		RateLimitMiddleware(ContactRateLimitConfig(5, time.Minute, nil), zap.NewNop())
	}

	assert.LessOrEqual(t, runtime.NumGoroutine(), before+2)
}

func TestMemoryStore_Sweep(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cfg := ContactRateLimitConfig(5, time.Minute, nil)

	t.Run("Should keep entries until the sweep interval elapses", func(t *testing.T) {
		store := newMemoryStore(cfg.Window, start)
		checkRateLimitInMemory(store, "rl:contact:a", cfg, start)

		store.sweep(start.Add(2 * time.Minute))
		assert.Equal(t, 1, store.size())
	})

	t.Run("Should drop expired entries once the interval elapses", func(t *testing.T) {
		store := newMemoryStore(cfg.Window, start)
		checkRateLimitInMemory(store, "rl:contact:a", cfg, start)
		later := start.Add(5*time.Minute + time.Second)
		checkRateLimitInMemory(store, "rl:contact:b", cfg, later)

		store.sweep(later)
		assert.Equal(t, 1, store.size())
	})
}

package usecase

import (
	"context"
	"time"

	"engitech-contact-backend/internal/domain"
)

// HealthCheck pings one backing service.
type HealthCheck func(ctx context.Context) error

type healthUsecase struct {
	checks map[string]HealthCheck
}

// NewHealthUsecase reports on the given components. Only configured services belong in checks;
// an empty map always reports healthy.
func NewHealthUsecase(checks map[string]HealthCheck) domain.HealthUsecase {
	return &healthUsecase{checks: checks}
}

func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := map[string]string{"api": "ok"}
	healthy := true
	for name, check := range u.checks {
		if err := check(ctx); err != nil {
			status[name] = "unavailable"
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	return status, healthy
}

// Package memory holds the in-process follow-up ledger used when no database is configured.
// The application log stays the durable record; this only serves the admin listing until restart.
package memory

import (
	"context"
	"sync"
	"time"

	"engitech-contact-backend/internal/domain"

	"github.com/google/uuid"
)

const maxEntries = 500

type followUpRepo struct {
	mu      sync.Mutex
	entries []domain.FollowUp
}

func NewFollowUpRepository() domain.FollowUpRepository {
	return &followUpRepo{}
}

func (r *followUpRepo) Record(_ context.Context, f *domain.FollowUp) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *f)
	if len(r.entries) > maxEntries {
		r.entries = r.entries[len(r.entries)-maxEntries:]
	}
	return nil
}

func (r *followUpRepo) ListPending(_ context.Context, limit int) ([]domain.FollowUp, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.FollowUp
	for _, f := range r.entries {
		if f.HandledAt != nil {
			continue
		}
		out = append(out, f)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *followUpRepo) MarkHandled(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		if r.entries[i].ID == id && r.entries[i].HandledAt == nil {
			now := time.Now().UTC()
			r.entries[i].HandledAt = &now
			return nil
		}
	}
	return domain.ErrFollowUpNotFound
}

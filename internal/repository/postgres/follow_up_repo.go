package postgres

import (
	"context"
	"fmt"
	"time"

	"engitech-contact-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const followUpSchema = `
	CREATE TABLE IF NOT EXISTS inquiry_follow_ups (
		id             UUID PRIMARY KEY,
		name           TEXT NOT NULL,
		email          TEXT NOT NULL,
		phone          TEXT NOT NULL,
		service        TEXT NOT NULL,
		sub_service    TEXT NOT NULL DEFAULT '',
		message        TEXT NOT NULL,
		reason         TEXT NOT NULL,
		attempt_errors TEXT[] NOT NULL DEFAULT '{}',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		handled_at     TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS idx_inquiry_follow_ups_pending
		ON inquiry_follow_ups (created_at) WHERE handled_at IS NULL;
`

type followUpRepo struct {
	db *pgxpool.Pool
}

func NewFollowUpRepository(db *pgxpool.Pool) domain.FollowUpRepository {
	return &followUpRepo{db: db}
}

// Migrate creates the follow-up table when it does not exist yet.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, followUpSchema); err != nil {
		return fmt.Errorf("failed to migrate inquiry_follow_ups: %w", err)
	}
	return nil
}

func (r *followUpRepo) Record(ctx context.Context, f *domain.FollowUp) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO inquiry_follow_ups
			(id, name, email, phone, service, sub_service, message, reason, attempt_errors, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	attemptErrors := f.AttemptErrors
	if attemptErrors == nil {
		attemptErrors = []string{}
	}
	_, err := r.db.Exec(ctx, query,
		f.ID, f.Payload.Name, f.Payload.Email, f.Payload.Phone, f.Payload.Service, f.Payload.SubService,
		f.Payload.Message, string(f.Reason), pq.Array(attemptErrors), f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record follow-up: %w", err)
	}
	return nil
}

func (r *followUpRepo) ListPending(ctx context.Context, limit int) ([]domain.FollowUp, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT id, name, email, phone, service, sub_service, message, reason, attempt_errors, created_at
		FROM inquiry_follow_ups
		WHERE handled_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list follow-ups: %w", err)
	}
	defer rows.Close()

	var out []domain.FollowUp
	for rows.Next() {
		var f domain.FollowUp
		var reason string
		if err := rows.Scan(
			&f.ID, &f.Payload.Name, &f.Payload.Email, &f.Payload.Phone, &f.Payload.Service,
			&f.Payload.SubService, &f.Payload.Message, &reason, pq.Array(&f.AttemptErrors), &f.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan follow-up: %w", err)
		}
		f.Reason = domain.FollowUpReason(reason)
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *followUpRepo) MarkHandled(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrFollowUpNotFound
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE inquiry_follow_ups SET handled_at = NOW() WHERE id = $1 AND handled_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to mark follow-up handled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFollowUpNotFound
	}
	return nil
}

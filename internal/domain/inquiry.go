package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrFollowUpNotFound is returned when a follow-up id does not exist or was already handled.
var ErrFollowUpNotFound = errors.New("follow-up not found")

// InquiryPayload represents a contact form submission. It lives for a single request.
type InquiryPayload struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,basic_email"`
	Phone      string `json:"phone" validate:"required"`
	Service    string `json:"service" validate:"required,inquiry_service"`
	SubService string `json:"subService,omitempty"`
	Message    string `json:"message" validate:"required"`
}

// Normalize trims surrounding whitespace so blank values count as missing.
func (p *InquiryPayload) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Service = strings.TrimSpace(p.Service)
	p.SubService = strings.TrimSpace(p.SubService)
	p.Message = strings.TrimSpace(p.Message)
}

// Outcome is the terminal state of a submission.
type Outcome string

const (
	OutcomeDelivered    Outcome = "delivered"
	OutcomeRejected     Outcome = "rejected"
	OutcomeExhausted    Outcome = "exhausted"
	OutcomeUnconfigured Outcome = "unconfigured"
)

// SubmissionResult is what the handler reports back for a submission.
type SubmissionResult struct {
	Outcome    Outcome `json:"outcome"`
	Message    string  `json:"message"`
	DeliveryID string  `json:"deliveryId,omitempty"`
	Attempts   int     `json:"attempts"`
}

// InquiryUsecase defines the interface for inquiry submissions
type InquiryUsecase interface {
	// Submit validates the payload and relays it to the destination mailbox.
	// Client-input problems and delivery failures are returned as *apperror.AppError;
	// the result is populated for every outcome that got past validation.
	Submit(ctx context.Context, payload *InquiryPayload) (*SubmissionResult, error)
}

// FollowUpReason explains why an inquiry needs manual handling.
type FollowUpReason string

const (
	FollowUpMissingConfiguration FollowUpReason = "missing_configuration"
	FollowUpDeliveryFailed       FollowUpReason = "delivery_failed"
)

// FollowUp is an inquiry that could not be relayed and must be processed by an operator.
type FollowUp struct {
	ID            string         `json:"id"`
	Payload       InquiryPayload `json:"payload"`
	Reason        FollowUpReason `json:"reason"`
	AttemptErrors []string       `json:"attemptErrors,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	HandledAt     *time.Time     `json:"handledAt,omitempty"`
}

// FollowUpRepository persists inquiries awaiting manual follow-up
type FollowUpRepository interface {
	Record(ctx context.Context, f *FollowUp) error
	ListPending(ctx context.Context, limit int) ([]FollowUp, error)
	MarkHandled(ctx context.Context, id string) error
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"engitech-contact-backend/config"
	"engitech-contact-backend/internal/domain"
	"engitech-contact-backend/pkg/apperror"
	"engitech-contact-backend/pkg/catalog"
	"engitech-contact-backend/pkg/email"
	"engitech-contact-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	msgDelivered         = "Your message has been sent successfully! We will get back to you soon."
	msgServiceDown       = "Email service is temporarily unavailable."
	msgDeliveryFailed    = "Failed to send email."
	msgUnexpected        = "An unexpected error occurred."
	followUpLogMessage   = "inquiry requires manual follow-up"
	msgInvalidService    = "Please select one of the listed services."
	msgInvalidSubService = "The selected sub-service does not belong to the selected service."
)

// Renderer turns an inquiry into a notification email
type Renderer interface {
	Render(p email.Inquiry, submittedAt time.Time) (*email.Notification, error)
}

// Deliverer relays a message with its retry policy
type Deliverer interface {
	Deliver(ctx context.Context, msg *email.Message) (*email.DeliveryReport, error)
}

type inquiryUsecase struct {
	renderer      Renderer
	deliverer     Deliverer
	followUps     domain.FollowUpRepository
	validate      *validator.Validate
	log           *zap.Logger
	now           func() time.Time
	fromName      string
	from          string
	to            string
	missingConfig []string
	contactPhone  string
	contactEmail  string
}

// NewInquiryUsecase creates the inquiry submission usecase. The delivery configuration is
// read once here; it does not change for the lifetime of the process.
func NewInquiryUsecase(
	cfg *config.Config,
	renderer Renderer,
	deliverer Deliverer,
	followUps domain.FollowUpRepository,
	validate *validator.Validate,
	log *zap.Logger,
) domain.InquiryUsecase {
	missing := []string(nil)
	if cfg.MailProvider != config.MailProviderDev {
		missing = cfg.MissingDelivery()
	}
	return &inquiryUsecase{
		renderer:      renderer,
		deliverer:     deliverer,
		followUps:     followUps,
		validate:      validate,
		log:           log,
		now:           time.Now,
		fromName:      cfg.SMTPFromName,
		from:          cfg.SMTPUsername,
		to:            cfg.ReceiverEmail,
		missingConfig: missing,
		contactPhone:  cfg.ContactPhone,
		contactEmail:  cfg.ContactEmail,
	}
}

// Submit runs received -> validated -> config-checked -> delivering -> delivered|exhausted.
func (uc *inquiryUsecase) Submit(ctx context.Context, p *domain.InquiryPayload) (*domain.SubmissionResult, error) {
	if p == nil {
		return rejected(), apperror.MalformedRequest(errors.New("empty payload"))
	}
	p.Normalize()

	if err := uc.checkPayload(p); err != nil {
		return rejected(), err
	}

	if len(uc.missingConfig) > 0 {
		cause := fmt.Errorf("mail relay not configured: missing %s", strings.Join(uc.missingConfig, ", "))
		uc.recordFollowUp(ctx, p, domain.FollowUpMissingConfiguration, nil, cause)
		result := &domain.SubmissionResult{
			Outcome: domain.OutcomeUnconfigured,
			Message: uc.withFallbackContact(msgServiceDown),
		}
		return result, apperror.WithKind(apperror.KindMissingConfiguration, result.Message, cause)
	}

	notification, err := uc.renderer.Render(email.Inquiry{
		Name:       p.Name,
		Email:      p.Email,
		Phone:      p.Phone,
		Service:    p.Service,
		SubService: p.SubService,
		Message:    p.Message,
	}, uc.now())
	if err != nil {
		uc.recordFollowUp(ctx, p, domain.FollowUpDeliveryFailed, nil, err)
		result := &domain.SubmissionResult{Outcome: domain.OutcomeExhausted, Message: uc.withFallbackContact(msgUnexpected)}
		return result, apperror.WithKind(apperror.KindUnexpected, result.Message, err)
	}

	msg := &email.Message{
		FromName: uc.fromName,
		From:     uc.from,
		To:       uc.to,
		ReplyTo:  p.Email,
		Subject:  notification.Subject,
		HTMLBody: notification.HTMLBody,
		TextBody: notification.TextBody,
	}

	report, err := uc.deliverer.Deliver(ctx, msg)
	if err != nil {
		var attemptErrors []string
		attempts := 0
		kind := apperror.KindDeliveryExhausted
		if report != nil {
			attemptErrors = report.AttemptErrors()
			attempts = len(report.Attempts)
		}
		if !errors.Is(err, email.ErrDeliveryExhausted) && report != nil && report.LastKind() != "" {
			kind = report.LastKind()
		}

		uc.recordFollowUp(ctx, p, domain.FollowUpDeliveryFailed, attemptErrors, err)
		result := &domain.SubmissionResult{
			Outcome:  domain.OutcomeExhausted,
			Message:  uc.withFallbackContact(msgDeliveryFailed),
			Attempts: attempts,
		}
		return result, apperror.WithKind(kind, result.Message, err)
	}

	uc.log.Info("inquiry delivered",
		zap.String("delivery_id", report.DeliveryID),
		zap.String("transport", report.Transport.Name),
		zap.Int("attempts", len(report.Attempts)),
		zap.String("service", p.Service),
	)

	return &domain.SubmissionResult{
		Outcome:    domain.OutcomeDelivered,
		Message:    msgDelivered,
		DeliveryID: report.DeliveryID,
		Attempts:   len(report.Attempts),
	}, nil
}

// checkPayload applies the client-input rules in order: required fields, email shape, service.
func (uc *inquiryUsecase) checkPayload(p *domain.InquiryPayload) error {
	if err := uc.validate.Struct(p); err != nil {
		if missing := validation.MissingFields(err); len(missing) > 0 {
			return apperror.MissingFields(missing)
		}
		if validation.HasTag(err, "basic_email") {
			return apperror.InvalidEmail()
		}
		if validation.HasTag(err, "inquiry_service") {
			return apperror.InvalidService(msgInvalidService)
		}
		return apperror.WithKind(apperror.KindMalformedRequest, strings.Join(validation.FormatValidationErrors(err), "; "), err)
	}

	if p.SubService != "" && !catalog.IsSubServiceOf(p.Service, p.SubService) {
		return apperror.InvalidService(msgInvalidSubService)
	}
	return nil
}

// recordFollowUp emits the single log record operators use to process an inquiry by hand,
// then stores it in the ledger.
func (uc *inquiryUsecase) recordFollowUp(ctx context.Context, p *domain.InquiryPayload, reason domain.FollowUpReason, attemptErrors []string, cause error) {
	f := &domain.FollowUp{
		Payload:       *p,
		Reason:        reason,
		AttemptErrors: attemptErrors,
		CreatedAt:     uc.now().UTC(),
	}

	uc.log.Error(followUpLogMessage,
		zap.String("reason", string(reason)),
		zap.String("name", p.Name),
		zap.String("email", p.Email),
		zap.String("phone", p.Phone),
		zap.String("service", p.Service),
		zap.String("sub_service", p.SubService),
		zap.String("message", p.Message),
		zap.Strings("attempt_errors", attemptErrors),
		zap.Time("submitted_at", f.CreatedAt),
		zap.Error(cause),
	)

	if uc.followUps == nil {
		return
	}
	// ledger write outlives request cancellation
	if err := uc.followUps.Record(context.WithoutCancel(ctx), f); err != nil {
		uc.log.Warn("failed to store follow-up", zap.String("reason", string(reason)), zap.Error(err))
	}
}

func (uc *inquiryUsecase) withFallbackContact(msg string) string {
	switch {
	case uc.contactPhone != "" && uc.contactEmail != "":
		return fmt.Sprintf("%s Please contact us directly at %s or %s", msg, uc.contactPhone, uc.contactEmail)
	case uc.contactPhone != "":
		return fmt.Sprintf("%s Please contact us directly at %s", msg, uc.contactPhone)
	case uc.contactEmail != "":
		return fmt.Sprintf("%s Please contact us directly at %s", msg, uc.contactEmail)
	}
	return msg + " Please try again later."
}

func rejected() *domain.SubmissionResult {
	return &domain.SubmissionResult{Outcome: domain.OutcomeRejected}
}

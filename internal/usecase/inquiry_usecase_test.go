package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"engitech-contact-backend/config"
	"engitech-contact-backend/internal/domain"
	"engitech-contact-backend/internal/usecase"
	"engitech-contact-backend/pkg/apperror"
	"engitech-contact-backend/pkg/email"
	"engitech-contact-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// Mocks
type MockDeliverer struct {
	mock.Mock
}

func (m *MockDeliverer) Deliver(ctx context.Context, msg *email.Message) (*email.DeliveryReport, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*email.DeliveryReport), args.Error(1)
}

type MockFollowUpRepo struct {
	mock.Mock
}

func (m *MockFollowUpRepo) Record(ctx context.Context, f *domain.FollowUp) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockFollowUpRepo) ListPending(ctx context.Context, limit int) ([]domain.FollowUp, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FollowUp), args.Error(1)
}

func (m *MockFollowUpRepo) MarkHandled(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func configuredConfig() *config.Config {
	return &config.Config{
		SMTPHost:        "smtp.example.com",
		SMTPPort:        587,
		SMTPUsername:    "relay@example.com",
		SMTPPassword:    "secret",
		SMTPFromName:    "Website Contact Form",
		ReceiverEmail:   "inbox@example.com",
		MailProvider:    config.MailProviderSMTP,
		MailMaxAttempts: 3,
		ContactPhone:    "+91 96088 88383",
		ContactEmail:    "info@mesjsr.com",
	}
}

func validPayload() *domain.InquiryPayload {
	return &domain.InquiryPayload{
		Name:       "Asha Verma",
		Email:      "asha@example.com",
		Phone:      "+91 98765 43210",
		Service:    "IT Services",
		SubService: "Website Development",
		Message:    "We need a new website.",
	}
}

func newUsecase(t *testing.T, cfg *config.Config, deliverer usecase.Deliverer, repo domain.FollowUpRepository) (domain.InquiryUsecase, *observer.ObservedLogs) {
	t.Helper()
	renderer, err := email.NewRenderer("MITAN Engitech Services")
	require.NoError(t, err)
	core, logs := observer.New(zapcore.DebugLevel)
	return usecase.NewInquiryUsecase(cfg, renderer, deliverer, repo, validation.New(), zap.New(core)), logs
}

func TestInquiryUsecase_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("Should deliver a valid inquiry with the visitor as reply-to", func(t *testing.T) {
		deliverer := new(MockDeliverer)
		repo := new(MockFollowUpRepo)
		uc, logs := newUsecase(t, configuredConfig(), deliverer, repo)

		deliverer.On("Deliver", mock.Anything, mock.MatchedBy(func(m *email.Message) bool {
			return m.To == "inbox@example.com" &&
				m.From == "relay@example.com" &&
				m.ReplyTo == "asha@example.com" &&
				m.Subject == "New Contact Form Submission from Asha Verma"
		})).Return(&email.DeliveryReport{DeliveryID: "id-1", Attempts: []email.AttemptRecord{{Number: 1}}}, nil).Once()

		result, err := uc.Submit(ctx, validPayload())
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeDelivered, result.Outcome)
		assert.Equal(t, "id-1", result.DeliveryID)
		assert.Equal(t, "Your message has been sent successfully! We will get back to you soon.", result.Message)
		assert.Zero(t, logs.FilterMessage("inquiry requires manual follow-up").Len())
		deliverer.AssertExpectations(t)
		repo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})

	t.Run("Should reject missing fields before any delivery", func(t *testing.T) {
		deliverer := new(MockDeliverer)
		uc, _ := newUsecase(t, configuredConfig(), deliverer, new(MockFollowUpRepo))

		p := validPayload()
		p.Phone = "   "
		p.Message = ""
		result, err := uc.Submit(ctx, p)

		require.Error(t, err)
		assert.Equal(t, domain.OutcomeRejected, result.Outcome)
		assert.Equal(t, apperror.KindMissingField, apperror.KindOf(err))
		assert.Equal(t, 400, apperror.StatusFor(apperror.KindOf(err)))

		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, []string{"phone", "message"}, appErr.Fields)
		deliverer.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
	})

	t.Run("Should reject a malformed email", func(t *testing.T) {
		deliverer := new(MockDeliverer)
		uc, _ := newUsecase(t, configuredConfig(), deliverer, new(MockFollowUpRepo))

		p := validPayload()
		p.Email = "asha@example"
		_, err := uc.Submit(ctx, p)

		require.Error(t, err)
		assert.Equal(t, apperror.KindInvalidEmailFormat, apperror.KindOf(err))
		assert.Equal(t, "Please provide a valid email address.", err.Error())
		deliverer.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
	})

	t.Run("Should reject an email with inner unicode whitespace", func(t *testing.T) {
		deliverer := new(MockDeliverer)
		uc, _ := newUsecase(t, configuredConfig(), deliverer, new(MockFollowUpRepo))

		p := validPayload()
		p.Email = "asha\vverma@example.com"
		_, err := uc.Submit(ctx, p)

		require.Error(t, err)
		assert.Equal(t, apperror.KindInvalidEmailFormat, apperror.KindOf(err))
		deliverer.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
	})

	t.Run("Should reject a sub-service from another category", func(t *testing.T) {
		deliverer := new(MockDeliverer)
		uc, _ := newUsecase(t, configuredConfig(), deliverer, new(MockFollowUpRepo))

		p := validPayload()
		p.SubService = "Power Distribution"
		_, err := uc.Submit(ctx, p)

		require.Error(t, err)
		assert.Equal(t, apperror.KindInvalidService, apperror.KindOf(err))
	})

	t.Run("Should reject a nil payload", func(t *testing.T) {
		uc, _ := newUsecase(t, configuredConfig(), new(MockDeliverer), nil)
		_, err := uc.Submit(ctx, nil)
		assert.Equal(t, apperror.KindMalformedRequest, apperror.KindOf(err))
	})

	t.Run("Should hold the inquiry for follow-up when the relay is not configured", func(t *testing.T) {
		cfg := configuredConfig()
		cfg.SMTPPassword = ""
		deliverer := new(MockDeliverer)
		repo := new(MockFollowUpRepo)
		repo.On("Record", mock.Anything, mock.MatchedBy(func(f *domain.FollowUp) bool {
			return f.Reason == domain.FollowUpMissingConfiguration && f.Payload.Email == "asha@example.com"
		})).Return(nil).Once()
		uc, logs := newUsecase(t, cfg, deliverer, repo)

		result, err := uc.Submit(ctx, validPayload())

		require.Error(t, err)
		assert.Equal(t, domain.OutcomeUnconfigured, result.Outcome)
		assert.Equal(t, apperror.KindMissingConfiguration, apperror.KindOf(err))
		assert.Contains(t, result.Message, "+91 96088 88383")
		assert.Contains(t, result.Message, "info@mesjsr.com")
		assert.Equal(t, 1, logs.FilterMessage("inquiry requires manual follow-up").Len())
		deliverer.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
	})

	t.Run("Should log the full inquiry exactly once when delivery is exhausted", func(t *testing.T) {
		deliverer := new(MockDeliverer)
		repo := new(MockFollowUpRepo)
		report := &email.DeliveryReport{Attempts: []email.AttemptRecord{
			{Number: 1, Err: errors.New("refused"), Kind: apperror.KindDeliveryConnectionFailure},
			{Number: 2, Err: errors.New("refused"), Kind: apperror.KindDeliveryConnectionFailure},
			{Number: 3, Err: errors.New("refused"), Kind: apperror.KindDeliveryConnectionFailure},
		}}
		deliverer.On("Deliver", mock.Anything, mock.Anything).
			Return(report, errors.Join(email.ErrDeliveryExhausted, errors.New("refused"))).Once()
		repo.On("Record", mock.Anything, mock.MatchedBy(func(f *domain.FollowUp) bool {
			return f.Reason == domain.FollowUpDeliveryFailed && len(f.AttemptErrors) == 3
		})).Return(nil).Once()
		uc, logs := newUsecase(t, configuredConfig(), deliverer, repo)

		result, err := uc.Submit(ctx, validPayload())

		require.Error(t, err)
		assert.Equal(t, domain.OutcomeExhausted, result.Outcome)
		assert.Equal(t, 3, result.Attempts)
		assert.Equal(t, apperror.KindDeliveryExhausted, apperror.KindOf(err))
		assert.Equal(t, 500, apperror.StatusFor(apperror.KindOf(err)))
		assert.Contains(t, result.Message, "Please contact us directly at")

		entries := logs.FilterMessage("inquiry requires manual follow-up").All()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, "Asha Verma", fields["name"])
		assert.Equal(t, "asha@example.com", fields["email"])
		assert.Equal(t, "+91 98765 43210", fields["phone"])
		assert.Equal(t, "IT Services", fields["service"])
		assert.Equal(t, "Website Development", fields["sub_service"])
		assert.Equal(t, "We need a new website.", fields["message"])
		repo.AssertExpectations(t)
	})

	t.Run("Should still answer when the ledger write fails", func(t *testing.T) {
		deliverer := new(MockDeliverer)
		repo := new(MockFollowUpRepo)
		deliverer.On("Deliver", mock.Anything, mock.Anything).
			Return(&email.DeliveryReport{}, email.ErrDeliveryExhausted).Once()
		repo.On("Record", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
		uc, logs := newUsecase(t, configuredConfig(), deliverer, repo)

		_, err := uc.Submit(ctx, validPayload())

		assert.Equal(t, apperror.KindDeliveryExhausted, apperror.KindOf(err))
		assert.Equal(t, 1, logs.FilterMessage("failed to store follow-up").Len())
	})

	t.Run("Should skip the configuration check for the dev provider", func(t *testing.T) {
		cfg := &config.Config{MailProvider: config.MailProviderDev, MailMaxAttempts: 3}
		deliverer := new(MockDeliverer)
		deliverer.On("Deliver", mock.Anything, mock.Anything).
			Return(&email.DeliveryReport{DeliveryID: "dev-1"}, nil).Once()
		uc, _ := newUsecase(t, cfg, deliverer, nil)

		result, err := uc.Submit(ctx, validPayload())
		require.NoError(t, err)
		assert.Equal(t, "dev-1", result.DeliveryID)
	})
}

func TestInquiryUsecase_EndToEndRetry(t *testing.T) {
	sender := &countingSender{err: errors.New("dial tcp: i/o timeout")}
	var waits []time.Duration
	d := email.NewDeliverer(sender, email.TransportsFromConfig(configuredConfig()), email.DefaultRetryPolicy(),
		email.WithSleep(func(_ context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		}))
	repo := new(MockFollowUpRepo)
	repo.On("Record", mock.Anything, mock.Anything).Return(nil).Once()
	uc, logs := newUsecase(t, configuredConfig(), d, repo)

	_, err := uc.Submit(context.Background(), validPayload())

	require.Error(t, err)
	assert.Equal(t, 3, sender.calls)
	require.Len(t, waits, 2)
	assert.Less(t, waits[0], waits[1])
	assert.Equal(t, 1, logs.FilterMessage("inquiry requires manual follow-up").Len())
}

type countingSender struct {
	err   error
	calls int
}

func (s *countingSender) Name() string { return "counting" }

func (s *countingSender) Send(context.Context, email.Transport, *email.Message) (string, error) {
	s.calls++
	return "", s.err
}

func (s *countingSender) Verify(context.Context, email.Transport) error { return nil }

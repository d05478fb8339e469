package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"engitech-contact-backend/config"
	"engitech-contact-backend/internal/domain"
	"engitech-contact-backend/pkg/apperror"
	"engitech-contact-backend/pkg/email"

	"go.uber.org/zap"
)

type diagnosticsUsecase struct {
	cfg        *config.Config
	sender     email.Sender
	transports []email.Transport
	followUps  domain.FollowUpRepository
	log        *zap.Logger
}

// NewDiagnosticsUsecase creates the operator diagnostics usecase
func NewDiagnosticsUsecase(
	cfg *config.Config,
	sender email.Sender,
	transports []email.Transport,
	followUps domain.FollowUpRepository,
	log *zap.Logger,
) domain.DiagnosticsUsecase {
	return &diagnosticsUsecase{
		cfg:        cfg,
		sender:     sender,
		transports: transports,
		followUps:  followUps,
		log:        log,
	}
}

// ConfigReport lists which relay settings are present. The password is never echoed.
func (uc *diagnosticsUsecase) ConfigReport() domain.ConfigReport {
	settings := []domain.RelaySettingStatus{
		visible("SMTP_HOST", uc.cfg.SMTPHost),
		visible("SMTP_PORT", strconv.Itoa(uc.cfg.SMTPPort)),
		visible("SMTP_USER", uc.cfg.SMTPUsername),
		{Key: "SMTP_PASS", Present: uc.cfg.SMTPPassword != ""},
		visible("RECEIVER_EMAIL", uc.cfg.ReceiverEmail),
	}

	return domain.ConfigReport{
		MailProvider: uc.sender.Name(),
		Configured:   len(uc.cfg.MissingDelivery()) == 0,
		Settings:     settings,
		Transports:   transportInfos(uc.transports),
		MaxAttempts:  uc.cfg.MailMaxAttempts,
	}
}

// VerifyRelay connects and authenticates against each transport once; nothing is sent.
func (uc *diagnosticsUsecase) VerifyRelay(ctx context.Context) ([]domain.TransportCheck, error) {
	if uc.cfg.MailProvider != config.MailProviderDev {
		if missing := uc.cfg.MissingDelivery(); len(missing) > 0 {
			return nil, apperror.WithKind(apperror.KindMissingConfiguration,
				fmt.Sprintf("Missing environment variables: %s", strings.Join(missing, ", ")), nil)
		}
	}

	checks := make([]domain.TransportCheck, 0, len(uc.transports))
	for _, t := range uc.transports {
		started := time.Now()
		err := uc.sender.Verify(ctx, t)
		check := domain.TransportCheck{
			TransportInfo: transportInfo(t),
			OK:            err == nil,
			DurationMs:    time.Since(started).Milliseconds(),
		}
		if err != nil {
			check.Kind = string(email.ClassifyError(err))
			check.Error = err.Error()
			uc.log.Warn("relay verification failed",
				zap.String("transport", t.Name),
				zap.Int("port", t.Port),
				zap.String("kind", check.Kind),
				zap.Error(err),
			)
		}
		checks = append(checks, check)
	}
	return checks, nil
}

func (uc *diagnosticsUsecase) PendingFollowUps(ctx context.Context, limit int) ([]domain.FollowUp, error) {
	items, err := uc.followUps.ListPending(ctx, limit)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if items == nil {
		items = []domain.FollowUp{}
	}
	return items, nil
}

func (uc *diagnosticsUsecase) ResolveFollowUp(ctx context.Context, id string) error {
	if err := uc.followUps.MarkHandled(ctx, id); err != nil {
		if errors.Is(err, domain.ErrFollowUpNotFound) {
			return apperror.NotFound("Follow-up not found or already handled")
		}
		return apperror.Internal(err)
	}
	uc.log.Info("follow-up resolved", zap.String("follow_up_id", id))
	return nil
}

func visible(key, value string) domain.RelaySettingStatus {
	return domain.RelaySettingStatus{Key: key, Present: strings.TrimSpace(value) != "", Value: value}
}

func transportInfo(t email.Transport) domain.TransportInfo {
	return domain.TransportInfo{Name: t.Name, Host: t.Host, Port: t.Port, Security: string(t.Security)}
}

func transportInfos(ts []email.Transport) []domain.TransportInfo {
	out := make([]domain.TransportInfo, 0, len(ts))
	for _, t := range ts {
		out = append(out, transportInfo(t))
	}
	return out
}

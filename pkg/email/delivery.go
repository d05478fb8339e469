package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"engitech-contact-backend/pkg/apperror"

	"go.uber.org/zap"
)

// RetryPolicy bounds delivery attempts. The wait before attempt n (n > 1) is (n-1) * BaseDelay.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy allows three attempts with one and two second pauses between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}
}

// DelayBefore returns how long to wait before the given 1-based attempt.
func (p RetryPolicy) DelayBefore(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	return time.Duration(attempt-1) * p.BaseDelay
}

// AttemptRecord describes one connect+authenticate+send try against one transport.
type AttemptRecord struct {
	Number    int
	Transport Transport
	Delay     time.Duration // waited before this attempt
	Duration  time.Duration
	Err       error
	Kind      apperror.Kind
}

// DeliveryReport is the trace of a Deliver call.
type DeliveryReport struct {
	DeliveryID string
	Transport  Transport
	Attempts   []AttemptRecord
}

// AttemptErrors returns the error text of every failed attempt.
func (r *DeliveryReport) AttemptErrors() []string {
	var out []string
	for _, a := range r.Attempts {
		if a.Err != nil {
			out = append(out, fmt.Sprintf("attempt %d via %s: %v", a.Number, a.Transport, a.Err))
		}
	}
	return out
}

// LastKind is the failure kind of the final attempt.
func (r *DeliveryReport) LastKind() apperror.Kind {
	if len(r.Attempts) == 0 {
		return ""
	}
	return r.Attempts[len(r.Attempts)-1].Kind
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Deliverer sends a message through an ordered list of transports with a shared retry policy.
// Attempt n uses transports[(n-1) % len(transports)].
type Deliverer struct {
	sender     Sender
	transports []Transport
	policy     RetryPolicy
	sleep      SleepFunc
	log        *zap.Logger
}

// DelivererOption customises a Deliverer.
type DelivererOption func(*Deliverer)

// WithSleep replaces the backoff wait, mostly for tests.
func WithSleep(fn SleepFunc) DelivererOption {
	return func(d *Deliverer) { d.sleep = fn }
}

// WithLogger sets the logger used for attempt failures.
func WithLogger(log *zap.Logger) DelivererOption {
	return func(d *Deliverer) { d.log = log }
}

func NewDeliverer(sender Sender, transports []Transport, policy RetryPolicy, opts ...DelivererOption) *Deliverer {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	d := &Deliverer{
		sender:     sender,
		transports: transports,
		policy:     policy,
		sleep:      sleepContext,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Transports returns the ordered transports this deliverer rotates through.
func (d *Deliverer) Transports() []Transport {
	return d.transports
}

// Policy returns the retry policy in use.
func (d *Deliverer) Policy() RetryPolicy {
	return d.policy
}

// SenderName identifies the underlying sender.
func (d *Deliverer) SenderName() string {
	return d.sender.Name()
}

// Deliver tries the transports in order until one accepts the message or the attempts run out.
// The report is returned in every case; on failure the error wraps ErrDeliveryExhausted
// (or the context error when the caller gave up).
func (d *Deliverer) Deliver(ctx context.Context, msg *Message) (*DeliveryReport, error) {
	report := &DeliveryReport{}
	if len(d.transports) == 0 {
		return report, fmt.Errorf("%w: no transports configured", ErrDeliveryExhausted)
	}

	var lastErr error
	for attempt := 1; attempt <= d.policy.MaxAttempts; attempt++ {
		delay := d.policy.DelayBefore(attempt)
		if delay > 0 {
			if err := d.sleep(ctx, delay); err != nil {
				return report, fmt.Errorf("delivery interrupted before attempt %d: %w", attempt, err)
			}
		}

		t := d.transports[(attempt-1)%len(d.transports)]
		started := time.Now()
		id, err := d.sender.Send(ctx, t, msg)
		rec := AttemptRecord{
			Number:    attempt,
			Transport: t,
			Delay:     delay,
			Duration:  time.Since(started),
			Err:       err,
		}

		if err == nil {
			report.Attempts = append(report.Attempts, rec)
			report.DeliveryID = id
			report.Transport = t
			return report, nil
		}

		rec.Kind = ClassifyError(err)
		report.Attempts = append(report.Attempts, rec)
		lastErr = err

		d.log.Warn("email delivery attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", d.policy.MaxAttempts),
			zap.String("transport", t.Name),
			zap.Int("port", t.Port),
			zap.String("security", string(t.Security)),
			zap.String("kind", string(rec.Kind)),
			zap.Duration("duration", rec.Duration),
			zap.Error(err),
		)

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return report, fmt.Errorf("delivery interrupted at attempt %d: %w", attempt, err)
		}
	}

	return report, fmt.Errorf("%w after %d attempts: %w", ErrDeliveryExhausted, len(report.Attempts), lastErr)
}

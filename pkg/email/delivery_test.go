package email_test

import (
	"context"
	"errors"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"engitech-contact-backend/config"
	"engitech-contact-backend/pkg/apperror"
	"engitech-contact-backend/pkg/email"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSender fails or succeeds per call in order and records each transport it was given.
type scriptedSender struct {
	mu     sync.Mutex
	errs   []error
	calls  []email.Transport
	nextID string
}

func (s *scriptedSender) Name() string { return "scripted" }

func (s *scriptedSender) Send(_ context.Context, t email.Transport, _ *email.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.calls)
	s.calls = append(s.calls, t)
	if n < len(s.errs) && s.errs[n] != nil {
		return "", s.errs[n]
	}
	return s.nextID, nil
}

func (s *scriptedSender) Verify(context.Context, email.Transport) error { return nil }

type recordedSleep struct {
	delays []time.Duration
}

func (r *recordedSleep) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

var (
	primary   = email.Transport{Name: "primary", Host: "smtp.example.com", Port: 587, Security: config.SecuritySTARTTLS}
	secondary = email.Transport{Name: "secondary", Host: "smtp.example.com", Port: 465, Security: config.SecurityImplicitTLS}
)

func TestDeliverer_Deliver(t *testing.T) {
	msg := &email.Message{From: "relay@example.com", To: "inbox@example.com", Subject: "hi"}
	connErr := errors.New("dial tcp: connection refused")

	t.Run("Should deliver on the first attempt without waiting", func(t *testing.T) {
		sender := &scriptedSender{nextID: "abc"}
		rec := &recordedSleep{}
		d := email.NewDeliverer(sender, []email.Transport{primary, secondary}, email.DefaultRetryPolicy(), email.WithSleep(rec.sleep))

		report, err := d.Deliver(context.Background(), msg)
		require.NoError(t, err)
		assert.Equal(t, "abc", report.DeliveryID)
		assert.Equal(t, primary, report.Transport)
		assert.Len(t, report.Attempts, 1)
		assert.Empty(t, rec.delays)
	})

	t.Run("Should fall back to the secondary transport when the primary fails", func(t *testing.T) {
		sender := &scriptedSender{errs: []error{connErr}, nextID: "xyz"}
		rec := &recordedSleep{}
		d := email.NewDeliverer(sender, []email.Transport{primary, secondary}, email.DefaultRetryPolicy(), email.WithSleep(rec.sleep))

		report, err := d.Deliver(context.Background(), msg)
		require.NoError(t, err)
		assert.Equal(t, "xyz", report.DeliveryID)
		assert.Equal(t, secondary, report.Transport)
		assert.Equal(t, []email.Transport{primary, secondary}, sender.calls)
		assert.Equal(t, []time.Duration{time.Second}, rec.delays)
	})

	t.Run("Should stop after exactly three attempts with increasing delays", func(t *testing.T) {
		sender := &scriptedSender{errs: []error{connErr, connErr, connErr, connErr}}
		rec := &recordedSleep{}
		d := email.NewDeliverer(sender, []email.Transport{primary, secondary}, email.DefaultRetryPolicy(), email.WithSleep(rec.sleep))

		report, err := d.Deliver(context.Background(), msg)
		require.Error(t, err)
		assert.ErrorIs(t, err, email.ErrDeliveryExhausted)
		assert.ErrorIs(t, err, connErr)
		assert.Len(t, sender.calls, 3)
		assert.Equal(t, []email.Transport{primary, secondary, primary}, sender.calls)
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.delays)
		assert.Len(t, report.AttemptErrors(), 3)
		assert.Equal(t, apperror.KindDeliveryConnectionFailure, report.LastKind())
	})

	t.Run("Should stop when the context is cancelled during backoff", func(t *testing.T) {
		sender := &scriptedSender{errs: []error{connErr}}
		d := email.NewDeliverer(sender, []email.Transport{primary}, email.DefaultRetryPolicy(),
			email.WithSleep(func(ctx context.Context, _ time.Duration) error { return context.Canceled }))

		_, err := d.Deliver(context.Background(), msg)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, email.ErrDeliveryExhausted)
		assert.Len(t, sender.calls, 1)
	})

	t.Run("Should fail immediately without transports", func(t *testing.T) {
		d := email.NewDeliverer(&scriptedSender{}, nil, email.DefaultRetryPolicy())
		_, err := d.Deliver(context.Background(), msg)
		assert.ErrorIs(t, err, email.ErrDeliveryExhausted)
	})

	t.Run("Should clamp the attempt budget to at least one", func(t *testing.T) {
		d := email.NewDeliverer(&scriptedSender{}, []email.Transport{primary}, email.RetryPolicy{MaxAttempts: 0})
		assert.Equal(t, 1, d.Policy().MaxAttempts)
	})
}

func TestRetryPolicy_DelayBefore(t *testing.T) {
	p := email.RetryPolicy{MaxAttempts: 4, BaseDelay: 500 * time.Millisecond}
	assert.Equal(t, time.Duration(0), p.DelayBefore(1))
	assert.Equal(t, 500*time.Millisecond, p.DelayBefore(2))
	assert.Equal(t, time.Second, p.DelayBefore(3))
	assert.Equal(t, 1500*time.Millisecond, p.DelayBefore(4))
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperror.Kind
	}{
		{"smtp 535", &textproto.Error{Code: 535, Msg: "5.7.8 Username and Password not accepted"}, apperror.KindDeliveryAuthFailure},
		{"flattened auth text", errors.New("gomail: could not send email 1: 535 authentication failed"), apperror.KindDeliveryAuthFailure},
		{"deadline", context.DeadlineExceeded, apperror.KindDeliveryConnectionFailure},
		{"refused", errors.New("dial tcp 1.2.3.4:587: connect: connection refused"), apperror.KindDeliveryConnectionFailure},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, email.ClassifyError(tt.err))
		})
	}
}

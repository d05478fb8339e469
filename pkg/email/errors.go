package email

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/textproto"
	"strings"

	"engitech-contact-backend/pkg/apperror"
)

// ErrDeliveryExhausted is returned once every allowed delivery attempt has failed.
var ErrDeliveryExhausted = errors.New("email: delivery attempts exhausted")

var authMarkers = []string{
	"535", "534", "530",
	"authentication",
	"auth failed",
	"username and password",
	"invalid credentials",
}

// ClassifyError maps a relay error to the delivery failure kind it represents.
func ClassifyError(err error) apperror.Kind {
	if err == nil {
		return ""
	}

	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		switch protoErr.Code {
		case 530, 534, 535:
			return apperror.KindDeliveryAuthFailure
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperror.KindDeliveryConnectionFailure
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return apperror.KindDeliveryConnectionFailure
	}

	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return apperror.KindDeliveryConnectionFailure
	}

	// gomail flattens send errors with %v, so fall back to the text
	msg := strings.ToLower(err.Error())
	for _, marker := range authMarkers {
		if strings.Contains(msg, marker) {
			return apperror.KindDeliveryAuthFailure
		}
	}
	return apperror.KindDeliveryConnectionFailure
}

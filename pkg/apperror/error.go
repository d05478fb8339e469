package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an error for propagation policy. Client-input kinds are surfaced
// as-is; infrastructure kinds are logged and replaced with a generic message.
type Kind string

const (
	KindMalformedRequest          Kind = "MalformedRequest"
	KindMissingField              Kind = "MissingField"
	KindInvalidEmailFormat        Kind = "InvalidEmailFormat"
	KindInvalidService            Kind = "InvalidService"
	KindMissingConfiguration      Kind = "MissingConfiguration"
	KindDeliveryAuthFailure       Kind = "DeliveryAuthFailure"
	KindDeliveryConnectionFailure Kind = "DeliveryConnectionFailure"
	KindDeliveryExhausted         Kind = "DeliveryExhausted"
	KindUnexpected                Kind = "UnexpectedError"
)

// IsClientError reports whether the kind is caused by caller input.
func (k Kind) IsClientError() bool {
	switch k {
	case KindMalformedRequest, KindMissingField, KindInvalidEmailFormat, KindInvalidService:
		return true
	}
	return false
}

type AppError struct {
	Code    int      `json:"code"`
	Kind    Kind     `json:"kind,omitempty"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
	Err     error    `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Kind:    KindUnexpected,
		Message: message,
		Err:     err,
	}
}

// WithKind builds an error whose status code follows from its kind.
func WithKind(kind Kind, message string, err error) *AppError {
	return &AppError{
		Code:    StatusFor(kind),
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message, nil)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, nil)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, message, nil)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, "Internal Server Error", err)
}

func MalformedRequest(err error) *AppError {
	return WithKind(KindMalformedRequest, "Invalid request format", err)
}

func MissingFields(fields []string) *AppError {
	msg := "Missing required fields. Please fill in all required information."
	if len(fields) > 0 {
		msg = fmt.Sprintf("Missing required fields: %s. Please fill in all required information.", strings.Join(fields, ", "))
	}
	e := WithKind(KindMissingField, msg, nil)
	e.Fields = fields
	return e
}

func InvalidEmail() *AppError {
	return WithKind(KindInvalidEmailFormat, "Please provide a valid email address.", nil)
}

func InvalidService(message string) *AppError {
	return WithKind(KindInvalidService, message, nil)
}

// StatusFor maps a kind to its HTTP status.
func StatusFor(kind Kind) int {
	if kind.IsClientError() {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// KindOf extracts the kind of err, or KindUnexpected when err carries none.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != "" {
		return appErr.Kind
	}
	return KindUnexpected
}

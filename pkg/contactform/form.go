// Package contactform is the visitor-side inquiry form: field state, the dependent
// sub-service list, local checks and a single submission to the contact endpoint.
package contactform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"sync"

	"engitech-contact-backend/pkg/apperror"
	"engitech-contact-backend/pkg/catalog"
	"engitech-contact-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultEndpoint = "/v1/contact"

	msgServerError  = "Server error. Please try again later or contact us directly."
	msgNetworkError = "Network error. Please check your connection and try again."
	msgSendFailed   = "Failed to send message. Please try again."
)

// ErrSubmissionInFlight is returned by Submit while a previous submission is still running.
var ErrSubmissionInFlight = errors.New("contactform: submission already in progress")

// ErrUnknownField is returned by OnChange for names outside the form.
var ErrUnknownField = errors.New("contactform: unknown field")

type Status string

const (
	StatusIdle    Status = "idle"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Fields is the body posted to the contact endpoint.
type Fields struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,basic_email"`
	Phone      string `json:"phone" validate:"required"`
	Service    string `json:"service" validate:"required,inquiry_service"`
	SubService string `json:"subService,omitempty"`
	Message    string `json:"message" validate:"required"`
}

func (p *Fields) trim() {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Service = strings.TrimSpace(p.Service)
	p.SubService = strings.TrimSpace(p.SubService)
	p.Message = strings.TrimSpace(p.Message)
}

// Form holds the values of one visitor's inquiry form. It is safe for concurrent use.
type Form struct {
	mu       sync.Mutex
	fields   Fields
	busy     bool
	status   Status
	message  string
	endpoint string
	client   *http.Client
	validate *validator.Validate
}

type Option func(*Form)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Form) { f.client = c }
}

// WithEndpoint sets the absolute URL submissions are posted to.
func WithEndpoint(url string) Option {
	return func(f *Form) { f.endpoint = url }
}

func New(opts ...Option) *Form {
	f := &Form{
		status:   StatusIdle,
		endpoint: DefaultEndpoint,
		client:   http.DefaultClient,
		validate: validation.New(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// OnChange sets one field by its JSON name. Choosing a different service clears the sub-service.
func (f *Form) OnChange(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch field {
	case "name":
		f.fields.Name = value
	case "email":
		f.fields.Email = value
	case "phone":
		f.fields.Phone = value
	case "service":
		if value != f.fields.Service {
			f.fields.SubService = ""
		}
		f.fields.Service = value
	case "subService":
		f.fields.SubService = value
	case "message":
		f.fields.Message = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Values returns a copy of the current field values.
func (f *Form) Values() Fields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// SubServices lists the options for the selected service, or nil when none is selected.
func (f *Form) SubServices() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return catalog.SubServices(f.fields.Service)
}

func (f *Form) Status() (Status, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, f.message
}

func (f *Form) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

// Validate runs the same required-field and format checks the server applies.
func (f *Form) Validate() error {
	f.mu.Lock()
	p := f.fields
	f.mu.Unlock()
	return f.check(&p)
}

func (f *Form) check(p *Fields) error {
	p.trim()
	if err := f.validate.Struct(p); err != nil {
		if missing := validation.MissingFields(err); len(missing) > 0 {
			return apperror.MissingFields(missing)
		}
		if validation.HasTag(err, "basic_email") {
			return apperror.InvalidEmail()
		}
		return apperror.InvalidService("Please select one of the listed services.")
	}
	if p.SubService != "" && !catalog.IsSubServiceOf(p.Service, p.SubService) {
		return apperror.InvalidService("The selected sub-service does not belong to the selected service.")
	}
	return nil
}

type submitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Submit posts the form once. On success the fields are cleared; on failure they are kept
// so the visitor can retry by hand.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return ErrSubmissionInFlight
	}
	f.busy = true
	f.status, f.message = StatusIdle, ""
	payload := f.fields
	f.mu.Unlock()

	msg, err := f.post(ctx, &payload)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
	if err != nil {
		f.status, f.message = StatusError, err.Error()
		return err
	}
	f.status, f.message = StatusSuccess, msg
	f.fields = Fields{}
	return nil
}

func (f *Form) post(ctx context.Context, p *Fields) (string, error) {
	if err := f.check(p); err != nil {
		return "", err
	}

	body, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", errors.New(msgNetworkError)
	}
	defer resp.Body.Close()

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return "", errors.New(msgServerError)
	}

	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.New(msgServerError)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !out.Success {
		if strings.TrimSpace(out.Message) != "" {
			return "", errors.New(out.Message)
		}
		return "", errors.New(msgSendFailed)
	}
	return out.Message, nil
}

package validation

import (
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"engitech-contact-backend/pkg/catalog"

	"github.com/go-playground/validator/v10"
)

// Regex patterns
var (
	// local@domain.tld with no whitespace anywhere
	basicEmailRegex = regexp.MustCompile(`^\S+@\S+\.\S+$`)

	// E164-like phone: optional +, digits 7-15 length
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

	phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
)

// New returns a validator with the custom tags registered and JSON names reported in errors.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("basic_email", BasicEmail)
	_ = v.RegisterValidation("inquiry_service", InquiryService)
	_ = v.RegisterValidation("valid_phone", ValidPhone)
}

// IsBasicEmail reports whether s looks like local@domain.tld. Any Unicode
// whitespace, including NBSP and vertical tab, disqualifies the address.
func IsBasicEmail(s string) bool {
	if strings.IndexFunc(s, isEmailSpace) >= 0 {
		return false
	}
	return basicEmailRegex.MatchString(s)
}

func isEmailSpace(r rune) bool {
	return unicode.IsSpace(r) || unicode.Is(unicode.Zs, r) || r == '\uFEFF'
}

// BasicEmail validates the loose address shape accepted by the contact form
func BasicEmail(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // Optional, use required if needed
	}
	return IsBasicEmail(val)
}

// InquiryService validates that the value is one of the catalog categories
func InquiryService(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return catalog.IsService(val)
}

// IsPhone reports whether s is a plausible phone number once common separators are removed.
func IsPhone(s string) bool {
	return phoneRegex.MatchString(phoneSeparators.Replace(s))
}

// ValidPhone validates a phone number structure
func ValidPhone(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return IsPhone(val)
}

// Package chatlink builds the messaging deep links opened by the site's floating chat widget.
package chatlink

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const baseURL = "https://wa.me/"

// ErrNoPhone is returned when the phone number has no digits.
var ErrNoPhone = errors.New("chatlink: phone number has no digits")

// DefaultGreeting is the pre-filled message used when the visitor has not typed one.
func DefaultGreeting(company string) string {
	return fmt.Sprintf("Hi %s, I visited your website and would like to know more about your services.", company)
}

// Build returns https://wa.me/<digits>?text=<message>. Non-digit characters in phone
// (spaces, +, dashes) are dropped.
func Build(phone, message string) (string, error) {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return "", ErrNoPhone
	}

	link := baseURL + digits.String()
	if message = strings.TrimSpace(message); message != "" {
		// wa.me does not decode + as a space
		link += "?text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	}
	return link, nil
}

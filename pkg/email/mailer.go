package email

import (
	"context"
	"fmt"

	"engitech-contact-backend/config"
)

const (
	MailProviderSMTP = config.MailProviderSMTP
	MailProviderDev  = config.MailProviderDev
)

// Transport is one relay connection profile (host, port and encryption mode).
type Transport struct {
	Name     string
	Host     string
	Port     int
	Security config.TransportSecurity
}

func (t Transport) String() string {
	return fmt.Sprintf("%s %s:%d (%s)", t.Name, t.Host, t.Port, t.Security)
}

// Message contains the fields needed to send one notification
type Message struct {
	FromName string
	From     string
	To       string
	ReplyTo  string
	Subject  string
	HTMLBody string
	TextBody string
}

// Sender is used to have different implementations for relaying email.
// Each Send opens a fresh connection against the given transport.
type Sender interface {
	Send(ctx context.Context, t Transport, msg *Message) (deliveryID string, err error)
	// Verify connects and authenticates without sending anything.
	Verify(ctx context.Context, t Transport) error
	// Name is used for logging.
	Name() string
}

// TransportsFromConfig converts the configured relay profiles into transports.
func TransportsFromConfig(cfg *config.Config) []Transport {
	settings := cfg.Transports()
	transports := make([]Transport, 0, len(settings))
	for _, s := range settings {
		transports = append(transports, Transport{
			Name:     s.Name,
			Host:     s.Host,
			Port:     s.Port,
			Security: s.Security,
		})
	}
	return transports
}

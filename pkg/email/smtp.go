package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"engitech-contact-backend/config"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// SMTPSender relays messages through an authenticated SMTP server.
type SMTPSender struct {
	username           string
	password           string
	insecureSkipVerify bool
}

// NewSMTPSender creates a relay client authenticating with the configured credentials
func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		username:           cfg.SMTPUsername,
		password:           cfg.SMTPPassword,
		insecureSkipVerify: cfg.SMTPInsecureSkipVerify,
	}
}

func (s *SMTPSender) Name() string {
	return MailProviderSMTP
}

func (s *SMTPSender) dialer(t Transport) *gomail.Dialer {
	d := gomail.NewDialer(t.Host, t.Port, s.username, s.password)
	// SSL means implicit TLS; otherwise gomail upgrades with STARTTLS when offered
	d.SSL = t.Security == config.SecurityImplicitTLS
	d.TLSConfig = &tls.Config{
		ServerName:         t.Host,
		InsecureSkipVerify: s.insecureSkipVerify,
		MinVersion:         tls.VersionTLS12,
	}
	return d
}

// Send delivers msg over a new connection and returns the generated message identifier
func (s *SMTPSender) Send(ctx context.Context, t Transport, msg *Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	m := buildMessage(msg, id)

	if err := s.dialer(t).DialAndSend(m); err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	return id, nil
}

// Verify dials and authenticates, then closes the connection
func (s *SMTPSender) Verify(ctx context.Context, t Transport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	conn, err := s.dialer(t).Dial()
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	return conn.Close()
}

func buildMessage(msg *Message, id string) *gomail.Message {
	m := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	if msg.FromName != "" {
		m.SetAddressHeader("From", msg.From, msg.FromName)
	} else {
		m.SetHeader("From", msg.From)
	}
	m.SetHeader("To", msg.To)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-ID", fmt.Sprintf("<%s@%s>", id, messageIDDomain(msg.From)))
	m.SetDateHeader("Date", time.Now())

	// text first, html as the preferred alternative
	m.SetBody("text/plain", msg.TextBody)
	m.AddAlternative("text/html", msg.HTMLBody)
	return m
}

func messageIDDomain(from string) string {
	if at := strings.LastIndex(from, "@"); at >= 0 && at < len(from)-1 {
		return from[at+1:]
	}
	return "localhost"
}

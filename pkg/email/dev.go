package email

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DevSender logs messages instead of relaying them.
type DevSender struct {
	log *zap.Logger
}

func NewDevSender(log *zap.Logger) *DevSender {
	return &DevSender{log: log}
}

func (d *DevSender) Name() string {
	return MailProviderDev
}

func (d *DevSender) Send(_ context.Context, t Transport, msg *Message) (string, error) {
	id := uuid.NewString()
	d.log.Info("dev mail sender: message not relayed",
		zap.String("delivery_id", id),
		zap.String("transport", t.String()),
		zap.String("from", msg.From),
		zap.String("to", msg.To),
		zap.String("reply_to", msg.ReplyTo),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.TextBody),
	)
	return id, nil
}

func (d *DevSender) Verify(_ context.Context, _ Transport) error {
	return nil
}

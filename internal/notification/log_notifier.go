package notification

import (
	"context"

	"github.com/Dhoini/course-marketplace/pkg/logger"
)

// LogNotifier только пишет письма в лог (локальная разработка)
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(ctx context.Context, email Email) error {
	if email.To == "" {
		return ErrNoRecipient
	}
	n.log.Infow("Email notification", "to", email.To, "subject", email.Subject)
	return nil
}

package email

import (
	"context"
	"log/slog"
)

// LogSender is a Sender that writes emails to a logger instead of sending
// them. Only meant for development, it logs recipient addresses and full
// email contents.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, from, recipient Address, subject, body string) error {
	s.logger.Info("send email",
		"from", from,
		"recipient", recipient,
		"subject", subject,
		"body", body,
	)

	return nil
}

package services

import (
	"context"
	"log/slog"
)

// EmailMessage is a rendered message with plain text and HTML bodies.
type EmailMessage struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// LogSender writes messages to the log instead of delivering them. It is
// wired when no SMTP host is configured.
type LogSender struct {
	Logger *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, msg EmailMessage) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "email not delivered, smtp disabled",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Text,
	)
	return nil
}

package mail

import (
	"context"

	"go.uber.org/zap"

	"gonotes/internal/auth/ports/services"
	"gonotes/pkg/logger"
)

// LogMailer пишет письма в лог вместо отправки. Используется, когда SMTP не настроен.
type LogMailer struct{}

// NewLogMailer создает LogMailer.
func NewLogMailer() services.Mailer {
	return LogMailer{}
}

// Send записывает письмо в лог.
func (LogMailer) Send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return ErrNoRecipient
	}
	logger.Log(ctx).Info(ctx, "email not sent, SMTP is not configured",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}

// Package mail содержит реализации отправки писем.
package mail

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"gonotes/internal/auth/ports/services"
	"gonotes/pkg/logger"
)

const (
	msgSending    = "sending email"
	msgSent       = "email sent"
	msgErrSending = "failed to send email"

	errCtxSending = "sending email"
)

// ErrNoRecipient возвращается при пустом адресе получателя.
var ErrNoRecipient = errors.New("email recipient is empty")

// SMTPConfig содержит параметры SMTP-сервера.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// From по умолчанию совпадает с Username.
	From string
}

// Dialer - часть gomail.Dialer, которой пользуется SMTPMailer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer отправляет письма через SMTP.
type SMTPMailer struct {
	dialer Dialer
	from   string
}

// NewSMTPMailer создает почтовый клиент поверх gomail.
func NewSMTPMailer(cfg SMTPConfig) services.Mailer {
	return NewSMTPMailerWithDialer(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), fromAddress(cfg))
}

// NewSMTPMailerWithDialer создает почтовый клиент с заданным транспортом.
func NewSMTPMailerWithDialer(dialer Dialer, from string) *SMTPMailer {
	return &SMTPMailer{dialer: dialer, from: from}
}

func fromAddress(cfg SMTPConfig) string {
	if cfg.From != "" {
		return cfg.From
	}
	return cfg.Username
}

// Send отправляет текстовое письмо. gomail не принимает контекст, поэтому отмена проверяется до соединения.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	log := logger.Log(ctx).With(zap.String("method", "Send"), zap.String("to", to), zap.String("subject", subject))

	if to == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", errCtxSending, err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	log.Debug(ctx, msgSending)
	if err := m.dialer.DialAndSend(msg); err != nil {
		log.Error(ctx, msgErrSending, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxSending, err)
	}

	log.Info(ctx, msgSent)
	return nil
}

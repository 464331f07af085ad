package config

import "time"

// DefaultSecret - ключ подписи для локального запуска.
//
//nolint:gosec
const DefaultSecret = "development-secret-change-me"

// AuthConfig содержит параметры сессий и сброса пароля.
type AuthConfig struct {
	Secret          string        `env:"SECRET" env-default:"development-secret-change-me"`
	SessionTTL      time.Duration `env:"SESSION_TTL" env-default:"1h"`
	BcryptCost      int           `env:"BCRYPT_COST" env-default:"10"`
	ResetTokenTTL   time.Duration `env:"RESET_TOKEN_TTL" env-default:"1h"`
	ResetTokenBytes int           `env:"RESET_TOKEN_BYTES" env-default:"20"`
}

// MailConfig содержит параметры исходящей почты. Без EMAIL письма только пишутся в лог.
type MailConfig struct {
	Address  string `env:"EMAIL"`
	Password string `env:"EMAIL_PASSWORD"`
	SMTPHost string `env:"SMTP_HOST" env-default:"smtp.gmail.com"`
	SMTPPort int    `env:"SMTP_PORT" env-default:"587"`
}

// Enabled сообщает, настроена ли отправка через SMTP.
func (c *MailConfig) Enabled() bool {
	return c.Address != ""
}

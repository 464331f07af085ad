package mail

import (
	"context"

	"gonotes/internal/auth/ports/services"
	"gonotes/pkg/resilience"
)

// BreakerMailer пропускает отправку через Circuit Breaker, чтобы недоступный SMTP не задерживал каждый запрос.
type BreakerMailer struct {
	next    services.Mailer
	breaker *resilience.CircuitBreaker
}

// NewBreakerMailer оборачивает next.
func NewBreakerMailer(next services.Mailer, breaker *resilience.CircuitBreaker) services.Mailer {
	return &BreakerMailer{next: next, breaker: breaker}
}

// Send отправляет письмо, если цепь замкнута. При разомкнутой цепи возвращает resilience.ErrCircuitOpen.
func (b *BreakerMailer) Send(ctx context.Context, to, subject, body string) error {
	return b.breaker.Execute(ctx, func() error {
		return b.next.Send(ctx, to, subject, body)
	})
}

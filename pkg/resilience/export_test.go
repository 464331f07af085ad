package resilience

import "time"

func NewCircuitBreakerWithClock(name string, config CircuitBreakerConfig, now func() time.Time) *CircuitBreaker {
	return newCircuitBreaker(name, config, now)
}

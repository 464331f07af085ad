package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	svc "gonotes/internal/auth/ports/services"
)

// DefaultResetTokenBytes - длина токена сброса до hex-кодирования.
const DefaultResetTokenBytes = 20

// RandomResetTokens выпускает hex-токены из crypto/rand.
type RandomResetTokens struct {
	size int
}

// NewRandomResetTokens создает генератор токенов длиной size байт.
func NewRandomResetTokens(size int) svc.ResetTokenGenerator {
	if size < 16 {
		size = DefaultResetTokenBytes
	}
	return &RandomResetTokens{size: size}
}

// Generate возвращает новый токен.
func (g *RandomResetTokens) Generate(_ context.Context) (string, error) {
	buf := make([]byte, g.size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"gonotes/internal/auth/domain/services"
	svc "gonotes/internal/auth/ports/services"
	"gonotes/pkg/logger"
)

const (
	methodGenerateSessionToken = "GenerateSessionToken"
	methodValidateSessionToken = "ValidateSessionToken"

	msgGeneratingToken = "generating session token"
	msgTokenGenerated  = "token generated successfully"
	msgTokenValidated  = "token validated successfully"
	msgTokenExpired    = "token has expired"
	msgInvalidToken    = "invalid token"
	//nolint:gosec
	errSigningToken       = "error signing token"
	errCtxGeneratingToken = "generating token"
	errCtxValidatingToken = "validating token"
)

// Claims - формат содержимого токена сессии.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// ServiceJWT выпускает и проверяет токены HS256.
type ServiceJWT struct {
	config services.JWTConfig
	now    func() time.Time
}

// NewJWT создает сервис токенов сессии.
func NewJWT(secretKey string, sessionTTL time.Duration) svc.TokenService {
	return NewJWTWithClock(secretKey, sessionTTL, time.Now)
}

// NewJWTWithClock создает сервис с заданным источником времени.
func NewJWTWithClock(secretKey string, sessionTTL time.Duration, now func() time.Time) svc.TokenService {
	return &ServiceJWT{
		config: services.JWTConfig{
			SecretKey:  []byte(secretKey),
			SessionTTL: sessionTTL,
		},
		now: now,
	}
}

func domainToJWTClaims(claims services.JWTClaims) Claims {
	return Claims{
		UserID: claims.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID,
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	}
}

// GenerateSessionToken подписывает токен с идентификатором пользователя.
func (s *ServiceJWT) GenerateSessionToken(ctx context.Context, userID string) (string, time.Time, error) {
	log := logger.Log(ctx).With(zap.String("method", methodGenerateSessionToken), zap.String("userID", userID))
	log.Debug(ctx, msgGeneratingToken)

	if len(s.config.SecretKey) == 0 {
		return "", time.Time{}, fmt.Errorf("%s: %w: empty secret key", errCtxGeneratingToken, services.ErrGeneratingJWTToken)
	}
	if userID == "" {
		return "", time.Time{}, fmt.Errorf("%s: %w: empty user id", errCtxGeneratingToken, services.ErrGeneratingJWTToken)
	}

	now := s.now()
	expiresAt := now.Add(s.config.SessionTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, domainToJWTClaims(services.JWTClaims{
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}))

	signed, err := token.SignedString(s.config.SecretKey)
	if err != nil {
		log.Error(ctx, errSigningToken, zap.Error(err))
		return "", time.Time{}, fmt.Errorf("%s: %w: %w", errCtxGeneratingToken, services.ErrGeneratingJWTToken, err)
	}

	log.Debug(ctx, msgTokenGenerated, zap.Time("expiresAt", expiresAt))
	return signed, expiresAt, nil
}

// ValidateSessionToken проверяет подпись и срок действия, возвращает ID пользователя.
func (s *ServiceJWT) ValidateSessionToken(ctx context.Context, tokenString string) (string, error) {
	log := logger.Log(ctx).With(zap.String("method", methodValidateSessionToken))

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return s.config.SecretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug(ctx, msgTokenExpired)
			return "", fmt.Errorf("%s: %w", errCtxValidatingToken, services.ErrExpiredJWTToken)
		}
		log.Debug(ctx, msgInvalidToken, zap.Error(err))
		return "", fmt.Errorf("%s: %w: %w", errCtxValidatingToken, services.ErrInvalidJWTToken, err)
	}

	if claims.UserID == "" {
		log.Debug(ctx, msgInvalidToken)
		return "", fmt.Errorf("%s: %w: empty user id", errCtxValidatingToken, services.ErrInvalidJWTToken)
	}

	log.Debug(ctx, msgTokenValidated, zap.String("userID", claims.UserID))
	return claims.UserID, nil
}

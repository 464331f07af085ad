package services_test

import (
	"context"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"gonotes/internal/auth/adapters/services"
	domainservices "gonotes/internal/auth/domain/services"
)

const (
	testSecret = "test-secret"
	testUserID = "65f1c0de0000000000000001"
)

func TestBcryptHashAndVerify(t *testing.T) {
	ctx := context.Background()
	svc := services.NewBcrypt(bcrypt.MinCost)

	hash, err := svc.Hash(ctx, "validPassword123")
	require.NoError(t, err)
	assert.NotEqual(t, "validPassword123", hash)

	ok, err := svc.Verify(ctx, "validPassword123", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify(ctx, "wrongPassword123", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBcryptSaltsEachHash(t *testing.T) {
	ctx := context.Background()
	svc := services.NewBcrypt(bcrypt.MinCost)

	first, err := svc.Hash(ctx, "samePassword1")
	require.NoError(t, err)
	second, err := svc.Hash(ctx, "samePassword1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestBcryptRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	svc := services.NewBcrypt(bcrypt.MinCost)

	_, err := svc.Hash(ctx, "")
	require.ErrorIs(t, err, domainservices.ErrInvalidPassword)

	_, err = svc.Hash(ctx, strings.Repeat("p", 73))
	require.ErrorIs(t, err, domainservices.ErrInvalidPassword)

	ok, err := svc.Verify(ctx, "whatever1", "not-a-bcrypt-hash")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestBcryptInvalidCostFallsBackToDefault(t *testing.T) {
	svc := services.NewBcrypt(1)

	hash, err := svc.Hash(context.Background(), "validPassword123")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestJWTRoundTrip(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	svc := services.NewJWTWithClock(testSecret, time.Hour, func() time.Time { return now })

	token, expiresAt, err := svc.GenerateSessionToken(ctx, testUserID)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(time.Hour), expiresAt, time.Second)

	userID, err := svc.ValidateSessionToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, testUserID, userID)
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	clock := func() time.Time { return now }
	svc := services.NewJWTWithClock(testSecret, time.Hour, clock)

	token, _, err := svc.GenerateSessionToken(ctx, testUserID)
	require.NoError(t, err)

	later := services.NewJWTWithClock(testSecret, time.Hour, func() time.Time { return now.Add(time.Hour + time.Second) })
	_, err = later.ValidateSessionToken(ctx, token)
	require.ErrorIs(t, err, domainservices.ErrExpiredJWTToken)
}

func TestJWTRejectsTamperedToken(t *testing.T) {
	ctx := context.Background()
	svc := services.NewJWT(testSecret, time.Hour)

	token, _, err := svc.GenerateSessionToken(ctx, testUserID)
	require.NoError(t, err)

	for i := 0; i < len(token); i++ {
		if token[i] == '.' {
			continue
		}
		b := []byte(token)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		_, err := svc.ValidateSessionToken(ctx, string(b))
		assert.ErrorIs(t, err, domainservices.ErrInvalidJWTToken, "position %d", i)
	}
}

func TestJWTRejectsForeignSignatures(t *testing.T) {
	ctx := context.Background()
	svc := services.NewJWT(testSecret, time.Hour)

	otherKey, _, err := services.NewJWT("other-secret", time.Hour).GenerateSessionToken(ctx, testUserID)
	require.NoError(t, err)
	_, err = svc.ValidateSessionToken(ctx, otherKey)
	require.ErrorIs(t, err, domainservices.ErrInvalidJWTToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, services.Claims{
		UserID: testUserID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateSessionToken(ctx, unsigned)
	require.ErrorIs(t, err, domainservices.ErrInvalidJWTToken)

	_, err = svc.ValidateSessionToken(ctx, "garbage")
	require.ErrorIs(t, err, domainservices.ErrInvalidJWTToken)
}

func TestJWTRequiresUserIDAndExpiry(t *testing.T) {
	ctx := context.Background()
	svc := services.NewJWT(testSecret, time.Hour)

	_, _, err := svc.GenerateSessionToken(ctx, "")
	require.ErrorIs(t, err, domainservices.ErrGeneratingJWTToken)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, services.Claims{UserID: testUserID}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = svc.ValidateSessionToken(ctx, noExpiry)
	require.ErrorIs(t, err, domainservices.ErrInvalidJWTToken)

	_, _, err = services.NewJWT("", time.Hour).GenerateSessionToken(ctx, testUserID)
	require.ErrorIs(t, err, domainservices.ErrGeneratingJWTToken)
}

func TestRandomResetTokens(t *testing.T) {
	gen := services.NewRandomResetTokens(services.DefaultResetTokenBytes)

	first, err := gen.Generate(context.Background())
	require.NoError(t, err)
	second, err := gen.Generate(context.Background())
	require.NoError(t, err)

	assert.Len(t, first, 2*services.DefaultResetTokenBytes)
	_, err = hex.DecodeString(first)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestServiceFactory(t *testing.T) {
	f := services.NewServiceFactory(services.FactoryConfig{
		SecretKey:  testSecret,
		SessionTTL: time.Hour,
		BcryptCost: bcrypt.MinCost,
	})

	assert.NotNil(t, f.PasswordService())
	assert.NotNil(t, f.TokenService())
	assert.NotNil(t, f.ResetTokens())
}

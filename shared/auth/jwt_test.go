package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func testClaims(ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Subject:   "user-1",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		Issuer:    "test-issuer",
		Audience:  jwt.ClaimStrings{"test-audience"},
	}
}

func TestJWTAuthenticator(t *testing.T) {
	t.Parallel()

	authenticator := NewJWTAuthenticator("test-audience", "test-issuer")

	t.Run("round-trips claims", func(t *testing.T) {
		token, err := authenticator.GenerateToken(testClaims(time.Hour), testSecret)
		require.NoError(t, err)

		parsed := jwt.RegisteredClaims{}
		_, err = authenticator.ValidateTokenWithClaims(token, testSecret, &parsed)
		require.NoError(t, err)
		require.Equal(t, "user-1", parsed.Subject)
	})

	t.Run("rejects a tampered secret", func(t *testing.T) {
		token, err := authenticator.GenerateToken(testClaims(time.Hour), testSecret)
		require.NoError(t, err)

		_, err = authenticator.ValidateTokenWithClaims(token, "other-secret", &jwt.RegisteredClaims{})
		require.Error(t, err)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		token, err := authenticator.GenerateToken(testClaims(-time.Minute), testSecret)
		require.NoError(t, err)

		_, err = authenticator.ValidateTokenWithClaims(token, testSecret, &jwt.RegisteredClaims{})
		require.Error(t, err)
	})

	t.Run("rejects a mismatched issuer", func(t *testing.T) {
		claims := testClaims(time.Hour)
		claims.Issuer = "other-issuer"
		token, err := authenticator.GenerateToken(claims, testSecret)
		require.NoError(t, err)

		_, err = authenticator.ValidateTokenWithClaims(token, testSecret, &jwt.RegisteredClaims{})
		require.Error(t, err)
	})
}

package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/taskify-api/internal/model"
	"github.com/vasapolrittideah/taskify-api/internal/usecase"
	"github.com/vasapolrittideah/taskify-api/shared/auth"
)

const testSecret = "test-secret"

func signTestToken(t *testing.T, jwtAuth auth.JWTAuthenticator, userID bson.ObjectID, role model.Role) string {
	t.Helper()

	now := time.Now()
	token, err := jwtAuth.GenerateToken(usecase.TokenClaims{
		UserID: userID.Hex(),
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			Issuer:    "taskify-test",
			Audience:  jwt.ClaimStrings{"taskify-test"},
		},
	}, testSecret)
	require.NoError(t, err)
	return token
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	jwtAuth := auth.NewJWTAuthenticator("taskify-test", "taskify-test")
	userID := bson.NewObjectID()

	var captured usecase.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		require.True(t, ok)
		captured = identity
		w.WriteHeader(http.StatusNoContent)
	})
	protected := Authenticate(jwtAuth, testSecret)(next)

	t.Run("resolves a valid bearer token", func(t *testing.T) {
		token := signTestToken(t, jwtAuth, userID, model.RoleAdmin)

		r := httptest.NewRequest("GET", "/api/tasks", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, r)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, userID, captured.ID)
		require.Equal(t, model.RoleAdmin, captured.Role)
	})

	t.Run("rejects a missing header", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/tasks", nil)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, r)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects a non-bearer scheme", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/tasks", nil)
		r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, r)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		token := signTestToken(t, jwtAuth, userID, model.RoleUser)

		r := httptest.NewRequest("GET", "/api/tasks", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		Authenticate(jwtAuth, "other-secret")(next).ServeHTTP(rec, r)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("assigns one when absent", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/healthz", nil)
		rec := httptest.NewRecorder()
		RequestID(next).ServeHTTP(rec, r)

		require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("echoes a caller-supplied one", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/healthz", nil)
		r.Header.Set("X-Request-ID", "abc-123")
		rec := httptest.NewRecorder()
		RequestID(next).ServeHTTP(rec, r)

		require.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
	})
}

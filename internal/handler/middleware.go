package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/taskify-api/internal/model"
	"github.com/vasapolrittideah/taskify-api/internal/usecase"
	"github.com/vasapolrittideah/taskify-api/shared/auth"
)

type contextKey struct{ name string }

var identityKey = contextKey{"identity"}

// IdentityFromContext returns the authenticated caller stored by
// Authenticate.
func IdentityFromContext(ctx context.Context) (usecase.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(usecase.Identity)
	return identity, ok
}

// Authenticate validates the bearer token and stores the resolved identity
// in the request context. Requests without a valid token are rejected.
func Authenticate(jwtAuth auth.JWTAuthenticator, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := identityFromRequest(r, jwtAuth, secret)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Success: false, Message: "authentication required"})
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func identityFromRequest(r *http.Request, jwtAuth auth.JWTAuthenticator, secret string) (usecase.Identity, error) {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return usecase.Identity{}, errInvalidAuthHeader
	}

	claims := &usecase.TokenClaims{}
	if _, err := jwtAuth.ValidateTokenWithClaims(parts[1], secret, claims); err != nil {
		return usecase.Identity{}, err
	}

	userID, err := bson.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return usecase.Identity{}, err
	}

	return usecase.Identity{ID: userID, Role: model.Role(claims.Role)}, nil
}

var errInvalidAuthHeader = errors.New("invalid authorization header format")

// RequestID assigns each request a UUID, echoed in the X-Request-ID
// response header, for log correlation.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

var requestIDKey = contextKey{"request_id"}

// RequestLogger logs HTTP request/response metadata.
func RequestLogger(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			requestID, _ := r.Context().Value(requestIDKey).(string)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Str("request_id", requestID).
				Dur("latency", time.Since(start)).
				Msg("http request")
		})
	}
}

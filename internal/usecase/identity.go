package usecase

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/taskify-api/internal/model"
	"github.com/vasapolrittideah/taskify-api/shared/provider"
)

// Identity is the authenticated caller resolved from a bearer token.
type Identity struct {
	ID   bson.ObjectID
	Role model.Role
}

// TokenClaims are the JWT claims carried by access tokens.
type TokenClaims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Notifier sends account emails. Failures are the caller's to degrade or
// surface; the notifier itself never retries.
type Notifier interface {
	SendVerification(email, token string) error
	SendPasswordReset(email, token string) error
}

// GoogleVerifier resolves a Google token into an account profile.
type GoogleVerifier interface {
	ResolveProfile(ctx context.Context, token string) (*provider.Profile, error)
}

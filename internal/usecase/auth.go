package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/taskify-api/internal/apperror"
	"github.com/vasapolrittideah/taskify-api/internal/config"
	"github.com/vasapolrittideah/taskify-api/internal/model"
	"github.com/vasapolrittideah/taskify-api/internal/repository"
	"github.com/vasapolrittideah/taskify-api/shared/auth"
	"github.com/vasapolrittideah/taskify-api/shared/provider"
	"github.com/vasapolrittideah/taskify-api/shared/security"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	Register(ctx context.Context, params RegisterParams) (*model.User, error)
	VerifyEmail(ctx context.Context, token string) (*model.User, error)
	Login(ctx context.Context, params LoginParams) (*AuthResult, error)
	GuestLogin(ctx context.Context) (*AuthResult, error)
	GoogleLogin(ctx context.Context, token string) (*AuthResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) (*AuthResult, error)
	ChangePassword(ctx context.Context, caller Identity, currentPassword, newPassword string) error
}

// RegisterParams defines the parameters for user registration.
type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

// LoginParams defines the parameters for user login.
type LoginParams struct {
	Email    string
	Password string
}

// AuthResult carries a signed bearer token and the authenticated user.
type AuthResult struct {
	Token string
	User  *model.User
}

var (
	ErrEmailTaken               = apperror.New(apperror.Conflict, "user with this email already exists")
	ErrInvalidCredentials       = apperror.New(apperror.Unauthenticated, "invalid credentials")
	ErrUserNotFound             = apperror.New(apperror.NotFound, "user not found")
	ErrVerificationTokenInvalid = apperror.New(apperror.NotFound, "invalid or expired verification token")
	ErrResetTokenInvalid        = apperror.New(apperror.NotFound, "invalid or expired reset token")
	ErrWrongPassword            = apperror.New(apperror.Validation, "current password is incorrect")
	ErrResetEmailFailed         = apperror.New(apperror.Internal, "failed to send password reset email")
	ErrGoogleTokenInvalid       = apperror.New(apperror.Unauthenticated, "invalid google token")
)

type authUsecase struct {
	userRepo repository.UserRepository
	jwtAuth  auth.JWTAuthenticator
	notifier Notifier
	google   GoogleVerifier
	cfg      *config.TokenConfig
	logger   *zerolog.Logger
}

func NewAuthUsecase(
	userRepo repository.UserRepository,
	jwtAuth auth.JWTAuthenticator,
	notifier Notifier,
	google GoogleVerifier,
	cfg *config.TokenConfig,
	logger *zerolog.Logger,
) AuthUsecase {
	return &authUsecase{
		userRepo: userRepo,
		jwtAuth:  jwtAuth,
		notifier: notifier,
		google:   google,
		cfg:      cfg,
		logger:   logger,
	}
}

func (u *authUsecase) Register(ctx context.Context, params RegisterParams) (*model.User, error) {
	email := normalizeEmail(params.Email)

	if _, err := u.userRepo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	verificationToken, err := randomToken(u.cfg.VerificationByteLen)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		Name:              params.Name,
		Email:             email,
		PasswordHash:      passwordHash,
		Verified:          false,
		VerificationToken: verificationToken,
		Role:              model.RoleUser,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	// Registration succeeds even if the verification email does not go out;
	// the user can request another one by logging in unverified.
	if err := u.notifier.SendVerification(user.Email, verificationToken); err != nil {
		u.logger.Warn().Err(err).Str("email", user.Email).Msg("failed to send verification email")
	}

	return user, nil
}

func (u *authUsecase) VerifyEmail(ctx context.Context, token string) (*model.User, error) {
	user, err := u.userRepo.GetUserByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrVerificationTokenInvalid
		}
		return nil, err
	}

	verified := true
	return u.userRepo.UpdateUser(ctx, user.ID, repository.UpdateUserParams{
		Verified:               &verified,
		ClearVerificationToken: true,
	})
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, normalizeEmail(params.Email))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// VerifyPassword fails closed for provider-only accounts with no hash.
	if ok, err := security.VerifyPassword(params.Password, user.PasswordHash); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrInvalidCredentials
	}

	user, err = u.stampLastLogin(ctx, user)
	if err != nil {
		return nil, err
	}

	return u.issueToken(user, u.cfg.AccessTokenTTL)
}

func (u *authUsecase) GuestLogin(ctx context.Context) (*AuthResult, error) {
	suffix, err := randomToken(8)
	if err != nil {
		return nil, err
	}

	password, err := randomToken(12)
	if err != nil {
		return nil, err
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		Name:         "Guest User",
		Email:        fmt.Sprintf("guest_%s@taskify.local", suffix),
		PasswordHash: passwordHash,
		Verified:     true,
		Role:         model.RoleGuest,
	})
	if err != nil {
		return nil, err
	}

	return u.issueToken(user, u.cfg.GuestTokenTTL)
}

func (u *authUsecase) GoogleLogin(ctx context.Context, token string) (*AuthResult, error) {
	profile, err := u.google.ResolveProfile(ctx, token)
	if err != nil {
		u.logger.Warn().Err(err).Msg("google token validation failed")
		return nil, ErrGoogleTokenInvalid
	}

	// Linkage rule: match by Google id first, then by email with a backfill
	// of the Google id and avatar, otherwise create a pre-verified account.
	user, err := u.userRepo.GetUserByGoogleID(ctx, profile.GoogleID)
	switch {
	case err == nil:
	case errors.Is(err, mongo.ErrNoDocuments):
		user, err = u.linkOrCreateGoogleUser(ctx, profile)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	user, err = u.stampLastLogin(ctx, user)
	if err != nil {
		return nil, err
	}

	return u.issueToken(user, u.cfg.AccessTokenTTL)
}

func (u *authUsecase) linkOrCreateGoogleUser(ctx context.Context, profile *provider.Profile) (*model.User, error) {
	existing, err := u.userRepo.GetUserByEmail(ctx, normalizeEmail(profile.Email))
	if err == nil {
		// Existing password-based account: attach the Google id without
		// touching its credentials.
		params := repository.UpdateUserParams{GoogleID: &profile.GoogleID}
		if existing.AvatarURL == "" && profile.AvatarURL != "" {
			params.AvatarURL = &profile.AvatarURL
		}
		return u.userRepo.UpdateUser(ctx, existing.ID, params)
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	// The userinfo fetch is best-effort, so the profile may arrive without a
	// display name. Fall back to the email local part rather than creating a
	// nameless account.
	name := profile.Name
	if name == "" {
		name, _, _ = strings.Cut(profile.Email, "@")
	}

	return u.userRepo.CreateUser(ctx, &model.User{
		Name:      name,
		Email:     normalizeEmail(profile.Email),
		GoogleID:  profile.GoogleID,
		AvatarURL: profile.AvatarURL,
		Verified:  true,
		Role:      model.RoleUser,
	})
}

func (u *authUsecase) ForgotPassword(ctx context.Context, email string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return err
	}

	resetToken, err := randomToken(u.cfg.VerificationByteLen)
	if err != nil {
		return err
	}

	digest := hashToken(resetToken)
	expiresAt := time.Now().Add(u.cfg.PasswordResetTTL)

	if _, err := u.userRepo.UpdateUser(ctx, user.ID, repository.UpdateUserParams{
		ResetTokenDigest:    &digest,
		ResetTokenExpiresAt: &expiresAt,
	}); err != nil {
		return err
	}

	// Unlike the verification email, sending the reset email is the whole
	// point of this operation: roll the token back and surface the failure.
	if err := u.notifier.SendPasswordReset(user.Email, resetToken); err != nil {
		u.logger.Error().Err(err).Str("email", user.Email).Msg("failed to send password reset email")

		if _, rollbackErr := u.userRepo.UpdateUser(ctx, user.ID, repository.UpdateUserParams{
			ClearResetToken: true,
		}); rollbackErr != nil {
			u.logger.Error().Err(rollbackErr).Msg("failed to roll back password reset token")
		}

		return ErrResetEmailFailed
	}

	return nil
}

func (u *authUsecase) ResetPassword(ctx context.Context, token, newPassword string) (*AuthResult, error) {
	user, err := u.userRepo.GetUserByResetToken(ctx, hashToken(token), time.Now())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrResetTokenInvalid
		}
		return nil, err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}

	user, err = u.userRepo.UpdateUser(ctx, user.ID, repository.UpdateUserParams{
		PasswordHash:    &passwordHash,
		ClearResetToken: true,
	})
	if err != nil {
		return nil, err
	}

	return u.issueToken(user, u.cfg.AccessTokenTTL)
}

func (u *authUsecase) ChangePassword(ctx context.Context, caller Identity, currentPassword, newPassword string) error {
	user, err := u.userRepo.GetUser(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return err
	}

	if ok, err := security.VerifyPassword(currentPassword, user.PasswordHash); err != nil {
		return err
	} else if !ok {
		return ErrWrongPassword
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	_, err = u.userRepo.UpdateUser(ctx, user.ID, repository.UpdateUserParams{
		PasswordHash: &passwordHash,
	})
	return err
}

func (u *authUsecase) stampLastLogin(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now()
	return u.userRepo.UpdateUser(ctx, user.ID, repository.UpdateUserParams{LastLoginAt: &now})
}

func (u *authUsecase) issueToken(user *model.User, ttl time.Duration) (*AuthResult, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID: user.ID.Hex(),
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    u.cfg.Issuer,
			Audience:  jwt.ClaimStrings{u.cfg.Issuer},
		},
	}

	token, err := u.jwtAuth.GenerateToken(claims, u.cfg.Secret)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// hashToken digests a reset token for storage so a leaked users collection
// does not yield usable reset links.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// randomToken generates a random hex token of n bytes.
func randomToken(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

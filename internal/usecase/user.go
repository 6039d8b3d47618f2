package usecase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/taskify-api/internal/apperror"
	"github.com/vasapolrittideah/taskify-api/internal/model"
	"github.com/vasapolrittideah/taskify-api/internal/repository"
)

// UserUsecase defines the interface for profile and user-administration use
// cases.
type UserUsecase interface {
	GetProfile(ctx context.Context, caller Identity) (*model.User, error)
	UpdateProfile(ctx context.Context, caller Identity, params UpdateProfileParams) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	SearchUsers(ctx context.Context, caller Identity, query string) ([]*model.User, error)
}

// UpdateProfileParams defines the optional parameters for a profile update.
type UpdateProfileParams struct {
	Name      *string
	Email     *string
	AvatarURL *string
}

var (
	ErrInvalidUserID   = apperror.New(apperror.InvalidID, "invalid user ID format")
	ErrSearchForbidden = apperror.New(apperror.Forbidden, "not authorized to search users")
)

type userUsecase struct {
	userRepo repository.UserRepository
}

func NewUserUsecase(userRepo repository.UserRepository) UserUsecase {
	return &userUsecase{userRepo: userRepo}
}

func (u *userUsecase) GetProfile(ctx context.Context, caller Identity) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

func (u *userUsecase) UpdateProfile(
	ctx context.Context,
	caller Identity,
	params UpdateProfileParams,
) (*model.User, error) {
	user, err := u.GetProfile(ctx, caller)
	if err != nil {
		return nil, err
	}

	repoParams := repository.UpdateUserParams{
		Name:      params.Name,
		AvatarURL: params.AvatarURL,
	}

	if params.Email != nil {
		email := normalizeEmail(*params.Email)
		if email != user.Email {
			if _, err := u.userRepo.GetUserByEmail(ctx, email); err == nil {
				return nil, ErrEmailTaken
			} else if !errors.Is(err, mongo.ErrNoDocuments) {
				return nil, err
			}
			repoParams.Email = &email
		}
	}

	if repoParams.Name == nil && repoParams.Email == nil && repoParams.AvatarURL == nil {
		return user, nil
	}

	updated, err := u.userRepo.UpdateUser(ctx, user.ID, repoParams)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return updated, nil
}

func (u *userUsecase) GetUser(ctx context.Context, id string) (*model.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidUserID
	}

	user, err := u.userRepo.GetUser(ctx, oid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// SearchUsers queries across all users and is therefore restricted to
// admins; the role check runs before any query executes.
func (u *userUsecase) SearchUsers(ctx context.Context, caller Identity, query string) ([]*model.User, error) {
	if caller.Role != model.RoleAdmin {
		return nil, ErrSearchForbidden
	}

	return u.userRepo.SearchUsers(ctx, query)
}

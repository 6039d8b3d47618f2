package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/taskify-api/internal/model"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUser(ctx context.Context, id bson.ObjectID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	GetUserByVerificationToken(ctx context.Context, token string) (*model.User, error)
	GetUserByResetToken(ctx context.Context, digest string, now time.Time) (*model.User, error)
	UpdateUser(ctx context.Context, id bson.ObjectID, params UpdateUserParams) (*model.User, error)
	SearchUsers(ctx context.Context, query string) ([]*model.User, error)
}

// UpdateUserParams defines the optional parameters for updating a user. Only
// the fields that are not nil will be updated; the Clear flags remove the
// corresponding token state.
type UpdateUserParams struct {
	Name         *string
	Email        *string
	PasswordHash *string
	GoogleID     *string
	AvatarURL    *string
	Verified     *bool
	LastLoginAt  *time.Time

	ResetTokenDigest       *string
	ResetTokenExpiresAt    *time.Time
	ClearVerificationToken bool
	ClearResetToken        bool
}

const userCollection = "users"

type userMongoRepository struct {
	db *mongo.Database
}

func NewUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) UserRepository {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user indexes")
	}

	return &userMongoRepository{db: db}
}

func (r *userMongoRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	result, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		user.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return user, nil
}

func (r *userMongoRepository) GetUser(ctx context.Context, id bson.ObjectID) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userMongoRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userMongoRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"google_id": googleID})
}

func (r *userMongoRepository) GetUserByVerificationToken(ctx context.Context, token string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"verification_token": token})
}

func (r *userMongoRepository) GetUserByResetToken(
	ctx context.Context,
	digest string,
	now time.Time,
) (*model.User, error) {
	return r.findOne(ctx, bson.M{
		"reset_token_digest":     digest,
		"reset_token_expires_at": bson.M{"$gt": now},
	})
}

func (r *userMongoRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	result := r.db.Collection(userCollection).FindOne(ctx, filter)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) UpdateUser(
	ctx context.Context,
	id bson.ObjectID,
	params UpdateUserParams,
) (*model.User, error) {
	setMap := bson.M{}
	if params.Name != nil {
		setMap["name"] = *params.Name
	}
	if params.Email != nil {
		setMap["email"] = *params.Email
	}
	if params.PasswordHash != nil {
		setMap["password_hash"] = *params.PasswordHash
	}
	if params.GoogleID != nil {
		setMap["google_id"] = *params.GoogleID
	}
	if params.AvatarURL != nil {
		setMap["avatar_url"] = *params.AvatarURL
	}
	if params.Verified != nil {
		setMap["verified"] = *params.Verified
	}
	if params.LastLoginAt != nil {
		setMap["last_login_at"] = *params.LastLoginAt
	}
	if params.ResetTokenDigest != nil {
		setMap["reset_token_digest"] = *params.ResetTokenDigest
	}
	if params.ResetTokenExpiresAt != nil {
		setMap["reset_token_expires_at"] = *params.ResetTokenExpiresAt
	}

	unsetMap := bson.M{}
	if params.ClearVerificationToken {
		unsetMap["verification_token"] = ""
	}
	if params.ClearResetToken {
		unsetMap["reset_token_digest"] = ""
		unsetMap["reset_token_expires_at"] = ""
	}

	if len(setMap) == 0 && len(unsetMap) == 0 {
		return nil, errors.New("no user fields to update")
	}

	setMap["updated_at"] = time.Now()

	update := bson.M{"$set": setMap}
	if len(unsetMap) > 0 {
		update["$unset"] = unsetMap
	}

	result := r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) SearchUsers(ctx context.Context, query string) ([]*model.User, error) {
	pattern := regexp.QuoteMeta(query)
	filter := bson.M{
		"$or": bson.A{
			bson.M{"name": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"email": bson.M{"$regex": pattern, "$options": "i"}},
		},
	}

	cursor, err := r.db.Collection(userCollection).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []*model.User{}
	for cursor.Next(ctx) {
		var user model.User
		if err := cursor.Decode(&user); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

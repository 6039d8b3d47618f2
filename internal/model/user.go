package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Role controls access to privileged endpoints.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleGuest Role = "guest"
)

// User represents an account. The password hash is absent for accounts that
// only ever signed in through an external provider; sensitive fields are
// excluded from JSON so responses never leak them.
type User struct {
	ID                  bson.ObjectID `bson:"_id,omitempty"                    json:"id"`
	Name                string        `bson:"name"                             json:"name"`
	Email               string        `bson:"email"                            json:"email"`
	PasswordHash        string        `bson:"password_hash,omitempty"          json:"-"`
	GoogleID            string        `bson:"google_id,omitempty"              json:"-"`
	AvatarURL           string        `bson:"avatar_url,omitempty"             json:"avatar_url,omitempty"`
	Verified            bool          `bson:"verified"                         json:"verified"`
	VerificationToken   string        `bson:"verification_token,omitempty"     json:"-"`
	ResetTokenDigest    string        `bson:"reset_token_digest,omitempty"     json:"-"`
	ResetTokenExpiresAt *time.Time    `bson:"reset_token_expires_at,omitempty" json:"-"`
	Role                Role          `bson:"role"                             json:"role"`
	LastLoginAt         *time.Time    `bson:"last_login_at,omitempty"          json:"last_login_at,omitempty"`
	CreatedAt           time.Time     `bson:"created_at"                       json:"created_at"`
	UpdatedAt           time.Time     `bson:"updated_at"                       json:"updated_at"`
}

// HasPassword reports whether password-based login is possible for this user.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// Package security provides password hashing built on argon2id.
package security

import (
	"github.com/matthewhartstonge/argon2"
)

// HashPassword hashes a plaintext password with the default argon2id
// parameters and returns the encoded form.
func HashPassword(password string) (string, error) {
	cfg := argon2.DefaultConfig()

	encoded, err := cfg.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}

// VerifyPassword reports whether password matches the encoded hash. It fails
// closed: an empty or malformed hash verifies as false rather than erroring,
// so accounts without a stored password can never pass a password login.
func VerifyPassword(password, encoded string) (bool, error) {
	if encoded == "" {
		return false, nil
	}

	ok, err := argon2.VerifyEncoded([]byte(password), []byte(encoded))
	if err != nil {
		return false, nil
	}

	return ok, nil
}

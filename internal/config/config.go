// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config holds the full service configuration.
type Config struct {
	Server ServerConfig
	Mongo  MongoConfig
	Token  TokenConfig
	Google GoogleConfig
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST"             envDefault:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT"             envDefault:"5000"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// MongoConfig holds document store settings.
type MongoConfig struct {
	URI      string `env:"MONGODB_URI"`
	Database string `env:"MONGODB_DATABASE" envDefault:"taskify"`
}

// TokenConfig holds bearer token settings. Guest accounts get a shorter
// lifetime than regular logins.
type TokenConfig struct {
	Secret              string        `env:"TOKEN_SECRET"`
	Issuer              string        `env:"TOKEN_ISSUER"                envDefault:"taskify-api"`
	AccessTokenTTL      time.Duration `env:"TOKEN_ACCESS_TTL"            envDefault:"720h"`
	GuestTokenTTL       time.Duration `env:"TOKEN_GUEST_TTL"             envDefault:"168h"`
	PasswordResetTTL    time.Duration `env:"TOKEN_PASSWORD_RESET_TTL"    envDefault:"30m"`
	VerificationByteLen int           `env:"TOKEN_VERIFICATION_BYTE_LEN" envDefault:"20"`
}

// GoogleConfig holds Google sign-in settings.
type GoogleConfig struct {
	ClientID string `env:"GOOGLE_CLIENT_ID"`
}

// New creates a Config instance from environment variables.
func New(logger *zerolog.Logger) *Config {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate configuration")
	}

	return &cfg
}

// validate checks if the configuration is valid.
func (c *Config) validate() error {
	if c.Mongo.URI == "" {
		return fmt.Errorf("missing MONGODB_URI environment variable")
	}
	if c.Token.Secret == "" {
		return fmt.Errorf("missing TOKEN_SECRET environment variable")
	}

	return nil
}

package mailer

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Mailer represents an email sender.
type Mailer struct {
	config *mailerConfig
	dialer *gomail.Dialer
}

// Email represents an email message.
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// NewMailer creates a new Mailer instance with the given configuration.
func NewMailer(logger *zerolog.Logger) *Mailer {
	cfg := newMailerConfig(logger)

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate Mailer configuration")
	}

	dialer := gomail.NewDialer(
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
	)

	return &Mailer{
		config: cfg,
		dialer: dialer,
	}
}

// Send sends a single email.
func (m *Mailer) Send(email Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.From)
	msg.SetHeader("To", email.To...)
	msg.SetHeader("Subject", email.Subject)

	if email.HTMLBody != "" {
		msg.SetBody("text/html", email.HTMLBody)
		if email.Body != "" {
			msg.AddAlternative("text/plain", email.Body)
		}
	} else {
		msg.SetBody("text/plain", email.Body)
	}

	return m.dialer.DialAndSend(msg)
}

// SendVerification sends the email-address verification message for a newly
// registered account.
func (m *Mailer) SendVerification(email, token string) error {
	verifyURL := fmt.Sprintf("%s/verify-email/%s", m.config.ClientURL, token)

	htmlBody := fmt.Sprintf(`
		<p>Welcome to Taskify!</p>
		<p>Thank you for registering. Please verify your email address by clicking the link below:</p>

		<p><a href="%s">%s</a></p>

		<p>This link will expire in 24 hours.</p>
		<p>If you didn't create an account, you can safely ignore this email.</p>

		<p>Best regards,</p>
		<p>The Taskify Team</p>
	`, verifyURL, verifyURL)

	return m.Send(Email{
		To:       []string{email},
		Subject:  "Verify Your Email Address",
		HTMLBody: htmlBody,
		Body:     fmt.Sprintf("Welcome to Taskify! Verify your email address: %s", verifyURL),
	})
}

// SendPasswordReset sends the password reset message.
func (m *Mailer) SendPasswordReset(email, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password/%s", m.config.ClientURL, token)

	htmlBody := fmt.Sprintf(`
		<p>Hi,</p>
		<p>We received a request to reset the password for your account.</p>
		<p>If you made this request, please click the link below to create a new password:</p>

		<p><a href="%s">%s</a></p>

		<p>This link will expire in 30 minutes for your security.</p>
		<p>If you did not request a password reset, you can safely ignore this email.</p>

		<p>Thank you,</p>
		<p>The Taskify Team</p>
	`, resetURL, resetURL)

	return m.Send(Email{
		To:       []string{email},
		Subject:  "Reset Your Taskify Password",
		HTMLBody: htmlBody,
		Body:     fmt.Sprintf("Reset your Taskify password: %s", resetURL),
	})
}

// mailerConfig holds SMTP configuration for sending emails.
type mailerConfig struct {
	Host      string `env:"SMTP_HOST"`
	Port      int    `env:"SMTP_PORT"`
	Username  string `env:"SMTP_USERNAME"`
	Password  string `env:"SMTP_PASSWORD"`
	From      string `env:"SMTP_FROM"`
	ClientURL string `env:"APP_CLIENT_URL"`
}

// newMailerConfig creates a mailerConfig instance from environment variables.
func newMailerConfig(logger *zerolog.Logger) *mailerConfig {
	cfg, err := env.ParseAs[mailerConfig]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	return &cfg
}

// validate checks if the Mailer configuration is valid.
func (c *mailerConfig) validate() error {
	if c.Host == "" {
		return fmt.Errorf("missing SMTP_HOST environment variable")
	}
	if c.Port == 0 {
		return fmt.Errorf("missing SMTP_PORT environment variable")
	}
	if c.Username == "" {
		return fmt.Errorf("missing SMTP_USERNAME environment variable")
	}
	if c.Password == "" {
		return fmt.Errorf("missing SMTP_PASSWORD environment variable")
	}
	if c.From == "" {
		return fmt.Errorf("missing SMTP_FROM environment variable")
	}
	if c.ClientURL == "" {
		return fmt.Errorf("missing APP_CLIENT_URL environment variable")
	}

	return nil
}

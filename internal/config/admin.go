package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ErrAdminDisabled is returned when no admin password hash is configured.
var ErrAdminDisabled = errors.New("ADMIN_PASSWORD_HASH is not set")

const (
	// DefaultSessionTTL is the lifetime of an operator session token.
	DefaultSessionTTL = 12 * time.Hour
	// SessionIssuer identifies tokens minted by the admin login.
	SessionIssuer = "favor-advisor"

	minSessionSecret = 32
	minSessionTTL    = 5 * time.Minute
	maxSessionTTL    = 7 * 24 * time.Hour
)

// AdminConfig guards exclusion-list updates: the operator password and the
// key that signs operator session tokens.
type AdminConfig struct {
	PasswordHash string
	Pepper       string // optional global secret appended before hashing

	SessionSecret string
	SessionTTL    time.Duration
}

// NewAdminConfig reads ADMIN_PASSWORD_HASH, PASSWORD_PEPPER, SESSION_SECRET
// and SESSION_TTL. It returns ErrAdminDisabled when no hash is set; a hash
// without a usable session secret is an error.
func NewAdminConfig() (*AdminConfig, error) {
	hash := os.Getenv("ADMIN_PASSWORD_HASH")
	if hash == "" {
		return nil, ErrAdminDisabled
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("invalid ADMIN_PASSWORD_HASH: %w", err)
	}

	cfg := &AdminConfig{
		PasswordHash:  hash,
		Pepper:        os.Getenv("PASSWORD_PEPPER"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionTTL:    DefaultSessionTTL,
	}
	if raw := os.Getenv("SESSION_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = ttl
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the session settings.
func (c *AdminConfig) Validate() error {
	if len(c.SessionSecret) < minSessionSecret {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSessionSecret)
	}
	if c.SessionTTL < minSessionTTL || c.SessionTTL > maxSessionTTL {
		return fmt.Errorf("SESSION_TTL must be between %s and %s, got %s", minSessionTTL, maxSessionTTL, c.SessionTTL)
	}
	return nil
}

// VerifyPassword reports whether pw matches the configured hash.
func (c *AdminConfig) VerifyPassword(pw string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(pw+c.Pepper))
	return err == nil
}

// HashPassword hashes pw (with optional pepper) for use as ADMIN_PASSWORD_HASH.
// cost must be between 10 and 14.
func HashPassword(pw, pepper string, cost int) (string, error) {
	if cost < 10 || cost > 14 {
		return "", fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", cost)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pw+pepper), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

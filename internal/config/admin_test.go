package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testSessionSecret = strings.Repeat("s", 32)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret", "", bcrypt.MinCost+6)
	require.NoError(t, err)
	assert.NotEqual(t, "secret", hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 10, cost)
}

func TestHashPassword_CostRange(t *testing.T) {
	for _, cost := range []int{9, 15} {
		_, err := HashPassword("secret", "", cost)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bcrypt cost out of range")
	}
}

func setAdminEnv(t *testing.T, hash, secret, ttl string) {
	t.Helper()
	t.Setenv("ADMIN_PASSWORD_HASH", hash)
	t.Setenv("PASSWORD_PEPPER", "pepper")
	t.Setenv("SESSION_SECRET", secret)
	t.Setenv("SESSION_TTL", ttl)
}

func TestNewAdminConfig(t *testing.T) {
	hash, err := HashPassword("secret", "pepper", 10)
	require.NoError(t, err)
	setAdminEnv(t, hash, testSessionSecret, "")

	cfg, err := NewAdminConfig()
	require.NoError(t, err)
	assert.True(t, cfg.VerifyPassword("secret"))
	assert.False(t, cfg.VerifyPassword("wrong"))
	assert.False(t, (&AdminConfig{PasswordHash: hash}).VerifyPassword("secret"), "pepper is required")
	assert.Equal(t, DefaultSessionTTL, cfg.SessionTTL)
}

func TestNewAdminConfig_SessionTTL(t *testing.T) {
	hash, err := HashPassword("secret", "pepper", 10)
	require.NoError(t, err)

	tests := []struct {
		ttl     string
		want    time.Duration
		wantErr string
	}{
		{ttl: "30m", want: 30 * time.Minute},
		{ttl: "168h", want: 168 * time.Hour},
		{ttl: "1m", wantErr: "SESSION_TTL must be between"},
		{ttl: "200h", wantErr: "SESSION_TTL must be between"},
		{ttl: "soon", wantErr: "invalid SESSION_TTL"},
	}
	for _, tt := range tests {
		t.Run(tt.ttl, func(t *testing.T) {
			setAdminEnv(t, hash, testSessionSecret, tt.ttl)
			cfg, err := NewAdminConfig()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.SessionTTL)
		})
	}
}

func TestNewAdminConfig_ShortSecret(t *testing.T) {
	hash, err := HashPassword("secret", "pepper", 10)
	require.NoError(t, err)
	setAdminEnv(t, hash, "short", "")

	_, err = NewAdminConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET must be at least 32 bytes")
}

func TestNewAdminConfig_Disabled(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD_HASH", "")

	_, err := NewAdminConfig()
	assert.ErrorIs(t, err, ErrAdminDisabled)
}

func TestNewAdminConfig_InvalidHash(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD_HASH", "plaintext")

	_, err := NewAdminConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ADMIN_PASSWORD_HASH")
}

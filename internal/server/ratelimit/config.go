package ratelimit

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds rate limiting configuration.
type Config struct {
	Enabled bool
	// Default applies to routes without a matching rule. Its Pattern is unused.
	Default         Rule
	Rules           []Rule
	CleanupInterval time.Duration
	// IdleTimeout is how long an unused client bucket is kept.
	IdleTimeout time.Duration
	// Exempt clients are never limited; Blocked clients are always refused.
	Exempt  map[string]bool
	Blocked map[string]bool
}

// DefaultConfig returns an enabled configuration with the built-in rules.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		Default:         Rule{Limit: 1000, Window: time.Minute},
		Rules:           DefaultRules(),
		CleanupInterval: 5 * time.Minute,
		IdleTimeout:     time.Hour,
		Exempt:          map[string]bool{},
		Blocked:         map[string]bool{},
	}
}

// LoadConfig builds the configuration from RATE_LIMIT_* environment
// variables on top of DefaultConfig. Unparseable values keep the default.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()
	env := envReader{}

	cfg.Enabled = env.bool("RATE_LIMIT_ENABLED", cfg.Enabled)
	cfg.Default.Limit = env.int("RATE_LIMIT_DEFAULT_LIMIT", cfg.Default.Limit)
	cfg.Default.Window = env.duration("RATE_LIMIT_DEFAULT_WINDOW", cfg.Default.Window)
	cfg.CleanupInterval = env.duration("RATE_LIMIT_CLEANUP_INTERVAL", cfg.CleanupInterval)
	cfg.IdleTimeout = env.duration("RATE_LIMIT_IDLE_TIMEOUT", cfg.IdleTimeout)
	cfg.Exempt = clientSet(os.Getenv("RATE_LIMIT_WHITELIST"))
	cfg.Blocked = clientSet(os.Getenv("RATE_LIMIT_BLACKLIST"))

	if raw := os.Getenv("RATE_LIMIT_RULES"); raw != "" {
		rules, err := ParseRules(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse RATE_LIMIT_RULES: %w", err)
		}
		// Overrides are matched first.
		cfg.Rules = append(rules, cfg.Rules...)
	}
	return cfg, nil
}

type envReader struct{}

func (envReader) int(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func (envReader) bool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func (envReader) duration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}

// clientSet parses a comma-separated list of client addresses.
func clientSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, client := range strings.Split(list, ",") {
		if client = strings.TrimSpace(client); client != "" {
			set[client] = true
		}
	}
	return set
}

// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/favor-advisor/internal/catalog"
	"github.com/jonathan/favor-advisor/internal/collation"
	"github.com/jonathan/favor-advisor/internal/db"
	"gopkg.in/yaml.v3"
)

// DefaultPort is the HTTP port used by serve when none is configured.
const DefaultPort = 8080

// Config is loaded from a JSON or YAML file. All fields are optional;
// missing values use defaults or CLI flags.
type Config struct {
	// Catalog source
	CatalogBaseURL string `json:"catalog_base_url,omitempty" yaml:"catalog_base_url,omitempty"` // Remote catalog root
	StudentsPath   string `json:"students_path,omitempty" yaml:"students_path,omitempty"`       // Local students document
	ItemsPath      string `json:"items_path,omitempty" yaml:"items_path,omitempty"`             // Local items document

	// Analysis
	Locale             string   `json:"locale,omitempty" yaml:"locale,omitempty"`                             // Collation locale for junk names
	JunkExclusions     []string `json:"junk_exclusions,omitempty" yaml:"junk_exclusions,omitempty"`           // SSR names kept out of greater junk
	JunkExclusionsFile string   `json:"junk_exclusions_file,omitempty" yaml:"junk_exclusions_file,omitempty"` // Watched file of exclusion names

	// Storage
	DatabaseURL     string `json:"database_url,omitempty" yaml:"database_url,omitempty"`           // PostgreSQL connection URL
	CatalogCacheTTL string `json:"catalog_cache_ttl,omitempty" yaml:"catalog_cache_ttl,omitempty"` // Duration such as "24h"

	// Behavior
	Port    int  `json:"port,omitempty" yaml:"port,omitempty"`
	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		CatalogBaseURL:  catalog.DefaultBaseURL,
		Locale:          collation.DefaultLocale,
		CatalogCacheTTL: db.DefaultCatalogCacheTTL.String(),
		Port:            DefaultPort,
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if isYAML(path) {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if (c.StudentsPath == "") != (c.ItemsPath == "") {
		return fmt.Errorf("config error: 'students_path' and 'items_path' must be set together")
	}
	for _, p := range []string{c.StudentsPath, c.ItemsPath, c.JunkExclusionsFile} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("config error: file not found: %s", p)
		}
	}

	if c.CatalogBaseURL != "" {
		u, err := url.Parse(c.CatalogBaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config error: 'catalog_base_url' must be an absolute http(s) URL")
		}
	}

	if c.Locale != "" {
		if _, err := collation.New(c.Locale); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}

	if _, err := c.CacheTTL(); err != nil {
		return err
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	return nil
}

// CacheTTL parses CatalogCacheTTL, returning the default TTL when unset.
func (c *Config) CacheTTL() (time.Duration, error) {
	if c.CatalogCacheTTL == "" {
		return db.DefaultCatalogCacheTTL, nil
	}
	d, err := time.ParseDuration(c.CatalogCacheTTL)
	if err != nil {
		return 0, fmt.Errorf("config error: invalid 'catalog_cache_ttl': %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config error: 'catalog_cache_ttl' must be non-negative")
	}
	return d, nil
}

// UsesLocalCatalog reports whether the catalog is read from files instead of the network.
func (c *Config) UsesLocalCatalog() bool {
	return c.StudentsPath != "" && c.ItemsPath != ""
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.CatalogBaseURL == "" {
		result.CatalogBaseURL = defaults.CatalogBaseURL
	}
	if result.StudentsPath == "" && result.ItemsPath == "" {
		result.StudentsPath = defaults.StudentsPath
		result.ItemsPath = defaults.ItemsPath
	}
	if result.Locale == "" {
		result.Locale = defaults.Locale
	}
	if result.JunkExclusionsFile == "" {
		result.JunkExclusionsFile = defaults.JunkExclusionsFile
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.CatalogCacheTTL == "" {
		result.CatalogCacheTTL = defaults.CatalogCacheTTL
	}

	// A nil list means unset; an explicit empty list disables exclusions.
	if result.JunkExclusions == nil {
		result.JunkExclusions = defaults.JunkExclusions
	}

	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

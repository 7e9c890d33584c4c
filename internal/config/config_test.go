package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"catalog_base_url": "https://example.com/",
		"locale": "ja",
		"junk_exclusions": ["美しい花束"],
		"catalog_cache_ttl": "6h",
		"port": 9090,
		"verbose": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://example.com/", cfg.CatalogBaseURL)
	assert.Equal(t, "ja", cfg.Locale)
	assert.Equal(t, []string{"美しい花束"}, cfg.JunkExclusions)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.Verbose)

	ttl, err := cfg.CacheTTL()
	require.NoError(t, err)
	assert.Equal(t, 6*time.Hour, ttl)
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
catalog_base_url: https://example.com/
students_path: students.json
items_path: items.json
junk_exclusions:
  - きらめきの花束
  - さわやかな花束
database_url: postgres://localhost/favor
verbose: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "students.json", cfg.StudentsPath)
	assert.Equal(t, "items.json", cfg.ItemsPath)
	assert.Equal(t, []string{"きらめきの花束", "さわやかな花束"}, cfg.JunkExclusions)
	assert.Equal(t, "postgres://localhost/favor", cfg.DatabaseURL)
	assert.True(t, cfg.UsesLocalCatalog())
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{ invalid json }`)

	cfg, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeFile(t, "config.yml", "port: [unterminated")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config YAML")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	existing := writeFile(t, "students.json", "{}")

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"empty config", Config{}, ""},
		{"defaults", Defaults(), ""},
		{"paired paths", Config{StudentsPath: existing, ItemsPath: existing}, ""},
		{"unpaired paths", Config{StudentsPath: existing}, "must be set together"},
		{"missing file", Config{StudentsPath: existing, ItemsPath: "/nonexistent/items.json"}, "file not found"},
		{"missing exclusions file", Config{JunkExclusionsFile: "/nonexistent/x.yaml"}, "file not found"},
		{"relative base url", Config{CatalogBaseURL: "schaledb.com"}, "absolute http(s) URL"},
		{"ftp base url", Config{CatalogBaseURL: "ftp://schaledb.com/"}, "absolute http(s) URL"},
		{"bad locale", Config{Locale: "not a locale!"}, "failed to parse locale"},
		{"bad ttl", Config{CatalogCacheTTL: "soon"}, "invalid 'catalog_cache_ttl'"},
		{"negative ttl", Config{CatalogCacheTTL: "-1h"}, "must be non-negative"},
		{"bad port", Config{Port: 70000}, "'port' must be between"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCacheTTL_Default(t *testing.T) {
	cfg := Config{}
	ttl, err := cfg.CacheTTL()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, ttl)
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{
		Locale: "en",
		Port:   9000,
	}

	merged := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, "en", merged.Locale, "explicit values win")
	assert.Equal(t, 9000, merged.Port)
	assert.Equal(t, "https://schaledb.com/", merged.CatalogBaseURL)
	assert.Equal(t, "24h0m0s", merged.CatalogCacheTTL)
	assert.Nil(t, merged.JunkExclusions)
}

func TestMergeWithDefaults_PathsMergeTogether(t *testing.T) {
	defaults := Config{StudentsPath: "s.json", ItemsPath: "i.json"}

	merged := (&Config{}).MergeWithDefaults(defaults)
	assert.Equal(t, "s.json", merged.StudentsPath)
	assert.Equal(t, "i.json", merged.ItemsPath)

	partial := (&Config{StudentsPath: "mine.json"}).MergeWithDefaults(defaults)
	assert.Equal(t, "mine.json", partial.StudentsPath)
	assert.Empty(t, partial.ItemsPath, "a half-configured pair is left for Validate to reject")
}

func TestMergeWithDefaults_EmptyExclusionListIsKept(t *testing.T) {
	cfg := Config{JunkExclusions: []string{}}
	merged := cfg.MergeWithDefaults(Config{JunkExclusions: []string{"x"}})
	assert.NotNil(t, merged.JunkExclusions)
	assert.Empty(t, merged.JunkExclusions)
}

func TestExclusionsFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclusions.yaml")
	require.NoError(t, WriteExclusionsFile(path, []string{"きらめきの花束", "美しい花束"}))

	names, err := LoadExclusionsFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"きらめきの花束", "美しい花束"}, names)
}

func TestLoadExclusionsFile_JSONAndEmpty(t *testing.T) {
	names, err := LoadExclusionsFile(writeFile(t, "x.json", `["a", "b"]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	names, err = LoadExclusionsFile(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.NotNil(t, names)
	assert.Empty(t, names)

	_, err = LoadExclusionsFile(writeFile(t, "bad.yaml", "key: value"))
	assert.Error(t, err)
}

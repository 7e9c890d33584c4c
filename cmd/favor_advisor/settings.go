package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/favor-advisor/internal/analysis"
	"github.com/jonathan/favor-advisor/internal/catalog"
	"github.com/jonathan/favor-advisor/internal/collation"
	"github.com/jonathan/favor-advisor/internal/config"
	"github.com/jonathan/favor-advisor/internal/db"
	"github.com/jonathan/favor-advisor/internal/fetch"
	"github.com/jonathan/favor-advisor/internal/observability"
)

// loadSettings merges the config file, defaults and persistent flags, in
// increasing precedence, and validates the result.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	cfg := &config.Config{}
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("students") || flags.Changed("items") {
		cfg.StudentsPath = studentsPath
		cfg.ItemsPath = itemsPath
	}
	if flags.Changed("base-url") {
		cfg.CatalogBaseURL = catalogBaseURL
	}
	if flags.Changed("locale") {
		cfg.Locale = locale
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = databaseURL
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if verbose {
		cfg.Verbose = true
	}

	merged := cfg.MergeWithDefaults(config.Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// newLogger builds the process logger for cfg.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := observability.NewLogger(cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// newCollator returns the collator for the configured locale.
func newCollator(cfg *config.Config) (*collation.Collator, error) {
	collator, err := collation.New(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("failed to create collator: %w", err)
	}
	return collator, nil
}

// openDatabase connects and migrates when a database URL is configured.
// It returns nil without error when none is.
func openDatabase(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return database, nil
}

// catalogFetcher returns a fetcher that reads through database snapshots when
// database is non-nil and the cache TTL is positive. refresh forces a download
// but still records the new snapshot.
func catalogFetcher(cfg *config.Config, database *db.DB, logger *zap.Logger, refresh bool) (*fetch.SnapshotFetcher, error) {
	ttl, err := cfg.CacheTTL()
	if err != nil {
		return nil, err
	}

	var store fetch.SnapshotStore
	if database != nil && ttl > 0 {
		store = database
	}
	return fetch.NewSnapshotFetcher(fetch.NewClient(fetch.DefaultOptions()), store, &fetch.SnapshotConfig{
		TTL:        ttl,
		Refresh:    refresh,
		ServeStale: true,
		Logger:     logger,
	}), nil
}

// loadCatalog reads the catalog from local files or the configured remote source.
// It returns a description of the source for display.
func loadCatalog(ctx context.Context, cfg *config.Config, collator collation.Comparer, database *db.DB, logger *zap.Logger) (*catalog.Catalog, string, error) {
	if cfg.UsesLocalCatalog() {
		cat, err := catalog.Load(cfg.StudentsPath, cfg.ItemsPath, collator)
		if err != nil {
			return nil, "", err
		}
		return cat, cfg.StudentsPath + ", " + cfg.ItemsPath, nil
	}

	fetcher, err := catalogFetcher(cfg, database, logger, false)
	if err != nil {
		return nil, "", err
	}
	logger.Debug("fetching catalog", zap.String("base_url", cfg.CatalogBaseURL))
	cat, err := catalog.Fetch(ctx, fetcher, cfg.CatalogBaseURL, collator)
	if err != nil {
		return nil, "", err
	}
	return cat, cfg.CatalogBaseURL, nil
}

// exclusionNames resolves the junk exclusion list: the exclusions file wins,
// then the inline list, then the curated defaults.
func exclusionNames(cfg *config.Config) ([]string, error) {
	if cfg.JunkExclusionsFile != "" {
		return config.LoadExclusionsFile(cfg.JunkExclusionsFile)
	}
	if cfg.JunkExclusions != nil {
		return cfg.JunkExclusions, nil
	}
	return analysis.DefaultJunkExclusions(), nil
}

// app bundles what most commands need.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	collator *collation.Collator
	database *db.DB
}

// newApp loads settings and opens the optional database.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	collator, err := newCollator(cfg)
	if err != nil {
		return nil, err
	}
	database, err := openDatabase(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, collator: collator, database: database}, nil
}

// catalog loads the catalog using the app's settings.
func (a *app) catalog(ctx context.Context) (*catalog.Catalog, string, error) {
	return loadCatalog(ctx, a.cfg, a.collator, a.database, a.logger)
}

// Close releases the database and flushes the logger.
func (a *app) Close() {
	if a.database != nil {
		a.database.Close()
	}
	_ = a.logger.Sync()
}

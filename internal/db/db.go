// Package db provides PostgreSQL access for catalog snapshots and analysis runs.
package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Migrate creates the tables used by this package if they do not exist.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Catalog Snapshots
// -----------------------------------------------------------------------------

// GetCatalogSnapshot returns the stored snapshot for url regardless of age.
// Returns nil, nil when none exists.
func (db *DB) GetCatalogSnapshot(ctx context.Context, url string) (*CatalogSnapshot, error) {
	var snap CatalogSnapshot
	err := db.pool.QueryRow(ctx,
		`SELECT url, body, fetched_at FROM catalog_snapshots WHERE url = $1`,
		url,
	).Scan(&snap.URL, &snap.Body, &snap.FetchedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get catalog snapshot: %w", err)
	}
	return &snap, nil
}

// UpsertCatalogSnapshot stores or replaces the snapshot for its URL.
func (db *DB) UpsertCatalogSnapshot(ctx context.Context, snapshot *CatalogSnapshot) error {
	fetchedAt := snapshot.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO catalog_snapshots (url, body, fetched_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (url) DO UPDATE SET body = $2, fetched_at = $3`,
		snapshot.URL, snapshot.Body, fetchedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert catalog snapshot: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Analysis Runs
// -----------------------------------------------------------------------------

// CreateAnalysisRun stores an analysis result and returns the new run ID
func (db *DB) CreateAnalysisRun(ctx context.Context, characterIDs []string, result any) (uuid.UUID, error) {
	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal analysis result: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO analysis_runs (character_ids, result)
		 VALUES ($1, $2)
		 RETURNING id`,
		characterIDs, jsonBytes,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create analysis run: %w", err)
	}
	return id, nil
}

// GetAnalysisRun retrieves a run by ID. Returns nil, nil if not found.
func (db *DB) GetAnalysisRun(ctx context.Context, id uuid.UUID) (*AnalysisRun, error) {
	var run AnalysisRun
	err := db.pool.QueryRow(ctx,
		`SELECT id, character_ids, result, created_at FROM analysis_runs WHERE id = $1`,
		id,
	).Scan(&run.ID, &run.CharacterIDs, &run.Result, &run.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get analysis run: %w", err)
	}
	return &run, nil
}

// ListAnalysisRuns returns the most recent runs, newest first.
func (db *DB) ListAnalysisRuns(ctx context.Context, limit int) ([]AnalysisRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, character_ids, result, created_at FROM analysis_runs
		 ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list analysis runs: %w", err)
	}
	defer rows.Close()

	var runs []AnalysisRun
	for rows.Next() {
		var run AnalysisRun
		if err := rows.Scan(&run.ID, &run.CharacterIDs, &run.Result, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analysis runs: %w", err)
	}
	return runs, nil
}

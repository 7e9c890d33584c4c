package fetch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/favor-advisor/internal/db"
)

// Fetcher returns the body at a URL. *Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// SnapshotStore persists fetched catalog bodies keyed by URL. *db.DB implements it.
type SnapshotStore interface {
	GetCatalogSnapshot(ctx context.Context, url string) (*db.CatalogSnapshot, error)
	UpsertCatalogSnapshot(ctx context.Context, snapshot *db.CatalogSnapshot) error
}

// Source says where a snapshot body came from.
type Source string

const (
	SourceNetwork Source = "network"
	SourceStore   Source = "store"
	// SourceStale is an expired stored body served because the upstream failed.
	SourceStale Source = "stale"
)

// Snapshot is a fetched body and its provenance.
type Snapshot struct {
	Body      []byte
	FetchedAt time.Time
	Source    Source
}

// SnapshotConfig configures a SnapshotFetcher.
type SnapshotConfig struct {
	// TTL is how long a stored body is served without refetching.
	TTL time.Duration
	// Refresh always goes to the network first.
	Refresh bool
	// ServeStale falls back to an expired stored body when the upstream fails.
	ServeStale bool
	Logger     *zap.Logger
}

// DefaultSnapshotConfig returns a one-day TTL with stale fallback.
func DefaultSnapshotConfig() *SnapshotConfig {
	return &SnapshotConfig{TTL: db.DefaultCatalogCacheTTL, ServeStale: true}
}

// SnapshotFetcher reads through a SnapshotStore in front of an upstream Fetcher.
type SnapshotFetcher struct {
	upstream Fetcher
	store    SnapshotStore
	cfg      SnapshotConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewSnapshotFetcher wraps upstream. A nil store passes every call through.
func NewSnapshotFetcher(upstream Fetcher, store SnapshotStore, cfg *SnapshotConfig) *SnapshotFetcher {
	if cfg == nil {
		cfg = DefaultSnapshotConfig()
	}
	f := &SnapshotFetcher{upstream: upstream, store: store, cfg: *cfg, logger: cfg.Logger, now: time.Now}
	if f.cfg.TTL <= 0 {
		f.cfg.TTL = db.DefaultCatalogCacheTTL
	}
	if f.logger == nil {
		f.logger = zap.NewNop()
	}
	return f
}

// Get returns the body at url with its provenance.
func (f *SnapshotFetcher) Get(ctx context.Context, url string) (*Snapshot, error) {
	var stored *db.CatalogSnapshot
	if f.store != nil {
		var err error
		stored, err = f.store.GetCatalogSnapshot(ctx, url)
		if err != nil {
			// The store is an optimization; fall through to the network.
			f.logger.Warn("failed to read catalog snapshot", zap.String("url", url), zap.Error(err))
			stored = nil
		}
	}

	now := f.now()
	if stored != nil && !f.cfg.Refresh && stored.IsFresh(now, f.cfg.TTL) {
		return &Snapshot{Body: stored.Body, FetchedAt: stored.FetchedAt, Source: SourceStore}, nil
	}

	body, err := f.upstream.Fetch(ctx, url)
	if err != nil {
		if stored != nil && f.cfg.ServeStale {
			f.logger.Warn("serving stale catalog snapshot",
				zap.String("url", url),
				zap.Time("fetched_at", stored.FetchedAt),
				zap.Error(err),
			)
			return &Snapshot{Body: stored.Body, FetchedAt: stored.FetchedAt, Source: SourceStale}, nil
		}
		return nil, err
	}

	if f.store != nil {
		err := f.store.UpsertCatalogSnapshot(ctx, &db.CatalogSnapshot{URL: url, Body: body, FetchedAt: now})
		if err != nil {
			f.logger.Warn("failed to cache catalog snapshot", zap.String("url", url), zap.Error(err))
		}
	}
	return &Snapshot{Body: body, FetchedAt: now, Source: SourceNetwork}, nil
}

// Fetch returns the body at url. It implements Fetcher.
func (f *SnapshotFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	snap, err := f.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	return snap.Body, nil
}

package db

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCatalogCacheTTL is how long a catalog snapshot is served before refetching.
const DefaultCatalogCacheTTL = 24 * time.Hour

// CatalogSnapshot is a cached raw catalog document keyed by its source URL.
type CatalogSnapshot struct {
	URL       string    `json:"url"`
	Body      []byte    `json:"-"`
	FetchedAt time.Time `json:"fetched_at"`
}

// IsFresh reports whether the snapshot is younger than ttl at now.
func (s *CatalogSnapshot) IsFresh(now time.Time, ttl time.Duration) bool {
	if s == nil {
		return false
	}
	return now.Sub(s.FetchedAt) <= ttl
}

// AnalysisRun is a persisted analysis request and its result document.
type AnalysisRun struct {
	ID           uuid.UUID `json:"id"`
	CharacterIDs []string  `json:"character_ids"`
	Result       []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

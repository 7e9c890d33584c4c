package images

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Fetcher retrieves image bytes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// DefaultFetchTimeout bounds a shared download once it no longer follows the
// requesting caller's context.
const DefaultFetchTimeout = 30 * time.Second

// Cache is an in-memory image cache. Concurrent requests for the same URL
// share a single download. Failed downloads are not cached.
type Cache struct {
	fetcher Fetcher
	group   singleflight.Group
	timeout time.Duration

	mu      sync.RWMutex
	entries map[string][]byte
}

// NewCache creates a cache backed by fetcher.
func NewCache(fetcher Fetcher) *Cache {
	return &Cache{
		fetcher: fetcher,
		timeout: DefaultFetchTimeout,
		entries: make(map[string][]byte),
	}
}

// Get returns the image at url. A failed download yields nil so callers can
// render a placeholder; the next Get retries. The download is shared with
// concurrent callers and outlives ctx; ctx only bounds how long this caller waits.
func (c *Cache) Get(ctx context.Context, url string) []byte {
	if data, ok := c.lookup(url); ok {
		return data
	}

	ch := c.group.DoChan(url, func() (any, error) {
		if data, ok := c.lookup(url); ok {
			return data, nil
		}
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		data, err := c.fetcher.Fetch(fetchCtx, url)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[url] = data
		c.mu.Unlock()
		return data, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil
		}
		return res.Val.([]byte)
	case <-ctx.Done():
		return nil
	}
}

// Prefetch loads every url concurrently and returns how many succeeded.
func (c *Cache) Prefetch(ctx context.Context, urls []string) int {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for _, u := range urls {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			if c.Get(ctx, u) != nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}(u)
	}
	wg.Wait()
	return ok
}

// Len returns the number of cached images.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) lookup(url string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.entries[url]
	return data, ok
}

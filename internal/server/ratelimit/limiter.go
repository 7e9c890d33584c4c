// Package ratelimit limits requests per client and route with token buckets.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Info describes the outcome of a rate limit check.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

type bucket struct {
	limiter  *rate.Limiter
	capacity int
	lastUsed time.Time
}

func newBucket(rule *Rule) *bucket {
	window := rule.Window
	if window <= 0 {
		window = time.Minute
	}
	capacity := rule.Burst
	if capacity <= 0 {
		capacity = rule.Limit
	}
	perSecond := float64(rule.Limit) / window.Seconds()
	return &bucket{
		limiter:  rate.NewLimiter(rate.Limit(perSecond), capacity),
		capacity: capacity,
	}
}

// take spends one token at now and reports the bucket state afterwards.
func (b *bucket) take(now time.Time, limit int) Info {
	info := Info{Allowed: b.limiter.AllowN(now, 1), Limit: limit}

	tokens := max(b.limiter.TokensAt(now), 0)
	info.Remaining = int(tokens)

	perSecond := float64(b.limiter.Limit())
	info.ResetTime = now
	if missing := float64(b.capacity) - tokens; missing > 0 && perSecond > 0 {
		info.ResetTime = now.Add(secondsToDuration(missing / perSecond))
	}
	if !info.Allowed && perSecond > 0 {
		info.RetryAfter = secondsToDuration((1 - tokens) / perSecond)
	}
	return info
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Limiter tracks one bucket per client and rule.
type Limiter struct {
	config *Config

	mu      sync.Mutex
	buckets map[string]*bucket

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewLimiter creates a limiter. A nil config uses DefaultConfig. When enabled
// with a cleanup interval, idle buckets are evicted in the background until
// Stop is called.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = DefaultConfig()
	}
	l := &Limiter{
		config:  config,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if config.Enabled && config.CleanupInterval > 0 {
		go l.evictLoop(config.CleanupInterval)
	} else {
		close(l.done)
	}
	return l
}

// Allow spends one request for clientID against the rule matching method and path.
func (l *Limiter) Allow(clientID, method, path string) Info {
	return l.allowAt(clientID, method, path, time.Now())
}

func (l *Limiter) allowAt(clientID, method, path string, now time.Time) Info {
	if !l.config.Enabled || l.config.Exempt[clientID] {
		return Info{Allowed: true}
	}
	if l.config.Blocked[clientID] {
		return Info{}
	}

	rule, ok := MatchRule(method, path, l.config.Rules)
	key := clientID + " " + method + " " + path
	if ok {
		key = clientID + " " + rule.Pattern
	} else {
		rule = &l.config.Default
	}
	if rule.Limit <= 0 {
		return Info{Allowed: true}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		b = newBucket(rule)
		l.buckets[key] = b
	}
	b.lastUsed = now
	return b.take(now, rule.Limit)
}

func (l *Limiter) evictLoop(interval time.Duration) {
	defer close(l.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			l.evictIdle(now)
		case <-l.stop:
			return
		}
	}
}

// evictIdle drops buckets unused for longer than the idle timeout.
func (l *Limiter) evictIdle(now time.Time) int {
	idle := l.config.IdleTimeout
	if idle <= 0 {
		idle = time.Hour
	}
	cutoff := now.Add(-idle)

	l.mu.Lock()
	defer l.mu.Unlock()
	evicted := 0
	for key, b := range l.buckets {
		if b.lastUsed.Before(cutoff) {
			delete(l.buckets, key)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of tracked buckets.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Stop ends background eviction and waits for it to exit. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
	<-l.done
}

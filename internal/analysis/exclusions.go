package analysis

import (
	"slices"
	"sync"
)

// defaultJunkExclusions are SSR gifts that score 1 for everyone but are not
// junk: bouquets and the collaboration photo card.
var defaultJunkExclusions = []string{
	"きらめきの花束",
	"さわやかな花束",
	"美しい花束",
	"初音ミクのフォトカード",
}

// DefaultJunkExclusions returns a fresh copy of the curated exclusion names.
func DefaultJunkExclusions() []string {
	return slices.Clone(defaultJunkExclusions)
}

// ExclusionSet is an immutable set of gift names that never route to GreaterJunk.
type ExclusionSet struct {
	names map[string]struct{}
}

// NewExclusionSet builds a set from gift names. Empty names are ignored.
func NewExclusionSet(names ...string) ExclusionSet {
	set := ExclusionSet{names: make(map[string]struct{}, len(names))}
	for _, name := range names {
		if name == "" {
			continue
		}
		set.names[name] = struct{}{}
	}
	return set
}

// Contains reports whether name is excluded.
func (s ExclusionSet) Contains(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Len returns the number of excluded names.
func (s ExclusionSet) Len() int {
	return len(s.names)
}

// Names returns the excluded names in sorted order.
func (s ExclusionSet) Names() []string {
	names := make([]string, 0, len(s.names))
	for name := range s.names {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ExclusionStore holds the current exclusion set for long-running callers
// (HTTP server, file watcher). Each analysis takes a snapshot.
type ExclusionStore struct {
	mu  sync.RWMutex
	set ExclusionSet
}

// NewExclusionStore creates a store seeded with names.
func NewExclusionStore(names ...string) *ExclusionStore {
	return &ExclusionStore{set: NewExclusionSet(names...)}
}

// Snapshot returns the current set.
func (s *ExclusionStore) Snapshot() ExclusionSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set
}

// Replace swaps in a new set of names.
func (s *ExclusionStore) Replace(names []string) {
	set := NewExclusionSet(names...)
	s.mu.Lock()
	s.set = set
	s.mu.Unlock()
}

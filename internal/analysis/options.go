package analysis

import (
	"github.com/jonathan/favor-advisor/internal/collation"
)

// Options configures an analysis run.
type Options struct {
	// JunkExclusions lists SSR gift names never reported as greater junk.
	// The zero value selects the curated defaults; NewExclusionSet() with no
	// names disables exclusions.
	JunkExclusions ExclusionSet
	// Collator orders junk gift names.
	Collator collation.Comparer
}

// DefaultOptions returns the curated exclusion list and Japanese name ordering.
func DefaultOptions() *Options {
	return &Options{
		JunkExclusions: NewExclusionSet(defaultJunkExclusions...),
		Collator:       collation.Japanese(),
	}
}

// normalize fills unset fields from the defaults.
func (o *Options) normalize() *Options {
	if o == nil {
		return DefaultOptions()
	}
	out := *o
	if out.JunkExclusions.names == nil {
		out.JunkExclusions = NewExclusionSet(defaultJunkExclusions...)
	}
	if out.Collator == nil {
		out.Collator = collation.Japanese()
	}
	return &out
}

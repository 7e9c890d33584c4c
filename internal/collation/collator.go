// Package collation provides locale-aware string ordering for catalog names.
package collation

import (
	"fmt"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultLocale is the language of the game catalog.
const DefaultLocale = "ja"

// Comparer orders two strings, returning -1, 0 or +1.
type Comparer interface {
	Compare(a, b string) int
}

// Collator compares strings using the collation rules of a locale.
// A collate.Collator keeps internal buffers, so instances are pooled
// and Collator is safe for concurrent use.
type Collator struct {
	tag  language.Tag
	pool sync.Pool
}

// New returns a Collator for a BCP 47 locale such as "ja" or "en-US".
func New(locale string) (*Collator, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("failed to parse locale %q: %w", locale, err)
	}
	return ForTag(tag), nil
}

// ForTag returns a Collator for an already-parsed language tag.
func ForTag(tag language.Tag) *Collator {
	c := &Collator{tag: tag}
	c.pool.New = func() any {
		return collate.New(tag)
	}
	return c
}

// Japanese returns the collator used for catalog names by default.
func Japanese() *Collator {
	return ForTag(language.Japanese)
}

// Locale returns the tag the collator was built for.
func (c *Collator) Locale() language.Tag {
	return c.tag
}

// Compare orders a and b by the locale's collation rules. A prolonged sound
// mark weighs as the vowel it lengthens; strings equal under that rule fall
// back to their unexpanded comparison.
func (c *Collator) Compare(a, b string) int {
	col := c.pool.Get().(*collate.Collator)
	defer c.pool.Put(col)
	if n := col.CompareString(expandProlongedSounds(a), expandProlongedSounds(b)); n != 0 {
		return n
	}
	return col.CompareString(a, b)
}

// Less reports whether a sorts before b.
func (c *Collator) Less(a, b string) bool {
	return c.Compare(a, b) < 0
}

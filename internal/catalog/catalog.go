package catalog

import (
	"slices"

	"github.com/jonathan/favor-advisor/internal/collation"
	"github.com/jonathan/favor-advisor/internal/types"
)

// Catalog is an immutable, indexed view of characters and gifts.
// It is safe for concurrent reads.
type Catalog struct {
	characters []types.Character
	listing    []types.Character
	charIndex  map[string]int
	gifts      []types.Gift
	giftIndex  map[string]int
}

// New indexes characters and gifts. Document order is kept for gifts;
// the character listing is sorted by name with collator and de-duplicated by
// name, first occurrence winning. A nil collator uses Japanese ordering.
func New(characters []types.Character, gifts []types.Gift, collator collation.Comparer) *Catalog {
	if collator == nil {
		collator = collation.Japanese()
	}

	c := &Catalog{
		characters: slices.Clone(characters),
		charIndex:  make(map[string]int, len(characters)),
		gifts:      slices.Clone(gifts),
		giftIndex:  make(map[string]int, len(gifts)),
	}
	for i, ch := range c.characters {
		if _, ok := c.charIndex[ch.ID]; !ok {
			c.charIndex[ch.ID] = i
		}
	}
	for i, g := range c.gifts {
		if _, ok := c.giftIndex[g.ID]; !ok {
			c.giftIndex[g.ID] = i
		}
	}

	sorted := slices.Clone(c.characters)
	slices.SortStableFunc(sorted, func(a, b types.Character) int {
		return collator.Compare(a.Name, b.Name)
	})
	seen := make(map[string]struct{}, len(sorted))
	for _, ch := range sorted {
		if _, dup := seen[ch.Name]; dup {
			continue
		}
		seen[ch.Name] = struct{}{}
		c.listing = append(c.listing, ch)
	}

	return c
}

// Characters returns the selectable characters sorted by name.
func (c *Catalog) Characters() []types.Character {
	return slices.Clone(c.listing)
}

// Character looks up a character by ID.
func (c *Catalog) Character(id string) (*types.Character, bool) {
	i, ok := c.charIndex[id]
	if !ok {
		return nil, false
	}
	ch := c.characters[i]
	return &ch, true
}

// Gifts returns all Favor gifts in document order.
func (c *Catalog) Gifts() []types.Gift {
	return slices.Clone(c.gifts)
}

// Gift looks up a gift by ID.
func (c *Catalog) Gift(id string) (*types.Gift, bool) {
	i, ok := c.giftIndex[id]
	if !ok {
		return nil, false
	}
	g := c.gifts[i]
	return &g, true
}

// Select resolves ids to characters in the given order. Unknown ids are
// returned separately; repeated ids are selected once.
func (c *Catalog) Select(ids []string) (selected []types.Character, unknown []string) {
	picked := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := picked[id]; dup {
			continue
		}
		picked[id] = struct{}{}
		ch, ok := c.Character(id)
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		selected = append(selected, *ch)
	}
	return selected, unknown
}

// Len returns the number of indexed characters and gifts.
func (c *Catalog) Len() (characters, gifts int) {
	return len(c.characters), len(c.gifts)
}

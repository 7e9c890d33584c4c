// Package types provides type definitions for structured data used throughout the favor-advisor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Character is a collectible character that can receive gifts.
// Records are immutable once loaded from the catalog.
type Character struct {
	ID                  string   `json:"id" validate:"required"`
	Name                string   `json:"name" validate:"required"`
	PreferredTags       []string `json:"preferred_tags" validate:"required,min=1"`
	UniquePreferredTags []string `json:"unique_preferred_tags,omitempty"`
}

// Validate checks the minimal fields a character needs before it can be analyzed.
func (c *Character) Validate() error {
	return validate.Struct(c)
}

// AllTags returns the union of preferred and unique preferred tags.
// Duplicates collapse; nil slices are treated as empty.
func (c *Character) AllTags() map[string]struct{} {
	set := make(map[string]struct{}, len(c.PreferredTags)+len(c.UniquePreferredTags))
	for _, tag := range c.PreferredTags {
		set[tag] = struct{}{}
	}
	for _, tag := range c.UniquePreferredTags {
		set[tag] = struct{}{}
	}
	return set
}

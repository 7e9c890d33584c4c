// Package scoring computes the affinity multiplier a character earns from a gift.
package scoring

import (
	"github.com/jonathan/favor-advisor/internal/types"
)

// Multiplier bounds.
const (
	BaseMultiplier = 1
	MaxMultiplier  = 4
)

// ComputeMultiplier returns the affinity multiplier for giving gift to character.
// It counts the distinct gift tags found in the union of the character's
// preferred and unique preferred tags and maps the count onto 1..4.
func ComputeMultiplier(character *types.Character, gift *types.Gift) int {
	return MultiplierForMatches(countMatches(character.AllTags(), gift.Tags))
}

// MultiplierForMatches maps a distinct tag match count onto the multiplier step function.
func MultiplierForMatches(matches int) int {
	switch {
	case matches >= 3:
		return 4
	case matches == 2:
		return 3
	case matches == 1:
		return 2
	default:
		return BaseMultiplier
	}
}

// TagIndex caches a character's combined tag set so one character can be
// scored against many gifts without rebuilding the set.
type TagIndex struct {
	tags map[string]struct{}
}

// NewTagIndex builds the combined tag set for a character.
func NewTagIndex(character *types.Character) TagIndex {
	return TagIndex{tags: character.AllTags()}
}

// Multiplier scores a gift against the indexed character.
func (idx TagIndex) Multiplier(gift *types.Gift) int {
	return MultiplierForMatches(countMatches(idx.tags, gift.Tags))
}

// countMatches counts distinct gift tags present in the character tag set.
func countMatches(characterTags map[string]struct{}, giftTags []string) int {
	if len(characterTags) == 0 || len(giftTags) == 0 {
		return 0
	}

	seen := make(map[string]struct{}, len(giftTags))
	matches := 0
	for _, tag := range giftTags {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		if _, ok := characterTags[tag]; ok {
			matches++
		}
	}
	return matches
}

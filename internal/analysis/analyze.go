// Package analysis partitions gifts into exclusive, shared and junk sections
// for a selection of characters and ranks each section.
package analysis

import (
	"fmt"

	"github.com/jonathan/favor-advisor/internal/scoring"
	"github.com/jonathan/favor-advisor/internal/types"
)

// Section identifies where a gift was routed.
type Section int

const (
	SectionNone Section = iota
	SectionExclusive
	SectionShared
	SectionLesserJunk
	SectionGreaterJunk
)

func (s Section) String() string {
	switch s {
	case SectionExclusive:
		return "exclusive"
	case SectionShared:
		return "shared"
	case SectionLesserJunk:
		return "lesser_junk"
	case SectionGreaterJunk:
		return "greater_junk"
	}
	return "none"
}

// ScoreEntry is the score vector of one gift against every selected character.
type ScoreEntry struct {
	Gift *types.Gift
	// Multipliers maps character ID to multiplier.
	Multipliers      map[string]int
	MaxMultiplier    int
	CompetitionCount int
	// Achievers are the indexes of characters reaching MaxMultiplier, in input order.
	Achievers []int
}

// ScoreGift scores gift against every character, in input order.
func ScoreGift(indexes []scoring.TagIndex, characters []types.Character, gift *types.Gift) ScoreEntry {
	entry := ScoreEntry{
		Gift:          gift,
		Multipliers:   make(map[string]int, len(characters)),
		MaxMultiplier: scoring.BaseMultiplier,
	}

	scores := make([]int, len(characters))
	for i := range characters {
		m := indexes[i].Multiplier(gift)
		scores[i] = m
		entry.Multipliers[characters[i].ID] = m
		if m > entry.MaxMultiplier {
			entry.MaxMultiplier = m
		}
	}

	for i, m := range scores {
		if m == entry.MaxMultiplier {
			entry.Achievers = append(entry.Achievers, i)
		}
	}
	entry.CompetitionCount = len(entry.Achievers)

	return entry
}

// Route decides the section for a scored gift.
func Route(entry ScoreEntry, exclusions ExclusionSet) Section {
	switch {
	case entry.MaxMultiplier > scoring.BaseMultiplier && entry.CompetitionCount == 1:
		return SectionExclusive
	case entry.MaxMultiplier > scoring.BaseMultiplier && entry.CompetitionCount > 1:
		return SectionShared
	case entry.MaxMultiplier == scoring.BaseMultiplier && entry.Gift.Rarity == types.RaritySR:
		return SectionLesserJunk
	case entry.MaxMultiplier == scoring.BaseMultiplier && entry.Gift.Rarity == types.RaritySSR &&
		!exclusions.Contains(entry.Gift.Name):
		return SectionGreaterJunk
	}
	return SectionNone
}

// Analyze partitions gifts for the selected characters and ranks every section.
// It returns nil when either input is empty. A repeated character ID counts
// once, at its first position. Inputs are not modified.
func Analyze(characters []types.Character, gifts []types.Gift, opts *Options) *types.AnalysisResult {
	if len(characters) == 0 || len(gifts) == 0 {
		return nil
	}
	opts = opts.normalize()
	characters = distinctCharacters(characters)

	indexes := make([]scoring.TagIndex, len(characters))
	for i := range characters {
		indexes[i] = scoring.NewTagIndex(&characters[i])
	}

	exclusive := make([][]types.ScoredGift, len(characters))
	result := &types.AnalysisResult{
		Shared:      []types.SharedGift{},
		LesserJunk:  []types.Gift{},
		GreaterJunk: []types.Gift{},
	}

	for i := range gifts {
		gift := &gifts[i]
		entry := ScoreGift(indexes, characters, gift)

		switch Route(entry, opts.JunkExclusions) {
		case SectionExclusive:
			owner := soleAchiever(entry)
			exclusive[owner] = append(exclusive[owner], types.ScoredGift{
				Gift:       *gift,
				Multiplier: entry.MaxMultiplier,
			})
		case SectionShared:
			tied := make([]types.Character, 0, len(entry.Achievers))
			for _, idx := range entry.Achievers {
				tied = append(tied, characters[idx])
			}
			result.Shared = append(result.Shared, types.SharedGift{
				Gift:       *gift,
				Multiplier: entry.MaxMultiplier,
				Characters: tied,
			})
		case SectionLesserJunk:
			result.LesserJunk = append(result.LesserJunk, *gift)
		case SectionGreaterJunk:
			result.GreaterJunk = append(result.GreaterJunk, *gift)
		}
	}

	result.Exclusive = make([]types.ExclusiveGroup, 0, len(characters))
	for i, scored := range exclusive {
		if len(scored) == 0 {
			continue
		}
		result.Exclusive = append(result.Exclusive, types.ExclusiveGroup{
			Character: characters[i],
			Gifts:     scored,
		})
	}

	rank(result, opts.Collator)
	return result
}

// soleAchiever returns the only character index reaching the max multiplier.
func soleAchiever(entry ScoreEntry) int {
	if len(entry.Achievers) != 1 {
		panic(fmt.Sprintf("analysis: exclusive gift %q has %d achievers", entry.Gift.ID, len(entry.Achievers)))
	}
	return entry.Achievers[0]
}

// distinctCharacters drops characters whose ID already appeared. The input is
// returned as is when every ID is unique.
func distinctCharacters(characters []types.Character) []types.Character {
	seen := make(map[string]struct{}, len(characters))
	var out []types.Character
	for i := range characters {
		id := characters[i].ID
		if _, dup := seen[id]; dup {
			if out == nil {
				out = append(make([]types.Character, 0, len(characters)), characters[:i]...)
			}
			continue
		}
		seen[id] = struct{}{}
		if out != nil {
			out = append(out, characters[i])
		}
	}
	if out == nil {
		return characters
	}
	return out
}

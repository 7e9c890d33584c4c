package analysis

import (
	"cmp"
	"slices"

	"github.com/jonathan/favor-advisor/internal/collation"
	"github.com/jonathan/favor-advisor/internal/types"
)

// rank orders every section in place. Sorts are stable so equal keys keep
// catalog order.
func rank(result *types.AnalysisResult, collator collation.Comparer) {
	for i := range result.Exclusive {
		slices.SortStableFunc(result.Exclusive[i].Gifts, compareExclusive)
	}
	slices.SortStableFunc(result.Shared, compareShared)

	byName := func(a, b types.Gift) int {
		return collator.Compare(a.Name, b.Name)
	}
	slices.SortStableFunc(result.LesserJunk, byName)
	slices.SortStableFunc(result.GreaterJunk, byName)
}

// compareExclusive sorts by multiplier then rarity, both descending.
func compareExclusive(a, b types.ScoredGift) int {
	if c := cmp.Compare(b.Multiplier, a.Multiplier); c != 0 {
		return c
	}
	return cmp.Compare(b.Gift.Rarity, a.Gift.Rarity)
}

// compareShared sorts by multiplier, tied character count, then rarity, all descending.
func compareShared(a, b types.SharedGift) int {
	if c := cmp.Compare(b.Multiplier, a.Multiplier); c != 0 {
		return c
	}
	if c := cmp.Compare(len(b.Characters), len(a.Characters)); c != 0 {
		return c
	}
	return cmp.Compare(b.Gift.Rarity, a.Gift.Rarity)
}

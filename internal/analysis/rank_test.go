package analysis

import (
	"testing"

	"github.com/jonathan/favor-advisor/internal/collation"
	"github.com/jonathan/favor-advisor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func giftIDs(gifts []types.Gift) []string {
	ids := make([]string, len(gifts))
	for i, g := range gifts {
		ids[i] = g.ID
	}
	return ids
}

func TestRank_ExclusiveByMultiplierThenRarity(t *testing.T) {
	chars := []types.Character{
		{ID: "x", Name: "X", PreferredTags: []string{"a", "b", "c"}},
		{ID: "y", Name: "Y", PreferredTags: []string{"z"}},
	}
	gifts := []types.Gift{
		gift("r2", types.RarityR, "a"),
		gift("ssr2", types.RaritySSR, "a"),
		gift("n4", types.RarityN, "a", "b", "c"),
		gift("sr3", types.RaritySR, "a", "b"),
		gift("n2", types.RarityN, "b"),
	}

	result := Analyze(chars, gifts, nil)
	require.Len(t, result.Exclusive, 1)

	var ids []string
	for _, g := range result.Exclusive[0].Gifts {
		ids = append(ids, g.Gift.ID)
	}
	assert.Equal(t, []string{"n4", "sr3", "ssr2", "r2", "n2"}, ids)
}

func TestRank_SharedByMultiplierCountRarity(t *testing.T) {
	chars := []types.Character{
		{ID: "a", Name: "A", PreferredTags: []string{"t1", "t2"}},
		{ID: "b", Name: "B", PreferredTags: []string{"t1", "t2"}},
		{ID: "c", Name: "C", PreferredTags: []string{"t1"}},
	}
	gifts := []types.Gift{
		gift("two_way_x2_n", types.RarityN, "t2"),       // a,b at 2
		gift("three_way_x2_r", types.RarityR, "t1"),     // a,b,c at 2
		gift("two_way_x3_n", types.RarityN, "t1", "t2"), // a,b at 3
		gift("two_way_x2_ssr", types.RaritySSR, "t2"),   // a,b at 2
	}

	result := Analyze(chars, gifts, nil)

	var ids []string
	for _, s := range result.Shared {
		ids = append(ids, s.Gift.ID)
	}
	assert.Equal(t, []string{"two_way_x3_n", "three_way_x2_r", "two_way_x2_ssr", "two_way_x2_n"}, ids)
}

func TestRank_JunkByCollatedName(t *testing.T) {
	chars := []types.Character{{ID: "x", Name: "X", PreferredTags: []string{"none"}}}
	named := func(id, name string, r types.Rarity) types.Gift {
		g := gift(id, r)
		g.Name = name
		return g
	}
	gifts := []types.Gift{
		named("1", "zebra", types.RaritySR),
		named("2", "éclair", types.RaritySR),
		named("3", "apple", types.RaritySR),
		named("4", "さくら", types.RaritySSR),
		named("5", "あめ", types.RaritySSR),
	}

	result := Analyze(chars, gifts, nil)

	assert.Equal(t, []string{"3", "2", "1"}, giftIDs(result.LesserJunk))
	assert.Equal(t, []string{"5", "4"}, giftIDs(result.GreaterJunk))
}

type reverseComparer struct{}

func (reverseComparer) Compare(a, b string) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}

func TestRank_PluggableCollator(t *testing.T) {
	chars := []types.Character{{ID: "x", Name: "X", PreferredTags: []string{"none"}}}
	a := gift("a", types.RaritySR)
	a.Name = "a"
	b := gift("b", types.RaritySR)
	b.Name = "b"

	opts := &Options{Collator: reverseComparer{}}
	result := Analyze(chars, []types.Gift{a, b}, opts)

	assert.Equal(t, []string{"b", "a"}, giftIDs(result.LesserJunk))
}

func TestRank_StableForEqualKeys(t *testing.T) {
	chars := []types.Character{{ID: "x", Name: "X", PreferredTags: []string{"t"}}}
	gifts := []types.Gift{
		gift("first", types.RaritySR, "t"),
		gift("second", types.RaritySR, "t"),
		gift("third", types.RaritySR, "t"),
	}

	result := Analyze(chars, gifts, &Options{Collator: collation.Japanese()})

	var ids []string
	for _, g := range result.ExclusiveFor("x") {
		ids = append(ids, g.Gift.ID)
	}
	assert.Equal(t, []string{"first", "second", "third"}, ids)
}

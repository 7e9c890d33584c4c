package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jonathan/favor-advisor/internal/types"
	"github.com/stretchr/testify/assert"
)

func testGift(id, name string, rarity types.Rarity) types.Gift {
	return types.Gift{ID: id, Name: name, Rarity: rarity, Tags: []string{"t"}, Icon: "i"}
}

func TestPrintAnalysis(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	aru := types.Character{ID: "1", Name: "アル"}
	mutsuki := types.Character{ID: "2", Name: "ムツキ"}
	result := &types.AnalysisResult{
		Exclusive: []types.ExclusiveGroup{
			{Character: aru, Gifts: []types.ScoredGift{{Gift: testGift("10", "高級チョコ", types.RaritySSR), Multiplier: 4}}},
		},
		Shared: []types.SharedGift{
			{Gift: testGift("11", "ゲーム機", types.RaritySR), Multiplier: 3, Characters: []types.Character{aru, mutsuki}},
		},
		LesserJunk:  []types.Gift{testGift("12", "石", types.RaritySR)},
		GreaterJunk: []types.Gift{testGift("13", "王冠", types.RaritySSR)},
	}

	p.PrintAnalysis(result)
	output := buf.String()

	assert.Contains(t, output, "専用品")
	assert.Contains(t, output, "共通品")
	assert.Contains(t, output, "不用品")
	assert.Contains(t, output, "x4")
	assert.Contains(t, output, "[SSR] 高級チョコ")
	assert.Contains(t, output, "アル, ムツキ")
	assert.Contains(t, output, "─")
	assert.Less(t, strings.Index(output, "[SR] 石"), strings.Index(output, "[SSR] 王冠"))
}

func TestPrintAnalysis_OmitsEmptySections(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAnalysis(&types.AnalysisResult{
		LesserJunk: []types.Gift{testGift("12", "石", types.RaritySR)},
	})
	output := buf.String()

	assert.NotContains(t, output, "専用品")
	assert.NotContains(t, output, "共通品")
	assert.Contains(t, output, "不用品")
}

func TestPrintAnalysis_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAnalysis(nil)
	assert.Contains(t, buf.String(), "No gifts to recommend.")
}

func TestPrintCharacters_Limit(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	characters := []types.Character{
		{ID: "1", Name: "アル", PreferredTags: []string{"BC"}, UniquePreferredTags: []string{"F"}},
		{ID: "2", Name: "カヨコ", PreferredTags: []string{"ew"}},
		{ID: "3", Name: "ムツキ", PreferredTags: []string{"Cb"}},
	}

	p.PrintCharacters(characters, 2)
	output := buf.String()

	assert.Contains(t, output, "アル")
	assert.Contains(t, output, "BC | F")
	assert.NotContains(t, output, "ムツキ")
	assert.Contains(t, output, "... and 1 more")

	buf.Reset()
	p.PrintCharacters(characters, -1)
	assert.Contains(t, buf.String(), "ムツキ")
	assert.NotContains(t, buf.String(), "more")
}

func TestPrintGifts(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintGifts([]types.Gift{testGift("10", "高級チョコ", types.RaritySSR)}, 0)
	assert.Contains(t, buf.String(), "[SSR] 高級チョコ")
}

func TestPrintCatalogSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCatalogSummary("testdata", 4, 7)
	output := buf.String()

	assert.Contains(t, output, "CATALOG")
	assert.Contains(t, output, "Characters: 4")
	assert.Contains(t, output, "Gifts:      7")
}

func TestListBounds(t *testing.T) {
	tests := []struct {
		n, limit, count, more int
	}{
		{5, 0, 5, 0},
		{30, 0, maxItemsToShow, 30 - maxItemsToShow},
		{5, 2, 2, 3},
		{5, -1, 5, 0},
		{5, 10, 5, 0},
	}
	for _, tt := range tests {
		count, more := listBounds(tt.n, tt.limit)
		assert.Equal(t, tt.count, count)
		assert.Equal(t, tt.more, more)
	}
}

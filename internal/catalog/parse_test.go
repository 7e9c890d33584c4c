package catalog

import (
	"os"
	"testing"

	"github.com/jonathan/favor-advisor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readTestdata(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return data
}

func TestParseCharacters(t *testing.T) {
	characters, err := ParseCharacters(readTestdata(t, "students.json"))
	require.NoError(t, err)

	ids := make([]string, len(characters))
	for i, c := range characters {
		ids[i] = c.ID
	}
	// 10004 has no tags, 10005 has a zero ID, 10006 has no name.
	assert.Equal(t, []string{"10000", "10001", "10002", "10003"}, ids)

	assert.Equal(t, "アル", characters[0].Name)
	assert.Equal(t, []string{"BC", "Bf"}, characters[0].PreferredTags)
	assert.Equal(t, []string{"F"}, characters[0].UniquePreferredTags)
	assert.Empty(t, characters[2].UniquePreferredTags)
}

func TestParseGifts(t *testing.T) {
	gifts, err := ParseGifts(readTestdata(t, "items.json"))
	require.NoError(t, err)
	require.Len(t, gifts, 4)

	assert.Equal(t, "5000", gifts[0].ID)
	assert.Equal(t, types.RaritySSR, gifts[0].Rarity)
	assert.Equal(t, "item_icon_favor_ssr_1", gifts[0].Icon)

	assert.Equal(t, "5002", gifts[2].ID)
	assert.Equal(t, types.RarityN, gifts[2].Rarity, "missing rarity defaults to N")

	assert.Equal(t, "5006", gifts[3].ID)
}

func TestParseGifts_StringIDs(t *testing.T) {
	raw := []byte(`[{"Id":"a1","Category":"Favor","Name":"x","Rarity":"R","Tags":["t"],"Icon":"i"}]`)
	gifts, err := ParseGifts(raw)
	require.NoError(t, err)
	require.Len(t, gifts, 1)
	assert.Equal(t, "a1", gifts[0].ID)
}

func TestParse_InvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"10000":`},
		{"scalar", `42`},
		{"string", `"students"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCharacters([]byte(tt.raw))
			require.Error(t, err)
			var parseErr *ParseError
			assert.ErrorAs(t, err, &parseErr)
			assert.Equal(t, "students", parseErr.Source)

			_, err = ParseGifts([]byte(tt.raw))
			require.Error(t, err)
			assert.ErrorAs(t, err, &parseErr)
			assert.Equal(t, "items", parseErr.Source)
		})
	}
}

func TestParse_EmptyObject(t *testing.T) {
	characters, err := ParseCharacters([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, characters)
}

// Package catalog loads characters and Favor gifts from the game catalog.
package catalog

import (
	"fmt"

	"github.com/jonathan/favor-advisor/internal/types"
	"github.com/tidwall/gjson"
)

// FavorCategory is the item category that marks a gift.
const FavorCategory = "Favor"

// ParseError reports a catalog document that could not be read at all.
// Individual malformed records are skipped rather than reported.
type ParseError struct {
	Source  string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %s", e.Source, e.Message)
}

// ParseCharacters reads the students document, a JSON object keyed by
// character ID. Records missing an ID, a name or preferred tags are skipped.
func ParseCharacters(raw []byte) ([]types.Character, error) {
	root, err := parseRoot("students", raw)
	if err != nil {
		return nil, err
	}

	var characters []types.Character
	root.ForEach(func(_, v gjson.Result) bool {
		c := types.Character{
			ID:                  readID(v.Get("Id")),
			Name:                v.Get("Name").String(),
			PreferredTags:       readStrings(v.Get("FavorItemTags")),
			UniquePreferredTags: readStrings(v.Get("FavorItemUniqueTags")),
		}
		if c.Validate() != nil {
			return true
		}
		characters = append(characters, c)
		return true
	})
	return characters, nil
}

// ParseGifts reads the items document and keeps Favor-category items with an
// ID, a name, tags and an icon. A missing rarity defaults to N.
func ParseGifts(raw []byte) ([]types.Gift, error) {
	root, err := parseRoot("items", raw)
	if err != nil {
		return nil, err
	}

	var gifts []types.Gift
	root.ForEach(func(_, v gjson.Result) bool {
		if v.Get("Category").String() != FavorCategory {
			return true
		}
		g := types.Gift{
			ID:     readID(v.Get("Id")),
			Name:   v.Get("Name").String(),
			Rarity: types.ParseRarity(v.Get("Rarity").String()),
			Tags:   readStrings(v.Get("Tags")),
			Icon:   v.Get("Icon").String(),
		}
		if g.Rarity == types.RarityUnknown || g.Validate() != nil {
			return true
		}
		gifts = append(gifts, g)
		return true
	})
	return gifts, nil
}

func parseRoot(source string, raw []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, &ParseError{Source: source, Message: "invalid JSON"}
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() && !root.IsArray() {
		return gjson.Result{}, &ParseError{Source: source, Message: "expected an object or array of records"}
	}
	return root, nil
}

// readID returns the record ID as a string. Zero and empty IDs are missing.
func readID(v gjson.Result) string {
	switch v.Type {
	case gjson.Number:
		if v.Int() == 0 {
			return ""
		}
		return v.Raw
	case gjson.String:
		return v.String()
	}
	return ""
}

func readStrings(v gjson.Result) []string {
	if !v.Exists() || !v.IsArray() {
		return nil
	}
	arr := v.Array()
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s := item.String(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

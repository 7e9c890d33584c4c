package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Rarity is the quality tier of a gift. N < R < SR < SSR.
type Rarity int

const (
	// RarityUnknown is used for unrecognized tier strings and sorts below N.
	RarityUnknown Rarity = iota
	RarityN
	RarityR
	RaritySR
	RaritySSR
)

// ParseRarity converts a catalog tier string into a Rarity.
// An empty string yields RarityN, matching the catalog default.
func ParseRarity(s string) Rarity {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "N":
		return RarityN
	case "R":
		return RarityR
	case "SR":
		return RaritySR
	case "SSR":
		return RaritySSR
	}
	return RarityUnknown
}

// String returns the catalog spelling of the tier.
func (r Rarity) String() string {
	switch r {
	case RarityN:
		return "N"
	case RarityR:
		return "R"
	case RaritySR:
		return "SR"
	case RaritySSR:
		return "SSR"
	}
	return "UNKNOWN"
}

// MarshalJSON encodes the rarity as its catalog string.
func (r Rarity) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a catalog tier string.
func (r *Rarity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("rarity must be a string: %w", err)
	}
	*r = ParseRarity(s)
	return nil
}

// Gift is a Favor-category catalog item.
type Gift struct {
	ID     string   `json:"id" validate:"required"`
	Name   string   `json:"name" validate:"required"`
	Rarity Rarity   `json:"rarity"`
	Tags   []string `json:"tags" validate:"required,min=1"`
	Icon   string   `json:"icon" validate:"required"`
}

// Validate checks the minimal fields a gift needs before it can be analyzed.
func (g *Gift) Validate() error {
	return validate.Struct(g)
}

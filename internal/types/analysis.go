package types

// ScoredGift pairs a gift with the multiplier it earns.
type ScoredGift struct {
	Gift       Gift `json:"gift"`
	Multiplier int  `json:"multiplier"`
}

// ExclusiveGroup holds the gifts whose best multiplier only one character reaches.
type ExclusiveGroup struct {
	Character Character    `json:"character"`
	Gifts     []ScoredGift `json:"gifts"`
}

// SharedGift is a gift whose best multiplier is tied between two or more characters.
// Characters keep the order in which they were selected.
type SharedGift struct {
	Gift       Gift        `json:"gift"`
	Multiplier int         `json:"multiplier"`
	Characters []Character `json:"characters"`
}

// AnalysisResult is the partitioned and ranked output of one analysis run.
// A gift appears in at most one section.
type AnalysisResult struct {
	Exclusive   []ExclusiveGroup `json:"exclusive"`
	Shared      []SharedGift     `json:"shared"`
	LesserJunk  []Gift           `json:"lesser_junk"`
	GreaterJunk []Gift           `json:"greater_junk"`
}

// ExclusiveFor returns the exclusive gifts for a character, or nil if it has none.
func (r *AnalysisResult) ExclusiveFor(characterID string) []ScoredGift {
	for _, group := range r.Exclusive {
		if group.Character.ID == characterID {
			return group.Gifts
		}
	}
	return nil
}

// IsEmpty reports whether no section has any entry.
func (r *AnalysisResult) IsEmpty() bool {
	return len(r.Exclusive) == 0 && len(r.Shared) == 0 &&
		len(r.LesserJunk) == 0 && len(r.GreaterJunk) == 0
}

// GiftCount returns the number of gifts placed across all sections.
func (r *AnalysisResult) GiftCount() int {
	n := len(r.Shared) + len(r.LesserJunk) + len(r.GreaterJunk)
	for _, group := range r.Exclusive {
		n += len(group.Gifts)
	}
	return n
}

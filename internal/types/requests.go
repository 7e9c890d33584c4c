package types

import (
	"github.com/google/uuid"
)

// AnalyzeRequest selects the characters to analyze, in display order.
type AnalyzeRequest struct {
	CharacterIDs []string `json:"character_ids" validate:"required,min=1,dive,required"`
}

// Validate validates the AnalyzeRequest using the validator.
func (r *AnalyzeRequest) Validate() error {
	return validate.Struct(r)
}

// AnalyzeResponse is returned by the analyze endpoints.
// Result is nil when the catalog has no gifts.
type AnalyzeResponse struct {
	RunID             *uuid.UUID      `json:"run_id,omitempty"`
	Result            *AnalysisResult `json:"result"`
	UnknownCharacters []string        `json:"unknown_characters,omitempty"`
}

// AdminLoginRequest carries the operator password for exclusion-list updates.
type AdminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// Validate validates the AdminLoginRequest using the validator.
func (r *AdminLoginRequest) Validate() error {
	return validate.Struct(r)
}

// ExclusionsPayload lists gift names that are never reported as greater junk.
type ExclusionsPayload struct {
	Names []string `json:"names" validate:"dive,required"`
}

// Validate validates the ExclusionsPayload using the validator.
func (r *ExclusionsPayload) Validate() error {
	return validate.Struct(r)
}

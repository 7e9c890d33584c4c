package schemas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/favor-advisor/internal/types"
	rootschemas "github.com/jonathan/favor-advisor/schemas"
)

func validResult() *types.AnalysisResult {
	aru := types.Character{ID: "10000", Name: "アル", PreferredTags: []string{"BC"}}
	mutsuki := types.Character{ID: "10001", Name: "ムツキ", PreferredTags: []string{"BC"}}
	choco := types.Gift{ID: "5000", Name: "高級チョコ", Rarity: types.RaritySSR, Tags: []string{"BC"}, Icon: "choco"}
	stone := types.Gift{ID: "5001", Name: "石", Rarity: types.RaritySR, Tags: []string{"zz"}, Icon: "stone"}
	crown := types.Gift{ID: "5002", Name: "王冠", Rarity: types.RaritySSR, Tags: []string{"zz"}, Icon: "crown"}

	return &types.AnalysisResult{
		Exclusive: []types.ExclusiveGroup{
			{Character: aru, Gifts: []types.ScoredGift{{Gift: choco, Multiplier: 2}}},
		},
		Shared: []types.SharedGift{
			{Gift: choco, Multiplier: 2, Characters: []types.Character{aru, mutsuki}},
		},
		LesserJunk:  []types.Gift{stone},
		GreaterJunk: []types.Gift{crown},
	}
}

func TestValidateAnalysisResult_Valid(t *testing.T) {
	assert.NoError(t, ValidateAnalysisResult(validResult()))
}

func TestValidateAnalysisResult_EmptySections(t *testing.T) {
	result := &types.AnalysisResult{
		Exclusive:   []types.ExclusiveGroup{},
		Shared:      []types.SharedGift{},
		LesserJunk:  []types.Gift{},
		GreaterJunk: []types.Gift{},
	}
	assert.NoError(t, ValidateAnalysisResult(result))
}

func TestValidateAnalysisResult_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *types.AnalysisResult)
		field  string
	}{
		{"multiplier below 2", func(r *types.AnalysisResult) { r.Exclusive[0].Gifts[0].Multiplier = 1 }, "multiplier"},
		{"single shared character", func(r *types.AnalysisResult) { r.Shared[0].Characters = r.Shared[0].Characters[:1] }, "characters"},
		{"SSR in lesser junk", func(r *types.AnalysisResult) { r.LesserJunk[0].Rarity = types.RaritySSR }, "rarity"},
		{"null section", func(r *types.AnalysisResult) { r.GreaterJunk = nil }, "greater_junk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validResult()
			tt.mutate(result)

			err := ValidateAnalysisResult(result)
			require.Error(t, err)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.NotEmpty(t, validationErr.Violations)
			assert.Equal(t, rootschemas.AnalysisResult, validationErr.Schema)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidateAnalysisJSON(t *testing.T) {
	assert.NoError(t, ValidateAnalysisJSON([]byte(`{"exclusive":[],"shared":[],"lesser_junk":[],"greater_junk":[]}`)))

	err := ValidateAnalysisJSON([]byte(`{"exclusive":[]}`))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestValidateJSONBytes_UnknownSchema(t *testing.T) {
	err := ValidateJSONBytes("missing.schema.json", []byte(`{}`))
	require.Error(t, err)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "missing.schema.json", schemaErr.Schema)

	// The failure is remembered.
	assert.ErrorAs(t, ValidateJSONBytes("missing.schema.json", []byte(`{}`)), &schemaErr)
}

func TestValidateJSONBytes_MalformedDocument(t *testing.T) {
	err := ValidateJSONBytes("analysis_result.schema.json", []byte(`{not json`))
	assert.Error(t, err)
}

func TestValidateAnalysisFile(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.json")
	require.NoError(t, os.WriteFile(valid, []byte(`{"exclusive":[],"shared":[],"lesser_junk":[],"greater_junk":[]}`), 0644))
	assert.NoError(t, ValidateAnalysisFile(valid))

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"exclusive":[]}`), 0644))
	var validationErr *ValidationError
	assert.ErrorAs(t, ValidateAnalysisFile(invalid), &validationErr)

	err := ValidateAnalysisFile(filepath.Join(dir, "nonexistent.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Schema: "x.schema.json", Violations: []Violation{
		{Field: "(root)", Message: "exclusive is required"},
		{Field: "shared.0.multiplier", Message: "Must be greater than or equal to 2"},
	}}
	assert.Equal(t, "x.schema.json: 2 violation(s)\n  (root): exclusive is required\n  shared.0.multiplier: Must be greater than or equal to 2", err.Error())
}

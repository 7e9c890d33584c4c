package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/favor-advisor/internal/types"
)

func TestAnalyzeCommand_Table(t *testing.T) {
	stdout := requireRun(t, localCatalogArgs("analyze", "10000", "10001")...)

	assert.Contains(t, stdout, "専用品")
	assert.Contains(t, stdout, "x4")
	assert.Contains(t, stdout, "高級チョコ")
	assert.Contains(t, stdout, "ゲーム機")
	// The bouquet is excluded by default and the N plush toy is never junk.
	assert.NotContains(t, stdout, "不用品")
	assert.NotContains(t, stdout, "ぬいぐるみ")
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	stdout := requireRun(t, localCatalogArgs("analyze", "--json", "10001", "10000")...)

	var result types.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	require.Len(t, result.Exclusive, 2)
	// Groups follow selection order.
	assert.Equal(t, "10001", result.Exclusive[0].Character.ID)
	assert.Equal(t, "5001", result.Exclusive[0].Gifts[0].Gift.ID)
	assert.Equal(t, "10000", result.Exclusive[1].Character.ID)
	assert.Equal(t, 4, result.Exclusive[1].Gifts[0].Multiplier)
	assert.Empty(t, result.Shared)
	assert.Empty(t, result.GreaterJunk)
}

func TestAnalyzeCommand_UnknownCharacters(t *testing.T) {
	_, stderr, err := executeCommand(t, "", localCatalogArgs("analyze", "10000", "99999")...)
	require.NoError(t, err)
	assert.Contains(t, stderr, "unknown character IDs: 99999")

	_, _, err = executeCommand(t, "", localCatalogArgs("analyze", "88888", "99999")...)
	assert.ErrorContains(t, err, "none of the requested characters")
}

func TestAnalyzeCommand_RequiresCharacters(t *testing.T) {
	_, _, err := executeCommand(t, "", localCatalogArgs("analyze")...)
	assert.Error(t, err)
}

func TestAnalyzeCommand_StoreRequiresDatabase(t *testing.T) {
	_, _, err := executeCommand(t, "", localCatalogArgs("analyze", "--store", "10000")...)
	assert.ErrorContains(t, err, "--store requires a database URL")
}

func TestAnalyzeCommand_ExclusionsFromConfig(t *testing.T) {
	dir := t.TempDir()
	students, err := filepath.Abs(testStudents)
	require.NoError(t, err)
	items, err := filepath.Abs(testItems)
	require.NoError(t, err)

	exclusions := filepath.Join(dir, "exclusions.yaml")
	require.NoError(t, os.WriteFile(exclusions, []byte("- 美しい花束\n"), 0644))

	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(
		"students_path: "+students+"\n"+
			"items_path: "+items+"\n"+
			"junk_exclusions_file: "+exclusions+"\n"), 0644))

	stdout := requireRun(t, "analyze", "--config", configFile, "--json", "10000")

	var result types.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	require.Len(t, result.GreaterJunk, 1)
	assert.Equal(t, "きらめきの花束", result.GreaterJunk[0].Name)
}

func TestAnalyzeCommand_WritesFiles(t *testing.T) {
	dir := t.TempDir()
	resultFile := filepath.Join(dir, "out", "result.json")
	htmlFile := filepath.Join(dir, "out", "report.html")

	requireRun(t, localCatalogArgs("analyze", "--out", resultFile, "--html", htmlFile, "10000", "10001")...)

	data, err := os.ReadFile(resultFile)
	require.NoError(t, err)
	var result types.AnalysisResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Len(t, result.Exclusive, 2)

	html, err := os.ReadFile(htmlFile)
	require.NoError(t, err)
	assert.Contains(t, string(html), "results-grid")
	assert.Contains(t, string(html), "高級チョコ")

	stdout := requireRun(t, "validate", resultFile)
	assert.Contains(t, stdout, "Validation passed")
}

func TestExportCommand_FromFile(t *testing.T) {
	dir := t.TempDir()
	resultFile := filepath.Join(dir, "result.json")
	requireRun(t, localCatalogArgs("analyze", "--out", resultFile, "10000")...)

	htmlFile := filepath.Join(dir, "report.html")
	requireRun(t, "export", "--input", resultFile, "--html", htmlFile)

	html, err := os.ReadFile(htmlFile)
	require.NoError(t, err)
	assert.Contains(t, string(html), "高級チョコ")
}

func TestExportCommand_Errors(t *testing.T) {
	_, _, err := executeCommand(t, "", "export", "--html", "x.html")
	assert.ErrorContains(t, err, "exactly one of --input or --run-id")

	_, _, err = executeCommand(t, "", "export", "--input", "a.json", "--run-id", "b")
	assert.ErrorContains(t, err, "exactly one of --input or --run-id")

	_, _, err = executeCommand(t, "", "export", "--input", "a.json")
	assert.ErrorContains(t, err, "at least one of --html or --png")

	invalid := filepath.Join(t.TempDir(), "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"exclusive": []}`), 0644))
	_, _, err = executeCommand(t, "", "export", "--input", invalid, "--html", filepath.Join(t.TempDir(), "r.html"))
	assert.ErrorContains(t, err, "violation(s)")

	_, _, err = executeCommand(t, "", "export", "--run-id", "not-a-uuid", "--html", "x.html")
	assert.ErrorContains(t, err, "requires a database URL")
}

func TestValidateCommand_MissingFile(t *testing.T) {
	_, _, err := executeCommand(t, "", "validate", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "analysis file not found")
}

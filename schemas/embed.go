// Package schemas holds the JSON Schema documents for the artifacts this module writes.
package schemas

import "embed"

// AnalysisResult is the file name of the analysis output schema.
const AnalysisResult = "analysis_result.schema.json"

// FS contains every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS

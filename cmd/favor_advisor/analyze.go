package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/favor-advisor/internal/analysis"
	"github.com/jonathan/favor-advisor/internal/observability"
	"github.com/jonathan/favor-advisor/internal/schemas"
	"github.com/jonathan/favor-advisor/internal/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <character-id>...",
	Short: "Recommend gifts for the selected characters",
	Long: `Partitions every catalog gift into exclusive gifts (one character reaches the best multiplier),
shared gifts (several characters tie) and junk (nobody likes it), and prints the ranked result.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeJSON  bool
	analyzeOut   string
	analyzeHTML  string
	analyzePNG   string
	analyzeStore bool
)

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the result as JSON instead of a table")
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", "", "Write the result JSON to this file")
	analyzeCmd.Flags().StringVar(&analyzeHTML, "html", "", "Write an HTML report to this file")
	analyzeCmd.Flags().StringVar(&analyzePNG, "png", "", "Write a PNG export to this file or directory (requires Chrome)")
	analyzeCmd.Flags().BoolVar(&analyzeStore, "store", false, "Save the run to the database")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if analyzeStore && a.database == nil {
		return fmt.Errorf("--store requires a database URL (--db-url or DATABASE_URL)")
	}

	cat, _, err := a.catalog(ctx)
	if err != nil {
		return err
	}

	selected, unknown := cat.Select(args)
	if len(unknown) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: unknown character IDs: %s\n", strings.Join(unknown, ", "))
	}
	if len(selected) == 0 {
		return fmt.Errorf("none of the requested characters exist in the catalog")
	}

	names, err := exclusionNames(a.cfg)
	if err != nil {
		return err
	}

	result := analysis.Analyze(selected, cat.Gifts(), &analysis.Options{
		JunkExclusions: analysis.NewExclusionSet(names...),
		Collator:       a.collator,
	})
	if result == nil {
		return fmt.Errorf("catalog has no gifts")
	}
	if err := schemas.ValidateAnalysisResult(result); err != nil {
		return fmt.Errorf("analysis result failed validation: %w", err)
	}

	if analyzeStore {
		runID, err := a.database.CreateAnalysisRun(ctx, args, result)
		if err != nil {
			return fmt.Errorf("failed to store run: %w", err)
		}
		a.logger.Info("stored analysis run", zap.String("run_id", runID.String()))
		fmt.Fprintf(cmd.ErrOrStderr(), "Run ID: %s\n", runID)
	}

	if analyzeOut != "" {
		if err := writeJSONFile(analyzeOut, result); err != nil {
			return err
		}
	}
	if err := writeReports(cmd, a, result, analyzeHTML, analyzePNG); err != nil {
		return err
	}

	if analyzeJSON {
		return printJSON(cmd, result)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintAnalysis(result)
	return nil
}

// writeJSONFile writes v as indented JSON, creating parent directories.
func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// writeFile writes data, creating parent directories.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// readResultFile reads and schema-validates a saved analysis result.
func readResultFile(path string) (*types.AnalysisResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read result file: %w", err)
	}
	if err := schemas.ValidateAnalysisJSON(data); err != nil {
		return nil, err
	}
	return decodeResult(data)
}

// decodeResult unmarshals analysis result JSON.
func decodeResult(data []byte) (*types.AnalysisResult, error) {
	var result types.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result JSON: %w", err)
	}
	return &result, nil
}

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/favor-advisor/internal/fetch"
	"github.com/jonathan/favor-advisor/internal/images"
	"github.com/jonathan/favor-advisor/internal/rendering"
	"github.com/jonathan/favor-advisor/internal/schemas"
	"github.com/jonathan/favor-advisor/internal/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render a saved analysis as HTML or PNG",
	Long:  "Renders an analysis result, read from a JSON file or a stored run, as an HTML report and/or a PNG image of the results grid.",
	RunE:  runExport,
}

var (
	exportInput        string
	exportRunID        string
	exportHTML         string
	exportPNG          string
	exportInlineImages bool
	exportTimeout      time.Duration
)

func init() {
	exportCmd.Flags().StringVarP(&exportInput, "input", "i", "", "Analysis result JSON file")
	exportCmd.Flags().StringVar(&exportRunID, "run-id", "", "Stored run ID (requires a database)")
	exportCmd.Flags().StringVar(&exportHTML, "html", "", "Write an HTML report to this file")
	exportCmd.Flags().StringVar(&exportPNG, "png", "", "Write a PNG export to this file or directory (requires Chrome)")
	exportCmd.Flags().BoolVar(&exportInlineImages, "inline-images", false, "Download icons and embed them in the report")
	exportCmd.Flags().DurationVar(&exportTimeout, "timeout", 30*time.Second, "PNG rendering timeout")

	analyzeCmd.Flags().BoolVar(&exportInlineImages, "inline-images", false, "Download icons and embed them in reports")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	if (exportInput == "") == (exportRunID == "") {
		return fmt.Errorf("exactly one of --input or --run-id is required")
	}
	if exportHTML == "" && exportPNG == "" {
		return fmt.Errorf("at least one of --html or --png is required")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var result *types.AnalysisResult
	if exportInput != "" {
		result, err = readResultFile(exportInput)
		if err != nil {
			return err
		}
	} else {
		result, err = loadStoredResult(cmd, a)
		if err != nil {
			return err
		}
	}

	return writeReports(cmd, a, result, exportHTML, exportPNG)
}

// loadStoredResult reads the result of --run-id from the database.
func loadStoredResult(cmd *cobra.Command, a *app) (*types.AnalysisResult, error) {
	if a.database == nil {
		return nil, fmt.Errorf("--run-id requires a database URL (--db-url or DATABASE_URL)")
	}
	id, err := uuid.Parse(exportRunID)
	if err != nil {
		return nil, fmt.Errorf("invalid run-id: %w", err)
	}
	run, err := a.database.GetAnalysisRun(cmd.Context(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	if run == nil {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err := schemas.ValidateAnalysisJSON(run.Result); err != nil {
		return nil, err
	}
	return decodeResult(run.Result)
}

// reportOptions builds rendering options, with an image cache when icons are inlined.
func reportOptions(a *app) *rendering.ReportOptions {
	opts := &rendering.ReportOptions{URLs: images.NewURLBuilder(a.cfg.CatalogBaseURL)}
	if exportInlineImages {
		opts.Images = images.NewCache(fetch.NewClient(fetch.DefaultOptions()))
	}
	return opts
}

// writeReports writes the HTML and PNG renditions that were requested.
func writeReports(cmd *cobra.Command, a *app, result *types.AnalysisResult, htmlPath, pngPath string) error {
	if htmlPath == "" && pngPath == "" {
		return nil
	}
	ctx := cmd.Context()
	report := reportOptions(a)

	if htmlPath != "" {
		html, err := rendering.RenderHTML(ctx, result, report)
		if err != nil {
			return err
		}
		if err := writeFile(htmlPath, []byte(html)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "HTML report: %s\n", htmlPath)
	}

	if pngPath != "" {
		shot := rendering.DefaultScreenshotOptions()
		if exportTimeout > 0 {
			shot.Timeout = exportTimeout
		}
		shot.Logger = a.logger

		png, err := rendering.Export(ctx, result, report, shot)
		if err != nil {
			return err
		}
		if info, err := os.Stat(pngPath); err == nil && info.IsDir() {
			pngPath = filepath.Join(pngPath, rendering.ExportFileName(time.Now()))
		}
		if err := writeFile(pngPath, png); err != nil {
			return err
		}
		a.logger.Debug("exported PNG", zap.String("path", pngPath), zap.Int("bytes", len(png)))
		fmt.Fprintf(cmd.ErrOrStderr(), "PNG export: %s\n", pngPath)
	}
	return nil
}

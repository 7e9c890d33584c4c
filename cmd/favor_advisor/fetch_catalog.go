package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/favor-advisor/internal/catalog"
	"github.com/jonathan/favor-advisor/internal/observability"
)

var fetchCatalogCmd = &cobra.Command{
	Use:   "fetch-catalog",
	Short: "Download the catalog documents",
	Long: `Downloads the students and items documents from the remote catalog and writes them to a directory,
so later commands can run offline with --students and --items.`,
	Args: cobra.NoArgs,
	RunE: runFetchCatalog,
}

var (
	fetchCatalogOutDir  string
	fetchCatalogRefresh bool
)

func init() {
	fetchCatalogCmd.Flags().StringVarP(&fetchCatalogOutDir, "out-dir", "o", ".", "Directory for students.json and items.json")
	fetchCatalogCmd.Flags().BoolVar(&fetchCatalogRefresh, "refresh", false, "Bypass stored catalog snapshots")
	rootCmd.AddCommand(fetchCatalogCmd)
}

func runFetchCatalog(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	fetcher, err := catalogFetcher(a.cfg, a.database, a.logger, fetchCatalogRefresh)
	if err != nil {
		return err
	}

	raw, err := catalog.FetchRaw(cmd.Context(), fetcher, a.cfg.CatalogBaseURL)
	if err != nil {
		return err
	}

	// Parse before writing so a broken download never replaces good files.
	cat, err := catalog.FromBytes(raw.Students, raw.Items, a.collator)
	if err != nil {
		return err
	}

	studentsFile := filepath.Join(fetchCatalogOutDir, "students.json")
	itemsFile := filepath.Join(fetchCatalogOutDir, "items.json")
	if err := writeFile(studentsFile, raw.Students); err != nil {
		return err
	}
	if err := writeFile(itemsFile, raw.Items); err != nil {
		return err
	}

	characters, gifts := cat.Len()
	observability.NewPrinter(cmd.OutOrStdout()).PrintCatalogSummary(a.cfg.CatalogBaseURL, characters, gifts)
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s and %s\n", studentsFile, itemsFile)
	return nil
}

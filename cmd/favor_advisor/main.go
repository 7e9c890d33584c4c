// Package main provides the favor_advisor CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath     string
	verbose        bool
	studentsPath   string
	itemsPath      string
	catalogBaseURL string
	locale         string
	databaseURL    string
)

var rootCmd = &cobra.Command{
	Use:           "favor_advisor",
	Short:         "Gift recommendations for character affection",
	Long:          "favor_advisor sorts catalog gifts into exclusive, shared and junk groups for a set of characters, as a CLI or an HTTP API.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Path to a JSON or YAML config file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&studentsPath, "students", "", "Local students catalog document (requires --items)")
	flags.StringVar(&itemsPath, "items", "", "Local items catalog document (requires --students)")
	flags.StringVar(&catalogBaseURL, "base-url", "", "Remote catalog root URL")
	flags.StringVar(&locale, "locale", "", "Collation locale for junk gift names")
	flags.StringVar(&databaseURL, "db-url", "", "PostgreSQL URL for catalog snapshots and stored runs (default: $DATABASE_URL)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/favor-advisor/internal/observability"
	"github.com/jonathan/favor-advisor/internal/types"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored analysis runs",
	Args:  cobra.NoArgs,
	RunE:  runListRuns,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print a stored analysis run",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowRun,
}

var (
	runsLimit int
	runsJSON  bool
)

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Maximum runs to list")
	runsShowCmd.Flags().BoolVar(&runsJSON, "json", false, "Print the stored JSON instead of a table")

	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

// requireDatabase opens the app and fails when no database is configured.
func requireDatabase(cmd *cobra.Command) (*app, error) {
	a, err := newApp(cmd)
	if err != nil {
		return nil, err
	}
	if a.database == nil {
		a.Close()
		return nil, fmt.Errorf("a database URL is required (--db-url or DATABASE_URL)")
	}
	return a, nil
}

func runListRuns(cmd *cobra.Command, _ []string) error {
	a, err := requireDatabase(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	runs, err := a.database.ListAnalysisRuns(cmd.Context(), runsLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No stored runs.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tCHARACTERS")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", run.ID, run.CreatedAt.Local().Format(time.DateTime), len(run.CharacterIDs))
	}
	return tw.Flush()
}

func runShowRun(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid run-id: %w", err)
	}

	a, err := requireDatabase(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	run, err := a.database.GetAnalysisRun(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("run not found: %s", id)
	}

	result, err := decodeResult(run.Result)
	if err != nil {
		return err
	}
	if runsJSON {
		return printJSON(cmd, struct {
			ID           uuid.UUID             `json:"id"`
			CharacterIDs []string              `json:"character_ids"`
			CreatedAt    time.Time             `json:"created_at"`
			Result       *types.AnalysisResult `json:"result"`
		}{run.ID, run.CharacterIDs, run.CreatedAt, result})
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintAnalysis(result)
	return nil
}

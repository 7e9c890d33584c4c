package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/favor-advisor/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate <result.json>",
	Short: "Validate a saved analysis result against its JSON schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if err := schemas.ValidateAnalysisFile(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Validation passed: %s\n", args[0])
	return nil
}

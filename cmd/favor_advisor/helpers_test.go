package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

var (
	testStudents = filepath.Join("..", "..", "internal", "catalog", "testdata", "students.json")
	testItems    = filepath.Join("..", "..", "internal", "catalog", "testdata", "items.json")
)

// resetFlags restores every flag to its default so commands can run repeatedly in one process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// executeCommand runs the CLI in-process and captures its output.
func executeCommand(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")

	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err = rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// localCatalogArgs prefixes args with the test catalog documents.
func localCatalogArgs(args ...string) []string {
	return append([]string{args[0], "--students", testStudents, "--items", testItems}, args[1:]...)
}

func requireRun(t *testing.T, args ...string) string {
	t.Helper()
	stdout, stderr, err := executeCommand(t, "", args...)
	require.NoError(t, err, "stderr: %s", stderr)
	return stdout
}

package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-dose-monitor/internal/analyzer"
)

var importCmd = &cobra.Command{
	Use:   "import PATH...",
	Short: "Import intakes from JSONL exports",
	Long: `Import intake records from .jsonl files or directories holding them.

Records whose id already exists in the store are skipped, so importing the
same export twice is harmless. Lines that are not valid records are counted
and skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	a, err := analyzer.New(&analyzer.Config{
		Timezone:    settings.Timezone,
		Concurrency: runtime.NumCPU(),
	}, st, now)
	if err != nil {
		return err
	}
	stats, err := a.Import(cmd.Context(), args)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), stats.Summary())
	return nil
}

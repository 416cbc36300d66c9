package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var runsExportOut string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List and export archived analysis runs",
	RunE:  runRunsList,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsExportCmd = &cobra.Command{
	Use:   "export [run-id]",
	Short: "Re-write CSV reports for an archived run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsExport,
}

func init() {
	runsExportCmd.Flags().StringVar(&runsExportOut, "out", "", "output directory (default: configured output dir)")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsExportCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	if runArchive == nil {
		return errors.New("run archive not configured")
	}

	runs, err := runArchive.List(context.Background())
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	if len(runs) == 0 {
		cmd.Println("No archived runs.")
		return nil
	}

	for _, run := range runs {
		s := run.Summary
		cmd.Printf("%s  %s  %s\n", run.ID, s.StartedAt.Local().Format("2006-01-02 15:04"), s.Area)
		cmd.Printf("    plants=%d substations=%d likely=%d possible=%d\n",
			s.Plants, s.Substations, s.Likely, s.Possible)
	}
	return nil
}

func runRunsExport(cmd *cobra.Command, args []string) error {
	if runArchive == nil {
		return errors.New("run archive not configured")
	}
	if newReporter == nil {
		return errors.New("reporter not configured")
	}

	run, err := runArchive.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("loading run: %w", err)
	}

	dir := runsExportOut
	if dir == "" {
		dir = resolveOutDir()
	}

	if err := newReporter(dir).Write(run); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	cmd.Printf("Run %s exported to %s\n", run.ID, dir)
	return nil
}

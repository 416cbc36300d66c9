package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the environment is ready for analysis",
	Long: `Runs pre-flight checks: Overpass API reachability and output
directory writability. Exits non-zero if any check fails.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	failed := false

	cmd.Println("Checking Overpass API...")
	if err := checkOverpass(); err != nil {
		cmd.Printf("  FAIL: %v\n", err)
		failed = true
	} else {
		cmd.Println("  OK")
	}

	outDir := resolveOutDir()
	cmd.Printf("Checking output directory %s...\n", outDir)
	if err := checkWritable(outDir); err != nil {
		cmd.Printf("  FAIL: %v\n", err)
		failed = true
	} else {
		cmd.Println("  OK")
	}

	if failed {
		return errors.New("one or more checks failed")
	}
	cmd.Println("\nAll checks passed.")
	return nil
}

func checkOverpass() error {
	if extractorService == nil {
		return errors.New("extractor not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	return extractorService.Ping(ctx)
}

// checkWritable creates and removes a probe file in the output dir.
func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	probe := filepath.Join(dir, ".powergrid-doctor")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("writing probe file: %w", err)
	}
	return os.Remove(probe)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-radar/internal/artifact"
	"github.com/jonathan/job-radar/internal/diffing"
	"github.com/jonathan/job-radar/internal/report"
)

var diffCommand = &cobra.Command{
	Use:   "diff <baseline-run-id> <current-run-id>",
	Short: "Diff the canonical jobs of two recorded runs",
	Long:  "Compares the fingerprint maps of two recorded runs and prints the resulting diff (new, changed, removed, unchanged identity keys) as canonical JSON on stdout.",
	Args:  cobra.ExactArgs(2),
	RunE:  diffCmd,
}

var diffStoreDir string

func init() {
	diffCommand.Flags().StringVarP(&diffStoreDir, "store", "s", "artifacts", "Artifact store directory")

	rootCmd.AddCommand(diffCommand)
}

func diffCmd(_ *cobra.Command, args []string) error {
	baselineRunID, currentRunID := args[0], args[1]

	store, err := artifact.NewStore(diffStoreDir)
	if err != nil {
		return fmt.Errorf("failed to open artifact store: %w", err)
	}

	baselineJobs, err := store.ReadJobs(baselineRunID)
	if err != nil {
		return fmt.Errorf("failed to read baseline run %s: %w", baselineRunID, err)
	}
	currentJobs, err := store.ReadJobs(currentRunID)
	if err != nil {
		return fmt.Errorf("failed to read run %s: %w", currentRunID, err)
	}

	diff := diffing.Compute(diffing.FingerprintMap(currentJobs), diffing.FingerprintMap(baselineJobs))
	data, err := report.DiffBytes(diff)
	if err != nil {
		return fmt.Errorf("failed to serialize diff: %w", err)
	}

	_, err = os.Stdout.Write(append(data, '\n'))
	return err
}

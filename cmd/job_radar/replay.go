package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-radar/internal/artifact"
	"github.com/jonathan/job-radar/internal/replay"
)

var replayCommand = &cobra.Command{
	Use:   "replay",
	Short: "Verify a recorded run's hash chain",
	Long: `Re-parses the recorded artifacts of a run, re-serializes them canonically, re-hashes the results, and compares every hash to the values recorded in report.json.

A mismatch means the artifacts were altered after recording or the serialization changed. With --strict a mismatch also sets a non-zero exit code.`,
	RunE: replayCmd,
}

var (
	replayStoreDir string
	replayRunID    string
	replayStrict   bool
)

func init() {
	replayCommand.Flags().StringVarP(&replayStoreDir, "store", "s", "artifacts", "Artifact store directory")
	replayCommand.Flags().StringVarP(&replayRunID, "run", "r", "", "Run id to verify (required)")
	replayCommand.Flags().BoolVar(&replayStrict, "strict", false, "Exit non-zero when any hash mismatches")

	_ = replayCommand.MarkFlagRequired("run")

	rootCmd.AddCommand(replayCommand)
}

func replayCmd(_ *cobra.Command, _ []string) error {
	store, err := artifact.NewStore(replayStoreDir)
	if err != nil {
		return fmt.Errorf("failed to open artifact store: %w", err)
	}

	result, err := replay.Verify(store, replayRunID)
	if err != nil {
		return fmt.Errorf("replay of run %s failed: %w", replayRunID, err)
	}

	if result.OK() {
		fmt.Fprintf(os.Stdout, "Run %s verified: all recorded hashes match\n", result.RunID)
		return nil
	}

	fmt.Fprintf(os.Stdout, "Run %s has %d hash mismatch(es):\n", result.RunID, len(result.Findings))
	for _, f := range result.Findings {
		fmt.Fprintf(os.Stdout, "  %s\n    recorded:   %s\n    recomputed: %s\n", f.File, f.Recorded, f.Recomputed)
	}
	if replayStrict {
		return result.Err()
	}
	return nil
}

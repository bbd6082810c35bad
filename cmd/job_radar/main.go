// Package main provides the entry point for the job-radar pipeline CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "job_radar",
	Short: "Deterministic job posting pipeline",
	Long:  "job-radar normalizes raw job postings, assigns stable identities, scores them against a candidate profile, diffs the result against a baseline run, and records a replayable artifact set. Identical inputs always produce byte-identical artifacts.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/job-radar/internal/artifact"
	"github.com/jonathan/job-radar/internal/config"
	"github.com/jonathan/job-radar/internal/logger"
	"github.com/jonathan/job-radar/internal/observability"
	"github.com/jonathan/job-radar/internal/pipeline"
	"github.com/jonathan/job-radar/internal/schemas"
	"github.com/jonathan/job-radar/internal/semantic"
	"github.com/jonathan/job-radar/internal/semantic/gemini"
	"github.com/jonathan/job-radar/internal/types"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline on one raw record batch",
	Long: `Executes the pipeline end-to-end: normalize -> identity -> scoring -> diff -> report.

Artifacts are written under <store>/runs/<run-id>/; a failed run records only a run-health artifact. Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runPipelineCmd,
}

var (
	runInputPath   string
	runProfilePath string
	runConfigPath  string
	runStoreDir    string
	runBaseline    string
	runID          string
	runSemantic    bool
	runAPIKey      string
	runWorkers     int
	runVerbose     bool
	runJSONLogs    bool
	runDebug       bool
)

func init() {
	runCommand.Flags().StringVarP(&runInputPath, "input", "i", "", "Path to raw record batch JSON (required)")
	runCommand.Flags().StringVarP(&runProfilePath, "profile", "p", "", "Path to candidate profile JSON (required)")
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to pipeline config JSON (defaults applied for absent fields)")
	runCommand.Flags().StringVarP(&runStoreDir, "store", "s", "artifacts", "Artifact store directory")
	runCommand.Flags().StringVarP(&runBaseline, "baseline-run", "b", "", "Run id to diff against (empty means everything is new)")
	runCommand.Flags().StringVar(&runID, "run-id", "", "Run id for this execution (optional, generated if not provided)")
	runCommand.Flags().BoolVar(&runSemantic, "semantic", false, "Enable the bounded semantic scoring adjustment")
	runCommand.Flags().IntVar(&runWorkers, "workers", 0, "Per-record parallelism (0 means config value)")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print run summary and top ranked jobs")
	runCommand.Flags().BoolVar(&runJSONLogs, "json-logs", false, "Emit logs as JSON instead of console format")
	runCommand.Flags().BoolVar(&runDebug, "debug", false, "Enable debug logging")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	_ = runCommand.MarkFlagRequired("input")
	_ = runCommand.MarkFlagRequired("profile")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg := config.DefaultConfig()
	if runConfigPath != "" {
		loaded, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("semantic") {
		cfg.SemanticEnabled = runSemantic
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = runWorkers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	profile, err := config.LoadProfile(runProfilePath)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	records, err := loadBatch(runInputPath)
	if err != nil {
		return err
	}

	store, err := artifact.NewStore(runStoreDir)
	if err != nil {
		return fmt.Errorf("failed to open artifact store: %w", err)
	}

	log, err := logger.New(runJSONLogs, runDebug)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	id := runID
	if id == "" {
		id = uuid.NewString()
	}

	var source *semantic.Source
	if cfg.SemanticEnabled {
		s, closeProvider, err := buildSemanticSource(ctx, runStoreDir, profile)
		if err != nil {
			return err
		}
		defer closeProvider()
		source = s
	}

	result, err := pipeline.Run(ctx, pipeline.Options{
		RunID:         id,
		CreatedAt:     time.Now().UTC(),
		Records:       records,
		Profile:       profile,
		Config:        cfg,
		Store:         store,
		BaselineRunID: runBaseline,
		Semantic:      source,
		Logger:        log,
	})
	if err != nil {
		return fmt.Errorf("run %s failed: %w", id, err)
	}

	fmt.Fprintf(os.Stdout, "Run %s recorded under %s\n", id, store.RunDir(id))
	if runVerbose {
		printer := observability.NewPrinter(os.Stdout)
		printer.PrintRunSummary(&result.Artifact)
		printer.PrintTopRanked(result.Jobs, result.Scores)
	}
	return nil
}

// loadBatch reads a raw record batch file, validates it against the input
// schema, and decodes it.
func loadBatch(path string) ([]types.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if err := schemas.ValidateRawBatch(data); err != nil {
		return nil, fmt.Errorf("input rejected: %w", err)
	}
	var batch types.RawBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to decode input: %w", err)
	}
	records := batch.Records
	// Batch-level provider fills records that omit their own.
	for i := range records {
		if records[i].Provider == "" {
			records[i].Provider = batch.Provider
		}
	}
	return records, nil
}

func buildSemanticSource(ctx context.Context, storeDir string, profile *types.CandidateProfile) (*semantic.Source, func(), error) {
	apiKey := runAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, nil, fmt.Errorf("semantic scoring enabled but no API key: pass --api-key or set GEMINI_API_KEY")
	}

	provider, err := gemini.New(ctx, apiKey, profileQueryText(profile))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize similarity provider: %w", err)
	}
	cache, err := semantic.NewFileCache(filepath.Join(storeDir, "semantic-cache"))
	if err != nil {
		_ = provider.Close()
		return nil, nil, err
	}
	closeProvider := func() { _ = provider.Close() }
	return &semantic.Source{Cache: cache, Provider: provider}, closeProvider, nil
}

// profileQueryText flattens a candidate profile into the single text the
// similarity provider embeds on its side of every comparison.
func profileQueryText(p *types.CandidateProfile) string {
	parts := make([]string, 0, 4)
	if len(p.TargetRoles) > 0 {
		parts = append(parts, "Roles: "+strings.Join(p.TargetRoles, ", "))
	}
	if len(p.Skills) > 0 {
		names := make([]string, len(p.Skills))
		for i, s := range p.Skills {
			names[i] = s.Name
		}
		parts = append(parts, "Skills: "+strings.Join(names, ", "))
	}
	if len(p.Keywords) > 0 {
		parts = append(parts, "Keywords: "+strings.Join(p.Keywords, ", "))
	}
	if len(p.Locations) > 0 {
		parts = append(parts, "Locations: "+strings.Join(p.Locations, ", "))
	}
	return strings.Join(parts, "\n")
}

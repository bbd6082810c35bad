// Package pipeline provides the high-level orchestration for one job-radar
// run. Stages execute in strict sequence (normalize, identity, scoring,
// diff, report) because each stage's output is the next stage's complete
// input: the global sort-before-hash ordering needs the full record set.
// Artifacts are written only after every stage succeeds; a failed run
// records a run-health artifact and nothing else.
package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/job-radar/internal/artifact"
	"github.com/jonathan/job-radar/internal/config"
	"github.com/jonathan/job-radar/internal/diffing"
	"github.com/jonathan/job-radar/internal/identity"
	"github.com/jonathan/job-radar/internal/normalize"
	"github.com/jonathan/job-radar/internal/report"
	"github.com/jonathan/job-radar/internal/scoring"
	"github.com/jonathan/job-radar/internal/semantic"
	"github.com/jonathan/job-radar/internal/types"
)

// maxHealthErrorSamples bounds the per-record error list copied into a
// run-health record.
const maxHealthErrorSamples = 20

// Options holds everything one pipeline execution needs. All fields are
// read-only for the duration of the run.
type Options struct {
	RunID     string
	CreatedAt time.Time
	Records   []types.RawRecord
	Profile   *types.CandidateProfile
	Config    *config.Config
	Store     *artifact.Store
	// BaselineRunID is the baseline pointer supplied by the caller. Empty
	// means a baseline-less run (everything is new); a non-empty pointer
	// that cannot be resolved is fatal.
	BaselineRunID string
	// Semantic is the injected similarity source; ignored unless the
	// config enables the semantic path.
	Semantic *semantic.Source
	Logger   *zap.Logger
}

// RunResult is the in-memory outcome of a successful run, alongside the
// persisted artifact set.
type RunResult struct {
	Artifact   types.RunArtifact
	Jobs       []types.CanonicalJob
	Scores     []types.ScoreResult
	Diff       *types.DiffResult
	Duplicates []types.DuplicateDropped
}

// Run executes the full pipeline and persists its artifacts. On a stage
// failure it writes a run-health record naming the failed stage and failure
// codes, and returns the failure; no ranked output exists for a failed run.
func Run(ctx context.Context, opts Options) (*RunResult, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	result, err := execute(ctx, &opts, cfg, log)
	if err != nil {
		recordFailure(&opts, log, err)
		return nil, err
	}
	return result, nil
}

func execute(ctx context.Context, opts *Options, cfg *config.Config, log *zap.Logger) (*RunResult, error) {
	// Resolve the baseline first: an unresolvable explicit pointer must
	// fail the run before any work happens.
	var baseline *artifact.Baseline
	if opts.BaselineRunID != "" {
		var err error
		baseline, err = opts.Store.LoadBaseline(opts.BaselineRunID)
		if err != nil {
			return nil, err
		}
		log.Info("baseline loaded",
			zap.String("baseline_run_id", baseline.RunID),
			zap.Int("baseline_jobs", len(baseline.Fingerprints)))
	}

	normResult, err := normalize.Run(ctx, opts.Records, normalize.Options{
		MaxErrorRate: cfg.MaxNormalizationErrorRate,
		Workers:      cfg.Workers,
	})
	if err != nil {
		return nil, err
	}
	log.Info("normalized",
		zap.Int("input_records", len(opts.Records)),
		zap.Int("canonical_jobs", len(normResult.Jobs)),
		zap.Int("rejected", len(normResult.Errors)))

	idResult, err := identity.Assign(normResult.Jobs)
	if err != nil {
		return nil, err
	}
	if n := len(idResult.Duplicates); n > 0 {
		log.Info("duplicates dropped", zap.Int("count", n))
	}

	// First-seen provenance: carried from the baseline for known
	// identities, stamped with this run for new ones.
	for i := range idResult.Jobs {
		job := &idResult.Jobs[i]
		if baseline != nil {
			if firstSeen, ok := baseline.FirstSeen[job.IdentityKey]; ok {
				job.FirstSeenRunID = firstSeen
				continue
			}
		}
		job.FirstSeenRunID = opts.RunID
	}

	scoringOpts := scoring.Options{
		Weights:      cfg.Weights,
		MaxErrorRate: cfg.MaxScoringErrorRate,
		Workers:      cfg.Workers,
	}
	if cfg.SemanticEnabled && opts.Semantic != nil {
		src := *opts.Semantic
		if src.Timeout == 0 {
			src.Timeout = time.Duration(cfg.SemanticTimeoutMS) * time.Millisecond
		}
		scoringOpts.Semantic = &src
		scoringOpts.MaxSemanticDelta = cfg.MaxSemanticDelta
	}
	scoreResult, err := scoring.Run(ctx, idResult.Jobs, opts.Profile, scoringOpts)
	if err != nil {
		return nil, err
	}
	log.Info("scored",
		zap.Int("jobs", len(scoreResult.Scores)),
		zap.Int("errors", len(scoreResult.Errors)),
		zap.Int("semantic_misses", scoreResult.SemanticMisses))
	if scoreResult.SemanticMisses > 0 {
		log.Warn("semantic similarity unavailable for some jobs, scored with zero delta",
			zap.String("code", string(types.CodeSemanticUnavailable)),
			zap.Int("jobs", scoreResult.SemanticMisses))
	}

	var baselineFingerprints map[string]string
	if baseline != nil {
		baselineFingerprints = baseline.Fingerprints
	}
	diff := diffing.Compute(diffing.FingerprintMap(idResult.Jobs), baselineFingerprints)
	log.Info("diffed",
		zap.Int("new", len(diff.New)),
		zap.Int("changed", len(diff.Changed)),
		zap.Int("removed", len(diff.Removed)),
		zap.Int("unchanged", len(diff.Unchanged)))

	arts, err := report.Build(report.BuildInput{
		RunID:         opts.RunID,
		CreatedAt:     opts.CreatedAt,
		BaselineRunID: opts.BaselineRunID,
		RawRecords:    opts.Records,
		Jobs:          idResult.Jobs,
		Scores:        scoreResult.Scores,
		Diff:          diff,
		Counts: types.RunCounts{
			InputRecords:      len(opts.Records),
			RejectedRecords:   len(normResult.Errors),
			NormalizedJobs:    len(idResult.Jobs),
			DuplicatesDropped: len(idResult.Duplicates),
			ScoredJobs:        len(scoreResult.Scores),
			ScoringErrors:     len(scoreResult.Errors),
			SemanticMisses:    scoreResult.SemanticMisses,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := opts.Store.WriteRun(opts.RunID, arts.Files); err != nil {
		return nil, err
	}
	log.Info("run recorded", zap.String("run_id", opts.RunID), zap.String("dir", opts.Store.RunDir(opts.RunID)))

	return &RunResult{
		Artifact:   arts.Artifact,
		Jobs:       idResult.Jobs,
		Scores:     scoreResult.Scores,
		Diff:       diff,
		Duplicates: idResult.Duplicates,
	}, nil
}

// recordFailure writes a run-health artifact for a failed stage. A
// cancelled run writes nothing: the write-after-success discipline already
// makes cancellation safe, and re-running is the only resume path.
func recordFailure(opts *Options, log *zap.Logger, runErr error) {
	if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
		return
	}

	health := &types.RunHealth{
		RunID:       opts.RunID,
		CreatedAt:   opts.CreatedAt.UTC().Format(time.RFC3339),
		FailedStage: "pipeline",
	}
	var failure *types.StageFailure
	if errors.As(runErr, &failure) {
		health.FailedStage = failure.Stage
		health.FailureCodes = []string{string(failure.Code)}
		if failure.Cause != nil {
			health.Errors = sampleErrors(failure.Cause.Error())
		}
	} else {
		health.Errors = sampleErrors(runErr.Error())
	}

	data, err := report.HealthBytes(health)
	if err != nil {
		log.Error("failed to build run-health record", zap.Error(err))
		return
	}
	if err := opts.Store.WriteHealth(opts.RunID, data); err != nil {
		log.Error("failed to write run-health record", zap.Error(err))
		return
	}
	log.Warn("run failed",
		zap.String("run_id", opts.RunID),
		zap.String("stage", health.FailedStage),
		zap.Strings("failure_codes", health.FailureCodes))
}

func sampleErrors(messages ...string) []string {
	if len(messages) > maxHealthErrorSamples {
		messages = messages[:maxHealthErrorSamples]
	}
	return messages
}

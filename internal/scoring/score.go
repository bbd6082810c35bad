package scoring

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-radar/internal/canonical"
	"github.com/jonathan/job-radar/internal/semantic"
	"github.com/jonathan/job-radar/internal/types"
)

const (
	maxScoreCP = 10000 // 100.00 points

	// clampSignal is appended when the raw rule sum falls outside [0, 100]
	// so that signal contributions always sum exactly to the base score.
	clampSignal = "clamp_adjustment"
)

// Options configures one scoring pass.
type Options struct {
	Weights Weights
	// MaxSemanticDelta bounds the semantic adjustment in points.
	MaxSemanticDelta float64
	// Semantic is the injected similarity source; nil disables the
	// semantic path entirely.
	Semantic *semantic.Source
	// MaxErrorRate is the per-record scoring error ceiling.
	MaxErrorRate float64
	// Workers bounds per-record parallelism. Zero or negative means serial.
	Workers int
}

// Result is the scoring engine output, in the same stable order as the
// input jobs.
type Result struct {
	Scores []types.ScoreResult
	Errors []types.RecordError
	// SemanticMisses counts jobs scored with a zero delta because no
	// similarity was available. Misses are non-fatal by design.
	SemanticMisses int
}

// Run scores every identified job against the profile. Per-record scoring
// may run on worker goroutines; output order follows input order, so
// parallelism never shows in bytes.
func Run(ctx context.Context, jobs []types.CanonicalJob, profile *types.CandidateProfile, opts Options) (*Result, error) {
	scores := make([]*types.ScoreResult, len(jobs))
	recErrs := make([]*types.RecordError, len(jobs))
	misses := make([]bool, len(jobs))

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range jobs {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			score, miss, err := scoreJob(ctx, &jobs[i], profile, &opts)
			if err != nil {
				recErrs[i] = &types.RecordError{Ref: jobs[i].IdentityKey, Reason: err.Error()}
				return nil
			}
			scores[i] = score
			misses[i] = miss
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{}
	for i := range jobs {
		if recErrs[i] != nil {
			result.Errors = append(result.Errors, *recErrs[i])
			continue
		}
		result.Scores = append(result.Scores, *scores[i])
		if misses[i] {
			result.SemanticMisses++
		}
	}

	if len(jobs) > 0 {
		rate := float64(len(result.Errors)) / float64(len(jobs))
		if rate > opts.MaxErrorRate {
			return nil, &types.StageFailure{
				Stage: "scoring",
				Code:  types.CodeScoringError,
				Cause: fmt.Errorf("%d of %d records failed (rate %.2f exceeds ceiling %.2f)",
					len(result.Errors), len(jobs), rate, opts.MaxErrorRate),
			}
		}
	}

	return result, nil
}

// scoreJob evaluates every rule in fixed order, applies the bounded semantic
// adjustment, and assembles the score result. The boolean return reports a
// semantic miss (delta forced to zero).
func scoreJob(ctx context.Context, job *types.CanonicalJob, profile *types.CandidateProfile, opts *Options) (*types.ScoreResult, bool, error) {
	signals := make([]types.Signal, 0, len(rules)+1)
	var rawCP int64
	for _, r := range rules {
		cp := contributionCP(r.ratio(job, profile), r.weight(opts.Weights))
		rawCP += cp
		signals = append(signals, types.Signal{
			Name:         r.name,
			Contribution: types.FromCentipoints(cp),
		})
	}

	baseCP := clampCP(rawCP, 0, maxScoreCP)
	if baseCP != rawCP {
		signals = append(signals, types.Signal{
			Name:         clampSignal,
			Contribution: types.FromCentipoints(baseCP - rawCP),
		})
	}

	deltaCP, miss, err := semanticDeltaCP(ctx, job, opts)
	if err != nil {
		return nil, false, err
	}

	finalCP := clampCP(baseCP+deltaCP, 0, maxScoreCP)

	return &types.ScoreResult{
		IdentityKey:   job.IdentityKey,
		BaseScore:     types.FromCentipoints(baseCP),
		SemanticDelta: types.FromCentipoints(deltaCP),
		FinalScore:    types.FromCentipoints(finalCP),
		Band:          bandForCP(finalCP),
		Signals:       signals,
	}, miss, nil
}

// semanticDeltaCP resolves the bounded semantic adjustment for one job.
// Similarity 0.5 is neutral; 1.0 earns the full positive bound, 0.0 the full
// negative bound. Any unavailability yields a zero delta and a miss, never
// an error.
func semanticDeltaCP(ctx context.Context, job *types.CanonicalJob, opts *Options) (int64, bool, error) {
	if opts.Semantic == nil || opts.MaxSemanticDelta <= 0 {
		return 0, false, nil
	}

	hash, err := contentHash(job.NormalizedText)
	if err != nil {
		return 0, false, fmt.Errorf("content hash: %w", err)
	}

	sim, ok := opts.Semantic.Similarity(ctx, hash, job.NormalizedText)
	if !ok {
		return 0, true, nil
	}

	maxCP := types.Centipoints(opts.MaxSemanticDelta)
	deltaCP := types.Centipoints((2*sim - 1) * opts.MaxSemanticDelta)
	return clampCP(deltaCP, -maxCP, maxCP), false, nil
}

// contentHash addresses a job's normalized text for the semantic cache.
func contentHash(normalizedText string) (string, error) {
	return canonical.Hash(canonical.DomainContent, canonical.Object{
		"text": normalizedText,
	})
}

func clampCP(cp, lo, hi int64) int64 {
	if cp < lo {
		return lo
	}
	if cp > hi {
		return hi
	}
	return cp
}

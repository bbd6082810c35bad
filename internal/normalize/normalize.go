// Package normalize converts provider-supplied raw records into canonical
// jobs with stable field ordering and text canonicalization. The output is
// sorted by the stable sort key before any hashing downstream, so hash
// computation is independent of arrival order.
package normalize

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-radar/internal/types"
)

// Options configures one normalization pass.
type Options struct {
	// MaxErrorRate is the rejected-record ceiling as a fraction of input.
	// Above it the stage fails closed with NormalizationError.
	MaxErrorRate float64
	// Workers bounds per-record parallelism. Zero or negative means serial.
	Workers int
}

// Result is the normalizer output: canonical jobs in stable sort order plus
// the accumulated per-record rejections.
type Result struct {
	Jobs   []types.CanonicalJob
	Errors []types.RecordError
}

// Run normalizes a batch of raw records. Per-record work may run on worker
// goroutines, but results are re-sorted into canonical order afterwards so
// parallelism is never observable in output ordering or bytes.
//
// A record missing a required field (title or source URL) is rejected and
// counted, not fatal, unless the rejection rate exceeds Options.MaxErrorRate.
func Run(ctx context.Context, records []types.RawRecord, opts Options) (*Result, error) {
	jobs := make([]*types.CanonicalJob, len(records))
	recErrs := make([]*types.RecordError, len(records))

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range records {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			job, recErr := normalizeRecord(i, &records[i])
			jobs[i] = job
			recErrs[i] = recErr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{}
	for i := range records {
		if recErrs[i] != nil {
			result.Errors = append(result.Errors, *recErrs[i])
			continue
		}
		result.Jobs = append(result.Jobs, *jobs[i])
	}

	// Ordering must be fixed before fingerprinting.
	sort.Slice(result.Jobs, func(a, b int) bool {
		ka, kb := result.Jobs[a].SortKey(), result.Jobs[b].SortKey()
		for i := 0; i < len(ka); i++ {
			if ka[i] != kb[i] {
				return ka[i] < kb[i]
			}
		}
		return false
	})

	if len(records) > 0 {
		rate := float64(len(result.Errors)) / float64(len(records))
		if rate > opts.MaxErrorRate {
			return nil, &types.StageFailure{
				Stage: "normalize",
				Code:  types.CodeNormalizationError,
				Cause: fmt.Errorf("%d of %d records rejected (rate %.2f exceeds ceiling %.2f)",
					len(result.Errors), len(records), rate, opts.MaxErrorRate),
			}
		}
	}

	return result, nil
}

// normalizeRecord converts one raw record, returning either a canonical job
// or a per-record rejection. Identity and fingerprint fields are left empty;
// the identity engine owns those.
func normalizeRecord(index int, raw *types.RawRecord) (*types.CanonicalJob, *types.RecordError) {
	ref := raw.SourceURL
	if ref == "" {
		ref = fmt.Sprintf("record[%d]", index)
	}

	if CollapseWhitespace(raw.Title) == "" {
		return nil, &types.RecordError{Ref: ref, Reason: "missing required field: title"}
	}
	if CollapseWhitespace(raw.SourceURL) == "" {
		return nil, &types.RecordError{Ref: ref, Reason: "missing required field: source_url"}
	}
	if CollapseWhitespace(raw.Provider) == "" {
		return nil, &types.RecordError{Ref: ref, Reason: "missing required field: provider"}
	}

	text, err := StripMarkup(raw.Description)
	if err != nil {
		return nil, &types.RecordError{Ref: ref, Reason: err.Error()}
	}

	return &types.CanonicalJob{
		Provider:           CanonicalizeMatch(raw.Provider),
		ExternalID:         CollapseWhitespace(raw.ExternalID),
		Title:              CanonicalizeDisplay(raw.Title),
		Location:           CanonicalizeDisplay(raw.Location),
		NormalizedTitle:    CanonicalizeMatch(raw.Title),
		NormalizedLocation: CanonicalizeMatch(raw.Location),
		NormalizedText:     CanonicalizeMatch(text),
		SourceURL:          CollapseWhitespace(raw.SourceURL),
	}, nil
}

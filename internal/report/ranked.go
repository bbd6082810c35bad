package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"

	"github.com/jonathan/job-radar/internal/canonical"
	"github.com/jonathan/job-radar/internal/types"
)

// csvColumns is the fixed ranked CSV column order.
var csvColumns = []string{
	"identity_key", "provider", "title", "location", "source_url",
	"final_score", "band", "base_score", "semantic_delta",
}

// rankedEntry joins one job with its score for ranked emission.
type rankedEntry struct {
	job   *types.CanonicalJob
	score *types.ScoreResult
}

// rankedOrder joins jobs and scores and sorts by final score descending,
// identity key ascending as the tie-break.
func rankedOrder(jobs []types.CanonicalJob, scores []types.ScoreResult) ([]rankedEntry, error) {
	byKey := make(map[string]*types.CanonicalJob, len(jobs))
	for i := range jobs {
		byKey[jobs[i].IdentityKey] = &jobs[i]
	}

	entries := make([]rankedEntry, 0, len(scores))
	for i := range scores {
		job, ok := byKey[scores[i].IdentityKey]
		if !ok {
			return nil, fmt.Errorf("score for unknown identity key %s", scores[i].IdentityKey)
		}
		entries = append(entries, rankedEntry{job: job, score: &scores[i]})
	}

	sort.Slice(entries, func(a, b int) bool {
		sa := types.Centipoints(entries[a].score.FinalScore)
		sb := types.Centipoints(entries[b].score.FinalScore)
		if sa != sb {
			return sa > sb
		}
		return entries[a].score.IdentityKey < entries[b].score.IdentityKey
	})
	return entries, nil
}

// RankedBytes canonically serializes the ranked record list.
func RankedBytes(jobs []types.CanonicalJob, scores []types.ScoreResult) ([]byte, error) {
	entries, err := rankedOrder(jobs, scores)
	if err != nil {
		return nil, err
	}

	arr := make(canonical.Array, len(entries))
	for i, e := range entries {
		obj := jobObject(e.job)
		delete(obj, "normalized_text") // ranked output is a summary view
		obj["base_score"] = canonical.Decimal(types.Centipoints(e.score.BaseScore))
		obj["semantic_delta"] = canonical.Decimal(types.Centipoints(e.score.SemanticDelta))
		obj["final_score"] = canonical.Decimal(types.Centipoints(e.score.FinalScore))
		obj["band"] = e.score.Band
		signals := make(canonical.Array, len(e.score.Signals))
		for j, sig := range e.score.Signals {
			signals[j] = canonical.Object{
				"name":         sig.Name,
				"contribution": canonical.Decimal(types.Centipoints(sig.Contribution)),
			}
		}
		obj["signals"] = signals
		arr[i] = obj
	}
	return canonical.Marshal(arr)
}

// RankedCSVBytes renders the ranked list as CSV with fixed column order and
// LF line endings.
func RankedCSVBytes(jobs []types.CanonicalJob, scores []types.ScoreResult) ([]byte, error) {
	entries, err := rankedOrder(jobs, scores)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvColumns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		row := []string{
			e.job.IdentityKey,
			e.job.Provider,
			e.job.Title,
			e.job.Location,
			e.job.SourceURL,
			canonical.Decimal(types.Centipoints(e.score.FinalScore)).String(),
			e.score.Band,
			canonical.Decimal(types.Centipoints(e.score.BaseScore)).String(),
			canonical.Decimal(types.Centipoints(e.score.SemanticDelta)).String(),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Package report builds the deterministic artifact set for one pipeline
// run: recorded inputs, canonical jobs, scores, ranked output (JSON and
// CSV), diff summary, and the run report carrying content hashes and the
// replay hash chain. All payload bytes come from the canonical serializer;
// the run report itself is the hash container and is never content-hashed.
package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/jonathan/job-radar/internal/canonical"
	"github.com/jonathan/job-radar/internal/types"
)

// Artifact file names within a run directory.
const (
	FileRawRecords = "raw_records.json"
	FileJobs       = "jobs.json"
	FileScores     = "scores.json"
	FileRanked     = "ranked.json"
	FileRankedCSV  = "ranked.csv"
	FileDiff       = "diff.json"
	FileReport     = "report.json"
	FileHealth     = "health.json"
)

// Artifacts is the complete output of a successful run: payload bytes per
// file plus the run artifact describing them.
type Artifacts struct {
	Files    map[string][]byte
	Artifact types.RunArtifact
}

// BuildInput carries every stage output the builder aggregates.
type BuildInput struct {
	RunID         string
	CreatedAt     time.Time
	BaselineRunID string
	RawRecords    []types.RawRecord
	Jobs          []types.CanonicalJob
	Scores        []types.ScoreResult
	Diff          *types.DiffResult
	Counts        types.RunCounts
}

// Build assembles all artifacts and their hashes. It performs no I/O;
// writing is the artifact store's job, and only after the whole build
// succeeds.
func Build(in BuildInput) (*Artifacts, error) {
	files := make(map[string][]byte)

	rawBytes, err := RawRecordsBytes(in.RawRecords)
	if err != nil {
		return nil, fmt.Errorf("build raw records artifact: %w", err)
	}
	files[FileRawRecords] = rawBytes

	jobBytes, err := JobsBytes(in.Jobs)
	if err != nil {
		return nil, fmt.Errorf("build jobs artifact: %w", err)
	}
	files[FileJobs] = jobBytes

	scoreBytes, err := ScoresBytes(in.Scores)
	if err != nil {
		return nil, fmt.Errorf("build scores artifact: %w", err)
	}
	files[FileScores] = scoreBytes

	diffBytes, err := DiffBytes(in.Diff)
	if err != nil {
		return nil, fmt.Errorf("build diff artifact: %w", err)
	}
	files[FileDiff] = diffBytes

	rankedBytes, err := RankedBytes(in.Jobs, in.Scores)
	if err != nil {
		return nil, fmt.Errorf("build ranked artifact: %w", err)
	}
	files[FileRanked] = rankedBytes

	csvBytes, err := RankedCSVBytes(in.Jobs, in.Scores)
	if err != nil {
		return nil, fmt.Errorf("build ranked csv artifact: %w", err)
	}
	files[FileRankedCSV] = csvBytes

	outputHashes := make(map[string]string, len(files))
	for name, data := range files {
		outputHashes[name] = canonical.HashBytes(canonical.DomainArtifact, data)
	}

	artifact := types.RunArtifact{
		RunID:         in.RunID,
		CreatedAt:     in.CreatedAt.UTC().Format(time.RFC3339),
		BaselineRunID: in.BaselineRunID,
		Counts:        in.Counts,
		DiffCounts:    in.Diff.Counts(),
		Chain: types.HashChain{
			Input:      outputHashes[FileRawRecords],
			Normalized: outputHashes[FileJobs],
			Scored:     outputHashes[FileScores],
			Diff:       outputHashes[FileDiff],
		},
		OutputHashes: outputHashes,
	}

	reportBytes, err := json.MarshalIndent(&artifact, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("build run report: %w", err)
	}
	files[FileReport] = append(reportBytes, '\n')

	return &Artifacts{Files: files, Artifact: artifact}, nil
}

// HealthBytes renders the run-health record written in place of a run
// report when a stage fails.
func HealthBytes(health *types.RunHealth) ([]byte, error) {
	data, err := json.MarshalIndent(health, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("build run health record: %w", err)
	}
	return append(data, '\n'), nil
}

// RawRecordsBytes canonically serializes the recorded input batch. Records
// are sorted by (provider, external_id-or-title, source_url) first so the
// recorded input, and therefore the input hash, is independent of arrival
// order.
func RawRecordsBytes(records []types.RawRecord) ([]byte, error) {
	sorted := make([]types.RawRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(a, b int) bool {
		ka, kb := rawSortKey(&sorted[a]), rawSortKey(&sorted[b])
		for i := 0; i < len(ka); i++ {
			if ka[i] != kb[i] {
				return ka[i] < kb[i]
			}
		}
		return false
	})

	arr := make(canonical.Array, len(sorted))
	for i := range sorted {
		r := &sorted[i]
		obj := canonical.Object{
			"provider":   r.Provider,
			"title":      r.Title,
			"source_url": r.SourceURL,
		}
		if r.Location != "" {
			obj["location"] = r.Location
		}
		if r.Description != "" {
			obj["description"] = r.Description
		}
		if r.ExternalID != "" {
			obj["external_id"] = r.ExternalID
		}
		if r.FetchedAt != "" {
			obj["fetched_at"] = r.FetchedAt
		}
		arr[i] = obj
	}
	return canonical.Marshal(arr)
}

func rawSortKey(r *types.RawRecord) [3]string {
	second := r.ExternalID
	if second == "" {
		second = r.Title
	}
	return [3]string{r.Provider, second, r.SourceURL}
}

// JobsBytes canonically serializes the identified job set in its stable
// sort order.
func JobsBytes(jobs []types.CanonicalJob) ([]byte, error) {
	arr := make(canonical.Array, len(jobs))
	for i := range jobs {
		arr[i] = jobObject(&jobs[i])
	}
	return canonical.Marshal(arr)
}

func jobObject(j *types.CanonicalJob) canonical.Object {
	obj := canonical.Object{
		"identity_key":     j.IdentityKey,
		"fingerprint":      j.Fingerprint,
		"provider":         j.Provider,
		"title":            j.Title,
		"normalized_title": j.NormalizedTitle,
		"source_url":       j.SourceURL,
	}
	if j.ExternalID != "" {
		obj["external_id"] = j.ExternalID
	}
	if j.Location != "" {
		obj["location"] = j.Location
	}
	if j.NormalizedLocation != "" {
		obj["normalized_location"] = j.NormalizedLocation
	}
	if j.NormalizedText != "" {
		obj["normalized_text"] = j.NormalizedText
	}
	if j.FirstSeenRunID != "" {
		obj["first_seen_run_id"] = j.FirstSeenRunID
	}
	return obj
}

// ScoresBytes canonically serializes score results in job order. Scores are
// emitted as fixed two-decimal values.
func ScoresBytes(scores []types.ScoreResult) ([]byte, error) {
	arr := make(canonical.Array, len(scores))
	for i := range scores {
		arr[i] = scoreObject(&scores[i])
	}
	return canonical.Marshal(arr)
}

func scoreObject(s *types.ScoreResult) canonical.Object {
	signals := make(canonical.Array, len(s.Signals))
	for i, sig := range s.Signals {
		signals[i] = canonical.Object{
			"name":         sig.Name,
			"contribution": canonical.Decimal(types.Centipoints(sig.Contribution)),
		}
	}
	return canonical.Object{
		"identity_key":   s.IdentityKey,
		"base_score":     canonical.Decimal(types.Centipoints(s.BaseScore)),
		"semantic_delta": canonical.Decimal(types.Centipoints(s.SemanticDelta)),
		"final_score":    canonical.Decimal(types.Centipoints(s.FinalScore)),
		"band":           s.Band,
		"signals":        signals,
	}
}

// DiffBytes canonically serializes the diff partition; the engine already
// sorted each list.
func DiffBytes(diff *types.DiffResult) ([]byte, error) {
	return canonical.Marshal(canonical.Object{
		"new":       diff.New,
		"changed":   diff.Changed,
		"removed":   diff.Removed,
		"unchanged": diff.Unchanged,
	})
}

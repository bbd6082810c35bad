// Package replay verifies a recorded run without re-executing business
// logic: it re-parses the recorded stage payloads, re-serializes them
// through the canonical path, recomputes their hashes and compares against
// the RunArtifact. A mismatch is a reportable finding, not an error; the
// caller decides exit behavior. Replay never mutates a recorded run.
package replay

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/job-radar/internal/artifact"
	"github.com/jonathan/job-radar/internal/canonical"
	"github.com/jonathan/job-radar/internal/report"
	"github.com/jonathan/job-radar/internal/types"
)

// Finding is one hash mismatch between the recorded artifact and the
// recomputation.
type Finding struct {
	File       string `json:"file"`
	Recorded   string `json:"recorded"`
	Recomputed string `json:"recomputed"`
}

// Result is the outcome of verifying one run.
type Result struct {
	RunID    string    `json:"run_id"`
	Findings []Finding `json:"findings,omitempty"`
}

// OK reports whether every recomputed hash matched.
func (r *Result) OK() bool {
	return len(r.Findings) == 0
}

// Err returns the ReplayMismatch failure for a non-verifying result, nil
// otherwise. Strict callers turn this into a non-zero exit.
func (r *Result) Err() error {
	if r.OK() {
		return nil
	}
	return &types.StageFailure{
		Stage: "replay",
		Code:  types.CodeReplayMismatch,
		Cause: fmt.Errorf("run %s: %d artifact hash(es) differ from recorded values", r.RunID, len(r.Findings)),
	}
}

// Verify recomputes the hash chain and output hashes for a recorded run.
// The chain files are re-parsed and re-serialized canonically, proving the
// recorded payloads still produce the recorded bytes; the remaining
// artifacts are re-hashed from their recorded bytes.
func Verify(store *artifact.Store, runID string) (*Result, error) {
	recorded, err := store.ReadArtifact(runID)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", runID, err)
	}

	result := &Result{RunID: runID}

	chainChecks := []struct {
		file      string
		recorded  string
		recompute func([]byte) ([]byte, error)
	}{
		{report.FileRawRecords, recorded.Chain.Input, recomputeRawRecords},
		{report.FileJobs, recorded.Chain.Normalized, recomputeJobs},
		{report.FileScores, recorded.Chain.Scored, recomputeScores},
		{report.FileDiff, recorded.Chain.Diff, recomputeDiff},
	}

	for _, check := range chainChecks {
		data, err := store.ReadFile(runID, check.file)
		if err != nil {
			return nil, fmt.Errorf("replay %s: %w", runID, err)
		}
		rebuilt, err := check.recompute(data)
		if err != nil {
			return nil, fmt.Errorf("replay %s: recompute %s: %w", runID, check.file, err)
		}
		hash := canonical.HashBytes(canonical.DomainArtifact, rebuilt)
		if hash != check.recorded {
			result.Findings = append(result.Findings, Finding{
				File:       check.file,
				Recorded:   check.recorded,
				Recomputed: hash,
			})
		}
	}

	// Remaining output artifacts are verified from their recorded bytes.
	for _, file := range []string{report.FileRanked, report.FileRankedCSV} {
		want, ok := recorded.OutputHashes[file]
		if !ok {
			continue
		}
		data, err := store.ReadFile(runID, file)
		if err != nil {
			return nil, fmt.Errorf("replay %s: %w", runID, err)
		}
		hash := canonical.HashBytes(canonical.DomainArtifact, data)
		if hash != want {
			result.Findings = append(result.Findings, Finding{File: file, Recorded: want, Recomputed: hash})
		}
	}

	return result, nil
}

func recomputeRawRecords(data []byte) ([]byte, error) {
	var records []types.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return report.RawRecordsBytes(records)
}

func recomputeJobs(data []byte) ([]byte, error) {
	var jobs []types.CanonicalJob
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, err
	}
	return report.JobsBytes(jobs)
}

func recomputeScores(data []byte) ([]byte, error) {
	var scores []types.ScoreResult
	if err := json.Unmarshal(data, &scores); err != nil {
		return nil, err
	}
	return report.ScoresBytes(scores)
}

func recomputeDiff(data []byte) ([]byte, error) {
	var diff types.DiffResult
	if err := json.Unmarshal(data, &diff); err != nil {
		return nil, err
	}
	return report.DiffBytes(&diff)
}

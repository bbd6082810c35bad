// Package artifact is the filesystem store for run artifacts. Runs are
// write-once directories: a run is staged to a temp directory and renamed
// into place only after every file is written, so a partially written run is
// never observable under its run id. Baselines are read-only; nothing in
// this package ever rewrites a completed run.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jonathan/job-radar/internal/report"
	"github.com/jonathan/job-radar/internal/types"
)

// Store addresses run artifacts under a root directory:
// <root>/runs/<run_id>/<artifact files>.
type Store struct {
	root string
}

// NewStore creates a store rooted at dir, creating the runs directory if
// needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("store root is empty")
	}
	if err := os.MkdirAll(filepath.Join(dir, "runs"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store root: %w", err)
	}
	return &Store{root: dir}, nil
}

// RunDir returns the directory for a run id.
func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.root, "runs", runID)
}

// WriteRun persists a completed run's artifact files. It refuses to
// overwrite an existing run: RunArtifacts are immutable after the run
// completes.
func (s *Store) WriteRun(runID string, files map[string][]byte) error {
	final := s.RunDir(runID)
	if _, err := os.Stat(final); err == nil {
		return fmt.Errorf("run %s already recorded", runID)
	}

	staging := filepath.Join(s.root, "runs", ".staging-"+runID)
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return fmt.Errorf("failed to create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	for name, data := range files {
		if err := os.WriteFile(filepath.Join(staging, name), data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}

	if err := os.Rename(staging, final); err != nil {
		return fmt.Errorf("failed to finalize run %s: %w", runID, err)
	}
	return nil
}

// WriteHealth records a run-health artifact for a failed run. A failed run
// directory holds only the health record, never partial ranked output.
func (s *Store) WriteHealth(runID string, data []byte) error {
	return s.WriteRun(runID, map[string][]byte{report.FileHealth: data})
}

// ReadFile reads one artifact file from a recorded run.
func (s *Store) ReadFile(runID, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.RunDir(runID), name))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s for run %s: %w", name, runID, err)
	}
	return data, nil
}

// ReadArtifact loads a run's recorded RunArtifact.
func (s *Store) ReadArtifact(runID string) (*types.RunArtifact, error) {
	data, err := s.ReadFile(runID, report.FileReport)
	if err != nil {
		return nil, err
	}
	var artifact types.RunArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse run report for %s: %w", runID, err)
	}
	return &artifact, nil
}

// ReadJobs loads a run's recorded canonical job set.
func (s *Store) ReadJobs(runID string) ([]types.CanonicalJob, error) {
	data, err := s.ReadFile(runID, report.FileJobs)
	if err != nil {
		return nil, err
	}
	var jobs []types.CanonicalJob
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to parse jobs for %s: %w", runID, err)
	}
	return jobs, nil
}

// Baseline is a prior run's recorded state, loaded read-only for diffing.
type Baseline struct {
	RunID        string
	Fingerprints map[string]string // identity_key -> fingerprint
	FirstSeen    map[string]string // identity_key -> first_seen_run_id
}

// LoadBaseline resolves an explicitly requested baseline run. A missing or
// unreadable baseline is a fatal MissingBaseline failure: the caller asked
// for a comparison point, so the run must not silently proceed as
// baseline-less.
func (s *Store) LoadBaseline(runID string) (*Baseline, error) {
	jobs, err := s.ReadJobs(runID)
	if err != nil {
		missing := errors.Is(err, fs.ErrNotExist)
		return nil, &types.StageFailure{
			Stage: "baseline",
			Code:  types.CodeMissingBaseline,
			Cause: fmt.Errorf("baseline run %s unresolvable (missing=%v): %w", runID, missing, err),
		}
	}

	baseline := &Baseline{
		RunID:        runID,
		Fingerprints: make(map[string]string, len(jobs)),
		FirstSeen:    make(map[string]string, len(jobs)),
	}
	for i := range jobs {
		baseline.Fingerprints[jobs[i].IdentityKey] = jobs[i].Fingerprint
		if jobs[i].FirstSeenRunID != "" {
			baseline.FirstSeen[jobs[i].IdentityKey] = jobs[i].FirstSeenRunID
		} else {
			baseline.FirstSeen[jobs[i].IdentityKey] = runID
		}
	}
	return baseline, nil
}

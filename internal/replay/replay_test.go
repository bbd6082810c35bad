package replay

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-radar/internal/artifact"
	"github.com/jonathan/job-radar/internal/report"
	"github.com/jonathan/job-radar/internal/types"
)

func recordedRun(t *testing.T) (*artifact.Store, string) {
	t.Helper()
	store, err := artifact.NewStore(t.TempDir())
	require.NoError(t, err)

	jobs := []types.CanonicalJob{
		{
			IdentityKey:     "key-a",
			Fingerprint:     "fp-a",
			Provider:        "greenhouse",
			Title:           "Platform Engineer",
			NormalizedTitle: "platform engineer",
			SourceURL:       "https://g/1",
			FirstSeenRunID:  "run-1",
		},
	}
	scores := []types.ScoreResult{
		{
			IdentityKey: "key-a",
			BaseScore:   60,
			FinalScore:  60,
			Band:        "good",
			Signals:     []types.Signal{{Name: "skill_overlap", Contribution: 60}},
		},
	}
	arts, err := report.Build(report.BuildInput{
		RunID:      "run-1",
		CreatedAt:  time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		RawRecords: []types.RawRecord{{Provider: "greenhouse", Title: "Platform Engineer", SourceURL: "https://g/1"}},
		Jobs:       jobs,
		Scores:     scores,
		Diff:       &types.DiffResult{New: []string{"key-a"}, Changed: []string{}, Removed: []string{}, Unchanged: []string{}},
	})
	require.NoError(t, err)
	require.NoError(t, store.WriteRun("run-1", arts.Files))
	return store, "run-1"
}

func TestVerify_IntactRunHasNoFindings(t *testing.T) {
	store, runID := recordedRun(t)

	result, err := Verify(store, runID)
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.NoError(t, result.Err())
}

func TestVerify_TamperedPayloadIsReported(t *testing.T) {
	store, runID := recordedRun(t)

	// Flip the recorded fingerprint; the recomputed normalized hash must
	// diverge from the recorded chain.
	jobsPath := filepath.Join(store.RunDir(runID), report.FileJobs)
	data, err := os.ReadFile(jobsPath)
	require.NoError(t, err)
	tampered := strings.Replace(string(data), "fp-a", "fp-X", 1)
	require.NotEqual(t, string(data), tampered)
	require.NoError(t, os.WriteFile(jobsPath, []byte(tampered), 0o644))

	result, err := Verify(store, runID)
	require.NoError(t, err)
	require.False(t, result.OK())
	assert.Equal(t, report.FileJobs, result.Findings[0].File)

	var failure *types.StageFailure
	require.True(t, errors.As(result.Err(), &failure))
	assert.Equal(t, types.CodeReplayMismatch, failure.Code)
}

func TestVerify_UnknownRun(t *testing.T) {
	store, _ := recordedRun(t)

	_, err := Verify(store, "no-such-run")
	require.Error(t, err)
}

func TestVerify_DoesNotMutateRun(t *testing.T) {
	store, runID := recordedRun(t)

	before := readAll(t, store, runID)
	_, err := Verify(store, runID)
	require.NoError(t, err)
	after := readAll(t, store, runID)

	assert.Equal(t, before, after)
}

func readAll(t *testing.T, store *artifact.Store, runID string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	entries, err := os.ReadDir(store.RunDir(runID))
	require.NoError(t, err)
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(store.RunDir(runID), e.Name()))
		require.NoError(t, err)
		files[e.Name()] = string(data)
	}
	return files
}

package observability

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/jonathan/job-radar/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintRunSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	artifact := &types.RunArtifact{
		RunID:         "run-1",
		BaselineRunID: "run-0",
		Counts: types.RunCounts{
			InputRecords:   3,
			NormalizedJobs: 3,
			ScoredJobs:     3,
		},
		DiffCounts: types.DiffCounts{New: 1, Unchanged: 2},
	}

	p.PrintRunSummary(artifact)
	output := buf.String()

	assert.Contains(t, output, "Run Summary")
	assert.Contains(t, output, "run-1")
	assert.Contains(t, output, "run-0")
	assert.Contains(t, output, "+1 new")
}

func TestPrintRunSummary_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRunSummary(nil)

	assert.Empty(t, buf.String())
}

func TestPrintTopRanked_OrdersByScore(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	// Arrival order is the canonical job order, not score order.
	jobs := []types.CanonicalJob{
		{IdentityKey: "key-a", Title: "Analyst"},
		{IdentityKey: "key-b", Title: "Backend Engineer"},
		{IdentityKey: "key-c", Title: "Platform Engineer"},
	}
	scores := []types.ScoreResult{
		{IdentityKey: "key-a", FinalScore: 40, Band: "fair"},
		{IdentityKey: "key-b", FinalScore: 85, Band: "strong"},
		{IdentityKey: "key-c", FinalScore: 62.5, Band: "good"},
	}

	p.PrintTopRanked(jobs, scores)
	output := buf.String()

	first := strings.Index(output, "Backend Engineer")
	second := strings.Index(output, "Platform Engineer")
	third := strings.Index(output, "Analyst")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	require.NotEqual(t, -1, third)
	assert.Less(t, first, second)
	assert.Less(t, second, third)
	assert.Contains(t, output, "85.00")
	assert.Contains(t, output, "62.50")
}

func TestPrintTopRanked_TruncatesAfterTopFive(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	var jobs []types.CanonicalJob
	var scores []types.ScoreResult
	for i := 0; i < 7; i++ {
		key := fmt.Sprintf("key-%d", i)
		jobs = append(jobs, types.CanonicalJob{IdentityKey: key, Title: fmt.Sprintf("Job %d", i)})
		scores = append(scores, types.ScoreResult{IdentityKey: key, FinalScore: float64(10 * (i + 1)), Band: "fair"})
	}

	p.PrintTopRanked(jobs, scores)
	output := buf.String()

	// Highest scores arrive last; the box must still show them.
	assert.Contains(t, output, "Job 6")
	assert.Contains(t, output, "Job 2")
	assert.NotContains(t, output, "Job 1")
	assert.NotContains(t, output, "Job 0")
	assert.Contains(t, output, "... and 2 more")
}

func TestPrintTopRanked_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintTopRanked(nil, nil)

	assert.Empty(t, buf.String())
}

func TestPrintTopRanked_DoesNotReorderInput(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	scores := []types.ScoreResult{
		{IdentityKey: "key-a", FinalScore: 10, Band: "weak"},
		{IdentityKey: "key-b", FinalScore: 90, Band: "strong"},
	}

	p.PrintTopRanked(nil, scores)

	assert.Equal(t, "key-a", scores[0].IdentityKey)
	assert.Equal(t, "key-b", scores[1].IdentityKey)
}

package normalize

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-radar/internal/types"
)

func TestRun_SortsIndependentOfArrivalOrder(t *testing.T) {
	forward := []types.RawRecord{
		{Provider: "lever", Title: "Analyst", SourceURL: "https://jobs.example.com/a"},
		{Provider: "greenhouse", Title: "Engineer", SourceURL: "https://jobs.example.com/b"},
		{Provider: "greenhouse", Title: "Architect", SourceURL: "https://jobs.example.com/c"},
	}
	reversed := []types.RawRecord{forward[2], forward[1], forward[0]}

	first, err := Run(context.Background(), forward, Options{MaxErrorRate: 0.5})
	require.NoError(t, err)
	second, err := Run(context.Background(), reversed, Options{MaxErrorRate: 0.5})
	require.NoError(t, err)

	assert.Equal(t, first.Jobs, second.Jobs)
	require.Len(t, first.Jobs, 3)
	assert.Equal(t, "greenhouse", first.Jobs[0].Provider)
	assert.Equal(t, "architect", first.Jobs[0].NormalizedTitle)
}

func TestRun_ParallelMatchesSerial(t *testing.T) {
	records := []types.RawRecord{
		{Provider: "lever", Title: "Backend Engineer", Location: "Berlin", SourceURL: "https://l/1"},
		{Provider: "lever", Title: "Frontend Engineer", Location: "Berlin", SourceURL: "https://l/2"},
		{Provider: "greenhouse", Title: "SRE", Location: "Remote", SourceURL: "https://g/1"},
		{Provider: "ashby", Title: "Data Engineer", Location: "NYC", SourceURL: "https://a/1"},
	}

	serial, err := Run(context.Background(), records, Options{MaxErrorRate: 0, Workers: 1})
	require.NoError(t, err)
	parallel, err := Run(context.Background(), records, Options{MaxErrorRate: 0, Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, serial.Jobs, parallel.Jobs)
}

func TestRun_RejectsMissingRequiredFields(t *testing.T) {
	records := []types.RawRecord{
		{Provider: "lever", Title: "Engineer", SourceURL: "https://l/ok"},
		{Provider: "lever", Title: "   ", SourceURL: "https://l/no-title"},
		{Provider: "lever", Title: "Analyst"}, // no source_url
	}

	result, err := Run(context.Background(), records, Options{MaxErrorRate: 0.9})
	require.NoError(t, err)

	assert.Len(t, result.Jobs, 1)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0].Reason, "title")
	assert.Contains(t, result.Errors[1].Reason, "source_url")
}

func TestRun_FailsClosedAboveErrorCeiling(t *testing.T) {
	records := []types.RawRecord{
		{Provider: "lever", Title: "", SourceURL: "https://l/1"},
		{Provider: "lever", Title: "", SourceURL: "https://l/2"},
		{Provider: "lever", Title: "Engineer", SourceURL: "https://l/3"},
	}

	_, err := Run(context.Background(), records, Options{MaxErrorRate: 0.25})
	require.Error(t, err)

	var failure *types.StageFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, "normalize", failure.Stage)
	assert.Equal(t, types.CodeNormalizationError, failure.Code)
}

func TestRun_EmptyBatchIsValid(t *testing.T) {
	result, err := Run(context.Background(), nil, Options{MaxErrorRate: 0})
	require.NoError(t, err)
	assert.Empty(t, result.Jobs)
	assert.Empty(t, result.Errors)
}

func TestNormalizeRecord_CanonicalizesFields(t *testing.T) {
	raw := types.RawRecord{
		Provider:  "Greenhouse",
		Title:     "  Senior\tPlatform   Engineer ",
		Location:  "Berlin,\nGermany",
		SourceURL: " https://boards.example.com/jobs/42 ",
	}

	job, recErr := normalizeRecord(0, &raw)
	require.Nil(t, recErr)

	assert.Equal(t, "greenhouse", job.Provider)
	assert.Equal(t, "Senior Platform Engineer", job.Title)
	assert.Equal(t, "senior platform engineer", job.NormalizedTitle)
	assert.Equal(t, "Berlin, Germany", job.Location)
	assert.Equal(t, "berlin, germany", job.NormalizedLocation)
	assert.Equal(t, "https://boards.example.com/jobs/42", job.SourceURL)
	assert.Empty(t, job.IdentityKey, "identity assignment belongs to the identity engine")
}

func TestStripMarkup_RemovesVolatileTags(t *testing.T) {
	html := `<div><h1>Engineer</h1><script>track()</script><style>.x{}</style><p>Build things.</p></div>`

	text, err := StripMarkup(html)
	require.NoError(t, err)
	assert.Contains(t, text, "Engineer")
	assert.Contains(t, text, "Build things.")
	assert.NotContains(t, text, "track()")
	assert.NotContains(t, text, ".x{}")
}

func TestStripMarkup_PlainTextPassthrough(t *testing.T) {
	text, err := StripMarkup("Just a plain description.")
	require.NoError(t, err)
	assert.Equal(t, "Just a plain description.", text)
}

func TestCanonicalizeMatch_UnicodeNormalization(t *testing.T) {
	// Composed vs decomposed accents normalize to identical bytes.
	assert.Equal(t, CanonicalizeMatch("Café Manager"), CanonicalizeMatch("Café Manager"))
}

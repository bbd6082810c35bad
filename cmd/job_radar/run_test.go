package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-radar/internal/types"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadBatchValid(t *testing.T) {
	path := writeTempFile(t, "batch.json", `{
		"provider": "acme-board",
		"records": [
			{"provider": "acme-board", "title": "Go Engineer", "source_url": "https://acme.example/jobs/1", "external_id": "1"},
			{"provider": "acme-board", "title": "SRE", "source_url": "https://acme.example/jobs/2"}
		]
	}`)

	records, err := loadBatch(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Go Engineer", records[0].Title)
	assert.True(t, records[0].HasExternalID())
	assert.False(t, records[1].HasExternalID())
}

func TestLoadBatchFillsProviderFromBatch(t *testing.T) {
	path := writeTempFile(t, "batch.json", `{
		"provider": "acme-board",
		"records": [
			{"title": "Go Engineer", "source_url": "https://acme.example/jobs/1"}
		]
	}`)

	records, err := loadBatch(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "acme-board", records[0].Provider)
}

func TestLoadBatchRejectsSchemaViolations(t *testing.T) {
	// Missing source_url on the record.
	path := writeTempFile(t, "batch.json", `{
		"provider": "acme-board",
		"records": [{"title": "Go Engineer"}]
	}`)

	_, err := loadBatch(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input rejected")
}

func TestLoadBatchMissingFile(t *testing.T) {
	_, err := loadBatch(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestProfileQueryText(t *testing.T) {
	profile := &types.CandidateProfile{
		Skills:      []types.WeightedSkill{{Name: "go", Weight: 2}, {Name: "postgres", Weight: 1}},
		TargetRoles: []string{"backend engineer"},
		Keywords:    []string{"distributed systems"},
	}

	text := profileQueryText(profile)
	assert.Contains(t, text, "Roles: backend engineer")
	assert.Contains(t, text, "Skills: go, postgres")
	assert.Contains(t, text, "Keywords: distributed systems")
	assert.NotContains(t, text, "Locations:")
}

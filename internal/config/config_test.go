package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10.0, cfg.MaxSemanticDelta)
	assert.False(t, cfg.SemanticEnabled)
}

func TestLoadConfig_MergesOverDefaults(t *testing.T) {
	path := writeTemp(t, "config.json", `{"semantic_enabled": true, "workers": 8}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.SemanticEnabled)
	assert.Equal(t, 8, cfg.Workers)
	// Untouched fields keep defaults.
	assert.Equal(t, 0.1, cfg.MaxNormalizationErrorRate)
}

func TestLoadConfig_RejectsOutOfRange(t *testing.T) {
	path := writeTemp(t, "config.json", `{"max_semantic_delta": 90}`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestLoadProfile(t *testing.T) {
	path := writeTemp(t, "profile.json", `{
		"skills": [{"name": "Go", "weight": 2}, {"name": "Kubernetes", "weight": 1}],
		"target_roles": ["Platform Engineer"],
		"locations": ["Berlin"],
		"keywords": ["grpc"]
	}`)

	profile, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Len(t, profile.Skills, 2)
	assert.Equal(t, []string{"Platform Engineer"}, profile.TargetRoles)
}

func TestLoadProfile_RequiresSkillsAndRoles(t *testing.T) {
	path := writeTemp(t, "profile.json", `{"skills": [], "target_roles": []}`)

	_, err := LoadProfile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid profile")
}

func TestLoadProfile_RejectsNonPositiveWeight(t *testing.T) {
	path := writeTemp(t, "profile.json", `{
		"skills": [{"name": "Go", "weight": 0}],
		"target_roles": ["Engineer"]
	}`)

	_, err := LoadProfile(path)
	require.Error(t, err)
}

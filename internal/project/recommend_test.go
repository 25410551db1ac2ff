package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forge/internal/state"
)

func TestRecommendFilesystemAlways(t *testing.T) {
	t.Parallel()

	recs := RecommendIntegrations(t.TempDir(), nil)

	require.Len(t, recs, 1)
	assert.Equal(t, "filesystem", recs[0].Name)
	assert.Equal(t, "low", recs[0].Priority)
}

func TestRecommendGitHub(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0755))

	recs := RecommendIntegrations(dir, nil)

	require.NotEmpty(t, recs)
	assert.Equal(t, "github", recs[0].Name)
	assert.Equal(t, "high", recs[0].Priority)
	assert.Contains(t, recs[0].Reason, "Git repository")
}

func TestRecommendFromArchitecture(t *testing.T) {
	t.Parallel()

	st := state.DefaultState("demo", "api-service")
	st.Architecture = map[string]any{
		"database": "PostgreSQL 16",
		"cache":    "Redis",
	}

	recs := RecommendIntegrations(t.TempDir(), st)
	names := Names(recs)

	assert.Contains(t, names, "postgres")
	assert.Contains(t, names, "redis")
	assert.Contains(t, names, "filesystem")
}

func TestRecommendFromManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"dependencies": {"pg": "^8.11.0"}}`)

	recs := RecommendIntegrations(dir, nil)

	assert.Contains(t, Names(recs), "postgres")
}

func TestRecommendDeduplicates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module svc\n\ngo 1.24\n\nrequire github.com/lib/pq v1.10.9\n")
	st := state.DefaultState("demo", "api-service")
	st.Architecture = map[string]any{"database": "postgres"}

	recs := RecommendIntegrations(dir, st)

	count := 0
	for _, r := range recs {
		if r.Name == "postgres" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestNames(t *testing.T) {
	t.Parallel()

	recs := []Recommendation{
		{Name: "github", Priority: "high"},
		{Name: "filesystem", Priority: "low"},
	}

	assert.Equal(t, []string{"github", "filesystem"}, Names(recs))
}

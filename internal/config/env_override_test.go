package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides_Workspace(t *testing.T) {
	t.Run("FORGE_WORKSPACE overrides project workspace", func(t *testing.T) {
		t.Setenv("FORGE_WORKSPACE", "/srv/project")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "/srv/project", cfg.Project.Workspace)
	})

	t.Run("empty FORGE_WORKSPACE leaves config value", func(t *testing.T) {
		t.Setenv("FORGE_WORKSPACE", "")

		cfg := DefaultConfig()
		cfg.Project.Workspace = "/from/file"
		cfg.applyEnvOverrides()

		assert.Equal(t, "/from/file", cfg.Project.Workspace)
	})
}

func TestEnvOverrides_Database(t *testing.T) {
	t.Setenv("FORGE_DB", "/data/forge.db")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, "/data/forge.db", cfg.Analytics.DatabasePath)
}

func TestEnvOverrides_Theme(t *testing.T) {
	t.Setenv("FORGE_THEME", "light")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, "light", cfg.Dashboard.Theme)
}

func TestEnvOverrides_Debug(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"0", false},
		{"yes", false},
		{"", false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run("FORGE_DEBUG="+tc.value, func(t *testing.T) {
			t.Setenv("FORGE_DEBUG", tc.value)

			cfg := DefaultConfig()
			cfg.applyEnvOverrides()

			assert.Equal(t, tc.want, cfg.Logging.DebugMode)
		})
	}
}

func TestEnvOverrides_AppliedByLoad(t *testing.T) {
	t.Setenv("FORGE_WORKSPACE", "")
	t.Setenv("FORGE_THEME", "")
	t.Setenv("FORGE_DEBUG", "")
	t.Setenv("FORGE_DB", "/env/analytics.db")

	// Overrides apply whether or not the file exists
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/env/analytics.db", cfg.Analytics.DatabasePath)

	path := filepath.Join(t.TempDir(), "config.yaml")
	onDisk := DefaultConfig()
	onDisk.Analytics.DatabasePath = "/file/analytics.db"
	require.NoError(t, onDisk.Save(path))

	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/env/analytics.db", cfg.Analytics.DatabasePath, "env override should beat the file value")
}

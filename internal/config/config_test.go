package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// =============================================================================
// UNIFIED CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "forge" {
		t.Errorf("expected Name=forge, got %s", cfg.Name)
	}
	if cfg.Agents.MaxParallel != 3 {
		t.Errorf("expected MaxParallel=3, got %d", cfg.Agents.MaxParallel)
	}
	if !cfg.Agents.Orchestration {
		t.Error("expected orchestration enabled by default")
	}
	if cfg.Vision.Path != ".forge/vision.md" {
		t.Errorf("expected Vision.Path=.forge/vision.md, got %s", cfg.Vision.Path)
	}
	if cfg.Logging.DebugMode {
		t.Error("expected DebugMode=false by default")
	}
	if cfg.Analytics.CoverageTarget != 80.0 {
		t.Errorf("expected CoverageTarget=80, got %.1f", cfg.Analytics.CoverageTarget)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	// Ensure no env vars interfere
	t.Setenv("FORGE_WORKSPACE", "")
	t.Setenv("FORGE_DB", "")
	t.Setenv("FORGE_THEME", "")
	t.Setenv("FORGE_DEBUG", "")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Project.Type = "cli-tool"
	cfg.Agents.MaxParallel = 5
	cfg.Logging.DebugMode = true
	cfg.Logging.Categories = map[string]bool{"vision": true, "agents": false}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Project.Type != "cli-tool" {
		t.Errorf("expected Type=cli-tool, got %s", loaded.Project.Type)
	}
	if loaded.Agents.MaxParallel != 5 {
		t.Errorf("expected MaxParallel=5, got %d", loaded.Agents.MaxParallel)
	}
	if !loaded.Logging.DebugMode {
		t.Error("expected DebugMode=true after round trip")
	}
	if loaded.Logging.Categories["agents"] {
		t.Error("expected agents category disabled after round trip")
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("FORGE_WORKSPACE", "")
	t.Setenv("FORGE_DB", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load of missing file should not error, got %v", err)
	}
	if cfg.Name != "forge" {
		t.Errorf("expected default Name=forge, got %s", cfg.Name)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("agents: [not: closed"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected parse error for malformed YAML")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to be valid, got error: %v", err)
	}

	cfg = DefaultConfig()
	cfg.Agents.MaxParallel = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for max_parallel=0")
	}

	cfg = DefaultConfig()
	cfg.Agents.DefaultPriority = "urgent"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid priority")
	}

	cfg = DefaultConfig()
	cfg.Analytics.CoverageTarget = 150
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for coverage target above 100")
	}
}

func TestConfig_MissingSections(t *testing.T) {
	cfg := &Config{}
	missing := cfg.MissingSections()

	want := map[string]bool{
		"name": true, "project": true, "vision": true,
		"agents": true, "analytics": true,
	}
	if len(missing) != len(want) {
		t.Fatalf("missing sections mismatch: got %v", missing)
	}
	for _, name := range missing {
		if !want[name] {
			t.Errorf("unexpected missing section %q", name)
		}
	}

	if got := DefaultConfig().MissingSections(); len(got) != 0 {
		t.Errorf("default config should have no missing sections, got %v", got)
	}
}

func TestConfig_Helpers(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Vision.GetWatchDebounce() != 500*time.Millisecond {
		t.Errorf("GetWatchDebounce=%v, want 500ms", cfg.Vision.GetWatchDebounce())
	}
	if cfg.Dashboard.GetRefreshInterval() != 2*time.Second {
		t.Errorf("GetRefreshInterval=%v, want 2s", cfg.Dashboard.GetRefreshInterval())
	}
	if cfg.Analytics.GetTrendWindow() != 168*time.Hour {
		t.Errorf("GetTrendWindow=%v, want 168h", cfg.Analytics.GetTrendWindow())
	}

	// Unparseable durations fall back to defaults
	bad := VisionConfig{WatchDebounce: "soon"}
	if bad.GetWatchDebounce() != 500*time.Millisecond {
		t.Error("GetWatchDebounce should fall back on unparseable input")
	}

	// Parallelism never drops below 1
	agents := AgentsConfig{MaxParallel: -2}
	if agents.GetMaxParallel() != 1 {
		t.Errorf("GetMaxParallel=%d, want 1", agents.GetMaxParallel())
	}

	threshold := AnalyticsConfig{}
	if threshold.GetTrendThreshold() != 5.0 {
		t.Errorf("GetTrendThreshold=%v, want 5.0", threshold.GetTrendThreshold())
	}
}

func TestLoggingConfig_IsCategoryEnabled(t *testing.T) {
	off := LoggingConfig{DebugMode: false, Categories: map[string]bool{"vision": true}}
	if off.IsCategoryEnabled("vision") {
		t.Error("categories must be disabled when debug_mode=false")
	}

	on := LoggingConfig{DebugMode: true, Categories: map[string]bool{"vision": false}}
	if on.IsCategoryEnabled("vision") {
		t.Error("explicitly disabled category should be off")
	}
	if !on.IsCategoryEnabled("agents") {
		t.Error("unlisted category should default to enabled")
	}

	all := LoggingConfig{DebugMode: true}
	if !all.IsCategoryEnabled("anything") {
		t.Error("nil categories map should enable everything in debug mode")
	}
}

// =============================================================================
// WORKSPACE ROOT DISCOVERY
// =============================================================================

func TestFindWorkspaceRoot_PrefersForgeDir(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".forge"), 0o755); err != nil {
		t.Fatalf("mkdir .forge: %v", err)
	}
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}

	origWD, _ := os.Getwd()
	if err := os.Chdir(nested); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWD) })

	got, err := FindWorkspaceRoot()
	if err != nil {
		t.Fatalf("FindWorkspaceRoot: %v", err)
	}
	if got != root {
		t.Fatalf("FindWorkspaceRoot=%q, want %q", got, root)
	}
}

func TestFindWorkspaceRoot_FallsBackToGit(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}
	nested := filepath.Join(root, "subdir")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}

	origWD, _ := os.Getwd()
	if err := os.Chdir(nested); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWD) })

	got, err := FindWorkspaceRoot()
	if err != nil {
		t.Fatalf("FindWorkspaceRoot: %v", err)
	}
	if got != root {
		t.Fatalf("FindWorkspaceRoot=%q, want %q", got, root)
	}
}

func TestDefaultConfigPath_UsesWorkspaceRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".forge"), 0o755); err != nil {
		t.Fatalf("mkdir .forge: %v", err)
	}
	nested := filepath.Join(root, "x", "y")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}

	origWD, _ := os.Getwd()
	if err := os.Chdir(nested); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWD) })

	got := DefaultConfigPath()
	want := filepath.Join(root, ".forge", "config.yaml")
	if got != want {
		t.Fatalf("DefaultConfigPath=%q, want %q", got, want)
	}
}

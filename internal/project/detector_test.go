package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// writeFile creates a file under dir, making parent directories as
// needed. Shared by every test in this package.
func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDetectLanguage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		manifest string
		want     string
	}{
		{"go module", "go.mod", "go"},
		{"rust crate", "Cargo.toml", "rust"},
		{"node package", "package.json", "typescript"},
		{"python project", "pyproject.toml", "python"},
		{"python requirements", "requirements.txt", "python"},
		{"java maven", "pom.xml", "java"},
		{"csharp project", "app.csproj", "csharp"},
		{"ruby gem", "Gemfile", "ruby"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, tc.manifest, "")

			c := Detect(dir)
			assert.Equal(t, tc.want, c.Language)
		})
	}
}

func TestDetectEmptyDir(t *testing.T) {
	t.Parallel()

	c := Detect(t.TempDir())

	assert.Equal(t, "unknown", c.Language)
	assert.Equal(t, TypeUnknown, c.Type)
	assert.Empty(t, c.Dependencies)
}

func TestDetectGoCLITool(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module demo\n\ngo 1.24\n\nrequire github.com/spf13/cobra v1.8.0\n")

	c := Detect(dir)

	assert.Equal(t, "go", c.Language)
	assert.Equal(t, TypeCLITool, c.Type)
	assert.Contains(t, c.Dependencies, "cobra")
}

func TestDetectNodeWebApp(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pkg := `{"name": "site", "dependencies": {"react": "^18.0.0", "express": "^4.18.0"}}`
	writeFile(t, dir, "package.json", pkg)

	c := Detect(dir)

	assert.Equal(t, "typescript", c.Language)
	// Web frameworks win over API frameworks when both are present.
	assert.Equal(t, TypeWebApp, c.Type)
	assert.Contains(t, c.Dependencies, "react")
	assert.Contains(t, c.Dependencies, "express")
}

func TestDetectPythonAPIService(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "fastapi==0.110.0\npsycopg2-binary==2.9.9\n")

	c := Detect(dir)

	assert.Equal(t, "python", c.Language)
	assert.Equal(t, TypeAPIService, c.Type)
	assert.Contains(t, c.Dependencies, "fastapi")
	assert.Contains(t, c.Dependencies, "postgres")
}

func TestDetectDatabaseImpliesService(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module svc\n\ngo 1.24\n\nrequire gorm.io/gorm v1.25.0\n")

	c := Detect(dir)

	assert.Equal(t, TypeAPIService, c.Type)
}

func TestDetectEntryPointFallback(t *testing.T) {
	t.Parallel()

	t.Run("go cmd layout", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "go.mod", "module tool\n\ngo 1.24\n")
		writeFile(t, dir, filepath.Join("cmd", "tool", "main.go"), "package main\nfunc main() {}\n")

		c := Detect(dir)
		assert.Equal(t, TypeCLITool, c.Type)
	})

	t.Run("root main.go", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "go.mod", "module tool\n\ngo 1.24\n")
		writeFile(t, dir, "main.go", "package main\nfunc main() {}\n")

		c := Detect(dir)
		assert.Equal(t, TypeCLITool, c.Type)
	})

	t.Run("python script", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "requirements.txt", "requests==2.31.0\n")
		writeFile(t, dir, "run.py", "if __name__ == \"__main__\":\n    pass\n")

		c := Detect(dir)
		assert.Equal(t, TypeCLITool, c.Type)
	})
}

func TestDetectLibraryFallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module lib\n\ngo 1.24\n")

	c := Detect(dir)

	assert.Equal(t, TypeLibrary, c.Type)
}

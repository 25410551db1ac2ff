// Package project inspects a workspace directory: language and project
// type detection from manifest files, gap analysis against the recorded
// state, and service integration recommendations. Everything here is
// file-presence sniffing; absence of a manifest is never an error.
package project

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"forge/internal/logging"
)

// Project types derived from manifest sniffing.
const (
	TypeWebApp     = "web-app"
	TypeAPIService = "api-service"
	TypeCLITool    = "cli-tool"
	TypeLibrary    = "library"
	TypeUnknown    = "unknown"
)

// Classification describes what kind of codebase lives in a directory.
type Classification struct {
	Language     string   `json:"language"`
	Type         string   `json:"type"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// languageManifests maps manifest files to the language they imply.
// First match wins.
var languageManifests = []struct {
	file     string
	language string
}{
	{"go.mod", "go"},
	{"Cargo.toml", "rust"},
	{"package.json", "typescript"}, // Could be plain JS, but TS dominates new projects
	{"pyproject.toml", "python"},
	{"requirements.txt", "python"},
	{"setup.py", "python"},
	{"pom.xml", "java"},
	{"build.gradle", "java"},
	{"*.csproj", "csharp"},
	{"mix.exs", "elixir"},
	{"Gemfile", "ruby"},
}

// goDependencyMarkers are substrings of go.mod mapped to canonical
// dependency names.
var goDependencyMarkers = map[string]string{
	"github.com/spf13/cobra":             "cobra",
	"github.com/urfave/cli":              "urfave-cli",
	"github.com/charmbracelet/bubbletea": "bubbletea",
	"github.com/gin-gonic/gin":           "gin",
	"github.com/labstack/echo":           "echo",
	"github.com/gofiber/fiber":           "fiber",
	"github.com/go-chi/chi":              "chi",
	"gorm.io/gorm":                       "gorm",
	"github.com/jmoiron/sqlx":            "sqlx",
	"github.com/lib/pq":                  "postgres",
	"github.com/jackc/pgx":               "postgres",
	"github.com/mattn/go-sqlite3":        "sqlite",
	"github.com/redis/go-redis":          "redis",
}

// nodeDependencyMarkers are quoted package names sniffed out of
// package.json.
var nodeDependencyMarkers = map[string]string{
	`"react"`:     "react",
	`"vue"`:       "vue",
	`"next"`:      "nextjs",
	`"svelte"`:    "svelte",
	`"@angular`:   "angular",
	`"express"`:   "express",
	`"fastify"`:   "fastify",
	`"commander"`: "commander",
	`"yargs"`:     "yargs",
	`"prisma"`:    "prisma",
	`"typeorm"`:   "typeorm",
	`"pg"`:        "postgres",
	`"redis"`:     "redis",
}

// pythonDependencyMarkers are sniffed out of requirements.txt and
// pyproject.toml after lowercasing.
var pythonDependencyMarkers = map[string]string{
	"django":     "django",
	"flask":      "flask",
	"fastapi":    "fastapi",
	"click":      "click",
	"typer":      "typer",
	"sqlalchemy": "sqlalchemy",
	"psycopg":    "postgres",
	"redis":      "redis",
}

// Framework groups that imply a project type. Checked in order: a repo
// with both react and express is a web app.
var (
	webFrameworks     = []string{"react", "vue", "nextjs", "svelte", "angular"}
	apiFrameworks     = []string{"gin", "echo", "fiber", "chi", "express", "fastify", "django", "flask", "fastapi"}
	cliFrameworks     = []string{"cobra", "urfave-cli", "bubbletea", "commander", "yargs", "click", "typer"}
	databaseLibraries = []string{"gorm", "sqlx", "postgres", "sqlite", "prisma", "typeorm", "sqlalchemy"}
)

// Detect classifies the project in dir. Missing manifests are not
// errors; an empty directory classifies as unknown/unknown.
func Detect(dir string) Classification {
	c := Classification{Language: detectLanguage(dir)}
	c.Dependencies = detectDependencies(dir)
	c.Type = classifyType(dir, c.Language, c.Dependencies)

	logging.Project("detected %s %s project in %s (%d known dependencies)",
		c.Language, c.Type, dir, len(c.Dependencies))
	return c
}

// detectLanguage finds the primary language from manifest files.
func detectLanguage(dir string) string {
	for _, check := range languageManifests {
		pattern := filepath.Join(dir, check.file)
		matches, err := filepath.Glob(pattern)
		if err == nil && len(matches) > 0 {
			return check.language
		}
	}
	return "unknown"
}

// detectDependencies scans manifest files for known dependencies and
// returns their canonical names, sorted.
func detectDependencies(dir string) []string {
	found := map[string]bool{}

	if data, err := os.ReadFile(filepath.Join(dir, "go.mod")); err == nil {
		sniffMarkers(string(data), goDependencyMarkers, found)
	}
	if data, err := os.ReadFile(filepath.Join(dir, "package.json")); err == nil {
		sniffMarkers(string(data), nodeDependencyMarkers, found)
	}
	for _, manifest := range []string{"requirements.txt", "pyproject.toml", "setup.py"} {
		if data, err := os.ReadFile(filepath.Join(dir, manifest)); err == nil {
			sniffMarkers(strings.ToLower(string(data)), pythonDependencyMarkers, found)
		}
	}

	deps := make([]string, 0, len(found))
	for name := range found {
		deps = append(deps, name)
	}
	sort.Strings(deps)
	return deps
}

func sniffMarkers(content string, markers map[string]string, found map[string]bool) {
	for marker, name := range markers {
		if strings.Contains(content, marker) {
			found[name] = true
		}
	}
}

// classifyType maps detected dependencies to a project type. Framework
// hits win over database libraries, which win over the bare entry-point
// check.
func classifyType(dir, language string, deps []string) string {
	if language == "unknown" {
		return TypeUnknown
	}

	has := map[string]bool{}
	for _, d := range deps {
		has[d] = true
	}
	hasAny := func(names []string) bool {
		for _, n := range names {
			if has[n] {
				return true
			}
		}
		return false
	}

	switch {
	case hasAny(webFrameworks):
		return TypeWebApp
	case hasAny(apiFrameworks):
		return TypeAPIService
	case hasAny(cliFrameworks):
		return TypeCLITool
	case hasAny(databaseLibraries):
		return TypeAPIService
	case hasEntryPoint(dir, language):
		return TypeCLITool
	}
	return TypeLibrary
}

// hasEntryPoint reports whether the project ships a runnable entry
// point for its language.
func hasEntryPoint(dir, language string) bool {
	switch language {
	case "go":
		if _, err := os.Stat(filepath.Join(dir, "main.go")); err == nil {
			return true
		}
		matches, _ := filepath.Glob(filepath.Join(dir, "cmd", "*", "main.go"))
		return len(matches) > 0
	case "rust":
		_, err := os.Stat(filepath.Join(dir, "src", "main.rs"))
		return err == nil
	case "typescript":
		data, err := os.ReadFile(filepath.Join(dir, "package.json"))
		return err == nil && strings.Contains(string(data), `"bin"`)
	case "python":
		matches, _ := filepath.Glob(filepath.Join(dir, "*.py"))
		for _, m := range matches {
			if data, err := os.ReadFile(m); err == nil && strings.Contains(string(data), "__main__") {
				return true
			}
		}
	}
	return false
}

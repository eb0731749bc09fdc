package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ddxy18/git-hooks/internal/schema"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// resetViper resets viper to a clean state for each test
func resetViper() {
	viper.Reset()
}

// setupTestDir creates a temporary directory and changes into it
func setupTestDir(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()

	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() {
		_ = os.Chdir(oldWd)
	})
	return tmpDir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadConfigDefaults(t *testing.T) {
	resetViper()
	setupTestDir(t)

	config, err := LoadConfig("")
	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Equal(t, "console", config.Format)
	assert.Empty(t, config.Output)
	assert.False(t, config.Quiet)
	assert.False(t, config.Verbose)
	assert.Equal(t, 0, config.Concurrency)
	assert.Equal(t, time.Duration(0), config.Timeout)
	assert.False(t, config.Staged)
	assert.Equal(t, []string{".cc", ".h"}, config.Extensions)
	assert.Empty(t, config.Exclude)
	assert.Equal(t, "clang-format", config.ClangFormat.Tool)
	assert.Equal(t, "file", config.ClangFormat.Style)
	assert.Equal(t, "diff", config.ClangFormat.Diff)
	assert.False(t, config.ClangFormat.Unified)
	assert.Equal(t, "clang-tidy", config.ClangTidy.Tool)
	assert.Equal(t, 100, config.CommitMessage.MaxLineLength)
	assert.Len(t, config.CommitMessage.Types, 7)
	assert.Empty(t, config.File)
}

func TestLoadConfigFromYAML(t *testing.T) {
	resetViper()
	tmpDir := setupTestDir(t)

	writeFile(t, filepath.Join(tmpDir, ".githooksrc.yaml"), `
format: markdown
output: report.md
verbose: true
concurrency: 3
timeout: 30s
extensions: [.cpp, .hpp]
exclude:
  - third_party/**
clangFormat:
  version: "14"
  unified: true
clangTidy:
  build: out/build
  checks: "-*,bugprone-*"
  extraArgs: [-std=c++20]
commitMessage:
  types: [feat, fix, perf]
  maxLineLength: 72
`)

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "markdown", config.Format)
	assert.Equal(t, "report.md", config.Output)
	assert.True(t, config.Verbose)
	assert.Equal(t, 3, config.Concurrency)
	assert.Equal(t, 30*time.Second, config.Timeout)
	assert.Equal(t, []string{".cpp", ".hpp"}, config.Extensions)
	assert.Equal(t, []string{"third_party/**"}, config.Exclude)
	assert.Equal(t, "14", config.ClangFormat.Version)
	assert.True(t, config.ClangFormat.Unified)
	assert.Equal(t, "clang-format", config.ClangFormat.Tool)
	assert.Equal(t, "out/build", config.ClangTidy.Build)
	assert.Equal(t, "-*,bugprone-*", config.ClangTidy.Checks)
	assert.Equal(t, []string{"-std=c++20"}, config.ClangTidy.ExtraArgs)
	assert.Equal(t, []string{"feat", "fix", "perf"}, config.CommitMessage.Types)
	assert.Equal(t, 72, config.CommitMessage.MaxLineLength)
	assert.Equal(t, ".githooksrc.yaml", config.File)
}

func TestLoadConfigFromJSON(t *testing.T) {
	resetViper()
	tmpDir := setupTestDir(t)

	writeFile(t, filepath.Join(tmpDir, ".githooksrc.json"), `{"format": "json", "staged": true, "clangTidy": {"version": "17"}}`)

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "json", config.Format)
	assert.True(t, config.Staged)
	assert.Equal(t, "17", config.ClangTidy.Version)
	assert.Equal(t, ".githooksrc.json", config.File)
}

func TestLoadConfigYMLExtension(t *testing.T) {
	resetViper()
	tmpDir := setupTestDir(t)

	writeFile(t, filepath.Join(tmpDir, ".githooksrc.yml"), "quiet: true\n")

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.True(t, config.Quiet)
	assert.Equal(t, ".githooksrc.yml", config.File)
}

func TestLoadConfigConfigFilePriority(t *testing.T) {
	resetViper()
	tmpDir := setupTestDir(t)

	writeFile(t, filepath.Join(tmpDir, ".githooksrc.yaml"), "format: yaml\n")
	writeFile(t, filepath.Join(tmpDir, ".githooksrc.json"), `{"format": "json"}`)

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "yaml", config.Format)
}

func TestLoadConfigExplicitPath(t *testing.T) {
	resetViper()
	tmpDir := setupTestDir(t)

	writeFile(t, filepath.Join(tmpDir, ".githooksrc.yaml"), "format: yaml\n")
	custom := filepath.Join(tmpDir, "hooks.yaml")
	writeFile(t, custom, "format: json\n")

	config, err := LoadConfig(custom)
	require.NoError(t, err)
	assert.Equal(t, "json", config.Format)
	assert.Equal(t, custom, config.File)
}

func TestLoadConfigExplicitPathMissing(t *testing.T) {
	resetViper()
	tmpDir := setupTestDir(t)

	_, err := LoadConfig(filepath.Join(tmpDir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadConfigEnvironmentVariables(t *testing.T) {
	resetViper()
	setupTestDir(t)

	t.Setenv("GITHOOKS_FORMAT", "yaml")
	t.Setenv("GITHOOKS_CONCURRENCY", "6")
	t.Setenv("GITHOOKS_TIMEOUT", "45s")
	t.Setenv("GITHOOKS_CLANGTIDY_BUILD", "/env/build")

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "yaml", config.Format)
	assert.Equal(t, 6, config.Concurrency)
	assert.Equal(t, 45*time.Second, config.Timeout)
	assert.Equal(t, "/env/build", config.ClangTidy.Build)
}

func TestLoadConfigSchemaViolation(t *testing.T) {
	resetViper()
	tmpDir := setupTestDir(t)

	writeFile(t, filepath.Join(tmpDir, ".githooksrc.yaml"), "format: html\nconcurrency: -2\n")

	_, err := LoadConfig("")
	require.Error(t, err)

	var schemaErr *schema.Error
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, ".githooksrc.yaml", schemaErr.File)
	assert.NotEmpty(t, schemaErr.Violations)
}

func TestLoadConfigValidationError(t *testing.T) {
	resetViper()
	setupTestDir(t)

	t.Setenv("GITHOOKS_FORMAT", "html")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "invalid format")
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config { return Defaults() }

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"every format", func(c *Config) { c.Format = "markdown" }, ""},
		{"invalid format", func(c *Config) { c.Format = "html" }, "invalid format"},
		{"negative concurrency", func(c *Config) { c.Concurrency = -1 }, "concurrency must not be negative"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "timeout must not be negative"},
		{"quiet and verbose", func(c *Config) { c.Quiet, c.Verbose = true, true }, "mutually exclusive"},
		{"zero line length", func(c *Config) { c.CommitMessage.MaxLineLength = 0 }, "maxLineLength"},
		{"empty tool", func(c *Config) { c.ClangTidy.Tool = "" }, "tool names"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := validateConfig(c)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateConfigAllFormats(t *testing.T) {
	for _, format := range Formats {
		c := Defaults()
		c.Format = format
		assert.NoError(t, validateConfig(c), format)
	}
}

func TestSaveConfig(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "dir", ".githooksrc.yaml")

	config := Defaults()
	config.Timeout = 2 * time.Minute
	config.ClangTidy.Build = "build"
	require.NoError(t, SaveConfig(config, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "console", decoded["format"])
	assert.Equal(t, "2m0s", decoded["timeout"])
	assert.NotContains(t, decoded, "File")

	violations, err := schema.ValidateFile(path)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	resetViper()
	tmpDir := setupTestDir(t)

	config := Defaults()
	config.Format = "yaml"
	config.Exclude = []string{"generated/**"}
	require.NoError(t, SaveConfig(config, filepath.Join(tmpDir, ".githooksrc.yaml")))

	loaded, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "yaml", loaded.Format)
	assert.Equal(t, []string{"generated/**"}, loaded.Exclude)
}

func TestSaveConfigInvalidPath(t *testing.T) {
	tmpDir := t.TempDir()
	blocker := filepath.Join(tmpDir, "file")
	writeFile(t, blocker, "x")

	err := SaveConfig(Defaults(), filepath.Join(blocker, "sub", "config.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error creating directory")
}

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ddxy18/git-hooks/internal/commitmsg"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFormat upper-cases its input: files already in upper case are
// "formatted".
const fakeFormat = `#!/bin/sh
for last; do :; done
tr a-z A-Z < "$last"
`

const fakeTidy = `#!/bin/sh
for last; do :; done
if grep -q BAD "$last"; then
  echo "$last:1:1: error: BAD found"
  exit 1
fi
`

type cmdEnv struct {
	dir    string
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// setupCmdTest isolates global command state and changes into a temp dir.
func setupCmdTest(t *testing.T) *cmdEnv {
	t.Helper()
	viper.Reset()

	env := &cmdEnv{dir: t.TempDir(), stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}

	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(env.dir))

	oldStdout, oldStderr := stdout, stderr
	oldConfig, oldSources, oldChanged, oldQuiet := configPath, checkSources, changed, quiet
	stdout, stderr = env.stdout, env.stderr
	configPath, checkSources, changed, quiet = "", nil, false, false

	t.Cleanup(func() {
		_ = os.Chdir(oldWd)
		stdout, stderr = oldStdout, oldStderr
		configPath, checkSources, changed, quiet = oldConfig, oldSources, oldChanged, oldQuiet
		viper.Reset()
	})
	return env
}

func requireTools(t *testing.T, tools ...string) {
	t.Helper()
	for _, tool := range tools {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%s not available", tool)
		}
	}
}

func (e *cmdEnv) write(t *testing.T, name, content string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(e.dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
	return path
}

func TestRunCommitMessage(t *testing.T) {
	tests := []struct {
		name    string
		message string
		wantErr error
	}{
		{"valid", "feat(parser): add lexer\n\nCloses #3\n", nil},
		{"bad type", "feature: add lexer\n", commitmsg.ErrHeader},
		{"capitalised subject", "fix: Add lexer\n", commitmsg.ErrSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupCmdTest(t)
			commitMsgPath = env.write(t, "COMMIT_EDITMSG", tt.message, 0644)

			err := runCommitMessage()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, exitFailure, exitCode(err))
		})
	}
}

func TestRunCommitMessage_ConfiguredTypes(t *testing.T) {
	env := setupCmdTest(t)
	env.write(t, ".githooksrc.yaml", "commitMessage:\n  types: [perf]\n", 0644)
	commitMsgPath = env.write(t, "MSG", "perf: faster walk\n", 0644)
	assert.NoError(t, runCommitMessage())

	commitMsgPath = env.write(t, "MSG2", "feat: faster walk\n", 0644)
	assert.ErrorIs(t, runCommitMessage(), commitmsg.ErrHeader)
}

func TestRunCommitMessage_MissingFile(t *testing.T) {
	env := setupCmdTest(t)
	commitMsgPath = filepath.Join(env.dir, "missing")

	err := runCommitMessage()
	require.Error(t, err)
	assert.Equal(t, exitFailure, exitCode(err))
}

func formatEnv(t *testing.T, extraConfig string) *cmdEnv {
	t.Helper()
	requireTools(t, "sh", "tr", "diff")
	env := setupCmdTest(t)
	tool := env.write(t, "bin/fake-format", fakeFormat, 0755)
	env.write(t, ".githooksrc.yaml", "clangFormat:\n  tool: "+tool+"\n"+extraConfig, 0644)
	return env
}

func TestRunCheck_FormatPasses(t *testing.T) {
	env := formatEnv(t, "")
	env.write(t, "src/a.cc", "INT A;\n", 0644)
	env.write(t, "src/sub/b.h", "INT B;\n", 0644)
	env.write(t, "src/notes.txt", "lower case\n", 0644)
	checkSources = []string{"src"}

	require.NoError(t, runCheck(context.Background(), "format"))
	assert.Equal(t, "✓ All passed\n", env.stdout.String())
}

func TestRunCheck_FormatFails(t *testing.T) {
	env := formatEnv(t, "")
	env.write(t, "src/a.cc", "INT A;\n", 0644)
	env.write(t, "src/b.cc", "int b;\n", 0644)
	env.write(t, "include/c.h", "int c;\n", 0644)
	checkSources = []string{"src", "include"}

	err := runCheck(context.Background(), "format")
	require.ErrorIs(t, err, errChecksFailed)
	assert.Equal(t, exitFailure, exitCode(err))

	out := env.stdout.String()
	assert.Contains(t, out, filepath.Join("src", "b.cc"))
	assert.Contains(t, out, filepath.Join("include", "c.h"))
	assert.Contains(t, out, "< int b;")
	assert.Contains(t, out, "> INT B;")
	assert.Contains(t, out, "1/3 passed, 2 failed")
}

func TestRunCheck_JSONReport(t *testing.T) {
	env := formatEnv(t, "format: json\n")
	env.write(t, "src/a.cc", "int a;\n", 0644)
	checkSources = []string{"src"}

	require.ErrorIs(t, runCheck(context.Background(), "fmt"), errChecksFailed)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(env.stdout.Bytes(), &doc))
	summary := doc["summary"].(map[string]any)
	assert.Equal(t, "format", summary["target"])
	assert.Equal(t, float64(1), summary["files_checked"])
	assert.Equal(t, float64(1), summary["diff_failures"])
}

func TestRunCheck_VerboseListing(t *testing.T) {
	env := formatEnv(t, "verbose: true\nconcurrency: 1\n")
	a := env.write(t, "src/a.cc", "INT A;\n", 0644)
	checkSources = []string{"src"}

	require.NoError(t, runCheck(context.Background(), "format"))
	assert.Contains(t, env.stderr.String(), "Checking 1 files with 1 workers:")
	assert.Contains(t, env.stderr.String(), a)
}

func TestRunCheck_NoFiles(t *testing.T) {
	env := formatEnv(t, "")
	require.NoError(t, os.Mkdir(filepath.Join(env.dir, "empty"), 0755))
	checkSources = []string{"empty"}

	require.NoError(t, runCheck(context.Background(), "format"))
	assert.Equal(t, "✓ All passed\n", env.stdout.String())
}

func TestRunCheck_Lint(t *testing.T) {
	requireTools(t, "sh", "grep")
	env := setupCmdTest(t)
	tool := env.write(t, "bin/fake-tidy", fakeTidy, 0755)
	env.write(t, ".githooksrc.yaml", "clangTidy:\n  tool: "+tool+"\n  build: build\n", 0644)
	env.write(t, "src/good.cc", "int good;\n", 0644)
	env.write(t, "src/bad.cc", "BAD\n", 0644)
	checkSources = []string{"src"}

	err := runCheck(context.Background(), "lint")
	require.ErrorIs(t, err, errChecksFailed)
	assert.Contains(t, env.stdout.String(), "BAD found")
	assert.Contains(t, env.stdout.String(), "1/2 passed, 1 failed (0 diff, 1 tool)")
}

func TestRunCheck_UsageErrors(t *testing.T) {
	t.Run("lint without build", func(t *testing.T) {
		setupCmdTest(t)
		checkSources = []string{"."}
		err := runCheck(context.Background(), "lint")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--build is required")
		assert.Equal(t, exitUsage, exitCode(err))
	})

	t.Run("no sources", func(t *testing.T) {
		setupCmdTest(t)
		err := runCheck(context.Background(), "format")
		require.Error(t, err)
		assert.Equal(t, exitUsage, exitCode(err))
	})

	t.Run("unknown target", func(t *testing.T) {
		setupCmdTest(t)
		checkSources = []string{"."}
		assert.Equal(t, exitUsage, exitCode(runCheck(context.Background(), "iwyu")))
	})

	t.Run("invalid config file", func(t *testing.T) {
		env := setupCmdTest(t)
		env.write(t, ".githooksrc.yaml", "format: html\n", 0644)
		checkSources = []string{"."}
		err := runCheck(context.Background(), "format")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error loading configuration")
		assert.Equal(t, exitUsage, exitCode(err))
	})
}

func TestRunCheck_Staged(t *testing.T) {
	requireTools(t, "git")
	env := formatEnv(t, "staged: true\n")
	env.write(t, "src/staged.cc", "int staged;\n", 0644)
	env.write(t, "src/unstaged.cc", "int unstaged;\n", 0644)

	for _, args := range [][]string{
		{"init", "-q"},
		{"add", "src/staged.cc"},
	} {
		c := exec.Command("git", args...)
		c.Dir = env.dir
		out, err := c.CombinedOutput()
		require.NoError(t, err, string(out))
	}
	checkSources = []string{"src"}

	require.ErrorIs(t, runCheck(context.Background(), "format"), errChecksFailed)
	out := env.stdout.String()
	assert.Contains(t, out, "staged.cc")
	assert.NotContains(t, out, "unstaged.cc")
	assert.Contains(t, out, "0/1 passed")
}

func TestRunInstall(t *testing.T) {
	env := setupCmdTest(t)
	oldDir, oldWrite, oldBuild := installHooksDir, installWriteConfig, installBuild
	t.Cleanup(func() { installHooksDir, installWriteConfig, installBuild = oldDir, oldWrite, oldBuild })

	installHooksDir = filepath.Join(env.dir, "hooks")
	installWriteConfig = true
	installBuild = "build"

	require.NoError(t, runInstall())
	assert.FileExists(t, filepath.Join(installHooksDir, "commit-msg"))
	assert.FileExists(t, filepath.Join(installHooksDir, "pre-commit"))
	assert.Contains(t, env.stdout.String(), "Installed")
	assert.Contains(t, env.stdout.String(), "Wrote .githooksrc.yaml")

	data, err := os.ReadFile(filepath.Join(env.dir, ".githooksrc.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "build: build")

	// A second run keeps the config and reinstalls our own hooks.
	env.stdout.Reset()
	require.NoError(t, runInstall())
	assert.Contains(t, env.stdout.String(), "Keeping existing .githooksrc.yaml")
}

func TestRunInstall_NotARepository(t *testing.T) {
	setupCmdTest(t)
	oldDir := installHooksDir
	t.Cleanup(func() { installHooksDir = oldDir })
	installHooksDir = ""

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	err := runInstall()
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestFinish(t *testing.T) {
	env := setupCmdTest(t)

	originalExitFunc := exitFunc
	var codes []int
	exitFunc = func(code int) { codes = append(codes, code) }
	defer func() { exitFunc = originalExitFunc }()

	finish(nil)
	assert.Empty(t, codes)

	finish(errChecksFailed)
	assert.Equal(t, []int{exitFailure}, codes)
	assert.Empty(t, env.stderr.String(), "failed checks are already reported")

	finish(usagef("bad flag %q", "-x"))
	assert.Equal(t, []int{exitFailure, exitUsage}, codes)
	assert.Equal(t, "Error: bad flag \"-x\"\n", env.stderr.String())

	env.stderr.Reset()
	finish(commitmsg.ErrSubject)
	assert.Equal(t, exitFailure, codes[2])
	assert.True(t, strings.HasPrefix(env.stderr.String(), "Error: <subject> must be provided"))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitFailure, exitCode(errors.New("boom")))
	assert.Equal(t, exitUsage, exitCode(usagef("bad")))
	assert.Equal(t, exitFailure, exitCode(errChecksFailed))
}

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"commit-message", "check", "install"} {
		assert.True(t, names[want], "missing command %s", want)
	}

	sub, _, err := rootCmd.Find([]string{"check", "tidy"})
	require.NoError(t, err)
	assert.Equal(t, "lint", sub.Name())

	sub, _, err = rootCmd.Find([]string{"check", "clang-format"})
	require.NoError(t, err)
	assert.Equal(t, "format", sub.Name())

	for _, flag := range []string{"config", "quiet", "verbose", "format", "output", "concurrency", "staged", "changed", "timeout"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), "missing flag %s", flag)
	}
	assert.NotNil(t, checkLintCmd.Flags().Lookup("extra-arg"))
	assert.NotNil(t, checkFormatCmd.Flags().Lookup("unified"))
}

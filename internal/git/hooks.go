package git

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// hookMarker identifies scripts written by InstallHooks.
const hookMarker = "# installed by git-hooks"

// HookOptions controls the scripts written by InstallHooks.
type HookOptions struct {
	// Binary is the command the hooks invoke.
	Binary string
	// Sources are the roots passed to the pre-commit checks.
	Sources []string
	// Build enables the lint check when set.
	Build string
	// Force overwrites hooks not written by git-hooks.
	Force bool
}

// HooksDir returns the hooks directory of the repository containing
// rootPath, honouring core.hooksPath.
func HooksDir(rootPath string) (string, error) {
	output, err := gitOutput(rootPath, "rev-parse", "--git-path", "hooks")
	if err != nil {
		return "", err
	}
	dir := strings.TrimSpace(output)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(rootPath, dir)
	}
	return dir, nil
}

// InstallHooks writes commit-msg and pre-commit scripts into hooksDir and
// returns the paths written.
func InstallHooks(hooksDir string, opts HookOptions) ([]string, error) {
	if opts.Binary == "" {
		opts.Binary = "git-hooks"
	}
	if len(opts.Sources) == 0 {
		opts.Sources = []string{"."}
	}

	if err := os.MkdirAll(hooksDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating hooks directory: %w", err)
	}

	hooks := []struct {
		name   string
		script string
	}{
		{"commit-msg", commitMsgScript(opts)},
		{"pre-commit", preCommitScript(opts)},
	}

	// Refuse before writing anything so a partial install never happens.
	for _, h := range hooks {
		path := filepath.Join(hooksDir, h.name)
		existing, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if !opts.Force && !bytes.Contains(existing, []byte(hookMarker)) {
			return nil, fmt.Errorf("%s already exists and was not installed by git-hooks (use --force to overwrite)", path)
		}
	}

	var written []string
	for _, h := range hooks {
		path := filepath.Join(hooksDir, h.name)
		if err := os.WriteFile(path, []byte(h.script), 0755); err != nil {
			return written, fmt.Errorf("error writing %s: %w", path, err)
		}
		// WriteFile keeps the mode of an existing file
		if err := os.Chmod(path, 0755); err != nil {
			return written, fmt.Errorf("error making %s executable: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func commitMsgScript(opts HookOptions) string {
	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString(hookMarker + "\n")
	fmt.Fprintf(&b, "exec %s commit-message --path \"$1\"\n", shellQuote(opts.Binary))
	return b.String()
}

func preCommitScript(opts HookOptions) string {
	var sources strings.Builder
	for _, s := range opts.Sources {
		fmt.Fprintf(&sources, " --source %s", shellQuote(s))
	}

	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString(hookMarker + "\n")
	b.WriteString("set -e\n")
	fmt.Fprintf(&b, "%s --staged check format%s\n", shellQuote(opts.Binary), sources.String())
	if opts.Build != "" {
		fmt.Fprintf(&b, "%s --staged check lint --build %s%s\n", shellQuote(opts.Binary), shellQuote(opts.Build), sources.String())
	}
	return b.String()
}

// shellQuote single-quotes s unless it is made only of safe characters.
func shellQuote(s string) string {
	if s != "" && strings.Trim(s, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_./=:+,@") == "" {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

package check

import (
	"context"
	"fmt"
	"strings"

	"github.com/ddxy18/git-hooks/internal/runner"
)

// Default tool names.
const (
	DefaultFormatTool = "clang-format"
	DefaultLintTool   = "clang-tidy"
	DefaultDiffTool   = "diff"
	DefaultStyle      = "file"
)

// FormatOptions configures a format check.
type FormatOptions struct {
	Roots []string
	// Tool is the formatter. Its stdout must be the canonical file content.
	Tool runner.Tool
	// Style is passed as --style=<Style>.
	Style string
	// Diff compares the file on disk with the formatter's stdout.
	Diff runner.Tool
	// Unified asks the diff tool for unified output (diff -u).
	Unified bool
}

// FormatChecker compares every file with the output of clang-format.
type FormatChecker struct {
	opts FormatOptions
}

// NewFormatChecker creates a FormatChecker, filling in default tool names.
func NewFormatChecker(opts FormatOptions) *FormatChecker {
	if opts.Tool.Name == "" {
		opts.Tool.Name = DefaultFormatTool
	}
	if opts.Diff.Name == "" {
		opts.Diff.Name = DefaultDiffTool
	}
	if opts.Style == "" {
		opts.Style = DefaultStyle
	}
	opts.Roots = cloneRoots(opts.Roots)
	return &FormatChecker{opts: opts}
}

// Options returns a copy of the checker's configuration.
func (c *FormatChecker) Options() FormatOptions {
	opts := c.opts
	opts.Roots = cloneRoots(c.opts.Roots)
	return opts
}

func (c *FormatChecker) Target() Target { return TargetFormat }

func (c *FormatChecker) Roots() []string { return cloneRoots(c.opts.Roots) }

func (c *FormatChecker) WithRoots(roots []string) Checker {
	opts := c.opts
	opts.Roots = cloneRoots(roots)
	return &FormatChecker{opts: opts}
}

// Commands returns the formatter and diff invocations for path.
func (c *FormatChecker) Commands(path string) (formatter, diff runner.Command) {
	formatter = runner.Command{
		Tool: c.opts.Tool,
		Args: []string{"--Werror", "--style=" + c.opts.Style, path},
	}
	diffArgs := []string{path, "-"}
	if c.opts.Unified {
		diffArgs = []string{"-u", path, "-"}
	}
	diff = runner.Command{Tool: c.opts.Diff, Args: diffArgs}
	return formatter, diff
}

// CheckFile pipes the formatter's output into diff. Diff exit status 0
// means the file is canonical, 1 means it differs and anything else is a
// tool failure.
func (c *FormatChecker) CheckFile(ctx context.Context, path string) *FileFailure {
	formatter, diff := c.Commands(path)
	res, err := runner.RunPiped(ctx, formatter, diff)
	if err != nil {
		f := ToolFailure(path, err)
		return &f
	}

	switch res.ExitCode {
	case 0:
		return nil
	case 1:
		f := DiffFailure(path, string(res.Stdout))
		return &f
	default:
		f := ToolFailure(path, fmt.Errorf("%s exited with status %d: %s",
			diff.Tool.Binary(), res.ExitCode, strings.TrimSpace(string(res.Stderr))))
		return &f
	}
}

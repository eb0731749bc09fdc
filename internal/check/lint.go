package check

import (
	"context"
	"fmt"

	"github.com/ddxy18/git-hooks/internal/runner"
)

// LintOptions configures a lint check.
type LintOptions struct {
	Roots []string
	Tool  runner.Tool
	// BuildPath is the directory holding compile_commands.json.
	BuildPath string
	// Checks is an optional --checks filter.
	Checks string
	// ExtraArgs are passed one by one as --extra-arg=<arg>.
	ExtraArgs []string
}

// LintChecker runs clang-tidy on every file with warnings treated as
// errors. The tool's exit status decides the outcome.
type LintChecker struct {
	opts LintOptions
}

// NewLintChecker creates a LintChecker, filling in the default tool name.
func NewLintChecker(opts LintOptions) *LintChecker {
	if opts.Tool.Name == "" {
		opts.Tool.Name = DefaultLintTool
	}
	opts.Roots = cloneRoots(opts.Roots)
	opts.ExtraArgs = cloneRoots(opts.ExtraArgs)
	return &LintChecker{opts: opts}
}

// Options returns a copy of the checker's configuration.
func (c *LintChecker) Options() LintOptions {
	opts := c.opts
	opts.Roots = cloneRoots(c.opts.Roots)
	opts.ExtraArgs = cloneRoots(c.opts.ExtraArgs)
	return opts
}

func (c *LintChecker) Target() Target { return TargetLint }

func (c *LintChecker) Roots() []string { return cloneRoots(c.opts.Roots) }

func (c *LintChecker) WithRoots(roots []string) Checker {
	opts := c.Options()
	opts.Roots = cloneRoots(roots)
	return &LintChecker{opts: opts}
}

// Command returns the clang-tidy invocation for path.
func (c *LintChecker) Command(path string) runner.Command {
	var args []string
	if c.opts.Checks != "" {
		args = append(args, "--checks="+c.opts.Checks)
	}
	args = append(args, "-p="+c.opts.BuildPath, "--warnings-as-errors=*")
	for _, extra := range c.opts.ExtraArgs {
		if extra != "" {
			args = append(args, "--extra-arg="+extra)
		}
	}
	args = append(args, path)
	return runner.Command{Tool: c.opts.Tool, Args: args}
}

// CheckFile runs the linter; a nonzero exit is a tool failure carrying the
// tool's output.
func (c *LintChecker) CheckFile(ctx context.Context, path string) *FileFailure {
	cmd := c.Command(path)
	res, err := runner.Run(ctx, cmd)
	if err != nil {
		f := ToolFailure(path, err)
		return &f
	}
	if res.Success() {
		return nil
	}

	msg := fmt.Sprintf("%s exited with status %d", cmd.Tool.Binary(), res.ExitCode)
	if out := res.Output(); out != "" {
		msg += "\n" + out
	}
	f := ToolFailure(path, &LintError{Message: msg, ExitCode: res.ExitCode})
	return &f
}

// LintError is the cause of a lint failure reported by the tool itself.
type LintError struct {
	Message  string
	ExitCode int
}

// Error implements the error interface.
func (e *LintError) Error() string {
	return e.Message
}

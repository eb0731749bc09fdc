// Package check runs an external formatter or linter over every eligible
// file below a set of roots, one worker per partition of the file list, and
// aggregates the per-file failures into a single report.
package check

import (
	"context"
	"fmt"
	"strings"
)

// Target selects which external tool a run uses.
type Target int

const (
	TargetFormat Target = iota
	TargetLint
)

// String returns the CLI name of the target.
func (t Target) String() string {
	switch t {
	case TargetFormat:
		return "format"
	case TargetLint:
		return "lint"
	default:
		return "unknown"
	}
}

// ParseTarget converts a CLI name to a Target.
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "format", "fmt", "clang-format":
		return TargetFormat, nil
	case "lint", "tidy", "clang-tidy":
		return TargetLint, nil
	default:
		return 0, fmt.Errorf("invalid check %q: valid checks are format, lint", s)
	}
}

// Checker is one configured check. Implementations are immutable after
// construction and safe for concurrent use by every worker.
type Checker interface {
	// Target identifies the check.
	Target() Target
	// CheckFile checks a single file and returns nil if it passed.
	CheckFile(ctx context.Context, path string) *FileFailure
	// Roots returns the directories the check scans.
	Roots() []string
	// WithRoots returns a copy of the checker that differs only in its roots.
	WithRoots(roots []string) Checker
}

func cloneRoots(roots []string) []string {
	if roots == nil {
		return nil
	}
	return append([]string(nil), roots...)
}

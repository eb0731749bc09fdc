package check

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// FailureKind distinguishes the two shapes a per-file failure can take.
type FailureKind int

const (
	// FailureDiff means the file differs from the formatter's canonical
	// output. The failure carries the literal diff text.
	FailureDiff FailureKind = iota
	// FailureTool means the tool reported problems, could not be started,
	// or the worker itself failed.
	FailureTool
)

// String returns the human-readable name of the kind.
func (k FailureKind) String() string {
	switch k {
	case FailureDiff:
		return "diff"
	case FailureTool:
		return "tool"
	default:
		return "unknown"
	}
}

// FileFailure is the result of one failed per-file check. An empty Path
// means the failure is not attributable to a single file.
type FileFailure struct {
	Path string
	Kind FailureKind
	Diff string
	Err  error
}

// DiffFailure records a formatting mismatch.
func DiffFailure(path, diff string) FileFailure {
	return FileFailure{Path: path, Kind: FailureDiff, Diff: diff}
}

// ToolFailure records a tool-reported problem or an invocation failure.
func ToolFailure(path string, err error) FileFailure {
	if err == nil {
		err = errors.New("check failed")
	}
	return FileFailure{Path: path, Kind: FailureTool, Err: err}
}

// Error implements the error interface.
func (f FileFailure) Error() string {
	path := f.Path
	if path == "" {
		path = "<unknown file>"
	}
	switch f.Kind {
	case FailureDiff:
		return fmt.Sprintf("%s\n%s", path, strings.TrimRight(f.Diff, "\n"))
	default:
		return fmt.Sprintf("%s\n%v", path, f.Err)
	}
}

// Unwrap returns the underlying cause of a tool failure.
func (f FileFailure) Unwrap() error {
	return f.Err
}

// Report is the aggregate of every per-file failure from one run. It is
// empty exactly when the run succeeded. Failures from different workers
// appear in no particular order; failures from one worker keep the order
// in which that worker's files were assigned.
type Report struct {
	Target       Target
	Roots        []string
	FilesChecked int
	Workers      int
	Duration     time.Duration
	Failures     []FileFailure
}

// Success reports whether no file failed.
func (r *Report) Success() bool {
	return len(r.Failures) == 0
}

// Merge appends the local failure lists of several workers.
func (r *Report) Merge(lists ...[]FileFailure) {
	for _, list := range lists {
		r.Failures = append(r.Failures, list...)
	}
}

// Count returns the number of failures of the given kind.
func (r *Report) Count(kind FailureKind) int {
	n := 0
	for _, f := range r.Failures {
		if f.Kind == kind {
			n++
		}
	}
	return n
}

// Err returns nil for a successful run and an *AggregateError otherwise.
func (r *Report) Err() error {
	if r.Success() {
		return nil
	}
	return &AggregateError{Failures: r.Failures}
}

// AggregateError collects every file failure of a run.
type AggregateError struct {
	Failures []FileFailure
}

// Error implements the error interface
func (e *AggregateError) Error() string {
	if len(e.Failures) == 0 {
		return "no failures"
	}
	if len(e.Failures) == 1 {
		return e.Failures[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d files failed:", len(e.Failures)))
	for _, f := range e.Failures {
		sb.WriteString("\n")
		sb.WriteString(f.Error())
	}
	return sb.String()
}

// Unwrap exposes every failure for errors.Is/As.
func (e *AggregateError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

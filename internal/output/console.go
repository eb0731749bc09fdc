package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ddxy18/git-hooks/internal/check"
	"github.com/ddxy18/git-hooks/internal/diffstat"
)

// ConsoleFormatter formats output for console display
type ConsoleFormatter struct {
	w       io.Writer
	quiet   bool
	verbose bool
	colors  palette
}

// NewConsoleFormatter creates a new ConsoleFormatter
func NewConsoleFormatter(w io.Writer, quiet, verbose, colorize bool) *ConsoleFormatter {
	return &ConsoleFormatter{
		w:       w,
		quiet:   quiet,
		verbose: verbose,
		colors:  newPalette(w, colorize),
	}
}

// Format writes every failure, then a one-line summary. In quiet mode
// nothing is written; the exit code carries the result.
func (f *ConsoleFormatter) Format(report *check.Report) error {
	if f.quiet {
		return nil
	}

	for _, failure := range sortedFailures(report) {
		f.printFailure(failure)
	}

	f.printSummary(report)
	return nil
}

func (f *ConsoleFormatter) printFailure(failure check.FileFailure) {
	path := failure.Path
	if path == "" {
		path = "<unknown file>"
	}
	fmt.Fprintf(f.w, "%s %s\n", f.colors.render(f.colors.fail, "✗"), path)

	switch failure.Kind {
	case check.FailureDiff:
		for _, line := range diffstat.Classify(failure.Diff) {
			fmt.Fprintf(f.w, "    %s\n", f.renderDiffLine(line))
		}
	default:
		msg := "check failed"
		if failure.Err != nil {
			msg = failure.Err.Error()
		}
		for _, line := range strings.Split(strings.TrimRight(msg, "\n"), "\n") {
			fmt.Fprintf(f.w, "    %s\n", f.colors.render(f.colors.muted, line))
		}
	}
	fmt.Fprintln(f.w)
}

func (f *ConsoleFormatter) renderDiffLine(line diffstat.Line) string {
	switch line.Kind {
	case diffstat.LineRemoved:
		return f.colors.render(f.colors.removed, line.Text)
	case diffstat.LineAdded:
		return f.colors.render(f.colors.added, line.Text)
	case diffstat.LineHeader:
		return f.colors.render(f.colors.header, line.Text)
	default:
		return line.Text
	}
}

// printSummary prints the summary statistics
func (f *ConsoleFormatter) printSummary(report *check.Report) {
	if report.Success() {
		if f.verbose {
			fmt.Fprintf(f.w, "%s: %d files checked with %d workers (%v)\n",
				report.Target, report.FilesChecked, report.Workers, report.Duration.Round(time.Millisecond))
		}
		fmt.Fprintln(f.w, f.colors.render(f.colors.pass, "✓ All passed"))
		return
	}

	passed := report.FilesChecked - len(report.Failures)
	if passed < 0 {
		passed = 0
	}
	fmt.Fprintf(f.w, "%s: %d/%d passed, %d failed (%d diff, %d tool) (%v)\n",
		report.Target, passed, report.FilesChecked, len(report.Failures),
		report.Count(check.FailureDiff), report.Count(check.FailureTool),
		report.Duration.Round(time.Millisecond))
}

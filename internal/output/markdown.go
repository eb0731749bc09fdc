package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ddxy18/git-hooks/internal/check"
)

// MarkdownFormatter formats output as Markdown
type MarkdownFormatter struct {
	w       io.Writer
	verbose bool
	now     func() time.Time
}

// NewMarkdownFormatter creates a new MarkdownFormatter
func NewMarkdownFormatter(w io.Writer, verbose bool) *MarkdownFormatter {
	return &MarkdownFormatter{w: w, verbose: verbose, now: time.Now}
}

// Format formats the report as Markdown
func (f *MarkdownFormatter) Format(report *check.Report) error {
	doc := NewDocument(report, f.now())
	var builder strings.Builder

	// Header
	fmt.Fprintf(&builder, "# git-hooks %s report\n\n", doc.Summary.Target)
	fmt.Fprintf(&builder, "**Generated:** %s\n\n", f.now().Format("2006-01-02 15:04:05"))
	if len(doc.Summary.Roots) > 0 {
		fmt.Fprintf(&builder, "**Roots:** %s\n\n", strings.Join(doc.Summary.Roots, ", "))
	}
	fmt.Fprintf(&builder, "**Duration:** %s\n\n", doc.Summary.Duration)

	// Summary Table
	builder.WriteString("## Summary\n\n")
	builder.WriteString("| Metric | Count |\n")
	builder.WriteString("|--------|-------|\n")
	fmt.Fprintf(&builder, "| Files Checked | %d |\n", doc.Summary.FilesChecked)
	fmt.Fprintf(&builder, "| Failed | %d |\n", doc.Summary.FailedFiles)
	fmt.Fprintf(&builder, "| Diff Failures | %d |\n", doc.Summary.DiffFailures)
	fmt.Fprintf(&builder, "| Tool Failures | %d |\n", doc.Summary.ToolFailures)
	if f.verbose {
		fmt.Fprintf(&builder, "| Lines Added | %d |\n", doc.Summary.AddedLines)
		fmt.Fprintf(&builder, "| Lines Deleted | %d |\n", doc.Summary.DeletedLines)
		fmt.Fprintf(&builder, "| Workers | %d |\n", doc.Summary.Workers)
	}
	builder.WriteString("\n")

	// Failures
	if len(doc.Results) > 0 {
		builder.WriteString("## Failures\n\n")
		for _, r := range doc.Results {
			file := r.File
			if file == "" {
				file = "<unknown file>"
			}
			fmt.Fprintf(&builder, "### %s\n\n", file)
			switch r.Kind {
			case check.FailureDiff.String():
				fmt.Fprintf(&builder, "%d added, %d deleted in %d hunks\n\n", r.Added, r.Deleted, r.Hunks)
				builder.WriteString("```diff\n")
				builder.WriteString(strings.TrimRight(r.Diff, "\n"))
				builder.WriteString("\n```\n\n")
			default:
				builder.WriteString("```\n")
				builder.WriteString(strings.TrimRight(r.Error, "\n"))
				builder.WriteString("\n```\n\n")
			}
		}
	}

	// Conclusion
	builder.WriteString("## Conclusion\n\n")
	if doc.Summary.Success {
		builder.WriteString("✓ All files passed\n")
	} else {
		fmt.Fprintf(&builder, "✗ %d files failed\n", doc.Summary.FailedFiles)
	}

	if _, err := io.WriteString(f.w, builder.String()); err != nil {
		return fmt.Errorf("error writing markdown: %w", err)
	}
	return nil
}

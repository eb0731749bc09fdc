package output

import (
	"sort"
	"time"

	"github.com/ddxy18/git-hooks/internal/check"
	"github.com/ddxy18/git-hooks/internal/diffstat"
)

// Version is reported in the header of machine-readable reports.
var Version = "dev"

// Formatter renders a check report.
type Formatter interface {
	Format(report *check.Report) error
}

// Document is the machine-readable form of a report, shared by the JSON and
// YAML formatters.
type Document struct {
	Header  Header   `json:"header" yaml:"header"`
	Summary Summary  `json:"summary" yaml:"summary"`
	Results []Result `json:"results" yaml:"results"`
}

// Header contains report metadata
type Header struct {
	Tool      string `json:"tool" yaml:"tool"`
	Version   string `json:"version" yaml:"version"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

// Summary contains summary statistics
type Summary struct {
	Target       string   `json:"target" yaml:"target"`
	Roots        []string `json:"roots" yaml:"roots"`
	FilesChecked int      `json:"files_checked" yaml:"files_checked"`
	FailedFiles  int      `json:"failed_files" yaml:"failed_files"`
	DiffFailures int      `json:"diff_failures" yaml:"diff_failures"`
	ToolFailures int      `json:"tool_failures" yaml:"tool_failures"`
	AddedLines   int      `json:"added_lines" yaml:"added_lines"`
	DeletedLines int      `json:"deleted_lines" yaml:"deleted_lines"`
	Workers      int      `json:"workers" yaml:"workers"`
	Duration     string   `json:"duration" yaml:"duration"`
	Success      bool     `json:"success" yaml:"success"`
}

// Result represents a single failed file
type Result struct {
	File    string `json:"file" yaml:"file"`
	Kind    string `json:"kind" yaml:"kind"`
	Diff    string `json:"diff,omitempty" yaml:"diff,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
	Added   int    `json:"added,omitempty" yaml:"added,omitempty"`
	Deleted int    `json:"deleted,omitempty" yaml:"deleted,omitempty"`
	Hunks   int    `json:"hunks,omitempty" yaml:"hunks,omitempty"`
}

// NewDocument converts a report. Results are sorted by file.
func NewDocument(report *check.Report, now time.Time) Document {
	doc := Document{
		Header: Header{
			Tool:      "git-hooks",
			Version:   Version,
			Timestamp: now.Format(time.RFC3339),
		},
		Summary: Summary{
			Target:       report.Target.String(),
			Roots:        report.Roots,
			FilesChecked: report.FilesChecked,
			FailedFiles:  len(report.Failures),
			DiffFailures: report.Count(check.FailureDiff),
			ToolFailures: report.Count(check.FailureTool),
			Workers:      report.Workers,
			Duration:     report.Duration.Round(time.Millisecond).String(),
			Success:      report.Success(),
		},
		Results: make([]Result, 0, len(report.Failures)),
	}
	if doc.Summary.Roots == nil {
		doc.Summary.Roots = []string{}
	}

	for _, f := range sortedFailures(report) {
		r := Result{File: f.Path, Kind: f.Kind.String()}
		if f.Kind == check.FailureDiff {
			st := diffstat.Compute(f.Diff)
			r.Diff = f.Diff
			r.Added, r.Deleted, r.Hunks = st.Added, st.Deleted, st.Hunks
			doc.Summary.AddedLines += st.Added
			doc.Summary.DeletedLines += st.Deleted
		} else if f.Err != nil {
			r.Error = f.Err.Error()
		}
		doc.Results = append(doc.Results, r)
	}
	return doc
}

// sortedFailures returns a copy of the failures ordered by path.
func sortedFailures(report *check.Report) []check.FileFailure {
	failures := append([]check.FileFailure(nil), report.Failures...)
	sort.SliceStable(failures, func(i, j int) bool {
		return failures[i].Path < failures[j].Path
	})
	return failures
}

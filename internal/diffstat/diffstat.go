// Package diffstat classifies and counts the lines of diff text produced by
// the diff tool, in either normal ("<"/">") or unified ("-"/"+") form.
package diffstat

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// LineKind is the role of one line of diff output.
type LineKind int

const (
	LineContext LineKind = iota
	LineRemoved
	LineAdded
	LineHeader
)

// Line is one classified line of diff output.
type Line struct {
	Kind LineKind
	Text string
}

// Stat summarises a diff.
type Stat struct {
	Added   int
	Deleted int
	Hunks   int
}

// Changed returns the total number of added and deleted lines.
func (s Stat) Changed() int {
	return s.Added + s.Deleted
}

// normalHunk matches the change commands of normal diff output: 4c4,5, 7d6, 2a3.
var normalHunk = regexp.MustCompile(`^\d+(,\d+)?[acd]\d+(,\d+)?$`)

// IsUnified reports whether text looks like unified diff output.
func IsUnified(text string) bool {
	return strings.HasPrefix(text, "--- ") || strings.Contains(text, "\n@@ ") || strings.HasPrefix(text, "@@ ")
}

// Compute counts added and deleted lines. Unified output is parsed with
// go-diff; normal output is counted by its "<" and ">" markers.
func Compute(text string) Stat {
	if text == "" {
		return Stat{}
	}
	if IsUnified(text) {
		if st, ok := computeUnified(text); ok {
			return st
		}
	}
	return computeFromLines(Classify(text))
}

func computeUnified(text string) (Stat, bool) {
	fd, err := diff.ParseFileDiff([]byte(text))
	if err != nil || len(fd.Hunks) == 0 {
		return Stat{}, false
	}

	st := Stat{Hunks: len(fd.Hunks)}
	for _, h := range fd.Hunks {
		for _, line := range bytes.Split(h.Body, []byte("\n")) {
			switch {
			case bytes.HasPrefix(line, []byte("+")):
				st.Added++
			case bytes.HasPrefix(line, []byte("-")):
				st.Deleted++
			}
		}
	}
	return st, true
}

func computeFromLines(lines []Line) Stat {
	var st Stat
	for _, l := range lines {
		switch l.Kind {
		case LineAdded:
			st.Added++
		case LineRemoved:
			st.Deleted++
		case LineHeader:
			if strings.HasPrefix(l.Text, "@@") || normalHunk.MatchString(l.Text) {
				st.Hunks++
			}
		}
	}
	return st
}

// Classify splits diff text into lines and assigns each a kind.
func Classify(text string) []Line {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}

	raw := strings.Split(text, "\n")
	lines := make([]Line, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, Line{Kind: classify(l), Text: l})
	}
	return lines
}

func classify(line string) LineKind {
	switch {
	case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"),
		strings.HasPrefix(line, "@@"), normalHunk.MatchString(line):
		return LineHeader
	case strings.HasPrefix(line, "<"), strings.HasPrefix(line, "-"):
		return LineRemoved
	case strings.HasPrefix(line, ">"), strings.HasPrefix(line, "+"):
		return LineAdded
	default:
		return LineContext
	}
}

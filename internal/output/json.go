package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ddxy18/git-hooks/internal/check"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	w      io.Writer
	indent bool
	now    func() time.Time
}

// NewJSONFormatter creates a new JSONFormatter
func NewJSONFormatter(w io.Writer, indent bool) *JSONFormatter {
	return &JSONFormatter{w: w, indent: indent, now: time.Now}
}

// Format formats the report as JSON
func (f *JSONFormatter) Format(report *check.Report) error {
	doc := NewDocument(report, f.now())

	var data []byte
	var err error
	if f.indent {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	if _, err := fmt.Fprintln(f.w, string(data)); err != nil {
		return fmt.Errorf("error writing JSON: %w", err)
	}
	return nil
}

package output

import (
	"fmt"
	"io"
	"time"

	"github.com/ddxy18/git-hooks/internal/check"
	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	w   io.Writer
	now func() time.Time
}

// NewYAMLFormatter creates a new YAMLFormatter
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{w: w, now: time.Now}
}

// Format formats the report as YAML
func (f *YAMLFormatter) Format(report *check.Report) error {
	enc := yaml.NewEncoder(f.w)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(report, f.now())); err != nil {
		return fmt.Errorf("error marshaling YAML: %w", err)
	}
	return enc.Close()
}

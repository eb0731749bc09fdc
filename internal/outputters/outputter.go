package outputters

import (
	"fmt"
	"io"
	"os"

	"github.com/ddxy18/git-hooks/internal/check"
	"github.com/ddxy18/git-hooks/internal/config"
	"github.com/ddxy18/git-hooks/internal/output"
)

// Outputter handles output formatting
type Outputter struct {
	config *config.Config
	stdout io.Writer
}

// NewOutputter creates a new Outputter writing to stdout unless the config
// names an output file.
func NewOutputter(config *config.Config, stdout io.Writer) *Outputter {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Outputter{
		config: config,
		stdout: stdout,
	}
}

// Format formats the report using the given format
func (o *Outputter) Format(report *check.Report, format string) error {
	w := o.stdout
	colorize := output.ColorEnabled(w)

	if o.config.Output != "" {
		file, err := os.Create(o.config.Output)
		if err != nil {
			return fmt.Errorf("error creating output file %s: %w", o.config.Output, err)
		}
		defer file.Close()
		w = file
		colorize = false
	}

	formatter, err := o.formatter(w, format, colorize)
	if err != nil {
		return err
	}
	return formatter.Format(report)
}

func (o *Outputter) formatter(w io.Writer, format string, colorize bool) (output.Formatter, error) {
	switch format {
	case "console":
		return output.NewConsoleFormatter(w, o.config.Quiet, o.config.Verbose, colorize), nil
	case "json":
		return output.NewJSONFormatter(w, true), nil
	case "yaml":
		return output.NewYAMLFormatter(w), nil
	case "markdown":
		return output.NewMarkdownFormatter(w, o.config.Verbose), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

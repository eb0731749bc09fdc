package output

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// ColorEnabled reports whether output to w should be coloured: w must be a
// terminal and NO_COLOR must be unset.
func ColorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// palette holds the styles used by the console formatter. With colour
// disabled text is written unchanged.
type palette struct {
	colorize bool
	fail     lipgloss.Style
	pass     lipgloss.Style
	removed  lipgloss.Style
	added    lipgloss.Style
	header   lipgloss.Style
	muted    lipgloss.Style
}

func newPalette(w io.Writer, colorize bool) palette {
	r := lipgloss.NewRenderer(w)
	base := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	return palette{
		colorize: colorize,
		fail:     base.Foreground(lipgloss.Color("9")),            // red
		pass:     base.Bold(true).Foreground(lipgloss.Color("10")), // green
		removed:  base.Foreground(lipgloss.Color("9")),
		added:    base.Foreground(lipgloss.Color("10")),
		header:   base.Foreground(lipgloss.Color("3")), // yellow
		muted:    base.Foreground(lipgloss.Color("7")), // gray
	}
}

func (p palette) render(style lipgloss.Style, text string) string {
	if !p.colorize {
		return text
	}
	return style.Render(text)
}

// Package report renders analysis results for the terminal and for files.
package report

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"fslog/internal/model"
)

// DefaultGapThreshold separates signaling lines that are further apart than
// this in the details view.
const DefaultGapThreshold = 4 * time.Second

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	muted   lipgloss.Style
	alert   lipgloss.Style
	ok      lipgloss.Style
	warning lipgloss.Style
	err     lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		header:  r.NewStyle().Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("242")),
		alert:   r.NewStyle().Foreground(lipgloss.Color("196")),
		ok:      r.NewStyle().Foreground(lipgloss.Color("42")),
		warning: r.NewStyle().Foreground(lipgloss.Color("214")),
		err:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	}
}

// Printer writes reports to one destination.
type Printer struct {
	w     io.Writer
	st    styles
	gap   time.Duration
	files []model.LogFile
}

// Option configures a Printer.
type Option func(*printerConfig)

type printerConfig struct {
	color bool
	gap   time.Duration
	files []model.LogFile
}

// WithColor turns ANSI styling on or off. Styling is still dropped when the
// destination is not a terminal.
func WithColor(on bool) Option {
	return func(c *printerConfig) { c.color = on }
}

// WithGapThreshold sets the pause length that gets a marker in the details view.
func WithGapThreshold(d time.Duration) Option {
	return func(c *printerConfig) { c.gap = d }
}

// WithFiles provides the loaded files so locations can be shown with paths.
func WithFiles(files []model.LogFile) Option {
	return func(c *printerConfig) { c.files = files }
}

// New creates a Printer writing to w.
func New(w io.Writer, opts ...Option) *Printer {
	cfg := printerConfig{color: true, gap: DefaultGapThreshold}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := lipgloss.NewRenderer(w)
	if !cfg.color {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{w: w, st: newStyles(r), gap: cfg.gap, files: cfg.files}
}

func (p *Printer) conclusion(c model.Conclusion, width int) string {
	text := pad(string(c), width)
	switch c {
	case model.OK:
		return p.st.ok.Render(text)
	case model.Warning:
		return p.st.warning.Render(text)
	case model.Error:
		return p.st.err.Render(text)
	default:
		return text
	}
}

func (p *Printer) path(file int) string {
	if file < 0 || file >= len(p.files) {
		return ""
	}
	return p.files[file].Path
}

// table lays out rows in left-aligned columns. Cells are padded before
// styling so escape codes never count towards the width.
type table struct {
	headers []string
	rows    [][]string
	styleFn func(row, col int, padded string) string
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) widths() []int {
	w := make([]int, len(t.headers))
	for i, h := range t.headers {
		w[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(w) && lipgloss.Width(cell) > w[i] {
				w[i] = lipgloss.Width(cell)
			}
		}
	}
	return w
}

func (t *table) render(header lipgloss.Style) string {
	widths := t.widths()
	last := len(widths) - 1

	var sb strings.Builder
	for i, h := range t.headers {
		cell := h
		if i < last {
			cell = pad(h, widths[i])
		}
		sb.WriteString(header.Render(cell))
		if i < last {
			sb.WriteString("  ")
		}
	}
	sb.WriteString("\n")

	for r, row := range t.rows {
		for i, cell := range row {
			if i > last {
				break
			}
			if i < last {
				cell = pad(cell, widths[i])
			}
			if t.styleFn != nil {
				cell = t.styleFn(r, i, cell)
			}
			sb.WriteString(cell)
			if i < last {
				sb.WriteString("  ")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func pad(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

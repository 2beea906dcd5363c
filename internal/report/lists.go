package report

import (
	"fmt"
	"sort"
	"strings"

	"fslog/internal/model"
	"fslog/internal/store"
)

// List prints items in columns, perLine to a row, under a title and
// followed by the count.
func (p *Printer) List(title string, items []string, perLine int) error {
	if perLine < 1 {
		perLine = 1
	}
	width := 0
	for _, it := range items {
		if len(it) > width {
			width = len(it)
		}
	}

	var sb strings.Builder
	sb.WriteString(p.st.title.Render(title) + "\n")
	for i, it := range items {
		sb.WriteString(pad(it, width))
		if (i+1)%perLine == 0 || i == len(items)-1 {
			sb.WriteString("\n")
		} else {
			sb.WriteString("  ")
		}
	}
	fmt.Fprintf(&sb, "Total: %d\n", len(items))
	_, err := fmt.Fprint(p.w, sb.String())
	return err
}

// Numbers prints the distinct call numbers and, when any, the numbers used
// by more than one session.
func (p *Printer) Numbers(numbers, duplicates []store.Count) error {
	if err := p.List("Call numbers:", values(numbers), 8); err != nil {
		return err
	}
	if len(duplicates) == 0 {
		return nil
	}
	dups := make([]string, len(duplicates))
	for i, d := range duplicates {
		dups[i] = fmt.Sprintf("%s (x%d)", d.Value, d.N)
	}
	fmt.Fprintln(p.w)
	return p.List("Duplicated numbers:", dups, 8)
}

// Files prints the loaded files in load order with their first timestamp.
func (p *Printer) Files(files []model.LogFile) error {
	t := &table{headers: []string{"#", "FIRST TIMESTAMP", "LINES", "PATH"}}
	for i, f := range files {
		start := "-"
		if !f.Start.IsZero() {
			start = model.FormatLogTime(f.Start)
		}
		t.add(fmt.Sprint(i), start, fmt.Sprint(len(f.Lines)), f.Path)
	}
	if _, err := fmt.Fprint(p.w, t.render(p.st.header)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(p.w, "\nTotal: %d\n", len(files))
	return err
}

// Ignored prints the lines that belong to no session, grouped by file.
func (p *Printer) Ignored(lines []model.IgnoredLine) error {
	var sb strings.Builder
	lastFile := -1
	for _, l := range lines {
		if l.File != lastFile {
			if lastFile >= 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(p.st.title.Render(p.fileLabel(l.File)) + "\n")
			lastFile = l.File
		}
		fmt.Fprintf(&sb, "%7d  %s\n", l.Line+1, l.Text)
	}
	fmt.Fprintf(&sb, "\nTotal: %d\n", len(lines))
	_, err := fmt.Fprint(p.w, sb.String())
	return err
}

// Stats prints the index summary, the conclusion counts and the tag counts.
func (p *Printer) Stats(sum store.Summary, tags []store.Count) error {
	var sb strings.Builder
	sb.WriteString(p.st.title.Render("Index") + "\n")
	fmt.Fprintf(&sb, "%-*s: %d\n", labelWidth, "files", sum.Files)
	fmt.Fprintf(&sb, "%-*s: %d\n", labelWidth, "sessions", sum.Sessions)
	fmt.Fprintf(&sb, "%-*s: %d\n", labelWidth, "empty", sum.Empty)
	fmt.Fprintf(&sb, "%-*s: %d\n", labelWidth, "ignored lines", sum.IgnoredLines)

	sb.WriteString("\n" + p.st.title.Render("Conclusions") + "\n")
	conclusions := make([]model.Conclusion, 0, len(sum.ByConclusion))
	for c := range sum.ByConclusion {
		conclusions = append(conclusions, c)
	}
	sort.Slice(conclusions, func(i, j int) bool { return conclusions[i] < conclusions[j] })
	for _, c := range conclusions {
		label := string(c)
		if c == model.Unclassified {
			label = "unclassified"
		}
		fmt.Fprintf(&sb, "%s: %d\n", p.conclusion(model.Conclusion(label), labelWidth), sum.ByConclusion[c])
	}

	sb.WriteString("\n" + p.st.title.Render("Events") + "\n")
	for _, t := range tags {
		fmt.Fprintf(&sb, "%-*s: %d\n", labelWidth, t.Value, t.N)
	}
	_, err := fmt.Fprint(p.w, sb.String())
	return err
}

func values(counts []store.Count) []string {
	out := make([]string, len(counts))
	for i, c := range counts {
		out[i] = c.Value
	}
	return out
}

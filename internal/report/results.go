package report

import (
	"fmt"
	"strings"

	"fslog/internal/model"
)

const nullNumber = "null"

var resultHeaders = []string{"CALL TIME", "UUID", "CALL NUMBER", "CONCLUSION", "NOTE"}

// Results prints one row per session followed by the total.
func (p *Printer) Results(sessions []*model.Session) error {
	if _, err := fmt.Fprint(p.w, p.resultTable(sessions)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(p.w, "\nTotal: %d\n", len(sessions))
	return err
}

func (p *Printer) resultTable(sessions []*model.Session) string {
	t := &table{headers: resultHeaders}
	for _, s := range sessions {
		number := s.CallNumber
		if number == "" {
			number = nullNumber
		}
		t.add(model.FormatLogTime(s.CallTime()), s.ID, number, string(s.Result.Conclusion), s.Result.Note)
	}
	t.styleFn = func(row, col int, cell string) string {
		s := sessions[row]
		switch {
		case col == 2 && s.CallNumber == "":
			return p.st.muted.Render(cell)
		case col == 3:
			return p.conclusion(s.Result.Conclusion, len(cell))
		}
		return cell
	}
	return t.render(p.st.header)
}

// Tally counts sessions per conclusion.
type Tally struct {
	OK, Warning, Error int
}

// Total is the number of classified sessions.
func (t Tally) Total() int {
	return t.OK + t.Warning + t.Error
}

// TallyOf counts the conclusions of sessions.
func TallyOf(sessions []*model.Session) Tally {
	var t Tally
	for _, s := range sessions {
		switch s.Result.Conclusion {
		case model.OK:
			t.OK++
		case model.Warning:
			t.Warning++
		case model.Error:
			t.Error++
		}
	}
	return t
}

// ResultFile renders the exported result summary: the table and the totals
// per conclusion.
func ResultFile(sessions []*model.Session) string {
	var sb strings.Builder
	sb.WriteString(plain().resultTable(sessions))
	t := TallyOf(sessions)
	fmt.Fprintf(&sb, "\ntotal:%d\nwarning:%d\nerror:%d\nok:%d\n", t.Total(), t.Warning, t.Error, t.OK)
	return sb.String()
}

func plain(opts ...Option) *Printer {
	return New(&strings.Builder{}, append([]Option{WithColor(false)}, opts...)...)
}

package report

import (
	"fmt"
	"strings"
	"time"

	"fslog/internal/model"
)

// Parties of a signaling message.
const (
	sideSwitch = "FS"
	sidePeer   = "PEER"
)

const (
	rule        = 100
	flowPerLine = 8
	flowIndent  = 16
	labelWidth  = 14
)

// Details prints the details view of every session followed by the total.
func (p *Printer) Details(sessions []*model.Session) error {
	for _, s := range sessions {
		if _, err := fmt.Fprint(p.w, p.DetailsOf(s)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(p.w, "%s\nTotal: %d\n", strings.Repeat("-", rule), len(sessions))
	return err
}

// DetailsOf renders one session: basic information, then the numbered
// signaling timeline with file headers and gap markers.
func (p *Printer) DetailsOf(s *model.Session) string {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("-", rule) + "\n")
	sb.WriteString(p.st.title.Render(banner(" Basic information ")) + "\n\n")

	field := func(label, value string) {
		fmt.Fprintf(&sb, "%-*s: %s\n", labelWidth, label, value)
	}

	field("call time", model.FormatLogTime(s.CallTime()))
	field("uuid", s.ID)

	from, to := parties(s)
	if from != "" {
		field("caller", from)
	}
	callee := to
	if callee == "" {
		callee = s.CallNumber
	}
	field("call number", callee)

	if media, ok := mediaOf(s); ok {
		field("media", media)
	}
	if reason, ok := hangupOf(s); ok {
		field("hangup reason", reason)
	}
	field("conclusion", p.conclusion(s.Result.Conclusion, 0))
	field("message flow", Flow(s.Result.Note))

	sb.WriteString("\n" + p.st.title.Render(banner(" Signaling ")) + "\n\n")
	sb.WriteString(p.timeline(s))
	sb.WriteString("\n")
	return sb.String()
}

func (p *Printer) timeline(s *model.Session) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", p.st.header.Render(fmt.Sprintf("%-4s %-28s %-7s %-14s %-20s %s",
		"NO.", "TIME", "LINE", "TYPE", "DIRECTION", "DETAILS")))

	var prev time.Time
	lastFile := -1
	for i, e := range s.Events {
		ts := model.ParseLogTime(s.Message(e.Location))
		if i > 0 && p.gap > 0 && !ts.Equal(model.Epoch) && !prev.Equal(model.Epoch) {
			if gap := ts.Sub(prev); gap > p.gap {
				sb.WriteString(p.gapMarker(gap))
			}
		}
		prev = ts

		if e.File != lastFile {
			sb.WriteString(p.st.muted.Render(p.fileLabel(e.File)) + "\n")
			lastFile = e.File
		}

		fmt.Fprintf(&sb, "%02d.  %-28s %-7d %-14s %-20s %s\n",
			i+1, model.FormatLogTime(ts), e.Line+1, e.Tag, Direction(e), strings.Join(e.Fields, " "))
	}
	return sb.String()
}

func (p *Printer) fileLabel(file int) string {
	if path := p.path(file); path != "" {
		return path
	}
	return fmt.Sprintf("file #%d", file)
}

func (p *Printer) gapMarker(gap time.Duration) string {
	label := fmt.Sprintf("gap: %s", gap.Truncate(time.Millisecond))
	return fmt.Sprintf("%s\n%s\n%s\n",
		center("↑", 40), p.st.alert.Render(center(label, 40)), center("↓", 40))
}

// Direction describes who sent the SIP message behind an event, e.g.
// "FS -> PEER INVITE". Events that are not SIP messages yield "".
func Direction(e model.Event) string {
	msg := func(from, to, what string) string {
		return fmt.Sprintf("%s -> %s %s", from, to, what)
	}
	switch e.Tag {
	case model.TagChannelState:
		switch strings.TrimSpace(e.Field(0)) {
		case "calling":
			return msg(sideSwitch, sidePeer, "INVITE")
		case "proceeding", "completing", "completed", "terminated":
			return msg(sidePeer, sideSwitch, strings.TrimSpace(e.Field(1)))
		}
	case model.TagRecvInvite:
		return msg(sidePeer, sideSwitch, "INVITE")
	case model.TagRecvBye:
		return msg(sidePeer, sideSwitch, "BYE")
	case model.TagSendBye:
		return msg(sideSwitch, sidePeer, "BYE")
	case model.TagSendCancel:
		return msg(sideSwitch, sidePeer, "CANCEL")
	}
	return ""
}

// parties returns the caller and callee numbers from the caller id change.
func parties(s *model.Session) (from, to string) {
	e, ok := s.Find(model.TagCallerID)
	if !ok {
		return "", ""
	}
	return e.Field(1), e.Field(3)
}

func mediaOf(s *model.Session) (string, bool) {
	e, ok := s.Find(model.TagRTP)
	if !ok || e.Field(0) == "" || e.Field(2) == "" {
		return "", false
	}
	return fmt.Sprintf("local %s:%s -> remote %s:%s (payload %s, ptime %s)",
		e.Field(0), e.Field(1), e.Field(2), e.Field(3), e.Field(4), e.Field(5)), true
}

// hangupOf prefers the first hangup event, falling back to a received BYE.
// A terminated channel response is shown next to the cause.
func hangupOf(s *model.Session) (string, bool) {
	var reason string
	for _, tag := range []model.Tag{model.TagHangup, model.TagRecvBye} {
		if e, ok := s.Find(tag); ok && strings.TrimSpace(e.Field(1)) != "" {
			reason = strings.TrimSpace(e.Field(1))
			break
		}
	}
	if reason == "" {
		return "", false
	}
	for _, e := range s.Events {
		if e.Tag == model.TagChannelState && strings.TrimSpace(e.Field(0)) == "terminated" {
			return fmt.Sprintf("%s (terminated %s)", reason, strings.TrimSpace(e.Field(1))), true
		}
	}
	return reason, true
}

// Flow lays out a classification note, wrapping after every few steps.
func Flow(note string) string {
	steps := strings.Split(note, "->")
	var sb strings.Builder
	for i, step := range steps {
		if i > 0 {
			sb.WriteString(" ->")
			if i%flowPerLine == 0 {
				sb.WriteString("\n" + strings.Repeat(" ", flowIndent))
			} else {
				sb.WriteString(" ")
			}
		}
		sb.WriteString(strings.TrimSpace(step))
	}
	return sb.String()
}

func banner(title string) string {
	n := rule - len(title)
	if n < 0 {
		return title
	}
	left := n / 2
	return strings.Repeat("*", left) + title + strings.Repeat("*", n-left)
}

func center(s string, width int) string {
	n := width - len([]rune(s))
	if n <= 0 {
		return s
	}
	return strings.Repeat(" ", n/2) + s + strings.Repeat(" ", n-n/2)
}

// DetailsFile renders the details view without styling for export.
func DetailsFile(files []model.LogFile, gap time.Duration, s *model.Session) string {
	return plain(WithFiles(files), WithGapThreshold(gap)).DetailsOf(s)
}

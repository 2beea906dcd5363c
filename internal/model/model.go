// Package model defines the domain types shared across the application.
package model

import (
	"sort"
	"time"
)

// Location addresses one raw line: the file's index in load order and the
// 0-based line number inside that file.
type Location struct {
	File int
	Line int
}

// Less orders locations by file, then by line.
func (l Location) Less(o Location) bool {
	if l.File != o.File {
		return l.File < o.File
	}
	return l.Line < o.Line
}

// Tag names the kind of signaling fact an event was extracted as.
type Tag string

const (
	TagCoreState    Tag = "core_state"
	TagChannelState Tag = "channel_state"
	TagCallState    Tag = "call_state"
	TagRecvInvite   Tag = "recv_invite"
	TagRTP          Tag = "rtp"
	TagCallerID     Tag = "caller_id"
	TagRecvBye      Tag = "recv_bye"
	TagHangup       Tag = "hangup"
	TagSendBye      Tag = "send_bye"
	TagSendCancel   Tag = "send_cancel"
)

// Event is a tagged occurrence in a session timeline. It points back into
// Session.Lines by location instead of copying the message text.
type Event struct {
	Location
	Tag    Tag
	Fields []string
}

// Field returns the i-th captured field, or "" when it does not exist.
func (e Event) Field(i int) string {
	if i < 0 || i >= len(e.Fields) {
		return ""
	}
	return e.Fields[i]
}

// Conclusion is the terminal classification of a session.
type Conclusion string

const (
	Unclassified Conclusion = ""
	OK           Conclusion = "OK"
	Warning      Conclusion = "WARNING"
	Error        Conclusion = "ERROR"
)

// Stage is one step of the call progression walked by the classifier.
type Stage string

const (
	StageCalling  Stage = "CALLING"
	StageRinging  Stage = "RINGING"
	StageTalking  Stage = "TALKING"
	StageHangup   Stage = "HANGUP"
	StageNotFound Stage = "NOT COMPLETE"
)

// Details holds the named predicates evaluated for a session.
// Terminated collects the channel events carrying a 4xx/5xx/6xx code.
type Details struct {
	Flags      map[string]bool
	Terminated []Event
}

// Flag looks up a boolean predicate. ok is false when the name was never evaluated.
func (d Details) Flag(name string) (value, ok bool) {
	value, ok = d.Flags[name]
	return value, ok
}

// Result is the classifier's verdict for one session.
type Result struct {
	Conclusion Conclusion
	Details    Details
	Note       string
	Path       []Stage
}

// Session is one call/channel lifecycle reconstructed from the logs.
type Session struct {
	ID         string
	Lines      map[Location]string
	StartTime  time.Time
	CallNumber string
	Events     []Event
	Result     Result
}

// Locations returns the session's line coordinates in logical order.
func (s *Session) Locations() []Location {
	locs := make([]Location, 0, len(s.Lines))
	for loc := range s.Lines {
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool { return locs[i].Less(locs[j]) })
	return locs
}

// Message returns the raw message stored at loc.
func (s *Session) Message(loc Location) string {
	return s.Lines[loc]
}

// Find returns the first event carrying tag.
func (s *Session) Find(tag Tag) (Event, bool) {
	for _, e := range s.Events {
		if e.Tag == tag {
			return e, true
		}
	}
	return Event{}, false
}

// Has reports whether any event carries tag.
func (s *Session) Has(tag Tag) bool {
	_, ok := s.Find(tag)
	return ok
}

// CallTime is the timestamp of the first tagged event's line.
// Sessions without events fall back to StartTime.
func (s *Session) CallTime() time.Time {
	if len(s.Events) == 0 {
		return s.StartTime
	}
	return ParseLogTime(s.Message(s.Events[0].Location))
}

// IgnoredLine is a raw line that carried no valid session token.
type IgnoredLine struct {
	Location
	Text string
}

// LogFile is one loaded log file. Start is the first timestamp found in it,
// or the zero time when the file has none.
type LogFile struct {
	Path  string
	Lines []string
	Start time.Time
}

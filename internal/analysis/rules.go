package analysis

import (
	"fmt"
	"regexp"
	"sort"

	"fslog/internal/model"
)

// Rule turns one kind of log message into a tagged event.
type Rule struct {
	Tag     model.Tag
	Pattern *regexp.Regexp
	Arity   int
	// Drop holds the capture positions removed before the fields are stored,
	// in descending order.
	Drop []int
}

// MustRule builds a Rule and panics when the pattern cannot yield arity
// groups or a drop position falls outside them.
func MustRule(tag model.Tag, pattern string, arity int, drop ...int) Rule {
	re := regexp.MustCompile(pattern)
	if re.NumSubexp() < arity {
		panic(fmt.Sprintf("rule %s: pattern has %d groups, want at least %d", tag, re.NumSubexp(), arity))
	}

	d := append([]int(nil), drop...)
	sort.Sort(sort.Reverse(sort.IntSlice(d)))
	for i, p := range d {
		if p < 0 || p >= arity {
			panic(fmt.Sprintf("rule %s: drop position %d out of range [0,%d)", tag, p, arity))
		}
		if i > 0 && d[i-1] == p {
			panic(fmt.Sprintf("rule %s: drop position %d listed twice", tag, p))
		}
	}

	return Rule{Tag: tag, Pattern: re, Arity: arity, Drop: d}
}

// Apply matches msg and returns the stored fields.
func (r Rule) Apply(msg string) ([]string, bool) {
	m, ok := search(r.Pattern, msg, r.Arity)
	if !ok {
		return nil, false
	}
	fields := make([]string, len(m))
	copy(fields, m)
	for _, p := range r.Drop {
		fields = append(fields[:p], fields[p+1:]...)
	}
	return fields, true
}

// Rules is an ordered rule table. The first rule that matches a line wins.
type Rules []Rule

// Match runs the table against msg.
func (rs Rules) Match(msg string) (model.Tag, []string, bool) {
	for _, r := range rs {
		if fields, ok := r.Apply(msg); ok {
			return r.Tag, fields, true
		}
	}
	return "", nil, false
}

// "952 Hangup" is the BYE received from the far end and must stay ahead of
// the generic Hangup rule, which matches the same line.
var defaultRules = Rules{
	MustRule(model.TagCoreState, `State Change (.*) -> (.*)`, 2),
	MustRule(model.TagChannelState, `entering state \[(.*)\]\[(.*)\]`, 2),
	MustRule(model.TagCallState, `Callstate Change (.*) -> (.*)`, 2),
	MustRule(model.TagRecvInvite, `receiving invite from (.*) version`, 1),
	MustRule(model.TagRTP, `AUDIO RTP \[(.*)\] (.*) port (\d+) -> (.*) port (\d+) codec: (\d+) ms: (\d+)`, 7, 0),
	MustRule(model.TagCallerID, `Flipping CID from "(.*)" <(.*)> to "(.*)" <(.*)>`, 4),
	MustRule(model.TagRecvBye, `952 Hangup (.*) \[(.*)\] \[(.*)\]`, 3, 0),
	MustRule(model.TagHangup, `Hangup (.*) \[(.*)\] \[(.*)\]`, 3, 0),
	MustRule(model.TagSendBye, `Sending BYE to(.*)`, 1, 0),
	MustRule(model.TagSendCancel, `Sending CANCEL to(.*)`, 1, 0),
}

// DefaultRules returns the FreeSWITCH tagging table.
func DefaultRules() Rules {
	return defaultRules
}

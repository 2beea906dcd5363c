package analysis

import (
	"strings"

	"fslog/internal/model"
)

// Predicate names stored in model.Details.Flags.
const (
	FlagCalling       = "calling_0"
	FlagProceeding180 = "proceeding_180"
	FlagProceeding183 = "proceeding_183"
	FlagCompleting    = "completing_200"
	FlagCompleted     = "completed_200"
	FlagReady         = "ready_200"
)

var coreTransitions = [][2]string{
	{"CS_NEW", "CS_INIT"},
	{"CS_INIT", "CS_ROUTING"},
	{"CS_ROUTING", "CS_CONSUME_MEDIA"},
	{"CS_CONSUME_MEDIA", "CS_EXECUTE"},
}

var callTransitions = [][2]string{
	{"DOWN", "RINGING"},
	{"DOWN", "EARLY"},
	{"DOWN", "ACTIVE"},
	{"EARLY", "RINGING"},
	{"EARLY", "ACTIVE"},
	{"RINGING", "ACTIVE"},
	{"DOWN", "HANGUP"},
	{"EARLY", "HANGUP"},
	{"RINGING", "HANGUP"},
	{"ACTIVE", "HANGUP"},
}

// terminatedCodes are the fuzzy codes whose channel events end a call in
// failure, in the order they are collected.
var terminatedCodes = []string{"4XX", "5XX", "6XX"}

// Transition names a state change predicate, e.g. "DOWN__ACTIVE".
func Transition(from, to string) string {
	return from + "__" + to
}

// BuildDetails evaluates every named predicate over events.
func BuildDetails(events []model.Event) model.Details {
	flags := make(map[string]bool, len(coreTransitions)+len(callTransitions)+6)

	for _, t := range coreTransitions {
		flags[Transition(t[0], t[1])] = matchEvent(events, model.TagCoreState, t[0], t[1])
	}
	for _, t := range callTransitions {
		flags[Transition(t[0], t[1])] = matchEvent(events, model.TagCallState, t[0], t[1])
	}

	flags[FlagCalling] = matchEvent(events, model.TagChannelState, "calling", "")
	flags[FlagProceeding180] = matchEvent(events, model.TagChannelState, "", "180")
	flags[FlagProceeding183] = matchEvent(events, model.TagChannelState, "", "183")
	flags[FlagCompleting] = matchEvent(events, model.TagChannelState, "completing", "")
	flags[FlagCompleted] = matchEvent(events, model.TagChannelState, "completed", "")
	flags[FlagReady] = matchEvent(events, model.TagChannelState, "ready", "")

	var terminated []model.Event
	for _, code := range terminatedCodes {
		terminated = append(terminated, channelCodes(events, code)...)
	}

	return model.Details{Flags: flags, Terminated: terminated}
}

// matchEvent reports whether an event with tag has the given first and
// second fields. An empty value matches any field.
func matchEvent(events []model.Event, tag model.Tag, first, second string) bool {
	for _, e := range events {
		if e.Tag != tag {
			continue
		}
		if first != "" && (len(e.Fields) < 1 || !sameField(e.Fields[0], first)) {
			continue
		}
		if second != "" && (len(e.Fields) < 2 || !sameField(e.Fields[1], second)) {
			continue
		}
		return true
	}
	return false
}

// channelCodes returns the channel-state events whose code matches a fuzzy
// pattern such as "4XX".
func channelCodes(events []model.Event, fuzzy string) []model.Event {
	re := FuzzyCode(fuzzy)
	var out []model.Event
	for _, e := range events {
		if e.Tag == model.TagChannelState && re.MatchString(strings.TrimSpace(e.Field(1))) {
			out = append(out, e)
		}
	}
	return out
}

func hasTag(events []model.Event, tag model.Tag) bool {
	for _, e := range events {
		if e.Tag == tag {
			return true
		}
	}
	return false
}

package analysis

import "fslog/internal/model"

// Case lists predicate values that must all hold. A predicate missing from
// the details never matches.
type Case map[string]bool

// Match checks the case against d.
func (c Case) Match(d model.Details) bool {
	for name, want := range c {
		got, ok := d.Flag(name)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Guard is satisfied when any of its cases match.
type Guard []Case

// Match checks the guard against d.
func (g Guard) Match(d model.Details) bool {
	for _, c := range g {
		if c.Match(d) {
			return true
		}
	}
	return false
}

var (
	casePlaced = Case{
		Transition("CS_INIT", "CS_ROUTING"):          true,
		Transition("CS_ROUTING", "CS_CONSUME_MEDIA"): true,
		FlagCalling: true,
	}

	caseRinging180    = Case{FlagProceeding180: true}
	caseRinging183    = Case{FlagProceeding183: true}
	caseRung180       = Case{Transition("DOWN", "RINGING"): true}
	caseRung183       = Case{Transition("DOWN", "EARLY"): true}
	caseRinging183180 = Case{
		Transition("DOWN", "EARLY"):    true,
		FlagProceeding183:              true,
		Transition("EARLY", "RINGING"): true,
		FlagProceeding180:              true,
	}

	caseAnswerInvite   = Case{Transition("DOWN", "ACTIVE"): true, FlagCompleting: true, FlagReady: true}
	caseAnsweredInvite = Case{Transition("DOWN", "ACTIVE"): true, FlagCompleted: true, FlagReady: true}
	caseAnswer180      = Case{Transition("RINGING", "ACTIVE"): true, FlagCompleting: true, FlagReady: true}
	caseAnswered180    = Case{Transition("RINGING", "ACTIVE"): true, FlagCompleted: true, FlagReady: true}
	caseAnswer183      = Case{Transition("EARLY", "ACTIVE"): true, FlagCompleting: true, FlagReady: true}
	caseAnswered183    = Case{Transition("EARLY", "ACTIVE"): true, FlagCompleted: true, FlagReady: true}

	caseHangupInvite = Case{Transition("DOWN", "HANGUP"): true}
	caseHangup180    = Case{Transition("RINGING", "HANGUP"): true}
	caseHangup183    = Case{Transition("EARLY", "HANGUP"): true}
	caseHangupActive = Case{Transition("ACTIVE", "HANGUP"): true}
)

// evidence is what the progression guards and labels look at.
type evidence struct {
	details model.Details
	inbound bool
	sentBye bool
}

// edge is one allowed step of the call progression.
type edge struct {
	from  model.Stage
	to    model.Stage
	guard Guard
	label func(ev evidence) []string
}

// progression is tried in order; the first edge leaving the current stage
// whose guard matches is taken.
var progression = []edge{
	{from: model.StageCalling, to: model.StageTalking, guard: Guard{caseAnswerInvite, caseAnsweredInvite}},
	{from: model.StageCalling, to: model.StageHangup, guard: Guard{caseHangupInvite}, label: hangupUnanswered},
	{from: model.StageCalling, to: model.StageRinging, guard: Guard{caseRinging180, caseRinging183, caseRinging183180, caseRung180, caseRung183}},
	{from: model.StageRinging, to: model.StageTalking, guard: Guard{caseAnswer180, caseAnswered180, caseAnswer183, caseAnswered183}},
	{from: model.StageRinging, to: model.StageHangup, guard: Guard{caseHangup180, caseHangup183}},
	{from: model.StageTalking, to: model.StageHangup, guard: Guard{caseHangupActive}},
}

func (e edge) labels(ev evidence) []string {
	if e.label != nil {
		return e.label(ev)
	}
	if e.to == model.StageHangup {
		return []string{hangupStep(ev)}
	}
	return []string{string(e.to)}
}

// hangupUnanswered labels a call torn down while still dialing. Early media
// seen only as a 183 is shown as a ringing step.
func hangupUnanswered(ev evidence) []string {
	if caseRinging183.Match(ev.details) {
		return []string{string(model.StageRinging) + "(183)", hangupStep(ev)}
	}
	return []string{hangupStep(ev)}
}

func hangupStep(ev evidence) string {
	return string(model.StageHangup) + direction(ev.sentBye)
}

func direction(sent bool) string {
	if sent {
		return "(S)"
	}
	return "(R)"
}

// walk follows the progression from the calling stage until no edge
// applies, returning the visited stages and the narrative steps.
func walk(ev evidence) ([]model.Stage, []string) {
	stage := model.StageCalling
	path := []model.Stage{stage}
	steps := []string{string(model.StageCalling) + direction(!ev.inbound)}

	for {
		next, ok := nextEdge(stage, ev.details)
		if !ok {
			return path, steps
		}
		steps = append(steps, next.labels(ev)...)
		stage = next.to
		path = append(path, stage)
	}
}

func nextEdge(from model.Stage, d model.Details) (edge, bool) {
	for _, e := range progression {
		if e.from == from && e.guard.Match(d) {
			return e, true
		}
	}
	return edge{}, false
}

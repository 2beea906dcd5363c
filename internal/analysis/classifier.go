package analysis

import (
	"fmt"
	"strings"

	"fslog/internal/model"
)

// normalReasons are hangup causes that do not indicate a failed call.
var normalReasons = map[string]bool{
	"NORMAL_CLEARING": true,
	"MANAGER_REQUEST": true,
}

const notComplete = "[NOT COMPLETE]"

// Classify stores a verdict on every session.
func (c *Context) Classify() {
	for _, s := range c.sessions {
		s.Result = Classify(s.Events)
	}
}

// Classify derives the conclusion and narrative for one event sequence.
//
// A call that was never placed (no routing into media with a "calling"
// channel state, and no inbound INVITE) is a WARNING. A placed call walks
// the progression; a call that went nowhere is a WARNING as well. Any
// abnormal hangup cause or 4xx/5xx/6xx response makes it an ERROR.
func Classify(events []model.Event) model.Result {
	d := BuildDetails(events)
	ev := evidence{
		details: d,
		inbound: hasTag(events, model.TagRecvInvite),
		sentBye: hasTag(events, model.TagSendBye),
	}

	if !casePlaced.Match(d) && !ev.inbound {
		return model.Result{
			Conclusion: model.Warning,
			Details:    d,
			Note:       notComplete,
			Path:       []model.Stage{model.StageNotFound},
		}
	}

	conclusion := model.OK
	path, steps := walk(ev)

	var b strings.Builder
	b.WriteByte('[')
	if len(path) == 1 {
		conclusion = model.Warning
		path = append(path, model.StageNotFound)
		b.WriteString(string(model.StageNotFound))
	} else {
		b.WriteString(strings.Join(steps, " -> "))
	}

	if state, reason, ok := hangupReason(events); ok {
		fmt.Fprintf(&b, "{[%s]%s}", state, reason)
		if !normalReasons[reason] {
			conclusion = model.Error
		}
	}

	if len(d.Terminated) > 0 {
		conclusion = model.Error
		fmt.Fprintf(&b, "(recv %s)", strings.TrimSpace(d.Terminated[0].Field(1)))
	}
	b.WriteByte(']')

	return model.Result{Conclusion: conclusion, Details: d, Note: b.String(), Path: path}
}

// hangupReason prefers the first explicit hangup event and falls back to the
// first received BYE.
func hangupReason(events []model.Event) (state, reason string, ok bool) {
	for _, tag := range []model.Tag{model.TagHangup, model.TagRecvBye} {
		for _, e := range events {
			if e.Tag != tag {
				continue
			}
			state, reason = strings.TrimSpace(e.Field(0)), strings.TrimSpace(e.Field(1))
			if reason != "" {
				return state, reason, true
			}
			break
		}
	}
	return "", "", false
}

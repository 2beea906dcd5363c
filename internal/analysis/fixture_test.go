package analysis

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"fslog/internal/model"
)

const leg = "sofia/external/6010@10.0.7.152:5080"

// clock hands out increasing log timestamps.
type clock struct{ t time.Time }

func newClock(start string) *clock {
	t, err := time.Parse(model.LogTimeLayout, start)
	if err != nil {
		panic(err)
	}
	return &clock{t: t}
}

func (c *clock) next() string {
	c.t = c.t.Add(1500 * time.Microsecond)
	return model.FormatLogTime(c.t)
}

func line(id, ts, text string) string {
	return fmt.Sprintf("%s %s [DEBUG] %s", id, ts, text)
}

// answeredOutbound is an outbound call answered without ringing and hung up
// by the far end.
func answeredOutbound(id string, c *clock) []string {
	return []string{
		line(id, c.next(), "switch_channel.c:1104 New Channel "+leg+" ["+id+"]"),
		line(id, c.next(), "switch_core_state_machine.c:473 ("+leg+") Running State Change CS_NEW"),
		line(id, c.next(), "switch_core_state_machine.c:40 ("+leg+") State Change CS_NEW -> CS_INIT"),
		line(id, c.next(), "switch_core_state_machine.c:40 ("+leg+") State Change CS_INIT -> CS_ROUTING"),
		line(id, c.next(), "switch_core_state_machine.c:40 ("+leg+") State Change CS_ROUTING -> CS_CONSUME_MEDIA"),
		line(id, c.next(), "sofia.c:6089 Channel "+leg+" entering state [calling][0]"),
		line(id, c.next(), "switch_rtp.c:2222 AUDIO RTP ["+leg+"] 10.0.7.176 port 24776 -> 192.168.0.178 port 7076 codec: 18 ms: 20"),
		line(id, c.next(), "switch_channel.c:3456 ("+leg+") Callstate Change DOWN -> ACTIVE"),
		line(id, c.next(), "sofia.c:6089 Channel "+leg+" entering state [completing][200]"),
		line(id, c.next(), "sofia.c:6089 Channel "+leg+" entering state [ready][200]"),
		line(id, c.next(), "sofia.c:952 Hangup "+leg+" [CS_CONSUME_MEDIA] [NORMAL_CLEARING]"),
		line(id, c.next(), "switch_channel.c:3456 ("+leg+") Callstate Change ACTIVE -> HANGUP"),
	}
}

// rejectedOutbound is an outbound call refused with 486 Busy Here.
func rejectedOutbound(id string, c *clock) []string {
	return []string{
		line(id, c.next(), "switch_core_state_machine.c:40 ("+leg+") State Change CS_NEW -> CS_INIT"),
		line(id, c.next(), "switch_core_state_machine.c:40 ("+leg+") State Change CS_INIT -> CS_ROUTING"),
		line(id, c.next(), "switch_core_state_machine.c:40 ("+leg+") State Change CS_ROUTING -> CS_CONSUME_MEDIA"),
		line(id, c.next(), "sofia.c:6089 Channel "+leg+" entering state [calling][0]"),
		line(id, c.next(), "sofia.c:6089 Channel "+leg+" entering state [terminated][486]"),
		line(id, c.next(), "switch_channel.c:3456 ("+leg+") Callstate Change DOWN -> HANGUP"),
		line(id, c.next(), "switch_channel.c:3100 Hangup "+leg+" [CS_CONSUME_MEDIA] [USER_BUSY]"),
	}
}

func newToken() string {
	return uuid.NewString()
}

func ev(tag model.Tag, fields ...string) model.Event {
	return model.Event{Tag: tag, Fields: fields}
}

func cs(from, to string) model.Event   { return ev(model.TagCoreState, from, to) }
func call(from, to string) model.Event { return ev(model.TagCallState, from, to) }
func ch(desc, code string) model.Event { return ev(model.TagChannelState, desc, code) }

// placed is the evidence of an outbound INVITE.
func placed() []model.Event {
	return []model.Event{
		cs("CS_NEW", "CS_INIT"),
		cs("CS_INIT", "CS_ROUTING"),
		cs("CS_ROUTING", "CS_CONSUME_MEDIA"),
		ch("calling", "0"),
	}
}

func with(base []model.Event, more ...model.Event) []model.Event {
	out := append([]model.Event(nil), base...)
	return append(out, more...)
}

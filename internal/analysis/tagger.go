package analysis

import "fslog/internal/model"

// Tag extracts the ordered event list of every session. Each line yields at
// most one event: the first rule that matches it.
func (c *Context) Tag() {
	for _, s := range c.sessions {
		s.Events = TagLines(c.rules, s)
	}
}

// TagLines runs rules over the session's lines in file, then line, order.
func TagLines(rules Rules, s *model.Session) []model.Event {
	var events []model.Event
	for _, loc := range s.Locations() {
		tag, fields, ok := rules.Match(s.Lines[loc])
		if !ok {
			continue
		}
		events = append(events, model.Event{Location: loc, Tag: tag, Fields: fields})
	}
	return events
}

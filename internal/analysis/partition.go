package analysis

import (
	"strings"

	"fslog/internal/model"
)

const (
	tokenMinLen     = 36
	tokenSeparators = 4
)

// Partition splits every loaded line into its session's timeline, or into
// the ignored lines when it does not start with a session token. Calling it
// again starts over from the loaded files.
func (c *Context) Partition() {
	c.reset()
	for f, file := range c.files {
		for i, line := range file.Lines {
			loc := model.Location{File: f, Line: i}
			id, msg, ok := splitToken(line)
			if !ok {
				c.ignored = append(c.ignored, model.IgnoredLine{Location: loc, Text: line})
				continue
			}

			s, seen := c.sessions[id]
			if !seen {
				s = &model.Session{
					ID:        id,
					Lines:     make(map[model.Location]string),
					StartTime: model.ParseLogTime(msg),
				}
				c.sessions[id] = s
			}
			s.Lines[loc] = msg
		}
	}
}

// splitToken separates the leading session token from the message, e.g.
// "4541eb63-e5b0-49f0-8d2c-31e06078013f 2016-03-21 17:41:14.701532 [DEBUG] ...".
func splitToken(line string) (id, msg string, ok bool) {
	pos := strings.IndexAny(line, " \t")
	if pos < 0 {
		return "", "", false
	}
	id = line[:pos]
	if !validToken(id) {
		return "", "", false
	}
	return id, strings.TrimRight(line[pos+1:], "\r\n"), true
}

func validToken(tok string) bool {
	return len(tok) >= tokenMinLen && strings.Count(tok, "-") == tokenSeparators
}

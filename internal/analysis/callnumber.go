package analysis

import (
	"regexp"

	"fslog/internal/model"
)

type numberRule struct {
	pattern *regexp.Regexp
	arity   int
	group   int
	// stop ends the scan of the current file once the rule matches.
	stop bool
}

var numberRules = []numberRule{
	// New Channel sofia/external/6010@10.0.7.152:5080 [4541eb63-...]
	{pattern: regexp.MustCompile(`New Channel sofia/(.*)/(\d*)@(.*?) \[`), arity: 3, group: 1},
	// Dialplan: sofia/internal/1000@10.0.7.152 Action transfer(6010 XML default)
	{pattern: regexp.MustCompile(`Dialplan: sofia/(.*)/(.*) Action transfer\((\d*) XML default\)`), arity: 3, group: 2, stop: true},
	// <1000>->6010 in context default
	{pattern: regexp.MustCompile(`<(\d*)>->(\d*) in context`), arity: 2, group: 1, stop: true},
}

// ExtractCallNumbers assigns every session its call number.
func (c *Context) ExtractCallNumbers() {
	for _, s := range c.sessions {
		s.CallNumber = CallNumber(s)
	}
}

// CallNumber scans the session file by file. Within a file every line is
// tried against all number rules; a later match overwrites an earlier one
// until a stopping rule matches. Files after the first one that yielded a
// number are not scanned. It returns "" when nothing matched.
func CallNumber(s *model.Session) string {
	var number string
	locs := s.Locations()
	for i := 0; i < len(locs); {
		file := locs[i].File
		found := false
	lines:
		for ; i < len(locs) && locs[i].File == file; i++ {
			msg := s.Lines[locs[i]]
			for _, r := range numberRules {
				m, ok := search(r.pattern, msg, r.arity)
				if !ok {
					continue
				}
				number = m[r.group]
				found = true
				if r.stop {
					break lines
				}
			}
		}
		if found {
			break
		}
	}
	return number
}

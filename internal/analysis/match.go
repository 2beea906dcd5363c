package analysis

import (
	"regexp"
	"strings"
)

// search finds the leftmost match of re in s and returns its first arity
// captured groups. A match with fewer groups than arity counts as no match.
func search(re *regexp.Regexp, s string, arity int) ([]string, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil || len(m)-1 < arity {
		return nil, false
	}
	return m[1 : 1+arity], true
}

// FuzzyCode compiles a response-code pattern such as "4XX" into an anchored
// regexp where every 'X' (either case) stands for one digit.
func FuzzyCode(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteByte('^')
	for _, r := range pattern {
		if r == 'X' || r == 'x' {
			b.WriteString(`\d`)
			continue
		}
		b.WriteString(regexp.QuoteMeta(string(r)))
	}
	b.WriteByte('$')
	return regexp.MustCompile(b.String())
}

// sameField compares a captured field against an expected value, ignoring
// surrounding whitespace. An empty expectation matches anything.
func sameField(got, want string) bool {
	if want == "" {
		return true
	}
	return strings.TrimSpace(got) == strings.TrimSpace(want)
}

package model

import (
	"regexp"
	"strings"
	"time"
)

// LogTimeLayout is the fixed-width timestamp that prefixes every message.
// Logs carry no zone: a parsed timestamp keeps the clock reading and is
// stamped as UTC.
const LogTimeLayout = "2006-01-02 15:04:05.000000"

// Epoch is the start time assigned when a message carries no parseable timestamp.
var Epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

var (
	logTimePrefix = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})\.(\d{1,6})\b`)
	logTimeAny    = regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2}) (\d{2}):(\d{2}):(\d{2}).(\d{6})`)
)

// ParseLogTime parses the timestamp at the start of msg. Microseconds shorter
// than six digits lost their leading zeros and are padded back. Unparseable
// input yields Epoch.
func ParseLogTime(msg string) time.Time {
	m := logTimePrefix.FindStringSubmatch(strings.TrimLeft(msg, " "))
	if m == nil {
		return Epoch
	}
	frac := strings.Repeat("0", 6-len(m[2])) + m[2]
	t, err := time.ParseInLocation(LogTimeLayout, m[1]+"."+frac, time.UTC)
	if err != nil {
		return Epoch
	}
	return t
}

// FindLogTime returns the first full timestamp found anywhere in line.
func FindLogTime(line string) (time.Time, bool) {
	loc := logTimeAny.FindStringIndex(line)
	if loc == nil {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-1-2 15:04:05.000000", line[loc[0]:loc[1]], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatLogTime renders t the way the logs print it.
func FormatLogTime(t time.Time) string {
	return t.Format(LogTimeLayout)
}

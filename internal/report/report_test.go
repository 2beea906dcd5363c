package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fslog/internal/model"
	"fslog/internal/store"
)

const (
	okID   = "4541eb63-e5b0-49f0-8d2c-31e06078013f"
	busyID = "9d1c2f7a-33a1-4c1e-9f55-0e7be1a0c2d4"
)

var files = []model.LogFile{
	{Path: "/var/log/freeswitch/freeswitch.log.1"},
	{Path: "/var/log/freeswitch/freeswitch.log"},
}

func at(sec int, usec int) string {
	return model.FormatLogTime(time.Date(2016, 3, 21, 17, 41, sec, usec*1000, time.UTC))
}

func answeredSession() *model.Session {
	lines := map[model.Location]string{
		{0, 3}: at(14, 1) + " [DEBUG] State Change CS_ROUTING -> CS_CONSUME_MEDIA",
		{0, 4}: at(14, 2) + " [DEBUG] Channel x entering state [calling][0]",
		{0, 5}: at(14, 3) + ` [DEBUG] Flipping CID from "Outbound Call" <6010> to "Extension 1000" <1000>`,
		{1, 0}: at(15, 0) + " [DEBUG] AUDIO RTP [x] 10.0.7.176 port 24776 -> 192.168.0.178 port 7076 codec: 18 ms: 20",
		{1, 1}: at(25, 0) + " [NOTICE] sofia.c:952 Hangup x [CS_EXCHANGE_MEDIA] [NORMAL_CLEARING]",
		{1, 2}: at(25, 1) + " [DEBUG] unrelated",
	}
	return &model.Session{
		ID:         okID,
		Lines:      lines,
		StartTime:  model.ParseLogTime(lines[model.Location{0, 3}]),
		CallNumber: "6010",
		Events: []model.Event{
			{Location: model.Location{0, 3}, Tag: model.TagCoreState, Fields: []string{"CS_ROUTING", "CS_CONSUME_MEDIA"}},
			{Location: model.Location{0, 4}, Tag: model.TagChannelState, Fields: []string{"calling", "0"}},
			{Location: model.Location{0, 5}, Tag: model.TagCallerID, Fields: []string{"Outbound Call", "6010", "Extension 1000", "1000"}},
			{Location: model.Location{1, 0}, Tag: model.TagRTP, Fields: []string{"10.0.7.176", "24776", "192.168.0.178", "7076", "18", "20"}},
			{Location: model.Location{1, 1}, Tag: model.TagRecvBye, Fields: []string{"CS_EXCHANGE_MEDIA", "NORMAL_CLEARING"}},
		},
		Result: model.Result{
			Conclusion: model.OK,
			Note:       "[CALLING(S) -> TALKING -> HANGUP(R){[CS_EXCHANGE_MEDIA]NORMAL_CLEARING}]",
		},
	}
}

func busySession() *model.Session {
	lines := map[model.Location]string{
		{1, 5}: at(30, 0) + " [DEBUG] Channel x entering state [terminated][486]",
		{1, 6}: at(30, 5) + " [NOTICE] Hangup x [CS_CONSUME_MEDIA] [USER_BUSY]",
	}
	return &model.Session{
		ID:        busyID,
		Lines:     lines,
		StartTime: model.ParseLogTime(lines[model.Location{1, 5}]),
		Events: []model.Event{
			{Location: model.Location{1, 5}, Tag: model.TagChannelState, Fields: []string{"terminated", "486"}},
			{Location: model.Location{1, 6}, Tag: model.TagHangup, Fields: []string{"CS_CONSUME_MEDIA", "USER_BUSY"}},
		},
		Result: model.Result{Conclusion: model.Error, Note: "[NOT COMPLETE{[CS_CONSUME_MEDIA]USER_BUSY}(recv 486)]"},
	}
}

func printer(buf *bytes.Buffer) *Printer {
	return New(buf, WithColor(false), WithFiles(files))
}

// --- Results ---

func TestResults_ShouldPrintOneAlignedRowPerSessionAndTotal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printer(&buf).Results([]*model.Session{answeredSession(), busySession()}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "CALL TIME"))
	assert.Contains(t, lines[1], "2016-03-21 17:41:14.000001  "+okID+"  6010")
	assert.Contains(t, lines[1], "OK")
	assert.Contains(t, lines[2], busyID+"  null")
	assert.Contains(t, lines[2], "ERROR")
	assert.Equal(t, "Total: 2", lines[4])

	uuidCol := strings.Index(lines[0], "UUID")
	assert.Equal(t, uuidCol, strings.Index(lines[1], okID))
	assert.Equal(t, uuidCol, strings.Index(lines[2], busyID))
}

func TestResultFile_ShouldAppendTotalsPerConclusion(t *testing.T) {
	got := ResultFile([]*model.Session{answeredSession(), busySession()})
	assert.True(t, strings.HasSuffix(got, "\ntotal:2\nwarning:0\nerror:1\nok:1\n"))
}

func TestTallyOf_ShouldIgnoreUnclassifiedSessions(t *testing.T) {
	s := &model.Session{}
	tally := TallyOf([]*model.Session{answeredSession(), busySession(), s})
	assert.Equal(t, Tally{OK: 1, Error: 1}, tally)
	assert.Equal(t, 2, tally.Total())
}

// --- Details ---

func TestDetailsOf_ShouldShowBasicInformation(t *testing.T) {
	var buf bytes.Buffer
	got := printer(&buf).DetailsOf(answeredSession())

	assert.Contains(t, got, "uuid          : "+okID)
	assert.Contains(t, got, "caller        : 6010")
	assert.Contains(t, got, "call number   : 1000")
	assert.Contains(t, got, "media         : local 10.0.7.176:24776 -> remote 192.168.0.178:7076 (payload 18, ptime 20)")
	assert.Contains(t, got, "hangup reason : NORMAL_CLEARING")
	assert.Contains(t, got, "conclusion    : OK")
	assert.Contains(t, got, "message flow  : [CALLING(S) -> TALKING -> HANGUP(R){[CS_EXCHANGE_MEDIA]NORMAL_CLEARING}]")
}

func TestDetailsOf_ShouldNumberEventsUnderTheirFile(t *testing.T) {
	var buf bytes.Buffer
	got := printer(&buf).DetailsOf(answeredSession())

	first := strings.Index(got, files[0].Path)
	second := strings.Index(got, files[1].Path)
	require.True(t, first >= 0 && second > first)
	assert.Contains(t, got, "01.  2016-03-21 17:41:14.000001")
	assert.Regexp(t, `02\.  \S+ \S+\s+5\s+channel_state\s+FS -> PEER INVITE\s+calling 0`, got)
	assert.Regexp(t, `05\.  \S+ \S+\s+2\s+recv_bye\s+PEER -> FS BYE`, got)
}

func TestDetailsOf_WhenSignalingPausesLongerThanThreshold_ShouldMarkGap(t *testing.T) {
	var buf bytes.Buffer
	got := New(&buf, WithColor(false), WithGapThreshold(4*time.Second)).DetailsOf(answeredSession())

	assert.Equal(t, 1, strings.Count(got, "gap: "))
	assert.Contains(t, got, "gap: 10s")
	assert.Contains(t, got, "file #0")
}

func TestDetailsOf_WhenGapThresholdDisabled_ShouldNotMarkGaps(t *testing.T) {
	var buf bytes.Buffer
	got := New(&buf, WithColor(false), WithGapThreshold(0)).DetailsOf(answeredSession())
	assert.NotContains(t, got, "gap: ")
}

func TestDetailsOf_WhenCallTerminatedWithCode_ShouldShowItWithReason(t *testing.T) {
	var buf bytes.Buffer
	got := printer(&buf).DetailsOf(busySession())

	assert.Contains(t, got, "hangup reason : USER_BUSY (terminated 486)")
	assert.NotContains(t, got, "caller        :")
	assert.Contains(t, got, "call number   : \n")
}

func TestDirection_ShouldFollowSIPMessageFlow(t *testing.T) {
	tests := map[string]model.Event{
		"FS -> PEER INVITE": {Tag: model.TagChannelState, Fields: []string{"calling", "0"}},
		"PEER -> FS 183":    {Tag: model.TagChannelState, Fields: []string{"proceeding", "183"}},
		"PEER -> FS 486":    {Tag: model.TagChannelState, Fields: []string{"terminated", "486"}},
		"PEER -> FS INVITE": {Tag: model.TagRecvInvite},
		"PEER -> FS BYE":    {Tag: model.TagRecvBye},
		"FS -> PEER BYE":    {Tag: model.TagSendBye},
		"FS -> PEER CANCEL": {Tag: model.TagSendCancel},
		"":                  {Tag: model.TagCoreState, Fields: []string{"CS_NEW", "CS_INIT"}},
	}
	for want, e := range tests {
		assert.Equal(t, want, Direction(e))
	}
}

func TestFlow_WhenNoteHasManySteps_ShouldWrap(t *testing.T) {
	steps := make([]string, 10)
	for i := range steps {
		steps[i] = "S"
	}
	got := Flow(strings.Join(steps, " -> "))
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, 8, strings.Count(lines[0], "S"))
	assert.True(t, strings.HasPrefix(lines[1], strings.Repeat(" ", flowIndent)+"S -> S"))
}

// --- lists ---

func TestList_ShouldWrapItemsAndPrintTotal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printer(&buf).List("UUIDs:", []string{"a", "bb", "c"}, 2))
	assert.Equal(t, "UUIDs:\na   bb\nc \nTotal: 3\n", buf.String())
}

func TestNumbers_WhenDuplicatesExist_ShouldListThemSeparately(t *testing.T) {
	var buf bytes.Buffer
	err := printer(&buf).Numbers(
		[]store.Count{{Value: "6010", N: 2}, {Value: "7000", N: 1}},
		[]store.Count{{Value: "6010", N: 2}},
	)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "6010  7000\nTotal: 2\n")
	assert.Contains(t, buf.String(), "Duplicated numbers:\n6010 (x2)\nTotal: 1\n")
}

func TestFiles_ShouldShowFirstTimestampOrDash(t *testing.T) {
	var buf bytes.Buffer
	start := time.Date(2016, 3, 21, 17, 0, 0, 0, time.UTC)
	require.NoError(t, printer(&buf).Files([]model.LogFile{
		{Path: "a.log", Lines: []string{"x", "y"}, Start: start},
		{Path: "b.log"},
	}))
	assert.Contains(t, buf.String(), "2016-03-21 17:00:00.000000  2      a.log")
	assert.Regexp(t, `1\s+-\s+0\s+b.log`, buf.String())
}

func TestIgnored_ShouldGroupByFile(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printer(&buf).Ignored([]model.IgnoredLine{
		{Location: model.Location{0, 0}, Text: "banner"},
		{Location: model.Location{1, 9}, Text: "tail"},
	}))
	assert.Equal(t,
		files[0].Path+"\n      1  banner\n\n"+files[1].Path+"\n     10  tail\n\nTotal: 2\n",
		buf.String())
}

func TestStats_ShouldPrintCounts(t *testing.T) {
	var buf bytes.Buffer
	err := printer(&buf).Stats(
		store.Summary{Files: 2, Sessions: 3, Empty: 1, IgnoredLines: 4,
			ByConclusion: map[model.Conclusion]int{model.OK: 2, model.Error: 1}},
		[]store.Count{{Value: "core_state", N: 9}},
	)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "sessions      : 3")
	assert.Contains(t, out, "ERROR         : 1")
	assert.Contains(t, out, "OK            : 2")
	assert.Contains(t, out, "core_state    : 9")
}

// --- export ---

func TestParseKind_ShouldAcceptKnownKindsOnly(t *testing.T) {
	k, err := ParseKind("Details")
	require.NoError(t, err)
	assert.Equal(t, KindDetails, k)

	_, err = ParseKind("pcap")
	assert.Error(t, err)
}

func TestExport_WhenKindAll_ShouldWriteEveryFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	ex := Exporter{Dir: dir, Files: files, Gap: DefaultGapThreshold}

	paths, err := ex.Export(KindAll, "fslog", []*model.Session{answeredSession(), busySession()})
	require.NoError(t, err)

	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	assert.Equal(t, []string{
		"fslog.result",
		"6010__" + okID + ".log",
		"null__" + busyID + ".log",
		"6010__" + okID + "__OK.details",
		"null__" + busyID + "__ERROR.details",
	}, names)

	raw, err := os.ReadFile(filepath.Join(dir, "6010__"+okID+".log"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "call number: 6010\nuuid: "+okID+"\n")
	assert.Contains(t, string(raw), files[1].Path+"\n      1  ")
	assert.Contains(t, string(raw), "      3  "+at(25, 1)+" [DEBUG] unrelated")

	details, err := os.ReadFile(filepath.Join(dir, "null__"+busyID+"__ERROR.details"))
	require.NoError(t, err)
	assert.NotContains(t, string(details), "\x1b[")
	assert.Contains(t, string(details), "USER_BUSY (terminated 486)")
}

func TestExport_WhenKindResult_ShouldOnlyWriteSummary(t *testing.T) {
	ex := Exporter{Dir: t.TempDir()}
	paths, err := ex.Export(KindResult, "day1", []*model.Session{busySession()})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, "day1.result", filepath.Base(paths[0]))
}

func TestExport_WhenDirCannotBeCreated_ShouldFail(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := Exporter{Dir: filepath.Join(blocker, "out")}.Export(KindAll, "x", nil)
	assert.Error(t, err)
}

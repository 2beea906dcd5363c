package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fslog/internal/model"
)

func sessionOf(lines map[model.Location]string) *model.Session {
	return &model.Session{ID: newToken(), Lines: lines}
}

func TestCallNumber_WhenOnlyNewChannelSeen_ShouldUseItsExtension(t *testing.T) {
	s := sessionOf(map[model.Location]string{
		{File: 0, Line: 0}: "switch_channel.c:1104 New Channel sofia/external/6010@10.0.7.152:5080 [x]",
		{File: 0, Line: 1}: "State Change CS_NEW -> CS_INIT",
	})
	assert.Equal(t, "6010", CallNumber(s))
}

func TestCallNumber_WhenTransferFollowsNewChannel_ShouldPreferTransferTarget(t *testing.T) {
	s := sessionOf(map[model.Location]string{
		{File: 0, Line: 0}: "New Channel sofia/internal/1000@10.0.7.152 [x]",
		{File: 0, Line: 1}: "Dialplan: sofia/internal/1000@10.0.7.152 Action transfer(6010 XML default)",
		{File: 0, Line: 2}: "New Channel sofia/internal/2000@10.0.7.152 [x]",
	})
	assert.Equal(t, "6010", CallNumber(s))
}

func TestCallNumber_WhenContextEntrySeen_ShouldUseTargetExtension(t *testing.T) {
	s := sessionOf(map[model.Location]string{
		{File: 0, Line: 0}: "Processing Extension 1000 <1000>->6010 in context public",
	})
	assert.Equal(t, "6010", CallNumber(s))
}

func TestCallNumber_WhenEarlierFileMatched_ShouldSkipLaterFiles(t *testing.T) {
	s := sessionOf(map[model.Location]string{
		{File: 0, Line: 4}: "New Channel sofia/external/6010@10.0.7.152:5080 [x]",
		{File: 1, Line: 0}: "Dialplan: sofia/internal/1000@10.0.7.152 Action transfer(7000 XML default)",
	})
	assert.Equal(t, "6010", CallNumber(s))
}

func TestCallNumber_WhenFirstFileHasNoMatch_ShouldKeepScanning(t *testing.T) {
	s := sessionOf(map[model.Location]string{
		{File: 0, Line: 0}: "State Change CS_NEW -> CS_INIT",
		{File: 1, Line: 3}: "Callstate Change DOWN -> ACTIVE",
		{File: 2, Line: 7}: "<1000>->7000 in context default",
	})
	assert.Equal(t, "7000", CallNumber(s))
}

func TestCallNumber_WhenNothingMatches_ShouldReturnEmpty(t *testing.T) {
	s := sessionOf(map[model.Location]string{{File: 0, Line: 0}: "Callstate Change DOWN -> ACTIVE"})
	assert.Equal(t, "", CallNumber(s))
}

func TestExtractCallNumbers_ShouldFillEverySession(t *testing.T) {
	a, b := newToken(), newToken()
	c := newClock("2016-03-21 17:41:14.000000")
	ctx := New([]model.LogFile{{Lines: append(answeredOutbound(a, c), rejectedOutbound(b, c)...)}})
	ctx.Partition()
	ctx.ExtractCallNumbers()

	sa, _ := ctx.Session(a)
	sb, _ := ctx.Session(b)
	assert.Equal(t, "6010", sa.CallNumber)
	assert.Equal(t, "", sb.CallNumber)
}

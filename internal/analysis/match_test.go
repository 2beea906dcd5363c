package analysis

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- FuzzyCode ---

func TestFuzzyCode_WhenPatternIs4XX_ShouldMatchOnlyThreeDigitCodesStartingWith4(t *testing.T) {
	re := FuzzyCode("4XX")
	assert.True(t, re.MatchString("486"))
	assert.True(t, re.MatchString("404"))
	assert.False(t, re.MatchString("48"))
	assert.False(t, re.MatchString("584"))
	assert.False(t, re.MatchString("4861"))
	assert.False(t, re.MatchString("4a6"))
}

func TestFuzzyCode_WhenWildcardIsLowercase_ShouldStillMatchDigits(t *testing.T) {
	assert.True(t, FuzzyCode("5xx").MatchString("503"))
	assert.True(t, FuzzyCode("6xX").MatchString("603"))
}

func TestFuzzyCode_WhenPatternHasNoWildcard_ShouldMatchExactly(t *testing.T) {
	re := FuzzyCode("183")
	assert.True(t, re.MatchString("183"))
	assert.False(t, re.MatchString("180"))
}

// --- search ---

func TestSearch_WhenMatchHasEnoughGroups_ShouldReturnFirstArityGroups(t *testing.T) {
	re := regexp.MustCompile(`(\w+)=(\w+);(\w+)`)
	got, ok := search(re, "x a=b;c y", 2)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestSearch_WhenArityExceedsGroups_ShouldReportNoMatch(t *testing.T) {
	re := regexp.MustCompile(`(\w+)=(\w+)`)
	_, ok := search(re, "a=b", 3)
	assert.False(t, ok)
}

func TestSearch_WhenPatternDoesNotMatch_ShouldReportNoMatch(t *testing.T) {
	_, ok := search(regexp.MustCompile(`Hangup (.*)`), "nothing here", 1)
	assert.False(t, ok)
}

// --- sameField ---

func TestSameField_ShouldIgnoreSurroundingWhitespaceAndTreatEmptyAsWildcard(t *testing.T) {
	assert.True(t, sameField(" CS_INIT ", "CS_INIT"))
	assert.True(t, sameField("anything", ""))
	assert.False(t, sameField("CS_INIT", "CS_NEW"))
}

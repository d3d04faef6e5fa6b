package analyzer

import (
	"context"
	"strings"
	"testing"

	"github.com/arbiter-social/arbiter/moderation/setstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAnalyzer(t *testing.T) *Analyzer {
	a, err := New(context.Background(), setstore.NewDefaultSetStore())
	require.NoError(t, err)
	return a
}

func TestAnalyzeCleanText(t *testing.T) {
	assert := assert.New(t)
	a := testAnalyzer(t)
	s := DefaultSettings()

	fixtures := []string{
		"",
		"This is a nice post about my day!",
		"Just planted some tomatoes in the garden.",
		"Congrats on the new job, so happy for you both",
	}
	for _, text := range fixtures {
		res := a.Analyze(text, s)
		assert.False(res.ShouldFlag, "text: %q", text)
		assert.Equal(ActionApprove, res.SuggestedAction, "text: %q", text)
		assert.Equal(SeverityLow, res.Severity, "text: %q", text)
		assert.Empty(res.Tags, "text: %q", text)
		assert.Empty(res.FlagReason, "text: %q", text)
	}
}

func TestAnalyzeThreat(t *testing.T) {
	assert := assert.New(t)
	a := testAnalyzer(t)

	res := a.Analyze("I will kill you if you keep posting", DefaultSettings())
	assert.Greater(res.ThreatScore, 0.3)
	assert.Equal(SeverityHigh, res.Severity)
	assert.Equal(ActionBlock, res.SuggestedAction)
	assert.True(res.ShouldFlag)
	assert.Contains(res.Tags, TagPotentialThreat)
}

func TestAnalyzeSpam(t *testing.T) {
	assert := assert.New(t)
	a := testAnalyzer(t)

	res := a.Analyze("BUY NOW!!! CLICK HERE FOR FREE MONEY!!! LIMITED TIME OFFER!!!", DefaultSettings())
	assert.Contains(res.Tags, TagPotentialSpam)
	assert.True(res.ShouldFlag)

	// word repetition heuristic
	res = a.Analyze(strings.Repeat("win big ", 20), DefaultSettings())
	assert.GreaterOrEqual(res.SpamScore, 0.3)

	// link stuffing
	res = a.Analyze("see one.example.com and two.example.com and three.example.com", DefaultSettings())
	assert.GreaterOrEqual(res.SpamScore, 0.3)
}

func TestAnalyzePersonalInfo(t *testing.T) {
	assert := assert.New(t)
	a := testAnalyzer(t)

	res := a.Analyze("Call me at 555-123-4567 or email john@example.com", DefaultSettings())
	assert.Contains(res.Tags, TagPersonalInfo)
	assert.True(res.ShouldFlag)
	assert.InDelta(0.8, res.PersonalInfoScore, 0.001)
}

func TestAnalyzeProfanity(t *testing.T) {
	assert := assert.New(t)
	a := testAnalyzer(t)

	res := a.Analyze("this is fucking bullshit", DefaultSettings())
	assert.InDelta(0.3, res.ProfanityScore, 0.001)

	// masked profanity scores higher than the unmasked baseline, and crosses
	// the tag disclosure threshold
	res = a.Analyze("this is f*cking bullshit", DefaultSettings())
	assert.InDelta(0.5, res.ProfanityScore, 0.001)
	assert.Contains(res.Tags, TagProfanity)
}

func TestAnalyzeToxicity(t *testing.T) {
	assert := assert.New(t)
	a := testAnalyzer(t)

	res := a.Analyze("kys, nobody likes you, waste of space", DefaultSettings())
	assert.GreaterOrEqual(res.ToxicityScore, 0.9)
	assert.True(res.ShouldFlag)
	assert.Contains(res.Tags, TagToxicLanguage)
	assert.Equal(ActionBlock, res.SuggestedAction)

	// negative-word pileup without any pattern hit
	res = a.Analyze("what a stupid, pathetic, worthless take", DefaultSettings())
	assert.InDelta(0.2, res.ToxicityScore, 0.001)
	assert.False(res.ShouldFlag)
}

func TestAnalyzeDisabledCategories(t *testing.T) {
	assert := assert.New(t)
	a := testAnalyzer(t)

	s := DefaultSettings()
	s.EnableThreatDetection = false
	res := a.Analyze("I will kill you if you keep posting", s)
	assert.Equal(0.0, res.ThreatScore)
	assert.NotContains(res.Tags, TagPotentialThreat)
}

func TestAnalyzeDeterministic(t *testing.T) {
	assert := assert.New(t)
	a := testAnalyzer(t)

	text := "BUY NOW you worthless f*cking idiot, call 555-123-4567"
	first := a.Analyze(text, DefaultSettings())
	for i := 0; i < 5; i++ {
		assert.Equal(first, a.Analyze(text, DefaultSettings()))
	}
}

func TestAnalyzeConfidence(t *testing.T) {
	assert := assert.New(t)
	a := testAnalyzer(t)

	res := a.Analyze("", DefaultSettings())
	assert.Equal(0.0, res.Confidence)

	res = a.Analyze("I will kill you if you keep posting", DefaultSettings())
	assert.InDelta(min(res.MaxScore()*1.2, 1.0), res.Confidence, 0.001)
}

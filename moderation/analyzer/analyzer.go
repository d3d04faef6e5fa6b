// Package analyzer implements the heuristic content analyzer: free-form text
// in, per-category risk scores and a suggested action out.
//
// Analysis is pure and deterministic. It never fails: malformed or empty
// input degrades to a clean zero-score result. An Analyzer is safe for
// unsynchronized use from any number of goroutines.
package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/arbiter-social/arbiter/moderation/filter"
	"github.com/arbiter-social/arbiter/moderation/keyword"
	"github.com/arbiter-social/arbiter/moderation/setstore"
)

const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

const (
	ActionApprove = "approve"
	ActionReview  = "review"
	ActionBlock   = "block"
)

const (
	TagToxicLanguage   = "toxic_language"
	TagPotentialSpam   = "potential_spam"
	TagProfanity       = "profanity"
	TagPotentialThreat = "potential_threat"
	TagPersonalInfo    = "personal_info"
)

const DefaultFlagThreshold = 0.65

// Runtime-tunable analysis configuration. Zero value is not useful; start
// from DefaultSettings.
type Settings struct {
	FlagThreshold               float64 `json:"flagThreshold"`
	EnableToxicityDetection     bool    `json:"enableToxicityDetection"`
	EnableSpamDetection         bool    `json:"enableSpamDetection"`
	EnableProfanityFilter       bool    `json:"enableProfanityFilter"`
	EnableThreatDetection       bool    `json:"enableThreatDetection"`
	EnablePersonalInfoDetection bool    `json:"enablePersonalInfoDetection"`
}

func DefaultSettings() Settings {
	return Settings{
		FlagThreshold:               DefaultFlagThreshold,
		EnableToxicityDetection:     true,
		EnableSpamDetection:         true,
		EnableProfanityFilter:       true,
		EnableThreatDetection:       true,
		EnablePersonalInfoDetection: true,
	}
}

// Outcome of a single analysis call. Immutable once returned.
type Result struct {
	ToxicityScore     float64  `json:"toxicityScore"`
	SpamScore         float64  `json:"spamScore"`
	ProfanityScore    float64  `json:"profanityScore"`
	ThreatScore       float64  `json:"threatScore"`
	PersonalInfoScore float64  `json:"personalInfoScore"`
	Confidence        float64  `json:"confidence"`
	Severity          string   `json:"severity"`
	SuggestedAction   string   `json:"suggestedAction"`
	ShouldFlag        bool     `json:"shouldFlag"`
	Tags              []string `json:"moderationTags"`
	FlagReason        string   `json:"flagReason,omitempty"`
}

func (r *Result) MaxScore() float64 {
	return max(r.ToxicityScore, r.SpamScore, r.ProfanityScore, r.ThreatScore, r.PersonalInfoScore)
}

func (r *Result) AvgScore() float64 {
	return (r.ToxicityScore + r.SpamScore + r.ProfanityScore + r.ThreatScore + r.PersonalInfoScore) / 5.0
}

type Analyzer struct {
	toxicity     []Pattern
	spam         []Pattern
	threat       []Pattern
	personalInfo []Pattern

	wordFilter    *filter.WordFilter
	negativeWords map[string]bool
	violenceWords map[string]bool
}

func New(ctx context.Context, sets setstore.SetStore) (*Analyzer, error) {
	return NewWithPatterns(ctx, sets, DefaultPatternTables())
}

func NewWithPatterns(ctx context.Context, sets setstore.SetStore, tables PatternTables) (*Analyzer, error) {
	wf, err := filter.NewWordFilter(ctx, sets)
	if err != nil {
		return nil, err
	}

	a := &Analyzer{wordFilter: wf}
	if a.toxicity, err = compilePatterns(tables.Toxicity); err != nil {
		return nil, err
	}
	if a.spam, err = compilePatterns(tables.Spam); err != nil {
		return nil, err
	}
	if a.threat, err = compilePatterns(tables.Threat); err != nil {
		return nil, err
	}
	if a.personalInfo, err = compilePatterns(tables.PersonalInfo); err != nil {
		return nil, err
	}

	if a.negativeWords, err = loadWordSet(ctx, sets, setstore.SetNegativeWords); err != nil {
		return nil, err
	}
	if a.violenceWords, err = loadWordSet(ctx, sets, setstore.SetViolenceWords); err != nil {
		return nil, err
	}
	return a, nil
}

func loadWordSet(ctx context.Context, sets setstore.SetStore, name string) (map[string]bool, error) {
	words, err := sets.GetSet(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("loading wordlist %s: %w", name, err)
	}
	out := make(map[string]bool, len(words))
	for _, w := range words {
		out[strings.ToLower(w)] = true
	}
	return out, nil
}

// Shared scoring combinator: sum of weights of matching patterns, one hit per
// pattern, clamped to [0,1] by the caller via clamp01.
func scorePatterns(text string, pats []Pattern) float64 {
	var score float64
	for _, p := range pats {
		if p.Re.MatchString(text) {
			score += p.Weight
		}
	}
	return score
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Analyze scores text across all enabled categories and derives the
// aggregate confidence, severity, and suggested action.
func (a *Analyzer) Analyze(text string, s Settings) Result {
	tokens := keyword.TokenizeText(text)
	censorTokens := keyword.TokenizeTextSkippingCensorChars(text)

	var res Result
	if s.EnableToxicityDetection {
		res.ToxicityScore = clamp01(a.scoreToxicity(text, tokens))
	}
	if s.EnableSpamDetection {
		res.SpamScore = clamp01(a.scoreSpam(text, tokens))
	}
	if s.EnableProfanityFilter {
		res.ProfanityScore = clamp01(a.scoreProfanity(text, censorTokens))
	}
	if s.EnableThreatDetection {
		res.ThreatScore = clamp01(a.scoreThreat(text, tokens))
	}
	if s.EnablePersonalInfoDetection {
		res.PersonalInfoScore = clamp01(scorePatterns(text, a.personalInfo))
	}

	maxScore := res.MaxScore()
	avgScore := res.AvgScore()

	res.Confidence = min(maxScore*1.2, 1.0)

	switch {
	case maxScore > 0.7 || res.ThreatScore > 0.3:
		res.Severity = SeverityHigh
	case maxScore > 0.4 || avgScore > 0.3:
		res.Severity = SeverityMedium
	default:
		res.Severity = SeverityLow
	}

	res.ShouldFlag = maxScore >= s.FlagThreshold || res.ThreatScore > 0.2 || res.PersonalInfoScore > 0.5

	switch {
	case res.ThreatScore > 0.5 || maxScore > 0.8:
		res.SuggestedAction = ActionBlock
	case res.ShouldFlag:
		res.SuggestedAction = ActionReview
	default:
		res.SuggestedAction = ActionApprove
	}

	res.Tags = []string{}
	var reasons []string
	if res.ToxicityScore > 0.3 {
		res.Tags = append(res.Tags, TagToxicLanguage)
		reasons = append(reasons, "toxic language")
	}
	if res.SpamScore > 0.4 {
		res.Tags = append(res.Tags, TagPotentialSpam)
		reasons = append(reasons, "spam")
	}
	if res.ProfanityScore > 0.3 {
		res.Tags = append(res.Tags, TagProfanity)
		reasons = append(reasons, "profanity")
	}
	if res.ThreatScore > 0.2 {
		res.Tags = append(res.Tags, TagPotentialThreat)
		reasons = append(reasons, "threatening language")
	}
	if res.PersonalInfoScore > 0.3 {
		res.Tags = append(res.Tags, TagPersonalInfo)
		reasons = append(reasons, "personal information")
	}

	if res.ShouldFlag {
		if len(reasons) > 0 {
			res.FlagReason = "content flagged for: " + strings.Join(reasons, ", ")
		} else {
			res.FlagReason = "content flagged for review"
		}
	}
	return res
}

func (a *Analyzer) scoreToxicity(text string, tokens []string) float64 {
	score := scorePatterns(text, a.toxicity)
	if countDistinctInSet(tokens, a.negativeWords) > 2 {
		score += 0.2
	}
	// shouting heuristic
	if len([]rune(text)) > 20 && uppercaseRatio(text) > 0.7 {
		score += 0.1
	}
	return score
}

func (a *Analyzer) scoreSpam(text string, tokens []string) float64 {
	score := scorePatterns(text, a.spam)
	if len(tokens) > 10 && uniqueWordRatio(tokens) < 0.3 {
		score += 0.3
	}
	if symbolDensity(text) > 0.3 {
		score += 0.2
	}
	if len(ExtractTextURLs(text)) > 2 {
		score += 0.3
	}
	return score
}

func (a *Analyzer) scoreProfanity(text string, censorTokens []string) float64 {
	var score float64
	if a.wordFilter.Triggered(text) {
		score += 0.3
	}
	if a.wordFilter.ContainsMasked(censorTokens) {
		score += 0.2
	}
	return score
}

func (a *Analyzer) scoreThreat(text string, tokens []string) float64 {
	score := scorePatterns(text, a.threat)
	if countDistinctInSet(tokens, a.violenceWords) > 1 {
		score += 0.3
	}
	return score
}

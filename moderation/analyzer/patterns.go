package analyzer

import (
	"fmt"
	"regexp"
)

// A single detection pattern and the score weight it contributes when the
// text matches. Each pattern counts at most once per analysis.
type Pattern struct {
	Re     *regexp.Regexp
	Weight float64
}

type PatternSpec struct {
	Expr   string  `json:"expr"`
	Weight float64 `json:"weight"`
}

// Pattern tables are data, not control flow: the weights below are
// empirically tuned and deliberately preserved as-is. Adjusting them changes
// moderation outcomes, so treat any change as a policy change.
type PatternTables struct {
	Toxicity     []PatternSpec `json:"toxicity"`
	Spam         []PatternSpec `json:"spam"`
	Threat       []PatternSpec `json:"threat"`
	PersonalInfo []PatternSpec `json:"personalInfo"`
}

func DefaultPatternTables() PatternTables {
	return PatternTables{
		Toxicity: []PatternSpec{
			{`(?i)\bkill yourself\b`, 0.3},
			{`(?i)\bkys\b`, 0.3},
			{`(?i)\bgo die\b`, 0.3},
			{`(?i)\bend your (own )?life\b`, 0.3},
			{`(?i)\bhope you die\b`, 0.3},
			{`(?i)\bnobody (likes|wants|cares about) you\b`, 0.3},
			{`(?i)\bwaste of (space|air|oxygen)\b`, 0.3},
			{`(?i)\bpiece of (shit|trash|garbage)\b`, 0.3},
			{`(?i)\byou disgust me\b`, 0.3},
			{`(?i)\bshut (the fuck )?up\b`, 0.3},
		},
		Spam: []PatternSpec{
			{`(?i)\bbuy now\b`, 0.2},
			{`(?i)\bclick (here|this|the link)\b`, 0.2},
			{`(?i)\bfree (money|cash|gifts?)\b`, 0.2},
			{`(?i)\blimited time\b`, 0.2},
			{`(?i)\bact now\b`, 0.2},
			{`(?i)\b(crypto|bitcoin|forex) (giveaway|investment|profits?|trading)\b`, 0.2},
			{`(?i)\bdm me\b`, 0.2},
			{`(?i)\b(contact|text|call|message) me (at|on)\b`, 0.2},
			{`(?i)\bmake \$\d+`, 0.2},
			{`(?i)\bwork from home\b`, 0.2},
			{`(?i)\byou('ve| have) won\b`, 0.2},
			{`(?i)\bclaim your (prize|reward|gift)\b`, 0.2},
			{`(?i)\bfollow (for|4) follow\b`, 0.2},
			{`(?i)\bget rich\b`, 0.2},
		},
		Threat: []PatternSpec{
			{`(?i)\b(i will|i'll|i am going to|i'm going to|gonna) (kill|murder|hurt|beat|stab|shoot|destroy)\b`, 0.4},
			{`(?i)\b(kill|murder|hurt|stab|shoot|beat|strangle) (you|him|her|them|your family)\b`, 0.4},
			{`(?i)\byou('re| are) (dead|gonna die|going to die)\b`, 0.4},
			{`(?i)\bwatch your back\b`, 0.4},
			{`(?i)\bi know where you live\b`, 0.4},
			{`(?i)\bcoming for you\b`, 0.4},
		},
		PersonalInfo: []PatternSpec{
			// phone number
			{`\(?\d{3}\)?[-.\s]\d{3}[-.\s]?\d{4}\b`, 0.4},
			// email address
			{`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`, 0.4},
			// SSN-like
			{`\b\d{3}-\d{2}-\d{4}\b`, 0.4},
			// credit-card-like digit run
			{`\b(?:\d[ -]?){13,16}\b`, 0.4},
			// street address
			{`(?i)\b\d+\s+\w+\s+(street|st|avenue|ave|road|rd|boulevard|blvd|lane|ln|drive|dr|court|ct|way)\b`, 0.4},
		},
	}
}

func compilePatterns(specs []PatternSpec) ([]Pattern, error) {
	out := make([]Pattern, 0, len(specs))
	for _, spec := range specs {
		re, err := regexp.Compile(spec.Expr)
		if err != nil {
			return nil, fmt.Errorf("compiling detection pattern %q: %w", spec.Expr, err)
		}
		out = append(out, Pattern{Re: re, Weight: spec.Weight})
	}
	return out, nil
}

// Package filter implements the baseline word filter which runs ahead of the
// full content analyzer. It redacts blocklisted words in place, and detects
// masked profanity ("f*ck") by wildcard-matching censor characters against
// the blocklist.
package filter

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/arbiter-social/arbiter/moderation/keyword"
	"github.com/arbiter-social/arbiter/moderation/setstore"
)

// Characters commonly used to self-censor or evade wordlists.
const maskChars = "*#@$%!+"

var wordRunPattern = regexp.MustCompile(`[\pL\pN]+`)

type WordFilter struct {
	blocked map[string]bool
}

func NewWordFilter(ctx context.Context, sets setstore.SetStore) (*WordFilter, error) {
	words, err := sets.GetSet(ctx, setstore.SetProfanity)
	if err != nil {
		return nil, fmt.Errorf("loading profanity wordlist: %w", err)
	}
	blocked := make(map[string]bool, len(words))
	for _, w := range words {
		blocked[strings.ToLower(w)] = true
	}
	return &WordFilter{blocked: blocked}, nil
}

func (f *WordFilter) isBlocked(tok string) bool {
	tok = strings.ToLower(tok)
	if f.blocked[tok] {
		return true
	}
	// de-pluralize
	return f.blocked[strings.TrimSuffix(tok, "s")]
}

// Clean returns text with every blocklisted word replaced by a same-length
// run of '*', plus whether any replacement happened. Everything else
// (whitespace, punctuation, casing) is preserved verbatim.
func (f *WordFilter) Clean(text string) (string, bool) {
	triggered := false
	out := wordRunPattern.ReplaceAllStringFunc(text, func(tok string) string {
		if f.isBlocked(tok) {
			triggered = true
			return strings.Repeat("*", len([]rune(tok)))
		}
		return tok
	})
	return out, triggered
}

// Triggered reports whether text contains a blocklisted word, without
// producing the redacted variant.
func (f *WordFilter) Triggered(text string) bool {
	for _, tok := range wordRunPattern.FindAllString(text, -1) {
		if f.isBlocked(tok) {
			return true
		}
	}
	return false
}

// ContainsMasked reports whether text contains a token which matches a
// blocklisted word once censor characters are treated as wildcards
// ("f*ck"), or which folds to one when separators are removed ("d-a-m-n").
func (f *WordFilter) ContainsMasked(tokens []string) bool {
	for _, tok := range tokens {
		if !strings.ContainsAny(tok, maskChars+"-_") {
			continue
		}
		tok = strings.ToLower(tok)
		if slug := keyword.Slugify(tok); slug != tok && f.isBlocked(slug) {
			return true
		}
		if !strings.ContainsAny(tok, maskChars) {
			continue
		}
		for w := range f.blocked {
			if maskedEqual(tok, w) {
				return true
			}
		}
	}
	return false
}

func maskedEqual(tok, word string) bool {
	tr := []rune(tok)
	wr := []rune(word)
	if len(tr) != len(wr) {
		return false
	}
	masked := false
	for i := range tr {
		if tr[i] == wr[i] {
			continue
		}
		if strings.ContainsRune(maskChars, tr[i]) {
			masked = true
			continue
		}
		return false
	}
	// an unmasked exact match is handled by the plain blocklist path
	return masked
}

package analyzer

import (
	"regexp"
	"unicode"
)

// based on: https://stackoverflow.com/a/48769624, with no trailing period allowed
var urlRegex = regexp.MustCompile(`(?:(?:https?|ftp):\/\/)?[\w/\-?=%.]+\.[\w/\-&?=%.]*[\w/\-&?=%]+`)

func ExtractTextURLs(raw string) []string {
	return urlRegex.FindAllString(raw, -1)
}

// Fraction of letters which are upper-case. Returns 0 when the text contains
// no letters.
func uppercaseRatio(text string) float64 {
	var letters, upper int
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(upper) / float64(letters)
}

// Fraction of runes which are neither letters, digits, nor whitespace.
func symbolDensity(text string) float64 {
	var total, symbols int
	for _, r := range text {
		total++
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			symbols++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(symbols) / float64(total)
}

// Number of distinct tokens present in the given word set.
func countDistinctInSet(tokens []string, set map[string]bool) int {
	seen := make(map[string]bool)
	for _, tok := range tokens {
		if set[tok] && !seen[tok] {
			seen[tok] = true
		}
	}
	return len(seen)
}

func uniqueWordRatio(tokens []string) float64 {
	if len(tokens) == 0 {
		return 1.0
	}
	seen := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		seen[tok] = true
	}
	return float64(len(seen)) / float64(len(tokens))
}

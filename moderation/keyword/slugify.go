package keyword

import (
	"regexp"
	"strings"
)

var nonSlugChars = regexp.MustCompile(`[^\pL\pN]+`)

// Takes an arbitrary string and returns a lower-case version with all
// non-letter, non-digit characters removed. Useful for matching wordlists
// against text with separator-based obfuscation ("b.a.d w o r d").
func Slugify(orig string) string {
	return strings.ToLower(nonSlugChars.ReplaceAllString(orig, ""))
}

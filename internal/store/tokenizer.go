package store

import (
	"regexp"
	"strings"
)

// tokenRegex matches runs of letters and digits; everything else
// (punctuation, whitespace) is a separator.
var tokenRegex = regexp.MustCompile(`[a-z0-9]+`)

// Tokenize lowercases text and splits it into alphanumeric tokens.
// The same policy is applied to documents and queries so that term
// statistics and query terms live in the same vocabulary.
func Tokenize(text string) []string {
	return tokenRegex.FindAllString(strings.ToLower(text), -1)
}

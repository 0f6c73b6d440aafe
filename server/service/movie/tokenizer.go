// Package movie provides presentation services for search results: query
// tokenization, match highlighting, and context-aware plot snippets.
package movie

import (
	"strings"
	"unicode"
)

// Tokenize splits a query into lowercase search tokens, deduplicated in
// order of first appearance. Han characters tokenize individually; everything
// else splits on non-alphanumeric runes.
func Tokenize(query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	var tokens []string
	seen := make(map[string]bool)
	emit := func(token string) {
		if token != "" && !seen[token] {
			tokens = append(tokens, token)
			seen[token] = true
		}
	}

	var word strings.Builder
	for _, r := range query {
		switch {
		case unicode.Is(unicode.Han, r):
			emit(strings.ToLower(word.String()))
			word.Reset()
			emit(string(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word.WriteRune(r)
		default:
			emit(strings.ToLower(word.String()))
			word.Reset()
		}
	}
	emit(strings.ToLower(word.String()))

	return tokens
}

package movie

import (
	"sort"
	"strings"
	"unicode"
)

const (
	defaultContextChars = 50
	maxContextChars     = 200
	// boundaryScanLimit caps how far we scan for a word boundary.
	boundaryScanLimit = 10
)

// Highlight marks one matched query term inside a snippet. Positions are
// rune offsets into the snippet, not the original plot.
type Highlight struct {
	Start       int    `json:"start"`
	End         int    `json:"end"`
	MatchedText string `json:"matched_text"`
}

// Snippeter extracts short plot excerpts centered on query matches.
type Snippeter struct {
	contextChars int
}

// NewSnippeter creates a Snippeter with the given context window in runes on
// each side of the first match. Values outside (0, maxContextChars] fall back
// to the default.
func NewSnippeter(contextChars int) *Snippeter {
	if contextChars <= 0 || contextChars > maxContextChars {
		contextChars = defaultContextChars
	}
	return &Snippeter{contextChars: contextChars}
}

// Extract returns a snippet of plot around the earliest token match, with
// highlight positions adjusted to the snippet. With no match the snippet is
// the opening of the plot and highlights are nil.
func (s *Snippeter) Extract(plot string, tokens []string) (string, []Highlight) {
	runes := []rune(plot)
	if len(runes) == 0 {
		return "", nil
	}

	matches := findMatches(runes, tokens)
	if len(matches) == 0 {
		return s.leading(runes), nil
	}

	// The earliest match anchors the window.
	start, end := window(matches[0].Start, len(runes), s.contextChars)
	start = adjustToBoundary(runes, start, false)
	end = adjustToBoundary(runes, end, true)

	var b strings.Builder
	prefixLen := 0
	if start > 0 {
		b.WriteString("...")
		prefixLen = 3
	}
	b.WriteString(string(runes[start:end]))
	if end < len(runes) {
		b.WriteString("...")
	}

	var adjusted []Highlight
	for _, m := range matches {
		if m.Start >= start && m.End <= end {
			adjusted = append(adjusted, Highlight{
				Start:       m.Start - start + prefixLen,
				End:         m.End - start + prefixLen,
				MatchedText: m.MatchedText,
			})
		}
	}
	return b.String(), adjusted
}

// leading returns the opening of the plot, truncated at a word boundary.
func (s *Snippeter) leading(runes []rune) string {
	end := s.contextChars * 2
	if end >= len(runes) {
		return string(runes)
	}
	end = adjustToBoundary(runes, end, true)
	return string(runes[:end]) + "..."
}

// findMatches locates every case-insensitive token occurrence, sorted by
// position with overlaps dropped in favor of the earlier match.
func findMatches(runes []rune, tokens []string) []Highlight {
	var matches []Highlight
	for _, token := range tokens {
		tokenRunes := []rune(strings.ToLower(token))
		if len(tokenRunes) == 0 {
			continue
		}
		for i := 0; i+len(tokenRunes) <= len(runes); i++ {
			candidate := string(runes[i : i+len(tokenRunes)])
			if strings.ToLower(candidate) == string(tokenRunes) {
				matches = append(matches, Highlight{
					Start:       i,
					End:         i + len(tokenRunes),
					MatchedText: candidate,
				})
			}
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Start < matches[j].Start })

	deduped := matches[:0]
	lastEnd := -1
	for _, m := range matches {
		if m.Start >= lastEnd {
			deduped = append(deduped, m)
			lastEnd = m.End
		}
	}
	return deduped
}

// window computes the snippet bounds around center, shifting rather than
// shrinking when it hits either edge of the plot.
func window(center, contentLen, contextChars int) (int, int) {
	start := center - contextChars
	end := center + contextChars
	if start < 0 {
		end -= start
		start = 0
	}
	if end > contentLen {
		start -= end - contentLen
		end = contentLen
	}
	if start < 0 {
		start = 0
	}
	return start, end
}

// adjustToBoundary nudges pos to a nearby word separator so snippets do not
// cut words in half. Start positions scan backward, end positions forward.
func adjustToBoundary(runes []rune, pos int, isEnd bool) int {
	if pos <= 0 {
		return 0
	}
	if pos >= len(runes) {
		return len(runes)
	}

	if isEnd {
		for i := pos; i < len(runes) && i < pos+boundaryScanLimit; i++ {
			if isSeparator(runes[i]) {
				return i
			}
		}
	} else {
		for i := pos - 1; i >= 0 && i >= pos-boundaryScanLimit; i-- {
			if isSeparator(runes[i]) {
				return i + 1
			}
		}
	}
	return pos
}

func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(".,!?;:", r)
}

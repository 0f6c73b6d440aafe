package ai

import (
	"math"
	"strings"
	"unicode"
)

// chunkOverlap is the character overlap carried between adjacent chunks so
// no sentence loses its context at a chunk border.
const chunkOverlap = 50

// ChunkText splits text into pieces of at most size characters, preferring
// paragraph and sentence boundaries over hard cuts. Text at or under size is
// returned as a single chunk.
func ChunkText(text string, size int) []string {
	if size <= 0 || len(text) <= size {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder

	for _, para := range splitParagraphs(text) {
		if current.Len()+len(para) > size && current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			if tail := overlapTail(chunks[len(chunks)-1], chunkOverlap); tail != "" {
				current.WriteString(tail)
			}
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(para)

		// A single paragraph can exceed the chunk size on its own.
		for current.Len() > size {
			pending := current.String()
			cut := findBreakPoint(pending[:size])
			chunks = append(chunks, pending[:cut])
			current.Reset()
			current.WriteString(strings.TrimLeft(pending[cut:], " "))
		}
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// splitParagraphs joins wrapped lines and splits on blank lines.
func splitParagraphs(text string) []string {
	var paragraphs []string
	var current strings.Builder

	for _, line := range strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' }) {
		line = strings.TrimSpace(line)
		if line == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}
	return paragraphs
}

// overlapTail returns the trailing overlap characters of the previous chunk,
// trimmed to a word boundary.
func overlapTail(chunk string, overlap int) string {
	if len(chunk) <= overlap {
		return chunk
	}
	tail := chunk[len(chunk)-overlap:]
	if idx := strings.IndexAny(tail, " \t"); idx >= 0 {
		return strings.TrimSpace(tail[idx:])
	}
	return tail
}

// findBreakPoint picks a cut position inside text, preferring a sentence end,
// then a word boundary in the back half, then a hard cut.
func findBreakPoint(text string) int {
	for i := len(text) - 1; i >= 0; i-- {
		if text[i] == '.' || text[i] == '!' || text[i] == '?' {
			if i == len(text)-1 || unicode.IsSpace(rune(text[i+1])) {
				return i + 1
			}
		}
	}
	for i := len(text) - 1; i >= len(text)/2; i-- {
		if unicode.IsSpace(rune(text[i])) {
			return i
		}
	}
	return len(text)
}

// meanVector averages the chunk vectors of one document and renormalizes to
// unit length so averaged vectors stay comparable under cosine distance.
func meanVector(vectors [][]float32) []float32 {
	if len(vectors) == 1 {
		return vectors[0]
	}

	mean := make([]float32, len(vectors[0]))
	for _, vector := range vectors {
		for i, v := range vector {
			mean[i] += v
		}
	}
	n := float32(len(vectors))
	var norm float64
	for i := range mean {
		mean[i] /= n
		norm += float64(mean[i]) * float64(mean[i])
	}
	if norm == 0 {
		return mean
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range mean {
		mean[i] *= scale
	}
	return mean
}

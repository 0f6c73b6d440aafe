package ai

import (
	"context"
	"math"
	"strings"
	"testing"
)

func TestChunkTextShortInput(t *testing.T) {
	text := "A short plot that fits in one chunk."
	chunks := ChunkText(text, 500)
	if len(chunks) != 1 || chunks[0] != text {
		t.Fatalf("expected single unchanged chunk, got %v", chunks)
	}
}

func TestChunkTextRespectsSize(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("The crew drifts further from the station. ")
	}
	text := b.String()

	chunks := ChunkText(text, 200)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 200 {
			t.Errorf("chunk %d has %d chars, max 200", i, len(chunk))
		}
		if strings.TrimSpace(chunk) == "" {
			t.Errorf("chunk %d is blank", i)
		}
	}
}

func TestChunkTextPrefersSentenceBoundaries(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		b.WriteString("A sentence ends here. ")
	}
	chunks := ChunkText(b.String(), 100)
	for i, chunk := range chunks[:len(chunks)-1] {
		trimmed := strings.TrimSpace(chunk)
		if !strings.HasSuffix(trimmed, ".") {
			t.Errorf("chunk %d does not end at a sentence boundary: %q", i, trimmed)
		}
	}
}

func TestChunkTextJoinsWrappedLines(t *testing.T) {
	text := "first line\nsecond line\n\nnext paragraph"
	chunks := ChunkText(text, 15)
	joined := strings.Join(chunks, " ")
	for _, word := range []string{"first", "second", "next", "paragraph"} {
		if !strings.Contains(joined, word) {
			t.Errorf("chunks lost word %q: %v", word, chunks)
		}
	}
}

func TestChunkTextZeroSize(t *testing.T) {
	chunks := ChunkText("anything", 0)
	if len(chunks) != 1 || chunks[0] != "anything" {
		t.Fatalf("size 0 must pass text through, got %v", chunks)
	}
}

func TestMeanVector(t *testing.T) {
	single := [][]float32{{0.5, 0.5}}
	if got := meanVector(single); &got[0] != &single[0][0] {
		t.Error("single vector should be returned as-is")
	}

	mean := meanVector([][]float32{{1, 0}, {0, 1}})
	var norm float64
	for _, v := range mean {
		norm += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-5 {
		t.Errorf("mean vector not unit length: %v", mean)
	}
	if math.Abs(float64(mean[0]-mean[1])) > 1e-6 {
		t.Errorf("expected symmetric mean, got %v", mean)
	}
}

func TestMeanVectorZero(t *testing.T) {
	mean := meanVector([][]float32{{0, 0}, {0, 0}})
	for i, v := range mean {
		if v != 0 {
			t.Errorf("component %d = %f, want 0", i, v)
		}
	}
}

func TestEmbedLongTextAveragesChunks(t *testing.T) {
	client := &mockEmbeddingClient{dimensions: 4}
	svc := newTestService(client, 4, 64)
	svc.maxInputChars = 100

	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("An expedition crosses the frozen sea in search of a lost ship. ")
	}

	vector, err := svc.Embed(context.Background(), b.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vector) != 4 {
		t.Fatalf("vector has %d dimensions, want 4", len(vector))
	}
	if len(client.batchSizes) == 0 || client.batchSizes[0] < 2 {
		t.Errorf("expected the long text to expand into multiple chunk inputs, got %v", client.batchSizes)
	}
}

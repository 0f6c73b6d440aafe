package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/sync/semaphore"

	apperrors "github.com/cinesearch/cinesearch/internal/errors"
)

// EmbeddingService is the vector embedding service interface.
type EmbeddingService interface {
	// Embed generates a vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates vectors for multiple texts, preserving order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector dimension.
	Dimensions() int

	// Validate checks connectivity to the model backend with a probe request.
	Validate(ctx context.Context) error
}

// embeddingClient is the slice of the go-openai client we depend on.
type embeddingClient interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

type embeddingService struct {
	client        embeddingClient
	model         string
	dimensions    int
	maxBatchSize  int
	maxInputChars int
	sem           *semaphore.Weighted
}

// NewEmbeddingService creates a new EmbeddingService over an OpenAI-compatible
// endpoint. The client is constructed exactly once per process; all later
// calls reuse it.
func NewEmbeddingService(cfg *EmbeddingConfig) (EmbeddingService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	maxBatchSize := cfg.MaxBatchSize
	if maxBatchSize <= 0 {
		maxBatchSize = 64
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 3
	}
	maxInputChars := cfg.MaxInputChars
	if maxInputChars <= 0 {
		maxInputChars = 8000
	}

	return &embeddingService{
		client:        client,
		model:         cfg.Model,
		dimensions:    cfg.Dimensions,
		maxBatchSize:  maxBatchSize,
		maxInputChars: maxInputChars,
		sem:           semaphore.NewWeighted(maxConcurrent),
	}, nil
}

func (s *embeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.EmptyInput("nothing to embed")
	}
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in one or more API round-trips of at most
// maxBatchSize inputs each. Any empty or whitespace-only entry fails the whole
// call with EMPTY_INPUT naming the offending index; callers that want
// skip semantics filter before calling. Texts over maxInputChars are chunked
// and their chunk vectors averaged back into one vector per input.
func (s *embeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, apperrors.EmptyInput(fmt.Sprintf("text at index %d is empty", i))
		}
	}

	// Expand oversized texts into chunks, remembering which chunk range
	// belongs to which input.
	type span struct{ start, end int }
	inputs := make([]string, 0, len(texts))
	spans := make([]span, len(texts))
	for i, text := range texts {
		pieces := ChunkText(text, s.maxInputChars)
		spans[i] = span{start: len(inputs), end: len(inputs) + len(pieces)}
		inputs = append(inputs, pieces...)
	}

	raw := make([][]float32, 0, len(inputs))
	for start := 0; start < len(inputs); start += s.maxBatchSize {
		end := start + s.maxBatchSize
		if end > len(inputs) {
			end = len(inputs)
		}
		chunk, err := s.embedChunk(ctx, inputs[start:end])
		if err != nil {
			return nil, err
		}
		raw = append(raw, chunk...)
	}

	vectors := make([][]float32, len(texts))
	for i, sp := range spans {
		vectors[i] = meanVector(raw[sp.start:sp.end])
	}
	return vectors, nil
}

func (s *embeddingService) embedChunk(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)

	req := openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(s.model),
	}
	resp, err := s.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, apperrors.ModelUnavailable("create embeddings failed", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		if len(data.Embedding) != s.dimensions {
			// A model swap without a matching index rebuild would silently
			// produce incomparable vectors; refuse instead.
			return nil, fmt.Errorf("model %q returned %d-dimensional vector, configured for %d",
				s.model, len(data.Embedding), s.dimensions)
		}
		vectors[i] = data.Embedding
	}
	return vectors, nil
}

func (s *embeddingService) Dimensions() int {
	return s.dimensions
}

// Validate issues a probe embedding. Startup treats a failure here as fatal:
// the service refuses to serve rather than degrade per-request.
func (s *embeddingService) Validate(ctx context.Context) error {
	if _, err := s.Embed(ctx, "ping"); err != nil {
		return apperrors.ModelUnavailable("embedding model validation failed", err)
	}
	return nil
}

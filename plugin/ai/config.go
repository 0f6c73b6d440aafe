package ai

import (
	"github.com/pkg/errors"

	"github.com/cinesearch/cinesearch/internal/profile"
)

// EmbeddingConfig represents vector embedding configuration.
type EmbeddingConfig struct {
	BaseURL    string // OpenAI-compatible endpoint
	APIKey     string
	Model      string // e.g. sentence-transformers/all-MiniLM-L6-v2
	Dimensions int    // e.g. 384

	// MaxBatchSize caps the number of inputs per API round-trip.
	MaxBatchSize int
	// MaxConcurrent caps concurrent API calls across the whole process.
	MaxConcurrent int64
	// MaxInputChars caps the length of a single input; longer texts are
	// chunked and their chunk vectors averaged.
	MaxInputChars int
}

func (c *EmbeddingConfig) Validate() error {
	if c.Model == "" {
		return errors.New("embedding model is required")
	}
	if c.Dimensions <= 0 {
		return errors.Errorf("invalid embedding dimensions %d", c.Dimensions)
	}
	return nil
}

// NewEmbeddingConfigFromProfile creates embedding config from profile.
func NewEmbeddingConfigFromProfile(p *profile.Profile) *EmbeddingConfig {
	return &EmbeddingConfig{
		BaseURL:    p.EmbeddingBaseURL,
		APIKey:     p.EmbeddingAPIKey,
		Model:      p.EmbeddingModel,
		Dimensions: p.EmbeddingDimensions,
	}
}

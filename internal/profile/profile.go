package profile

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// DSN points to the Postgres database holding the movie collection
	DSN string
	// Driver is the database driver (postgres only)
	Driver string
	// Version is the current version of server
	Version string

	// Embedding configuration
	EmbeddingBaseURL    string // CINESEARCH_EMBEDDING_BASE_URL (default: https://api.openai.com/v1)
	EmbeddingAPIKey     string // CINESEARCH_EMBEDDING_API_KEY
	EmbeddingModel      string // CINESEARCH_EMBEDDING_MODEL (default: sentence-transformers/all-MiniLM-L6-v2)
	EmbeddingDimensions int    // CINESEARCH_EMBEDDING_DIMENSIONS (default: 384)

	// Vector search configuration
	VectorIndexName string // CINESEARCH_VECTOR_INDEX (default: movie_plot_embedding_idx)

	// Pagination configuration
	DefaultPageSize int // CINESEARCH_PAGE_SIZE_DEFAULT (default: 10)
	MaxPageSize     int // CINESEARCH_PAGE_SIZE_MAX (default: 100)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvOrDefault returns the environment variable parsed as int, or the
// default value when unset or unparsable.
func getIntEnvOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// FromEnv loads the embedding and search configuration from environment variables.
func (p *Profile) FromEnv() {
	p.EmbeddingBaseURL = getEnvOrDefault("CINESEARCH_EMBEDDING_BASE_URL", "https://api.openai.com/v1")
	p.EmbeddingAPIKey = os.Getenv("CINESEARCH_EMBEDDING_API_KEY")
	p.EmbeddingModel = getEnvOrDefault("CINESEARCH_EMBEDDING_MODEL", "sentence-transformers/all-MiniLM-L6-v2")
	p.EmbeddingDimensions = getIntEnvOrDefault("CINESEARCH_EMBEDDING_DIMENSIONS", 384)
	p.VectorIndexName = getEnvOrDefault("CINESEARCH_VECTOR_INDEX", "movie_plot_embedding_idx")
	p.DefaultPageSize = getIntEnvOrDefault("CINESEARCH_PAGE_SIZE_DEFAULT", 10)
	p.MaxPageSize = getIntEnvOrDefault("CINESEARCH_PAGE_SIZE_MAX", 100)
}

func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}
	if p.Driver == "" {
		p.Driver = "postgres"
	}
	if p.Driver != "postgres" {
		return errors.Errorf("unknown db driver %q: only 'postgres' is supported", p.Driver)
	}
	if p.DSN == "" {
		return errors.New("database DSN is required, set CINESEARCH_DSN")
	}
	if p.EmbeddingModel == "" {
		return errors.New("embedding model is required")
	}
	if p.EmbeddingDimensions <= 0 {
		return errors.Errorf("invalid embedding dimensions %d", p.EmbeddingDimensions)
	}
	if p.VectorIndexName == "" {
		return errors.New("vector index name is required")
	}
	if p.DefaultPageSize <= 0 {
		p.DefaultPageSize = 10
	}
	if p.MaxPageSize < p.DefaultPageSize {
		return fmt.Errorf("max page size %d is smaller than default page size %d", p.MaxPageSize, p.DefaultPageSize)
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	Ping(ctx context.Context) error
	IsInitialized(ctx context.Context) (bool, error)

	// Movie model related methods.
	ListMovies(ctx context.Context, find *FindMovie) ([]*Movie, error)
	GetMovie(ctx context.Context, id string) (*Movie, error)
	CountMovies(ctx context.Context, withEmbedding *bool) (int64, error)

	// FindMoviesWithoutEmbedding returns movies whose vector is absent, in
	// stable dataset order, for backfill consumption.
	FindMoviesWithoutEmbedding(ctx context.Context, limit, skip int) ([]*Movie, error)

	// UpdateMovieEmbedding attaches the embedding vector to a movie.
	UpdateMovieEmbedding(ctx context.Context, id string, embedding []float32) error

	// VectorSearch performs similarity search against the store's vector index.
	// Results are ordered by descending score.
	VectorSearch(ctx context.Context, opts *VectorSearchOptions) ([]*MovieWithScore, error)

	// VectorDimensions returns the declared dimension of the embedding column,
	// or 0 when the column does not exist yet.
	VectorDimensions(ctx context.Context) (int, error)

	// HasVectorIndex reports whether the named similarity index exists.
	HasVectorIndex(ctx context.Context, name string) (bool, error)
}

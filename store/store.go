package store

import (
	"context"
	"math"

	apperrors "github.com/cinesearch/cinesearch/internal/errors"
	"github.com/cinesearch/cinesearch/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Ping(ctx context.Context) error {
	return s.driver.Ping(ctx)
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) ListMovies(ctx context.Context, find *FindMovie) ([]*Movie, error) {
	return s.driver.ListMovies(ctx, find)
}

// GetMovie returns the movie with the given id. A missing movie is a
// recoverable NOT_FOUND condition, not a driver failure.
func (s *Store) GetMovie(ctx context.Context, id string) (*Movie, error) {
	movie, err := s.driver.GetMovie(ctx, id)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, apperrors.NotFound("movie " + id + " not found")
	}
	return movie, nil
}

func (s *Store) FindMoviesWithoutEmbedding(ctx context.Context, limit, skip int) ([]*Movie, error) {
	return s.driver.FindMoviesWithoutEmbedding(ctx, limit, skip)
}

func (s *Store) UpdateMovieEmbedding(ctx context.Context, id string, embedding []float32) error {
	return s.driver.UpdateMovieEmbedding(ctx, id, embedding)
}

func (s *Store) VectorSearch(ctx context.Context, opts *VectorSearchOptions) ([]*MovieWithScore, error) {
	return s.driver.VectorSearch(ctx, opts)
}

func (s *Store) VectorDimensions(ctx context.Context) (int, error) {
	return s.driver.VectorDimensions(ctx)
}

func (s *Store) HasVectorIndex(ctx context.Context, name string) (bool, error) {
	return s.driver.HasVectorIndex(ctx, name)
}

// Stats computes embedding coverage over the whole movie collection.
func (s *Store) Stats(ctx context.Context) (*EmbeddingStats, error) {
	total, err := s.driver.CountMovies(ctx, nil)
	if err != nil {
		return nil, err
	}
	withEmbedding := true
	with, err := s.driver.CountMovies(ctx, &withEmbedding)
	if err != nil {
		return nil, err
	}

	stats := &EmbeddingStats{
		Total:             total,
		WithEmbeddings:    with,
		WithoutEmbeddings: total - with,
	}
	if total > 0 {
		stats.CompletionPercentage = math.Round(float64(with)/float64(total)*10000) / 100
	}
	return stats, nil
}

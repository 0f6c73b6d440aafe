// Package test provides an in-memory store.Driver backed by brute-force
// cosine similarity. It stands in for Postgres/pgvector in unit tests so the
// orchestration logic can be exercised without a database.
package test

import (
	"context"
	"database/sql"
	"math"
	"sort"
	"sync"

	apperrors "github.com/cinesearch/cinesearch/internal/errors"
	"github.com/cinesearch/cinesearch/store"
)

// MemoryDriver is an in-memory implementation of store.Driver.
type MemoryDriver struct {
	mu         sync.RWMutex
	movies     map[string]*store.Movie
	order      []string // insertion order, the "stable dataset order"
	dimensions int

	indexAvailable bool
	attachErrs     map[string]error
}

// NewMemoryDriver creates an empty in-memory driver for vectors of the given
// dimension. The similarity index starts out available.
func NewMemoryDriver(dimensions int) *MemoryDriver {
	return &MemoryDriver{
		movies:         make(map[string]*store.Movie),
		dimensions:     dimensions,
		indexAvailable: true,
		attachErrs:     make(map[string]error),
	}
}

// AddMovie inserts a movie, mimicking the externally bulk-loaded dataset.
func (d *MemoryDriver) AddMovie(movie *store.Movie) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.movies[movie.ID]; !ok {
		d.order = append(d.order, movie.ID)
	}
	d.movies[movie.ID] = movie
}

// RemoveMovie deletes a movie, for simulating records that vanish mid-batch.
func (d *MemoryDriver) RemoveMovie(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.movies, id)
	for i, existing := range d.order {
		if existing == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// SetIndexAvailable toggles the simulated similarity index.
func (d *MemoryDriver) SetIndexAvailable(available bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.indexAvailable = available
}

// FailAttach makes UpdateMovieEmbedding fail for the given movie id.
func (d *MemoryDriver) FailAttach(id string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attachErrs[id] = err
}

func (d *MemoryDriver) GetDB() *sql.DB {
	return nil
}

func (d *MemoryDriver) Close() error {
	return nil
}

func (d *MemoryDriver) Ping(_ context.Context) error {
	return nil
}

func (d *MemoryDriver) IsInitialized(_ context.Context) (bool, error) {
	return true, nil
}

func (d *MemoryDriver) ListMovies(_ context.Context, find *store.FindMovie) ([]*store.Movie, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	list := []*store.Movie{}
	skipped := 0
	for _, id := range d.order {
		movie := d.movies[id]
		if find.ID != nil && movie.ID != *find.ID {
			continue
		}
		if skipped < find.Skip {
			skipped++
			continue
		}
		list = append(list, copyMovie(movie))
		if find.Limit > 0 && len(list) >= find.Limit {
			break
		}
	}
	return list, nil
}

func (d *MemoryDriver) GetMovie(_ context.Context, id string) (*store.Movie, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	movie, ok := d.movies[id]
	if !ok {
		return nil, nil
	}
	return copyMovie(movie), nil
}

func (d *MemoryDriver) CountMovies(_ context.Context, withEmbedding *bool) (int64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var count int64
	for _, movie := range d.movies {
		if withEmbedding != nil && movie.HasEmbedding() != *withEmbedding {
			continue
		}
		count++
	}
	return count, nil
}

func (d *MemoryDriver) FindMoviesWithoutEmbedding(_ context.Context, limit, skip int) ([]*store.Movie, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	list := []*store.Movie{}
	skipped := 0
	for _, id := range d.order {
		movie := d.movies[id]
		if movie.HasEmbedding() {
			continue
		}
		if skipped < skip {
			skipped++
			continue
		}
		list = append(list, copyMovie(movie))
		if len(list) >= limit {
			break
		}
	}
	return list, nil
}

func (d *MemoryDriver) UpdateMovieEmbedding(_ context.Context, id string, embedding []float32) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err, ok := d.attachErrs[id]; ok {
		return err
	}
	movie, ok := d.movies[id]
	if !ok {
		return apperrors.NotFound("movie " + id + " not found")
	}
	movie.PlotEmbedding = append([]float32(nil), embedding...)
	return nil
}

func (d *MemoryDriver) VectorSearch(_ context.Context, opts *store.VectorSearchOptions) ([]*store.MovieWithScore, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.indexAvailable {
		return nil, apperrors.IndexUnavailable("vector similarity index is not available", nil)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	results := []*store.MovieWithScore{}
	for _, id := range d.order {
		movie := d.movies[id]
		if !movie.HasEmbedding() {
			continue
		}
		results = append(results, &store.MovieWithScore{
			Movie: copyMovie(movie),
			Score: cosineSimilarity(opts.Vector, movie.PlotEmbedding),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (d *MemoryDriver) VectorDimensions(_ context.Context) (int, error) {
	return d.dimensions, nil
}

func (d *MemoryDriver) HasVectorIndex(_ context.Context, _ string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.indexAvailable, nil
}

func copyMovie(m *store.Movie) *store.Movie {
	clone := *m
	clone.Genres = append([]string(nil), m.Genres...)
	clone.Cast = append([]string(nil), m.Cast...)
	clone.PlotEmbedding = append([]float32(nil), m.PlotEmbedding...)
	if len(m.PlotEmbedding) == 0 {
		clone.PlotEmbedding = nil
	}
	return &clone
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Zero-magnitude vectors score 0.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// Package embedding backfills plot embeddings for movies that lack them.
package embedding

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/cinesearch/cinesearch/plugin/ai"
	"github.com/cinesearch/cinesearch/server/finops"
	"github.com/cinesearch/cinesearch/store"
)

// Runner generates and attaches embeddings for movies without one.
type Runner struct {
	store            *store.Store
	embeddingService ai.EmbeddingService
	usage            *finops.UsageMonitor
}

// NewRunner creates an embedding backfill runner.
func NewRunner(store *store.Store, embeddingService ai.EmbeddingService, usage *finops.UsageMonitor) *Runner {
	return &Runner{
		store:            store,
		embeddingService: embeddingService,
		usage:            usage,
	}
}

// Failure records one movie that could not be processed in a batch.
type Failure struct {
	MovieID string `json:"movie_id"`
	Reason  string `json:"reason"`
}

// Result reports the outcome of one backfill batch. Partial failures are
// counted, never escalated: the batch makes maximum forward progress.
type Result struct {
	Processed int       `json:"processed"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	Failures  []Failure `json:"failures,omitempty"`
}

// RunOnce processes a single batch of up to limit vector-less movies starting
// at skip. There is no retry; the caller re-invokes with an adjusted skip to
// make further progress. Concurrent calls with overlapping skip ranges are
// the caller's responsibility to avoid.
func (r *Runner) RunOnce(ctx context.Context, limit, skip int) (*Result, error) {
	movies, err := r.store.FindMoviesWithoutEmbedding(ctx, limit, skip)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find movies without embedding")
	}

	result := &Result{}
	if len(movies) == 0 {
		return result, nil
	}

	// Movies without plot text are skipped and reported, not fatal to the batch.
	embeddable := make([]*store.Movie, 0, len(movies))
	texts := make([]string, 0, len(movies))
	for _, movie := range movies {
		if strings.TrimSpace(movie.Plot) == "" {
			result.Skipped++
			result.Failures = append(result.Failures, Failure{
				MovieID: movie.ID,
				Reason:  "missing plot text",
			})
			continue
		}
		embeddable = append(embeddable, movie)
		texts = append(texts, movie.Plot)
	}
	if len(embeddable) == 0 {
		return result, nil
	}

	// One batched call for the whole batch; the round-trip dominates
	// per-item overhead.
	totalChars := 0
	for _, text := range texts {
		totalChars += len(text)
	}
	embedStart := time.Now()
	vectors, err := r.embeddingService.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to embed batch")
	}
	r.usage.Record("backfill", len(texts), totalChars, time.Since(embedStart))

	for i, movie := range embeddable {
		if err := r.store.UpdateMovieEmbedding(ctx, movie.ID, vectors[i]); err != nil {
			slog.Error("failed to attach embedding", "movie_id", movie.ID, "error", err)
			result.Failed++
			result.Failures = append(result.Failures, Failure{
				MovieID: movie.ID,
				Reason:  err.Error(),
			})
			continue
		}
		result.Processed++
	}

	slog.Info("backfill batch complete",
		"processed", result.Processed,
		"skipped", result.Skipped,
		"failed", result.Failed)
	return result, nil
}

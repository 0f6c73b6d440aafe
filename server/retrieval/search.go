// Package retrieval turns free-text queries into ranked movie matches.
package retrieval

import (
	"context"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/cinesearch/cinesearch/internal/errors"
	"github.com/cinesearch/cinesearch/plugin/ai"
	"github.com/cinesearch/cinesearch/server/finops"
	"github.com/cinesearch/cinesearch/store"
)

const (
	defaultLimit = 5
	maxLimit     = 20
)

// Searcher embeds a query and delegates nearest-neighbor ranking to the store.
type Searcher struct {
	store            *store.Store
	embeddingService ai.EmbeddingService
	usage            *finops.UsageMonitor
}

func NewSearcher(store *store.Store, embeddingService ai.EmbeddingService, usage *finops.UsageMonitor) *Searcher {
	return &Searcher{
		store:            store,
		embeddingService: embeddingService,
		usage:            usage,
	}
}

// Search embeds query and returns up to limit movies ranked by similarity.
// The store's ranking is authoritative: results are returned in store order,
// no re-sorting, no re-scoring. INDEX_UNAVAILABLE and EMPTY_INPUT propagate
// to the caller unchanged.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]*store.MovieWithScore, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, apperrors.InvalidArgument("query is required")
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	embedStart := time.Now()
	vector, err := s.embeddingService.Embed(ctx, trimmed)
	if err != nil {
		return nil, err
	}
	s.usage.Record("search", 1, len(trimmed), time.Since(embedStart))

	results, err := s.store.VectorSearch(ctx, &store.VectorSearchOptions{
		Vector: vector,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("semantic search complete", "query_len", len(trimmed), "results", len(results))
	return results, nil
}

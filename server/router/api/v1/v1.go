// Package v1 exposes the REST API. Handlers are thin: they validate and bind
// JSON, delegate to the search and backfill services, and map error codes to
// HTTP statuses.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/cinesearch/cinesearch/internal/errors"
	"github.com/cinesearch/cinesearch/internal/profile"
	"github.com/cinesearch/cinesearch/plugin/ai"
	"github.com/cinesearch/cinesearch/server/finops"
	"github.com/cinesearch/cinesearch/server/retrieval"
	"github.com/cinesearch/cinesearch/server/runner/embedding"
	movieservice "github.com/cinesearch/cinesearch/server/service/movie"
	"github.com/cinesearch/cinesearch/store"
)

type APIV1Service struct {
	Profile          *profile.Profile
	Store            *store.Store
	EmbeddingService ai.EmbeddingService
	Searcher         *retrieval.Searcher
	Runner           *embedding.Runner
	Snippeter        *movieservice.Snippeter
	Usage            *finops.UsageMonitor
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, embeddingService ai.EmbeddingService) *APIV1Service {
	usage := finops.NewUsageMonitor()
	return &APIV1Service{
		Profile:          profile,
		Store:            store,
		EmbeddingService: embeddingService,
		Searcher:         retrieval.NewSearcher(store, embeddingService, usage),
		Runner:           embedding.NewRunner(store, embeddingService, usage),
		Snippeter:        movieservice.NewSnippeter(0),
		Usage:            usage,
	}
}

// Register attaches all v1 routes to the given group.
func (s *APIV1Service) Register(group *echo.Group) {
	group.GET("/movies", s.ListMovies)
	group.GET("/movies/:id", s.GetMovie)
	group.GET("/movies/:id/similar", s.SimilarMovies)
	group.POST("/search", s.Search)
	group.POST("/embeddings/generate", s.GenerateEmbeddings)
	group.GET("/embeddings/stats", s.EmbeddingStats)
	group.GET("/embeddings/usage", s.EmbeddingUsage)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps the error taxonomy onto HTTP statuses. An unavailable
// similarity index is 503, never an empty 200.
func respondError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	code := apperrors.CodeOf(err)
	switch code {
	case apperrors.ErrCodeInvalidArgument, apperrors.ErrCodeEmptyInput, apperrors.ErrCodeMissingField:
		status = http.StatusBadRequest
	case apperrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case apperrors.ErrCodeIndexUnavailable, apperrors.ErrCodeConnectionFailed, apperrors.ErrCodeModelUnavailable:
		status = http.StatusServiceUnavailable
	}
	if code == "" {
		code = "INTERNAL"
	}
	return c.JSON(status, errorResponse{Code: string(code), Message: err.Error()})
}

package v1

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/cinesearch/cinesearch/internal/errors"
)

const (
	defaultBackfillLimit = 100
	maxBackfillLimit     = 1000
)

type generateRequest struct {
	Limit int `json:"limit"`
	Skip  int `json:"skip"`
}

type generateResponse struct {
	Processed int    `json:"processed"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
	Message   string `json:"message"`
}

// GenerateEmbeddings handles POST /embeddings/generate: one backfill batch.
func (s *APIV1Service) GenerateEmbeddings(c echo.Context) error {
	req := generateRequest{Limit: defaultBackfillLimit}
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperrors.InvalidArgument("invalid request body"))
	}
	if req.Limit < 1 || req.Limit > maxBackfillLimit {
		return respondError(c, apperrors.InvalidArgumentf("limit must be between 1 and %d", maxBackfillLimit))
	}
	if req.Skip < 0 {
		return respondError(c, apperrors.InvalidArgument("skip must not be negative"))
	}

	result, err := s.Runner.RunOnce(c.Request().Context(), req.Limit, req.Skip)
	if err != nil {
		return respondError(c, err)
	}

	message := fmt.Sprintf("generated embeddings for %d movies", result.Processed)
	if result.Processed == 0 && result.Skipped == 0 && result.Failed == 0 {
		message = "no movies found without embeddings"
	}
	return c.JSON(http.StatusOK, generateResponse{
		Processed: result.Processed,
		Skipped:   result.Skipped,
		Failed:    result.Failed,
		Message:   message,
	})
}

type statsResponse struct {
	TotalMovies          int64   `json:"total_movies"`
	WithEmbeddings       int64   `json:"with_embeddings"`
	WithoutEmbeddings    int64   `json:"without_embeddings"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

// EmbeddingUsage handles GET /embeddings/usage: estimated token and cost
// consumption of the embedding endpoint since process start.
func (s *APIV1Service) EmbeddingUsage(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Usage.Snapshot())
}

// EmbeddingStats handles GET /embeddings/stats.
func (s *APIV1Service) EmbeddingStats(c echo.Context) error {
	stats, err := s.Store.Stats(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, statsResponse{
		TotalMovies:          stats.Total,
		WithEmbeddings:       stats.WithEmbeddings,
		WithoutEmbeddings:    stats.WithoutEmbeddings,
		CompletionPercentage: stats.CompletionPercentage,
	})
}

package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/cinesearch/cinesearch/internal/errors"
	movieservice "github.com/cinesearch/cinesearch/server/service/movie"
)

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type searchResult struct {
	movieResponse
	Score      float32                  `json:"score"`
	Snippet    string                   `json:"snippet,omitempty"`
	Highlights []movieservice.Highlight `json:"highlights,omitempty"`
}

type searchResponse struct {
	Query   string         `json:"query"`
	Results []searchResult `json:"results"`
	Count   int            `json:"count"`
}

// Search handles POST /search: semantic search over movie plots.
func (s *APIV1Service) Search(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperrors.InvalidArgument("invalid request body"))
	}
	if req.Limit < 0 {
		return respondError(c, apperrors.InvalidArgument("limit must not be negative"))
	}

	results, err := s.Searcher.Search(c.Request().Context(), req.Query, req.Limit)
	if err != nil {
		return respondError(c, err)
	}

	tokens := movieservice.Tokenize(req.Query)
	response := searchResponse{
		Query:   req.Query,
		Results: make([]searchResult, len(results)),
		Count:   len(results),
	}
	for i, result := range results {
		snippet, highlights := s.Snippeter.Extract(result.Movie.Plot, tokens)
		response.Results[i] = searchResult{
			movieResponse: toMovieResponse(result.Movie),
			Score:         result.Score,
			Snippet:       snippet,
			Highlights:    highlights,
		}
	}
	return c.JSON(http.StatusOK, response)
}

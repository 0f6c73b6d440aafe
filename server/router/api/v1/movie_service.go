package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "github.com/cinesearch/cinesearch/internal/errors"
	"github.com/cinesearch/cinesearch/store"
)

type movieResponse struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Plot   string   `json:"plot,omitempty"`
	Year   int32    `json:"year,omitempty"`
	Genres []string `json:"genres,omitempty"`
	Cast   []string `json:"cast,omitempty"`
}

func toMovieResponse(m *store.Movie) movieResponse {
	return movieResponse{
		ID:     m.ID,
		Title:  m.Title,
		Plot:   m.Plot,
		Year:   m.Year,
		Genres: m.Genres,
		Cast:   m.Cast,
	}
}

// ListMovies handles GET /movies with limit/skip pagination.
func (s *APIV1Service) ListMovies(c echo.Context) error {
	limit, skip, err := s.pageParams(c)
	if err != nil {
		return respondError(c, err)
	}

	movies, err := s.Store.ListMovies(c.Request().Context(), &store.FindMovie{
		Limit: limit,
		Skip:  skip,
	})
	if err != nil {
		return respondError(c, err)
	}

	response := make([]movieResponse, len(movies))
	for i, movie := range movies {
		response[i] = toMovieResponse(movie)
	}
	return c.JSON(http.StatusOK, response)
}

// GetMovie handles GET /movies/:id.
func (s *APIV1Service) GetMovie(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return respondError(c, apperrors.InvalidArgument("movie id is required"))
	}

	movie, err := s.Store.GetMovie(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toMovieResponse(movie))
}

const (
	defaultSimilarLimit = 5
	maxSimilarLimit     = 20
)

// SimilarMovies handles GET /movies/:id/similar: nearest neighbors of a
// movie's own plot embedding, the movie itself excluded.
func (s *APIV1Service) SimilarMovies(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return respondError(c, apperrors.InvalidArgument("movie id is required"))
	}

	limit := defaultSimilarLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxSimilarLimit {
			return respondError(c, apperrors.InvalidArgumentf("limit must be between 1 and %d", maxSimilarLimit))
		}
		limit = parsed
	}

	movie, err := s.Store.GetMovie(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	if !movie.HasEmbedding() {
		return respondError(c, apperrors.MissingField("movie has no plot embedding yet"))
	}

	// Fetch one extra: the movie ranks first against its own vector.
	neighbors, err := s.Store.VectorSearch(c.Request().Context(), &store.VectorSearchOptions{
		Vector: movie.PlotEmbedding,
		Limit:  limit + 1,
	})
	if err != nil {
		return respondError(c, err)
	}

	results := make([]searchResult, 0, limit)
	for _, neighbor := range neighbors {
		if neighbor.Movie.ID == movie.ID {
			continue
		}
		if len(results) == limit {
			break
		}
		results = append(results, searchResult{
			movieResponse: toMovieResponse(neighbor.Movie),
			Score:         neighbor.Score,
		})
	}
	return c.JSON(http.StatusOK, results)
}

// pageParams parses and bounds-checks limit/skip query parameters.
func (s *APIV1Service) pageParams(c echo.Context) (int, int, error) {
	limit := s.Profile.DefaultPageSize
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, apperrors.InvalidArgumentf("invalid limit %q", raw)
		}
		limit = parsed
	}
	if limit < 1 || limit > s.Profile.MaxPageSize {
		return 0, 0, apperrors.InvalidArgumentf("limit must be between 1 and %d", s.Profile.MaxPageSize)
	}

	skip := 0
	if raw := c.QueryParam("skip"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, apperrors.InvalidArgumentf("invalid skip %q", raw)
		}
		skip = parsed
	}
	if skip < 0 {
		return 0, 0, apperrors.InvalidArgument("skip must not be negative")
	}
	return limit, skip, nil
}

package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cinesearch/cinesearch/internal/errors"
	"github.com/cinesearch/cinesearch/internal/profile"
	"github.com/cinesearch/cinesearch/store"
	storetest "github.com/cinesearch/cinesearch/store/test"
)

const dimensions = 4

type mockEmbeddingService struct {
	vector []float32
	err    error
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.vector, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = m.vector
	}
	return vectors, nil
}

func (m *mockEmbeddingService) Dimensions() int { return dimensions }

func (m *mockEmbeddingService) Validate(_ context.Context) error { return m.err }

func newTestService(driver *storetest.MemoryDriver, svc *mockEmbeddingService) *APIV1Service {
	testProfile := &profile.Profile{
		EmbeddingDimensions: dimensions,
		DefaultPageSize:     10,
		MaxPageSize:         100,
	}
	return NewAPIV1Service(testProfile, store.New(driver, testProfile), svc)
}

func seededDriver() *storetest.MemoryDriver {
	driver := storetest.NewMemoryDriver(dimensions)
	driver.AddMovie(&store.Movie{
		ID:            "tt0083658",
		Title:         "Blade Runner",
		Plot:          "a blade runner must pursue replicants",
		Year:          1982,
		Genres:        []string{"Sci-Fi"},
		Cast:          []string{"Harrison Ford"},
		PlotEmbedding: []float32{1, 0, 0, 0},
	})
	driver.AddMovie(&store.Movie{
		ID:            "tt0470752",
		Title:         "Ex Machina",
		Plot:          "a programmer evaluates a humanoid AI",
		Year:          2014,
		PlotEmbedding: []float32{0.9, 0.1, 0, 0},
	})
	driver.AddMovie(&store.Movie{
		ID:    "tt0034583",
		Title: "Casablanca",
		Plot:  "a cynical expatriate shelters his former lover",
		Year:  1942,
	})
	return driver
}

func doRequest(t *testing.T, method, path, body string, handler echo.HandlerFunc, pathParams ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var names, values []string
	for i := 0; i+1 < len(pathParams); i += 2 {
		names = append(names, pathParams[i])
		values = append(values, pathParams[i+1])
	}
	if len(names) > 0 {
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	require.NoError(t, handler(c))
	return rec
}

func TestListMovies(t *testing.T) {
	service := newTestService(seededDriver(), &mockEmbeddingService{vector: []float32{1, 0, 0, 0}})

	rec := doRequest(t, http.MethodGet, "/api/v1/movies?limit=2&skip=1", "", service.ListMovies)
	require.Equal(t, http.StatusOK, rec.Code)

	var movies []movieResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movies))
	require.Len(t, movies, 2)
	assert.Equal(t, "tt0470752", movies[0].ID)
	assert.Equal(t, "tt0034583", movies[1].ID)
}

func TestListMoviesInvalidLimit(t *testing.T) {
	service := newTestService(seededDriver(), &mockEmbeddingService{})

	for _, query := range []string{"limit=0", "limit=101", "limit=abc", "skip=-1"} {
		rec := doRequest(t, http.MethodGet, "/api/v1/movies?"+query, "", service.ListMovies)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "query %s", query)

		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, string(apperrors.ErrCodeInvalidArgument), resp.Code)
	}
}

func TestGetMovie(t *testing.T) {
	service := newTestService(seededDriver(), &mockEmbeddingService{})

	rec := doRequest(t, http.MethodGet, "/api/v1/movies/tt0083658", "", service.GetMovie, "id", "tt0083658")
	require.Equal(t, http.StatusOK, rec.Code)

	var movie movieResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movie))
	assert.Equal(t, "Blade Runner", movie.Title)
	assert.Equal(t, int32(1982), movie.Year)
}

func TestGetMovieNotFound(t *testing.T) {
	service := newTestService(seededDriver(), &mockEmbeddingService{})

	rec := doRequest(t, http.MethodGet, "/api/v1/movies/tt9999999", "", service.GetMovie, "id", "tt9999999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSimilarMovies(t *testing.T) {
	service := newTestService(seededDriver(), &mockEmbeddingService{})

	rec := doRequest(t, http.MethodGet, "/api/v1/movies/tt0083658/similar", "", service.SimilarMovies, "id", "tt0083658")
	require.Equal(t, http.StatusOK, rec.Code)

	var results []searchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "tt0470752", results[0].ID)
	for _, result := range results {
		assert.NotEqual(t, "tt0083658", result.ID)
	}
}

func TestSimilarMoviesNoEmbedding(t *testing.T) {
	service := newTestService(seededDriver(), &mockEmbeddingService{})

	rec := doRequest(t, http.MethodGet, "/api/v1/movies/tt0034583/similar", "", service.SimilarMovies, "id", "tt0034583")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(apperrors.ErrCodeMissingField), resp.Code)
}

func TestEmbeddingUsage(t *testing.T) {
	service := newTestService(seededDriver(), &mockEmbeddingService{vector: []float32{1, 0, 0, 0}})

	searchRec := doRequest(t, http.MethodPost, "/api/v1/search", `{"query":"space heist"}`, service.Search)
	require.Equal(t, http.StatusOK, searchRec.Code)

	rec := doRequest(t, http.MethodGet, "/api/v1/embeddings/usage", "", service.EmbeddingUsage)
	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot struct {
		TotalCalls  int64 `json:"total_calls"`
		ByOperation map[string]struct {
			Calls int64 `json:"calls"`
		} `json:"by_operation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Equal(t, int64(1), snapshot.TotalCalls)
	assert.Equal(t, int64(1), snapshot.ByOperation["search"].Calls)
}

func TestSearch(t *testing.T) {
	service := newTestService(seededDriver(), &mockEmbeddingService{vector: []float32{1, 0, 0, 0}})

	rec := doRequest(t, http.MethodPost, "/api/v1/search", `{"query":"android detective","limit":2}`, service.Search)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "android detective", resp.Query)
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "tt0083658", resp.Results[0].ID)
	assert.GreaterOrEqual(t, resp.Results[0].Score, resp.Results[1].Score)
}

func TestSearchEmptyQuery(t *testing.T) {
	service := newTestService(seededDriver(), &mockEmbeddingService{vector: []float32{1, 0, 0, 0}})

	rec := doRequest(t, http.MethodPost, "/api/v1/search", `{"query":"  "}`, service.Search)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchIndexUnavailable(t *testing.T) {
	driver := seededDriver()
	driver.SetIndexAvailable(false)
	service := newTestService(driver, &mockEmbeddingService{vector: []float32{1, 0, 0, 0}})

	rec := doRequest(t, http.MethodPost, "/api/v1/search", `{"query":"robot uprising","limit":5}`, service.Search)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(apperrors.ErrCodeIndexUnavailable), resp.Code)
}

func TestGenerateEmbeddings(t *testing.T) {
	service := newTestService(seededDriver(), &mockEmbeddingService{vector: []float32{1, 0, 0, 0}})

	rec := doRequest(t, http.MethodPost, "/api/v1/embeddings/generate", `{"limit":10,"skip":0}`, service.GenerateEmbeddings)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Processed) // only Casablanca lacked a vector
	assert.Equal(t, 0, resp.Skipped)
}

func TestGenerateEmbeddingsBounds(t *testing.T) {
	service := newTestService(seededDriver(), &mockEmbeddingService{})

	for _, body := range []string{`{"limit":-1}`, `{"limit":1001}`, `{"limit":10,"skip":-5}`} {
		rec := doRequest(t, http.MethodPost, "/api/v1/embeddings/generate", body, service.GenerateEmbeddings)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestEmbeddingStats(t *testing.T) {
	service := newTestService(seededDriver(), &mockEmbeddingService{})

	rec := doRequest(t, http.MethodGet, "/api/v1/embeddings/stats", "", service.EmbeddingStats)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.TotalMovies)
	assert.Equal(t, int64(2), resp.WithEmbeddings)
	assert.Equal(t, int64(1), resp.WithoutEmbeddings)
	assert.Equal(t, 66.67, resp.CompletionPercentage)
}

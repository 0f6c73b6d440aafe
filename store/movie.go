package store

// Movie is a single document from the bulk-loaded movie dataset.
type Movie struct {
	ID     string
	Title  string
	Plot   string
	Year   int32
	Genres []string
	Cast   []string
	// PlotEmbedding is nil until the backfill attaches a vector.
	PlotEmbedding []float32
}

// HasEmbedding reports whether a vector has been attached to the movie.
func (m *Movie) HasEmbedding() bool {
	return len(m.PlotEmbedding) > 0
}

// FindMovie is the find condition for movies.
type FindMovie struct {
	ID    *string
	Limit int
	Skip  int
}

// MovieWithScore represents a vector search result with similarity score.
type MovieWithScore struct {
	Movie *Movie
	Score float32 // Cosine similarity in [-1, 1], higher is more similar
}

// VectorSearchOptions represents the options for vector search.
type VectorSearchOptions struct {
	Vector []float32 // Query vector
	Limit  int       // Number of results to return, default 10
}

// EmbeddingStats describes backfill progress over the movie collection.
type EmbeddingStats struct {
	Total                int64
	WithEmbeddings       int64
	WithoutEmbeddings    int64
	CompletionPercentage float64 // Rounded to two decimals, 0 when the collection is empty
}

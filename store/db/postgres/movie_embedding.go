package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	apperrors "github.com/cinesearch/cinesearch/internal/errors"
	"github.com/cinesearch/cinesearch/store"
)

// UpdateMovieEmbedding attaches the embedding vector to a movie. Re-attaching
// the same vector is a no-op in effect; the statement is a plain UPDATE.
func (d *DB) UpdateMovieEmbedding(ctx context.Context, id string, embedding []float32) error {
	stmt := `UPDATE movie SET plot_embedding = $1 WHERE id = $2`
	result, err := d.db.ExecContext(ctx, stmt, pgvector.NewVector(embedding), id)
	if err != nil {
		if isVectorSchemaError(err) {
			return apperrors.IndexUnavailable("vector column is not available", err)
		}
		return errors.Wrap(err, "failed to update movie embedding")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if rows == 0 {
		return apperrors.NotFound("movie " + id + " not found")
	}
	return nil
}

// FindMoviesWithoutEmbedding returns movies whose vector is absent, ordered by
// id so that repeated backfill calls walk the dataset deterministically.
func (d *DB) FindMoviesWithoutEmbedding(ctx context.Context, limit, skip int) ([]*store.Movie, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, title, plot, year, genres, cast_members
		FROM movie
		WHERE plot_embedding IS NULL
		ORDER BY id
		LIMIT $1 OFFSET $2`

	rows, err := d.db.QueryContext(ctx, query, limit, skip)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find movies without embedding")
	}
	defer rows.Close()

	list := []*store.Movie{}
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// VectorSearch performs cosine similarity search using pgvector.
// The <=> operator computes cosine distance (1 - cosine_similarity),
// so ordering by distance ASC yields the most similar movies first.
func (d *DB) VectorSearch(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.MovieWithScore, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT
			m.id, m.title, m.plot, m.year, m.genres, m.cast_members,
			1 - (m.plot_embedding <=> $1) AS score
		FROM movie m
		WHERE m.plot_embedding IS NOT NULL
		ORDER BY m.plot_embedding <=> $1
		LIMIT $2`

	vector := pgvector.NewVector(opts.Vector)
	rows, err := d.db.QueryContext(ctx, query, vector, limit)
	if err != nil {
		// A missing pgvector extension or dropped column must surface as
		// INDEX_UNAVAILABLE, never as an empty result set.
		if isVectorSchemaError(err) {
			return nil, apperrors.IndexUnavailable("vector similarity index is not available", err)
		}
		return nil, errors.Wrap(err, "failed to vector search")
	}
	defer rows.Close()

	results := []*store.MovieWithScore{}
	for rows.Next() {
		var result store.MovieWithScore
		var movie store.Movie
		var plot sql.NullString
		var year sql.NullInt32

		err := rows.Scan(
			&movie.ID,
			&movie.Title,
			&plot,
			&year,
			pq.Array(&movie.Genres),
			pq.Array(&movie.Cast),
			&result.Score,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan vector search result")
		}
		movie.Plot = plot.String
		movie.Year = year.Int32
		result.Movie = &movie
		results = append(results, &result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// VectorDimensions returns the declared dimension of the plot_embedding
// column. For pgvector columns the dimension is stored in atttypmod.
func (d *DB) VectorDimensions(ctx context.Context) (int, error) {
	query := `
		SELECT a.atttypmod
		FROM pg_attribute a
		WHERE a.attrelid = 'movie'::regclass
			AND a.attname = 'plot_embedding'
			AND NOT a.attisdropped`

	var dimensions int
	err := d.db.QueryRowContext(ctx, query).Scan(&dimensions)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to read embedding column dimensions")
	}
	if dimensions < 0 {
		return 0, nil
	}
	return dimensions, nil
}

// HasVectorIndex reports whether the named similarity index exists on the
// movie table.
func (d *DB) HasVectorIndex(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_indexes WHERE tablename = 'movie' AND indexname = $1)`,
		name,
	).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "failed to check vector index")
	}
	return exists, nil
}

// isVectorSchemaError reports whether err means the pgvector type, operator,
// or the movie table itself is missing.
func isVectorSchemaError(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case "42704": // undefined_object: type "vector" does not exist
		return true
	case "42883": // undefined_function: operator <=> does not exist
		return true
	case "42P01": // undefined_table
		return true
	case "42703": // undefined_column
		return true
	case "0A000": // feature_not_supported
		return true
	}
	return false
}

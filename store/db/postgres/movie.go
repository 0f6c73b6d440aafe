package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/cinesearch/cinesearch/store"
)

// ListMovies lists movies in stable dataset order.
func (d *DB) ListMovies(ctx context.Context, find *store.FindMovie) ([]*store.Movie, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		args = append(args, *find.ID)
		where = append(where, "id = "+placeholder(len(args)))
	}

	query := `
		SELECT id, title, plot, year, genres, cast_members
		FROM movie
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY id`
	if find.Limit > 0 {
		args = append(args, find.Limit)
		query += " LIMIT " + placeholder(len(args))
	}
	if find.Skip > 0 {
		args = append(args, find.Skip)
		query += " OFFSET " + placeholder(len(args))
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list movies")
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

// GetMovie returns a single movie with its embedding, or nil when absent.
func (d *DB) GetMovie(ctx context.Context, id string) (*store.Movie, error) {
	query := `
		SELECT id, title, plot, year, genres, cast_members, plot_embedding::text
		FROM movie
		WHERE id = $1`

	var movie store.Movie
	var plot sql.NullString
	var year sql.NullInt32
	var embedding sql.NullString
	err := d.db.QueryRowContext(ctx, query, id).Scan(
		&movie.ID,
		&movie.Title,
		&plot,
		&year,
		pq.Array(&movie.Genres),
		pq.Array(&movie.Cast),
		&embedding,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get movie")
	}
	movie.Plot = plot.String
	movie.Year = year.Int32
	if embedding.Valid {
		var vector pgvector.Vector
		if err := vector.Scan(embedding.String); err != nil {
			return nil, errors.Wrap(err, "failed to scan embedding")
		}
		movie.PlotEmbedding = vector.Slice()
	}
	return &movie, nil
}

// CountMovies counts movies, optionally filtered by embedding presence.
func (d *DB) CountMovies(ctx context.Context, withEmbedding *bool) (int64, error) {
	query := "SELECT COUNT(*) FROM movie"
	if withEmbedding != nil {
		if *withEmbedding {
			query += " WHERE plot_embedding IS NOT NULL"
		} else {
			query += " WHERE plot_embedding IS NULL"
		}
	}

	var count int64
	if err := d.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count movies")
	}
	return count, nil
}

// scanMovie scans the list projection (no embedding column).
func scanMovie(rows *sql.Rows) (*store.Movie, error) {
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
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan movie")
	}
	movie.Plot = plot.String
	movie.Year = year.Int32
	return &movie, nil
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

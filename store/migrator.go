package store

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
)

//go:embed migration
var migrationFS embed.FS

// LatestSchemaFileName is the full schema applied to fresh installations.
// The file is a template: the embedding column dimension and the vector index
// name come from the profile, so a model swap always goes through a schema
// rebuild rather than silently mixing incomparable vectors.
const latestSchemaFileName = "migration/LATEST.sql"

// Migrate initializes the database schema when the movie table is absent.
// An already-initialized database is left untouched.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check if database is initialized")
	}
	if initialized {
		return nil
	}

	buf, err := migrationFS.ReadFile(latestSchemaFileName)
	if err != nil {
		return errors.Wrap(err, "failed to read latest schema file")
	}
	stmt := fmt.Sprintf(string(buf), s.profile.EmbeddingDimensions, s.profile.VectorIndexName)

	db := s.driver.GetDB()
	if db == nil {
		return errors.New("driver does not expose a database handle")
	}
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "failed to apply latest schema")
	}

	slog.Info("database schema initialized",
		"dimensions", s.profile.EmbeddingDimensions,
		"index", s.profile.VectorIndexName)
	return nil
}

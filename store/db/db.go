package db

import (
	apperrors "github.com/cinesearch/cinesearch/internal/errors"
	"github.com/cinesearch/cinesearch/internal/profile"
	"github.com/cinesearch/cinesearch/store"
	"github.com/cinesearch/cinesearch/store/db/postgres"
)

// NewDBDriver creates new db driver based on profile. A database that cannot
// be reached at startup is fatal; the service refuses to serve without it.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, apperrors.InvalidArgumentf("unknown db driver %q: only 'postgres' is supported", profile.Driver)
	}
	if err != nil {
		return nil, apperrors.ConnectionFailed("failed to connect to database", err)
	}
	return driver, nil
}

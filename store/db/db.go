// Package db provides the database driver factory.
package db

import (
	"github.com/pkg/errors"

	"github.com/prathmesh008/scrappingsydney/internal/profile"
	"github.com/prathmesh008/scrappingsydney/store"
	"github.com/prathmesh008/scrappingsydney/store/db/postgres"
	"github.com/prathmesh008/scrappingsydney/store/db/sqlite"
)

// NewDBDriver creates a new DB driver based on the profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	switch profile.Driver {
	case "sqlite":
		return sqlite.NewDB(profile)
	case "postgres":
		return postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q", profile.Driver)
	}
}

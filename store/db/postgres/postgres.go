package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"

	"github.com/prathmesh008/scrappingsydney/internal/profile"
	"github.com/prathmesh008/scrappingsydney/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a PostgreSQL database specified by the profile DSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	pgDB, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	driver := DB{db: pgDB, profile: profile}

	return &driver, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Migrate creates the pgvector extension and the schema if absent. The
// event embedding column dimension follows the configured embedding model.
func (d *DB) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS user_profile (
			user_id BIGINT PRIMARY KEY,
			display_name TEXT NOT NULL DEFAULT '',
			preference TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			last_active BIGINT NOT NULL
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS event (
			id TEXT PRIMARY KEY,
			seq BIGSERIAL,
			title TEXT NOT NULL DEFAULT '',
			venue TEXT NOT NULL DEFAULT '',
			date TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			embedding_text TEXT NOT NULL DEFAULT '',
			embedding vector(%d) NOT NULL,
			updated_ts BIGINT NOT NULL
		)`, d.profile.EmbeddingDim),
		`CREATE TABLE IF NOT EXISTS notification (
			user_id BIGINT NOT NULL,
			event_id TEXT NOT NULL,
			sent_at BIGINT NOT NULL,
			PRIMARY KEY (user_id, event_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to migrate schema")
		}
	}
	return nil
}

// placeholder returns a positional parameter placeholder, e.g. $1.
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// placeholders returns n comma-separated positional placeholders.
func placeholders(n int) string {
	list := []string{}
	for i := 1; i <= n; i++ {
		list = append(list, placeholder(i))
	}
	return strings.Join(list, ", ")
}

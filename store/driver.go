package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for database drivers.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Migrate creates the schema if it does not exist yet.
	Migrate(ctx context.Context) error

	// User profiles.
	GetUserProfile(ctx context.Context, userID int64) (*UserProfile, error)
	UpsertUserProfile(ctx context.Context, upsert *UpsertUserProfile) (*UserProfile, error)
	ListUserProfiles(ctx context.Context) ([]*UserProfile, error)

	// Vector index over event records. UpsertEvents is idempotent per
	// event ID; SearchEvents returns hits ordered best-first, ties kept
	// in insertion order.
	UpsertEvents(ctx context.Context, upserts []*EventUpsert) error
	SearchEvents(ctx context.Context, vector []float32, limit int) ([]*EventMatch, error)
	CountEvents(ctx context.Context) (int64, error)

	// Notification dedup ledger. CreateNotificationOnce is an atomic
	// insert-if-absent; it reports whether a row was actually inserted.
	CreateNotificationOnce(ctx context.Context, userID int64, eventID string) (bool, error)
	ListNotifiedEventIDs(ctx context.Context, userID int64) (map[string]bool, error)
	ListNotifications(ctx context.Context, userID int64) ([]*NotificationRecord, error)
}

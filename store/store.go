package store

import (
	"context"
	"database/sql"

	"github.com/prathmesh008/scrappingsydney/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) GetDB() *sql.DB {
	return s.driver.GetDB()
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

// User profile methods.

func (s *Store) GetUserProfile(ctx context.Context, userID int64) (*UserProfile, error) {
	return s.driver.GetUserProfile(ctx, userID)
}

func (s *Store) UpsertUserProfile(ctx context.Context, upsert *UpsertUserProfile) (*UserProfile, error) {
	return s.driver.UpsertUserProfile(ctx, upsert)
}

func (s *Store) ListUserProfiles(ctx context.Context) ([]*UserProfile, error) {
	return s.driver.ListUserProfiles(ctx)
}

// Vector index methods.

func (s *Store) UpsertEvents(ctx context.Context, upserts []*EventUpsert) error {
	return s.driver.UpsertEvents(ctx, upserts)
}

func (s *Store) SearchEvents(ctx context.Context, vector []float32, limit int) ([]*EventMatch, error) {
	return s.driver.SearchEvents(ctx, vector, limit)
}

func (s *Store) CountEvents(ctx context.Context) (int64, error) {
	return s.driver.CountEvents(ctx)
}

// Notification ledger methods.

func (s *Store) CreateNotificationOnce(ctx context.Context, userID int64, eventID string) (bool, error) {
	return s.driver.CreateNotificationOnce(ctx, userID, eventID)
}

func (s *Store) ListNotifiedEventIDs(ctx context.Context, userID int64) (map[string]bool, error) {
	return s.driver.ListNotifiedEventIDs(ctx, userID)
}

func (s *Store) ListNotifications(ctx context.Context, userID int64) ([]*NotificationRecord, error) {
	return s.driver.ListNotifications(ctx, userID)
}

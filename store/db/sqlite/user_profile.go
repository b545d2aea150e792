package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/prathmesh008/scrappingsydney/store"
)

// UpsertUserProfile saves or fully overwrites a user profile, refreshing
// last_active.
func (d *DB) UpsertUserProfile(ctx context.Context, upsert *store.UpsertUserProfile) (*store.UserProfile, error) {
	stmt := `
		INSERT INTO user_profile (user_id, display_name, preference, location, last_active)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			display_name = excluded.display_name,
			preference = excluded.preference,
			location = excluded.location,
			last_active = excluded.last_active
		RETURNING user_id, display_name, preference, location, last_active
	`

	profile := &store.UserProfile{}
	err := d.db.QueryRowContext(ctx, stmt,
		upsert.UserID,
		upsert.DisplayName,
		upsert.Preference,
		upsert.Location,
		time.Now().Unix(),
	).Scan(
		&profile.UserID,
		&profile.DisplayName,
		&profile.Preference,
		&profile.Location,
		&profile.LastActive,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert user profile")
	}

	return profile, nil
}

// GetUserProfile returns the profile for userID, or nil when absent.
func (d *DB) GetUserProfile(ctx context.Context, userID int64) (*store.UserProfile, error) {
	query := `
		SELECT user_id, display_name, preference, location, last_active
		FROM user_profile
		WHERE user_id = ?
	`

	profile := &store.UserProfile{}
	err := d.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.DisplayName,
		&profile.Preference,
		&profile.Location,
		&profile.LastActive,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get user profile")
	}

	return profile, nil
}

// ListUserProfiles returns all user profiles. Each row is read whole, so
// concurrent upserts are either fully visible or not at all.
func (d *DB) ListUserProfiles(ctx context.Context) ([]*store.UserProfile, error) {
	query := `
		SELECT user_id, display_name, preference, location, last_active
		FROM user_profile
		ORDER BY user_id
	`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list user profiles")
	}
	defer rows.Close()

	list := []*store.UserProfile{}
	for rows.Next() {
		profile := &store.UserProfile{}
		err := rows.Scan(
			&profile.UserID,
			&profile.DisplayName,
			&profile.Preference,
			&profile.Location,
			&profile.LastActive,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan user profile")
		}
		list = append(list, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

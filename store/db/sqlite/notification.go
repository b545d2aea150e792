package sqlite

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/prathmesh008/scrappingsydney/store"
)

// CreateNotificationOnce atomically inserts a notification record unless
// one already exists for (userID, eventID). It reports whether the row was
// inserted; false means the pair was already sent.
func (d *DB) CreateNotificationOnce(ctx context.Context, userID int64, eventID string) (bool, error) {
	stmt := `
		INSERT INTO notification (user_id, event_id, sent_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, event_id) DO NOTHING
	`

	result, err := d.db.ExecContext(ctx, stmt, userID, eventID, time.Now().Unix())
	if err != nil {
		return false, errors.Wrap(err, "failed to insert notification record")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "failed to read rows affected")
	}
	return rows > 0, nil
}

// ListNotifiedEventIDs returns the set of event IDs already sent to userID.
func (d *DB) ListNotifiedEventIDs(ctx context.Context, userID int64) (map[string]bool, error) {
	query := `SELECT event_id FROM notification WHERE user_id = ?`

	rows, err := d.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list notification records")
	}
	defer rows.Close()

	sent := map[string]bool{}
	for rows.Next() {
		var eventID string
		if err := rows.Scan(&eventID); err != nil {
			return nil, errors.Wrap(err, "failed to scan notification record")
		}
		sent[eventID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sent, nil
}

// ListNotifications returns the full delivery history for userID, oldest
// first.
func (d *DB) ListNotifications(ctx context.Context, userID int64) ([]*store.NotificationRecord, error) {
	query := `
		SELECT user_id, event_id, sent_at
		FROM notification
		WHERE user_id = ?
		ORDER BY sent_at
	`

	rows, err := d.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list notification records")
	}
	defer rows.Close()

	list := []*store.NotificationRecord{}
	for rows.Next() {
		record := &store.NotificationRecord{}
		if err := rows.Scan(&record.UserID, &record.EventID, &record.SentAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan notification record")
		}
		list = append(list, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

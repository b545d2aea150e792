package store

// NotificationRecord marks that an event was successfully delivered to a
// user. At most one record ever exists per (user, event) pair; the record
// is written after delivery success and never mutated.
type NotificationRecord struct {
	UserID  int64
	EventID string
	// SentAt is a unix timestamp.
	SentAt int64
}

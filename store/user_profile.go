package store

// UserProfile represents a chat user's saved recommendation profile.
// The profile is created on first profile-setup completion and fully
// overwritten on every later completion.
type UserProfile struct {
	// UserID is the Telegram chat ID, stable per user.
	UserID      int64
	DisplayName string
	// Preference is the user's free-text interest, e.g. "Jazz, Tech, Art".
	// Empty means the user never opted into notifications.
	Preference string
	Location   string
	// LastActive is a unix timestamp refreshed on every profile upsert.
	LastActive int64
}

// UpsertUserProfile specifies the data for upserting a user profile.
type UpsertUserProfile struct {
	UserID      int64
	DisplayName string
	Preference  string
	Location    string
}

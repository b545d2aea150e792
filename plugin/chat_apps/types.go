// Package chat_apps provides chat platform integration for the event bot.
// Telegram is the only wired platform; the types keep the platform
// dimension so another channel can be added without touching the bot core.
package chat_apps

import "time"

// Platform represents a supported chat platform.
type Platform string

const (
	PlatformTelegram Platform = "telegram"
)

// IsValid checks if the platform is valid.
func (p Platform) IsValid() bool {
	return p == PlatformTelegram
}

// IncomingMessage represents a text message received from a chat platform.
type IncomingMessage struct {
	Platform    Platform
	ChatID      int64
	UserID      int64
	DisplayName string
	// Content is the message text, command included.
	Content string
	// Command is the bot command without the leading slash, empty for
	// plain text messages.
	Command   string
	Timestamp time.Time
}

// OutgoingMessage represents a message to send to a chat platform.
type OutgoingMessage struct {
	ChatID                int64
	Content               string
	ParseMode             string // Markdown/HTML parsing mode (optional)
	DisableWebPagePreview bool
}

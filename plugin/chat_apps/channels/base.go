// Package channels provides the ChatChannel interface for chat platform
// integrations.
package channels

import (
	"context"

	"github.com/prathmesh008/scrappingsydney/plugin/chat_apps"
)

// ChatChannel defines the interface a chat platform integration implements.
type ChatChannel interface {
	// Name returns the platform name (e.g., "telegram").
	Name() chat_apps.Platform

	// SendMessage sends a single message to the chat platform.
	SendMessage(ctx context.Context, msg *chat_apps.OutgoingMessage) error

	// Updates returns a stream of incoming text messages. The channel is
	// closed when the integration shuts down.
	Updates() <-chan *chat_apps.IncomingMessage

	// Close stops receiving updates and releases resources.
	Close() error
}

package server

import (
	"context"

	"github.com/prathmesh008/scrappingsydney/plugin/chat_apps"
	"github.com/prathmesh008/scrappingsydney/plugin/chat_apps/channels"
)

// channelSink adapts a ChatChannel to the notifier's DeliverySink. The
// Telegram chat ID doubles as the user ID for direct chats.
type channelSink struct {
	channel channels.ChatChannel
}

func (c *channelSink) Send(ctx context.Context, userID int64, message string) error {
	return c.channel.SendMessage(ctx, &chat_apps.OutgoingMessage{
		ChatID:                userID,
		Content:               message,
		DisableWebPagePreview: true,
	})
}

// Package telegram implements the Telegram Bot channel.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/prathmesh008/scrappingsydney/plugin/chat_apps"
	"github.com/prathmesh008/scrappingsydney/plugin/chat_apps/channels"
)

const (
	DefaultParseMode = "Markdown"
	// updateTimeout is the long-poll timeout in seconds.
	updateTimeout = 30
)

// TelegramConfig holds configuration for the Telegram channel.
type TelegramConfig struct {
	BotToken string
}

// TelegramChannel implements ChatChannel for the Telegram Bot API using
// long polling.
type TelegramChannel struct {
	bot      *tgbotapi.BotAPI
	config   *TelegramConfig
	incoming chan *chat_apps.IncomingMessage
	done     chan struct{}
}

// NewTelegramChannel creates a new Telegram channel and starts receiving
// updates.
func NewTelegramChannel(config *TelegramConfig) (*TelegramChannel, error) {
	bot, err := tgbotapi.NewBotAPI(config.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	t := &TelegramChannel{
		bot:      bot,
		config:   config,
		incoming: make(chan *chat_apps.IncomingMessage, 64),
		done:     make(chan struct{}),
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = updateTimeout
	updates := bot.GetUpdatesChan(updateConfig)

	go t.receive(updates)

	slog.Info("telegram: bot authorized", "username", bot.Self.UserName)
	return t, nil
}

// Name returns the platform name.
func (t *TelegramChannel) Name() chat_apps.Platform {
	return chat_apps.PlatformTelegram
}

// receive converts Telegram updates into IncomingMessages. Non-text
// updates are dropped; the bot only understands text.
func (t *TelegramChannel) receive(updates tgbotapi.UpdatesChannel) {
	defer close(t.incoming)

	for update := range updates {
		tgMsg := update.Message
		if tgMsg == nil {
			tgMsg = update.EditedMessage
		}
		if tgMsg == nil || tgMsg.Text == "" || tgMsg.From == nil {
			continue
		}

		displayName := tgMsg.From.UserName
		if displayName == "" {
			displayName = tgMsg.From.FirstName
		}

		msg := &chat_apps.IncomingMessage{
			Platform:    chat_apps.PlatformTelegram,
			ChatID:      tgMsg.Chat.ID,
			UserID:      tgMsg.From.ID,
			DisplayName: displayName,
			Content:     tgMsg.Text,
			Timestamp:   time.Now(),
		}
		if tgMsg.IsCommand() {
			msg.Command = tgMsg.Command()
		}

		select {
		case t.incoming <- msg:
		case <-t.done:
			return
		}
	}
}

// Updates returns the stream of incoming text messages.
func (t *TelegramChannel) Updates() <-chan *chat_apps.IncomingMessage {
	return t.incoming
}

// SendMessage sends a text message to Telegram.
func (t *TelegramChannel) SendMessage(ctx context.Context, msg *chat_apps.OutgoingMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	slog.Debug("telegram: sending message", "chat_id", msg.ChatID)

	tgMsg := tgbotapi.NewMessage(msg.ChatID, msg.Content)
	tgMsg.ParseMode = msg.ParseMode
	if tgMsg.ParseMode == "" {
		tgMsg.ParseMode = DefaultParseMode
	}
	tgMsg.DisableWebPagePreview = msg.DisableWebPagePreview

	if _, err := t.bot.Send(tgMsg); err != nil {
		slog.Error("telegram: send failed", "chat_id", msg.ChatID, "error", err)
		return fmt.Errorf("telegram send failed: %w", err)
	}
	return nil
}

// Close stops receiving updates.
func (t *TelegramChannel) Close() error {
	close(t.done)
	t.bot.StopReceivingUpdates()
	return nil
}

// Ensure TelegramChannel implements ChatChannel
var _ channels.ChatChannel = (*TelegramChannel)(nil)

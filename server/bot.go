package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prathmesh008/scrappingsydney/plugin/chat_apps"
	"github.com/prathmesh008/scrappingsydney/store"
)

const (
	greetingText = "👋 Hi! I'm your Sydney Event Assistant.\n\n" +
		"I can help you find events based on your vibe. Let's set up your profile first.\n\n" +
		"🎵 What kind of events do you like? (e.g., Jazz, Tech, Art, Parties)"

	profileSavedText = "✅ Profile Saved!\n\n" +
		"You can now ask me for recommendations like:\n" +
		"- 'Find me something for this weekend'\n" +
		"- 'Any good art exhibitions?'\n" +
		"Or just type /recommend to use your saved preferences."

	noMatchesText = "😔 No matching events found nearby."

	freeTextFallback = "I couldn't find anything specifically for that. Try simpler keywords!"

	searchTroubleText = "😔 Something went wrong while searching, please try again in a moment."
)

// freeTextResults is how many hits a plain chat message gets back.
const freeTextResults = 3

// handleMessage dispatches one incoming chat message.
func (s *Server) handleMessage(ctx context.Context, msg *chat_apps.IncomingMessage) {
	switch msg.Command {
	case "start", "preferences":
		s.handleStart(ctx, msg)
	case "cancel":
		s.handleCancel(ctx, msg)
	case "recommend":
		s.handleRecommend(ctx, msg)
	case "":
		s.handleText(ctx, msg)
	default:
		s.reply(ctx, msg.ChatID, "I don't know that command. Try /start, /recommend or just tell me what you're after.")
	}
}

// handleStart enters the profile-setup conversation.
func (s *Server) handleStart(ctx context.Context, msg *chat_apps.IncomingMessage) {
	s.sessions.begin(msg.ChatID)
	s.reply(ctx, msg.ChatID, greetingText)
}

// handleCancel aborts a running setup conversation.
func (s *Server) handleCancel(ctx context.Context, msg *chat_apps.IncomingMessage) {
	if s.sessions.cancel(msg.ChatID) {
		s.reply(ctx, msg.ChatID, "Registration cancelled.")
		return
	}
	s.reply(ctx, msg.ChatID, "Nothing to cancel.")
}

// handleRecommend ranks against the saved preference, falling back to the
// configured default query for users without a profile.
func (s *Server) handleRecommend(ctx context.Context, msg *chat_apps.IncomingMessage) {
	query := ""
	profile, err := s.store.GetUserProfile(ctx, msg.UserID)
	if err != nil {
		slog.Error("failed to load user profile", "user_id", msg.UserID, "error", err)
	}

	if profile != nil && profile.Preference != "" {
		query = profile.Preference
		s.reply(ctx, msg.ChatID, fmt.Sprintf("🔎 Searching for events matching: *%s*...", query))
	} else {
		// Rank substitutes the configured default for the empty query.
		s.reply(ctx, msg.ChatID, "🔎 Using general recommendation...")
	}

	matches, err := s.engine.Rank(ctx, query, s.profile.TopK, nil)
	if err != nil {
		slog.Error("recommendation failed", "user_id", msg.UserID, "error", err)
		s.reply(ctx, msg.ChatID, searchTroubleText)
		return
	}
	if len(matches) == 0 {
		s.reply(ctx, msg.ChatID, noMatchesText)
		return
	}

	s.reply(ctx, msg.ChatID, renderMatches(matches))
}

// handleText feeds plain messages into the setup conversation when one is
// running, otherwise treats them as an ad-hoc semantic search.
func (s *Server) handleText(ctx context.Context, msg *chat_apps.IncomingMessage) {
	if session, ok := s.sessions.get(msg.ChatID); ok {
		switch session.state {
		case StateAwaitingPreference:
			s.sessions.advance(msg.ChatID, msg.Content)
			s.reply(ctx, msg.ChatID, fmt.Sprintf(
				"Got it! You like '%s'.\n\n📍 Which area in Sydney do you prefer? (e.g., CBD, Newtown, Surry Hills, or 'Any')",
				msg.Content,
			))
			return
		case StateAwaitingLocation:
			preference, ok := s.sessions.finish(msg.ChatID)
			if !ok {
				break
			}
			// Trim so a whitespace answer never counts as an opt-in.
			_, err := s.store.UpsertUserProfile(ctx, &store.UpsertUserProfile{
				UserID:      msg.UserID,
				DisplayName: msg.DisplayName,
				Preference:  strings.TrimSpace(preference),
				Location:    strings.TrimSpace(msg.Content),
			})
			if err != nil {
				slog.Error("failed to save user profile", "user_id", msg.UserID, "error", err)
				s.reply(ctx, msg.ChatID, "😔 Couldn't save your profile, please try /start again.")
				return
			}
			slog.Info("user profile saved", "user_id", msg.UserID, "display_name", msg.DisplayName)
			s.reply(ctx, msg.ChatID, profileSavedText)
			return
		}
	}

	matches, err := s.engine.Rank(ctx, msg.Content, freeTextResults, nil)
	if err != nil {
		slog.Error("free-text search failed", "user_id", msg.UserID, "error", err)
		s.reply(ctx, msg.ChatID, searchTroubleText)
		return
	}
	if len(matches) == 0 {
		s.reply(ctx, msg.ChatID, freeTextFallback)
		return
	}

	s.reply(ctx, msg.ChatID, "Here's what I found based on that:")
	for _, match := range matches {
		s.reply(ctx, msg.ChatID, renderSingleMatch(match))
	}
}

// reply sends a markdown message, logging instead of failing the handler.
func (s *Server) reply(ctx context.Context, chatID int64, content string) {
	err := s.channel.SendMessage(ctx, &chat_apps.OutgoingMessage{
		ChatID:                chatID,
		Content:               content,
		DisableWebPagePreview: true,
	})
	if err != nil {
		slog.Error("failed to send reply", "chat_id", chatID, "error", err)
	}
}

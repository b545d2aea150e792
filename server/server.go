// Package server wires the Telegram bot, the recommendation engine and the
// notification dispatcher into one runnable service.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/prathmesh008/scrappingsydney/ai"
	"github.com/prathmesh008/scrappingsydney/ai/recommend"
	"github.com/prathmesh008/scrappingsydney/internal/profile"
	"github.com/prathmesh008/scrappingsydney/notifier"
	"github.com/prathmesh008/scrappingsydney/plugin/chat_apps/channels"
	"github.com/prathmesh008/scrappingsydney/plugin/chat_apps/channels/telegram"
	"github.com/prathmesh008/scrappingsydney/store"
)

// Server owns the long-running pieces of the bot. All collaborators are
// constructed here and passed in explicitly; nothing is a package-level
// singleton.
type Server struct {
	profile *profile.Profile
	store   *store.Store

	engine     *recommend.Engine
	channel    channels.ChatChannel
	dispatcher *notifier.Dispatcher
	ops        *echo.Echo
	sessions   *sessionStore
}

// NewServer creates the bot server with all its collaborators.
func NewServer(ctx context.Context, instanceProfile *profile.Profile, storeInstance *store.Store) (*Server, error) {
	embeddingConfig := ai.NewEmbeddingConfigFromProfile(instanceProfile)
	if err := embeddingConfig.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid embedding config")
	}
	embedder, err := ai.NewEmbeddingService(embeddingConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create embedding service")
	}

	engine := recommend.NewEngine(embedder, storeInstance, recommend.Config{
		DefaultQuery: instanceProfile.DefaultQuery,
	})

	if instanceProfile.TelegramToken == "" {
		return nil, errors.New("telegram token required")
	}
	channel, err := telegram.NewTelegramChannel(&telegram.TelegramConfig{
		BotToken: instanceProfile.TelegramToken,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create telegram channel")
	}

	scheduler := notifier.NewScheduler(storeInstance, engine, &channelSink{channel: channel}, notifier.Config{
		Candidates:    instanceProfile.NotifyCandidates,
		Concurrency:   instanceProfile.NotifyConcurrency,
		RatePerSecond: instanceProfile.NotifyRate,
	})

	return &Server{
		profile:    instanceProfile,
		store:      storeInstance,
		engine:     engine,
		channel:    channel,
		dispatcher: notifier.NewDispatcher(scheduler, instanceProfile.NotifyInterval),
		ops:        newOpsServer(),
		sessions:   newSessionStore(),
	}, nil
}

// Start launches the bot loop, the notification dispatcher and the ops
// HTTP server. It returns once everything is running.
func (s *Server) Start(ctx context.Context) error {
	go s.serveBot(ctx)
	go s.dispatcher.Run(ctx)

	go func() {
		addr := fmt.Sprintf("%s:%d", s.profile.Addr, s.profile.Port)
		if err := s.ops.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("ops server stopped", "error", err)
		}
	}()

	slog.Info("server started",
		"mode", s.profile.Mode,
		"driver", s.profile.Driver,
		"port", s.profile.Port,
	)
	return nil
}

// serveBot consumes the channel's update stream until it closes or ctx is
// cancelled. Each message is handled on its own goroutine so one slow
// search does not stall the conversation of another chat.
func (s *Server) serveBot(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-s.channel.Updates():
			if !ok {
				return
			}
			go s.handleMessage(ctx, msg)
		}
	}
}

// Shutdown stops the Telegram channel and the ops server.
func (s *Server) Shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.channel.Close(); err != nil {
		slog.Error("failed to close telegram channel", "error", err)
	}
	if err := s.ops.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down ops server", "error", err)
	}
	if err := s.store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}

	slog.Info("server shut down")
}

// Dispatcher exposes the notification dispatcher, used by the one-shot
// `notify` command.
func (s *Server) Dispatcher() *notifier.Dispatcher {
	return s.dispatcher
}

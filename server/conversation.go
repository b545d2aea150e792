package server

import (
	"sync"
)

// setupState is a profile-setup conversation state.
type setupState int

const (
	// StateIdle means no setup conversation is running for the chat.
	StateIdle setupState = iota
	// StateAwaitingPreference means the bot asked for the user's interests.
	StateAwaitingPreference
	// StateAwaitingLocation means the bot asked for the preferred area.
	StateAwaitingLocation
)

// setupSession carries the answers collected so far for one chat.
type setupSession struct {
	state      setupState
	preference string
}

// sessionStore tracks in-flight profile-setup conversations keyed by chat
// ID. Sessions are in-memory only; an interrupted setup simply restarts
// with /start.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*setupSession
}

func newSessionStore() *sessionStore {
	return &sessionStore{
		sessions: make(map[int64]*setupSession),
	}
}

// begin starts (or restarts) a setup conversation for the chat.
func (s *sessionStore) begin(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[chatID] = &setupSession{state: StateAwaitingPreference}
}

// get returns a snapshot of the current session. Handlers run on their own
// goroutines, so the live session must never leave the mutex.
func (s *sessionStore) get(chatID int64) (setupSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[chatID]
	if !ok {
		return setupSession{}, false
	}
	return *session, true
}

// advance records the preference and moves to the location question.
func (s *sessionStore) advance(chatID int64, preference string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[chatID]; ok {
		session.state = StateAwaitingLocation
		session.preference = preference
	}
}

// finish completes the conversation and returns the collected preference.
func (s *sessionStore) finish(chatID int64) (preference string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[chatID]
	if !ok {
		return "", false
	}
	delete(s.sessions, chatID)
	return session.preference, true
}

// cancel aborts the conversation. Reports whether one was running.
func (s *sessionStore) cancel(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[chatID]
	delete(s.sessions, chatID)
	return ok
}

package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_FullSetupFlow(t *testing.T) {
	sessions := newSessionStore()
	chatID := int64(42)

	_, ok := sessions.get(chatID)
	assert.False(t, ok)

	sessions.begin(chatID)
	session, ok := sessions.get(chatID)
	require.True(t, ok)
	assert.Equal(t, StateAwaitingPreference, session.state)

	sessions.advance(chatID, "jazz")
	session, ok = sessions.get(chatID)
	require.True(t, ok)
	assert.Equal(t, StateAwaitingLocation, session.state)
	assert.Equal(t, "jazz", session.preference)

	preference, ok := sessions.finish(chatID)
	require.True(t, ok)
	assert.Equal(t, "jazz", preference)
	_, ok = sessions.get(chatID)
	assert.False(t, ok)
}

func TestSessionStore_Cancel(t *testing.T) {
	sessions := newSessionStore()

	assert.False(t, sessions.cancel(1))

	sessions.begin(1)
	assert.True(t, sessions.cancel(1))
	_, ok := sessions.get(1)
	assert.False(t, ok)
}

func TestSessionStore_RestartOverwrites(t *testing.T) {
	sessions := newSessionStore()

	sessions.begin(1)
	sessions.advance(1, "jazz")

	// /start mid-conversation restarts from the first question.
	sessions.begin(1)
	session, ok := sessions.get(1)
	require.True(t, ok)
	assert.Equal(t, StateAwaitingPreference, session.state)
	assert.Empty(t, session.preference)
}

func TestSessionStore_IndependentChats(t *testing.T) {
	sessions := newSessionStore()

	sessions.begin(1)
	sessions.begin(2)
	sessions.advance(1, "jazz")

	one, ok := sessions.get(1)
	require.True(t, ok)
	two, ok := sessions.get(2)
	require.True(t, ok)
	assert.Equal(t, StateAwaitingLocation, one.state)
	assert.Equal(t, StateAwaitingPreference, two.state)
}

func TestSessionStore_GetReturnsSnapshot(t *testing.T) {
	sessions := newSessionStore()

	sessions.begin(1)
	snapshot, ok := sessions.get(1)
	require.True(t, ok)

	// Mutations after get must not reach an already-taken snapshot; a
	// handler reading it concurrently would otherwise race.
	sessions.advance(1, "jazz")
	assert.Equal(t, StateAwaitingPreference, snapshot.state)
	assert.Empty(t, snapshot.preference)

	current, ok := sessions.get(1)
	require.True(t, ok)
	assert.Equal(t, StateAwaitingLocation, current.state)
	assert.Equal(t, "jazz", current.preference)
}

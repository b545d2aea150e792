package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prathmesh008/scrappingsydney/ai/recommend"
	"github.com/prathmesh008/scrappingsydney/store"
)

// memStore is an in-memory notification ledger and profile list.
type memStore struct {
	mu       sync.Mutex
	profiles []*store.UserProfile
	sent     map[string]bool // "userID/eventID"
	listErr  error
}

func newMemStore(profiles ...*store.UserProfile) *memStore {
	return &memStore{
		profiles: profiles,
		sent:     map[string]bool{},
	}
}

func (m *memStore) ListUserProfiles(context.Context) ([]*store.UserProfile, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.profiles, nil
}

func (m *memStore) ListNotifiedEventIDs(_ context.Context, userID int64) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sent := map[string]bool{}
	for key := range m.sent {
		var uid int64
		var eventID string
		fmt.Sscanf(key, "%d/%s", &uid, &eventID)
		if uid == userID {
			sent[eventID] = true
		}
	}
	return sent, nil
}

func (m *memStore) CreateNotificationOnce(_ context.Context, userID int64, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := fmt.Sprintf("%d/%s", userID, eventID)
	if m.sent[key] {
		return false, nil
	}
	m.sent[key] = true
	return true, nil
}

// fakeRanker returns the same candidates for every query.
type fakeRanker struct {
	matches []recommend.RankedMatch
	err     error
}

func (f *fakeRanker) Rank(context.Context, string, int, map[string]bool) ([]recommend.RankedMatch, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.matches, nil
}

// fakeSink records deliveries and can fail globally or per user.
type fakeSink struct {
	mu      sync.Mutex
	sends   []string // "userID/eventMessage"
	fail    bool
	failFor map[int64]bool
}

func (f *fakeSink) Send(_ context.Context, userID int64, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail || f.failFor[userID] {
		return errors.New("telegram timeout")
	}
	f.sends = append(f.sends, fmt.Sprintf("%d", userID))
	return nil
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sends)
}

func ranked(id, title string, score float64, rank int) recommend.RankedMatch {
	return recommend.RankedMatch{
		Event: &store.EventRecord{ID: id, Title: title, Venue: "CBD", Date: "2026-09-01T19:00:00Z", URL: "https://example.com/" + id},
		Score: score,
		Rank:  rank,
	}
}

func jazzProfile() *store.UserProfile {
	return &store.UserProfile{UserID: 42, DisplayName: "ana", Preference: "jazz"}
}

func TestRunCycle_SendsTopMatchOnce(t *testing.T) {
	st := newMemStore(jazzProfile())
	ranker := &fakeRanker{matches: []recommend.RankedMatch{
		ranked("e1", "Jazz Night", 0.9, 1),
		ranked("e2", "Tech Meetup", 0.2, 2),
	}}
	sink := &fakeSink{}
	scheduler := NewScheduler(st, ranker, sink, Config{})

	outcomes, err := scheduler.RunCycle(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	assert.Equal(t, StatusSent, outcomes[0].Status)
	assert.Equal(t, "e1", outcomes[0].EventID)
	assert.Equal(t, 1, sink.count())

	// Second cycle with no new events: e1 was already sent, so the
	// next-ranked untried event goes out instead.
	outcomes, err = scheduler.RunCycle(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusSent, outcomes[0].Status)
	assert.Equal(t, "e2", outcomes[0].EventID)

	// Third cycle: everything was sent, skip without spamming.
	outcomes, err = scheduler.RunCycle(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusSkipped, outcomes[0].Status)
	assert.Equal(t, ReasonAllSent, outcomes[0].Reason)
	assert.Equal(t, 2, sink.count())
}

func TestRunCycle_BlankPreferenceSkipsWithoutDelivery(t *testing.T) {
	// A blank preference means the user never opted in. Whitespace must
	// not slip past the check: the engine would substitute the default
	// query and the user would get an implicit general notification.
	for _, preference := range []string{"", "   ", " \n\t "} {
		st := newMemStore(&store.UserProfile{UserID: 7, DisplayName: "bo", Preference: preference})
		ranker := &fakeRanker{matches: []recommend.RankedMatch{ranked("e1", "Jazz Night", 0.9, 1)}}
		sink := &fakeSink{}
		scheduler := NewScheduler(st, ranker, sink, Config{})

		outcomes, err := scheduler.RunCycle(context.Background())
		require.NoError(t, err)
		require.Len(t, outcomes, 1)

		assert.Equal(t, StatusSkipped, outcomes[0].Status)
		assert.Equal(t, ReasonNoPreference, outcomes[0].Reason)
		assert.Equal(t, 0, sink.count())
	}
}

func TestRunCycle_DeliveryFailureIsRetriedNextCycle(t *testing.T) {
	st := newMemStore(jazzProfile())
	ranker := &fakeRanker{matches: []recommend.RankedMatch{ranked("e1", "Jazz Night", 0.9, 1)}}
	sink := &fakeSink{fail: true}
	scheduler := NewScheduler(st, ranker, sink, Config{})

	outcomes, err := scheduler.RunCycle(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusFailed, outcomes[0].Status)
	assert.Error(t, outcomes[0].Err)

	// No record was written, so the same pair stays eligible.
	sink.fail = false
	outcomes, err = scheduler.RunCycle(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusSent, outcomes[0].Status)
	assert.Equal(t, "e1", outcomes[0].EventID)
}

func TestRunCycle_NoCandidates(t *testing.T) {
	st := newMemStore(jazzProfile())
	scheduler := NewScheduler(st, &fakeRanker{}, &fakeSink{}, Config{})

	outcomes, err := scheduler.RunCycle(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusSkipped, outcomes[0].Status)
	assert.Equal(t, ReasonNoCandidates, outcomes[0].Reason)
}

func TestRunCycle_ProviderOutageAbortsCycle(t *testing.T) {
	st := newMemStore(jazzProfile())
	ranker := &fakeRanker{err: fmt.Errorf("%w: connection refused", recommend.ErrEmbeddingUnavailable)}
	scheduler := NewScheduler(st, ranker, &fakeSink{}, Config{})

	_, err := scheduler.RunCycle(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, recommend.ErrEmbeddingUnavailable)
}

func TestRunCycle_OneUserFailureDoesNotAbortOthers(t *testing.T) {
	st := newMemStore(
		&store.UserProfile{UserID: 1, Preference: "jazz"},
		&store.UserProfile{UserID: 2, Preference: "art"},
		&store.UserProfile{UserID: 3, Preference: "tech"},
	)
	ranker := &fakeRanker{matches: []recommend.RankedMatch{ranked("e1", "Jazz Night", 0.9, 1)}}
	// Delivery fails for user 2 only; the other users' pipelines proceed.
	sink := &fakeSink{failFor: map[int64]bool{2: true}}
	scheduler := NewScheduler(st, ranker, sink, Config{Concurrency: 2})

	outcomes, err := scheduler.RunCycle(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	byUser := map[int64]Outcome{}
	for _, outcome := range outcomes {
		byUser[outcome.UserID] = outcome
	}
	assert.Equal(t, StatusSent, byUser[1].Status)
	assert.Equal(t, StatusFailed, byUser[2].Status)
	assert.Error(t, byUser[2].Err)
	assert.Equal(t, StatusSent, byUser[3].Status)
	assert.Equal(t, 2, sink.count())
}

func TestRunCycle_DedupInvariantHoldsAcrossManyCycles(t *testing.T) {
	st := newMemStore(jazzProfile())
	ranker := &fakeRanker{matches: []recommend.RankedMatch{
		ranked("e1", "a", 0.9, 1),
		ranked("e2", "b", 0.8, 2),
	}}
	sink := &fakeSink{}
	scheduler := NewScheduler(st, ranker, sink, Config{})

	for i := 0; i < 5; i++ {
		_, err := scheduler.RunCycle(context.Background())
		require.NoError(t, err)
	}

	// Two candidates, five cycles: exactly two deliveries ever happen.
	assert.Equal(t, 2, sink.count())
	assert.Len(t, st.sent, 2)
}

func TestRunCycle_NoProfiles(t *testing.T) {
	scheduler := NewScheduler(newMemStore(), &fakeRanker{}, &fakeSink{}, Config{})

	outcomes, err := scheduler.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}

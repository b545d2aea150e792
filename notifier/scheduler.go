// Package notifier pushes the best-matching unseen event to every user who
// opted in with a saved preference.
package notifier

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/prathmesh008/scrappingsydney/ai/recommend"
	"github.com/prathmesh008/scrappingsydney/store"
)

// Status classifies a per-user cycle outcome.
type Status string

const (
	StatusSent    Status = "sent"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Skip reasons.
const (
	ReasonNoPreference = "no preference"
	ReasonAllSent      = "all candidates already sent"
	ReasonNoCandidates = "no candidates"
)

// Outcome is the per-user result of one cycle.
type Outcome struct {
	UserID  int64
	Status  Status
	EventID string
	Reason  string
	Err     error
}

// Store is the persistence contract the scheduler depends on.
type Store interface {
	ListUserProfiles(ctx context.Context) ([]*store.UserProfile, error)
	ListNotifiedEventIDs(ctx context.Context, userID int64) (map[string]bool, error)
	CreateNotificationOnce(ctx context.Context, userID int64, eventID string) (bool, error)
}

// Ranker produces ranked candidates for a preference query.
type Ranker interface {
	Rank(ctx context.Context, queryText string, k int, excludeIDs map[string]bool) ([]recommend.RankedMatch, error)
}

// DeliverySink delivers a rendered message to a user. Any non-nil error is
// treated as retryable on the next cycle.
type DeliverySink interface {
	Send(ctx context.Context, userID int64, message string) error
}

// Config holds scheduler tunables.
type Config struct {
	// Candidates is how many ranked events to fetch per user so the
	// dedup selection has fallbacks when the top pick was already sent.
	Candidates int
	// Concurrency bounds the number of user pipelines running at once.
	Concurrency int
	// RatePerSecond throttles delivery sink calls across all workers.
	RatePerSecond float64
}

// Scheduler runs notification cycles. User pipelines within a cycle are
// independent; the notification ledger is the only shared mutable state
// and is serialized by the store's atomic insert-if-absent.
type Scheduler struct {
	store   Store
	ranker  Ranker
	sink    DeliverySink
	config  Config
	limiter *rate.Limiter
}

// NewScheduler creates a notification scheduler.
func NewScheduler(st Store, ranker Ranker, sink DeliverySink, config Config) *Scheduler {
	if config.Candidates <= 0 {
		config.Candidates = 5
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 4
	}
	if config.RatePerSecond <= 0 {
		config.RatePerSecond = 25
	}
	return &Scheduler{
		store:   st,
		ranker:  ranker,
		sink:    sink,
		config:  config,
		limiter: rate.NewLimiter(rate.Limit(config.RatePerSecond), 1),
	}
}

// RunCycle processes every profile once and returns per-user outcomes. A
// single user's failure never aborts the cycle; an embedding provider or
// index outage does, since no user's recommendation can succeed.
func (s *Scheduler) RunCycle(ctx context.Context) ([]Outcome, error) {
	profiles, err := s.store.ListUserProfiles(ctx)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return []Outcome{}, nil
	}

	var (
		mu       sync.Mutex
		outcomes = make([]Outcome, 0, len(profiles))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)

	for _, profile := range profiles {
		// Cooperative cancellation checkpoint between users. A user
		// already mid-pipeline completes or fails atomically.
		if gctx.Err() != nil {
			break
		}

		profile := profile
		g.Go(func() error {
			outcome := s.notifyUser(gctx, profile)

			mu.Lock()
			outcomes = append(outcomes, outcome)
			mu.Unlock()

			recordOutcome(outcome)

			// Provider-level failures abort the whole cycle early.
			if outcome.Err != nil &&
				(errors.Is(outcome.Err, recommend.ErrEmbeddingUnavailable) ||
					errors.Is(outcome.Err, recommend.ErrIndexUnavailable)) {
				return outcome.Err
			}
			return nil
		})
	}

	err = g.Wait()
	return outcomes, err
}

// notifyUser runs the per-user pipeline: load, rank, dedup-select, deliver,
// commit. Steps are strictly sequential.
func (s *Scheduler) notifyUser(ctx context.Context, profile *store.UserProfile) Outcome {
	outcome := Outcome{UserID: profile.UserID}

	// Notifications require explicit opt-in via a non-blank preference.
	// Unlike ad-hoc chat queries there is no default-query fallback here;
	// a whitespace-only preference would otherwise reach the engine and
	// trigger exactly that fallback.
	if strings.TrimSpace(profile.Preference) == "" {
		outcome.Status = StatusSkipped
		outcome.Reason = ReasonNoPreference
		return outcome
	}

	sent, err := s.store.ListNotifiedEventIDs(ctx, profile.UserID)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Err = err
		return outcome
	}

	matches, err := s.ranker.Rank(ctx, profile.Preference, s.config.Candidates, nil)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Err = err
		return outcome
	}
	if len(matches) == 0 {
		outcome.Status = StatusSkipped
		outcome.Reason = ReasonNoCandidates
		return outcome
	}

	// Walk candidates in rank order; pick the first never sent to this
	// user. No eligible candidate means no "nothing new" spam.
	var chosen *recommend.RankedMatch
	for i := range matches {
		if !sent[matches[i].Event.ID] {
			chosen = &matches[i]
			break
		}
	}
	if chosen == nil {
		outcome.Status = StatusSkipped
		outcome.Reason = ReasonAllSent
		return outcome
	}

	if err := s.limiter.Wait(ctx); err != nil {
		outcome.Status = StatusFailed
		outcome.Err = err
		return outcome
	}

	message := renderNotification(profile.Preference, chosen.Event)
	if err := s.sink.Send(ctx, profile.UserID, message); err != nil {
		// No record is written, so a future cycle retries this event
		// instead of silently giving up on it.
		slog.Warn("notification delivery failed",
			"user_id", profile.UserID,
			"event_id", chosen.Event.ID,
			"error", err,
		)
		outcome.Status = StatusFailed
		outcome.EventID = chosen.Event.ID
		outcome.Err = err
		return outcome
	}

	inserted, err := s.store.CreateNotificationOnce(ctx, profile.UserID, chosen.Event.ID)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.EventID = chosen.Event.ID
		outcome.Err = err
		return outcome
	}
	if !inserted {
		// The dedup check said this pair was fresh, yet the insert hit an
		// existing row. That means a duplicate delivery already happened,
		// which the atomic insert is supposed to make impossible.
		slog.Error("notification record already existed after delivery, investigate dedup serialization",
			"user_id", profile.UserID,
			"event_id", chosen.Event.ID,
		)
		integrityViolations.Inc()
	}

	outcome.Status = StatusSent
	outcome.EventID = chosen.Event.ID
	return outcome
}

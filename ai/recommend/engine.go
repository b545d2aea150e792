// Package recommend ranks catalog events against a free-text query using
// embedding similarity.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prathmesh008/scrappingsydney/ai"
	"github.com/prathmesh008/scrappingsydney/store"
)

var (
	// ErrEmbeddingUnavailable means the embedding provider could not be
	// reached. The call fails; the caller decides whether to retry.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrIndexUnavailable means the vector index could not be queried.
	ErrIndexUnavailable = errors.New("vector index unavailable")
)

// Index is the vector index read contract the engine depends on. Hits come
// back ordered best-first; ties keep index insertion order.
type Index interface {
	SearchEvents(ctx context.Context, vector []float32, limit int) ([]*store.EventMatch, error)
}

// RankedMatch is one ranked recommendation. Rank starts at 1 and increases
// with non-increasing Score.
type RankedMatch struct {
	Event *store.EventRecord
	Score float64
	Rank  int
}

// Config holds the engine's tunables.
type Config struct {
	// DefaultQuery is substituted for queries that are empty after
	// trimming, so ranking degrades gracefully instead of failing.
	DefaultQuery string
}

// Engine ranks events by semantic similarity to a query. It is a pure
// query component: it never mutates the index or any profile.
type Engine struct {
	embedder ai.EmbeddingService
	index    Index
	config   Config
}

// NewEngine creates a recommendation engine.
func NewEngine(embedder ai.EmbeddingService, index Index, config Config) *Engine {
	if config.DefaultQuery == "" {
		config.DefaultQuery = "Events in Sydney"
	}
	return &Engine{
		embedder: embedder,
		index:    index,
		config:   config,
	}
}

// Rank embeds queryText and returns up to k events ordered by decreasing
// similarity, skipping excludeIDs. An empty queryText falls back to the
// configured default query. The result may be shorter than k when the
// index holds fewer eligible events; no results is an empty slice, not an
// error.
func (e *Engine) Rank(ctx context.Context, queryText string, k int, excludeIDs map[string]bool) ([]RankedMatch, error) {
	query := strings.TrimSpace(queryText)
	if query == "" {
		query = e.config.DefaultQuery
		slog.Debug("empty query, using default", "query", query)
	}
	if k <= 0 {
		return []RankedMatch{}, nil
	}

	vector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}

	// Over-fetch so exclusions cannot starve the result.
	hits, err := e.index.SearchEvents(ctx, vector, k+len(excludeIDs))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	matches := make([]RankedMatch, 0, k)
	for _, hit := range hits {
		if excludeIDs[hit.Event.ID] {
			continue
		}
		matches = append(matches, RankedMatch{
			Event: hit.Event,
			Score: hit.Score,
			Rank:  len(matches) + 1,
		})
		if len(matches) == k {
			break
		}
	}

	return matches, nil
}

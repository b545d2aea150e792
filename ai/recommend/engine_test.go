package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prathmesh008/scrappingsydney/store"
)

// fakeEmbedder returns a fixed vector and records the text it embedded.
type fakeEmbedder struct {
	lastText string
	err      error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.lastText = text
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vector
	}
	return vectors, nil
}

func (f *fakeEmbedder) Dimensions() int { return 3 }

// fakeIndex returns canned matches, already ordered best-first.
type fakeIndex struct {
	matches   []*store.EventMatch
	lastLimit int
	err       error
}

func (f *fakeIndex) SearchEvents(_ context.Context, _ []float32, limit int) ([]*store.EventMatch, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	if len(f.matches) > limit {
		return f.matches[:limit], nil
	}
	return f.matches, nil
}

func match(id, title string, score float64) *store.EventMatch {
	return &store.EventMatch{
		Event: &store.EventRecord{ID: id, Title: title},
		Score: score,
	}
}

func TestRank_OrderedAndTruncated(t *testing.T) {
	index := &fakeIndex{matches: []*store.EventMatch{
		match("e1", "Jazz Night", 0.9),
		match("e2", "Tech Meetup", 0.2),
	}}
	engine := NewEngine(&fakeEmbedder{}, index, Config{})

	matches, err := engine.Rank(context.Background(), "jazz", 5, nil)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "Jazz Night", matches[0].Event.Title)
	assert.Equal(t, "Tech Meetup", matches[1].Event.Title)
	assert.Equal(t, 1, matches[0].Rank)
	assert.Equal(t, 2, matches[1].Rank)
	assert.GreaterOrEqual(t, matches[0].Score, matches[1].Score)
}

func TestRank_TruncatesToK(t *testing.T) {
	index := &fakeIndex{matches: []*store.EventMatch{
		match("e1", "a", 0.9),
		match("e2", "b", 0.8),
		match("e3", "c", 0.7),
	}}
	engine := NewEngine(&fakeEmbedder{}, index, Config{})

	matches, err := engine.Rank(context.Background(), "anything", 2, nil)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
	assert.Equal(t, "e1", matches[0].Event.ID)
	assert.Equal(t, "e2", matches[1].Event.ID)
}

func TestRank_ExcludesAndOverfetches(t *testing.T) {
	index := &fakeIndex{matches: []*store.EventMatch{
		match("e1", "a", 0.9),
		match("e2", "b", 0.8),
		match("e3", "c", 0.7),
	}}
	engine := NewEngine(&fakeEmbedder{}, index, Config{})

	exclude := map[string]bool{"e1": true}
	matches, err := engine.Rank(context.Background(), "anything", 2, exclude)
	require.NoError(t, err)

	// The index is asked for k + len(exclude) so exclusions cannot
	// starve the result.
	assert.Equal(t, 3, index.lastLimit)

	require.Len(t, matches, 2)
	assert.Equal(t, "e2", matches[0].Event.ID)
	assert.Equal(t, "e3", matches[1].Event.ID)
	assert.Equal(t, 1, matches[0].Rank)
	assert.Equal(t, 2, matches[1].Rank)
}

func TestRank_EmptyQueryFallsBackToDefault(t *testing.T) {
	embedder := &fakeEmbedder{}
	index := &fakeIndex{matches: []*store.EventMatch{match("e1", "a", 0.5)}}
	engine := NewEngine(embedder, index, Config{DefaultQuery: "Events in Sydney"})

	tests := []string{"", "   ", "\n\t"}
	for _, query := range tests {
		matches, err := engine.Rank(context.Background(), query, 5, nil)
		require.NoError(t, err)
		assert.Equal(t, "Events in Sydney", embedder.lastText)
		assert.NotEmpty(t, matches)
	}
}

func TestRank_EmptyIndexReturnsEmptySlice(t *testing.T) {
	engine := NewEngine(&fakeEmbedder{}, &fakeIndex{}, Config{})

	matches, err := engine.Rank(context.Background(), "jazz", 5, nil)
	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestRank_EmbeddingFailure(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("connection refused")}
	engine := NewEngine(embedder, &fakeIndex{}, Config{})

	_, err := engine.Rank(context.Background(), "jazz", 5, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
}

func TestRank_IndexFailure(t *testing.T) {
	index := &fakeIndex{err: errors.New("index down")}
	engine := NewEngine(&fakeEmbedder{}, index, Config{})

	_, err := engine.Rank(context.Background(), "jazz", 5, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIndexUnavailable)
}

func TestRank_NonPositiveK(t *testing.T) {
	engine := NewEngine(&fakeEmbedder{}, &fakeIndex{}, Config{})

	matches, err := engine.Rank(context.Background(), "jazz", 0, nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

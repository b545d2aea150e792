package server

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prathmesh008/scrappingsydney/ai/recommend"
	"github.com/prathmesh008/scrappingsydney/store"
)

func rankedMatch(rank int, title, venue, date, url string) recommend.RankedMatch {
	return recommend.RankedMatch{
		Event: &store.EventRecord{Title: title, Venue: venue, Date: date, URL: url},
		Rank:  rank,
	}
}

func TestRenderMatches(t *testing.T) {
	matches := []recommend.RankedMatch{
		rankedMatch(1, "Jazz Night", "The Basement", "2026-09-01T19:00:00Z", "https://example.com/1"),
		rankedMatch(2, "Tech Meetup", "UTS", "2026-09-03", "https://example.com/2"),
	}

	out := renderMatches(matches)

	assert.Contains(t, out, "1. *Jazz Night*")
	assert.Contains(t, out, "2. *Tech Meetup*")
	assert.Contains(t, out, "📅 2026-09-01")
	assert.NotContains(t, out, "19:00")
	assert.Contains(t, out, "[More Info](https://example.com/1)")
}

func TestRenderSingleMatch(t *testing.T) {
	out := renderSingleMatch(rankedMatch(1, "Jazz Night", "The Basement", "2026-09-01", "https://example.com/1"))

	assert.Contains(t, out, "Jazz Night")
	assert.Contains(t, out, "The Basement")
	assert.Contains(t, out, "https://example.com/1")
}

package notifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prathmesh008/scrappingsydney/store"
)

func TestRenderNotification(t *testing.T) {
	event := &store.EventRecord{
		ID:    "e1",
		Title: "Jazz Night",
		Venue: "The Basement",
		Date:  "2026-09-01T19:00:00Z",
		URL:   "https://example.com/jazz-night",
	}

	message := renderNotification("jazz", event)

	assert.Contains(t, message, "Jazz Night")
	assert.Contains(t, message, "The Basement")
	assert.Contains(t, message, "'jazz'")
	assert.Contains(t, message, "https://example.com/jazz-night")
	// The timestamp is truncated to its date portion.
	assert.Contains(t, message, "2026-09-01")
	assert.NotContains(t, message, "19:00")
}

func TestDisplayDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-09-01T19:00:00Z", "2026-09-01"},
		{"2026-09-01", "2026-09-01"},
		{"TBA", "TBA"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, displayDate(tt.in))
	}
}

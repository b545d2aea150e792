package server

import (
	"fmt"
	"strings"

	"github.com/prathmesh008/scrappingsydney/ai/recommend"
)

// renderMatches formats a ranked result list as a Telegram Markdown
// message, dates truncated to their date portion.
func renderMatches(matches []recommend.RankedMatch) string {
	var b strings.Builder
	b.WriteString("🎉 *Here are my top picks:*\n\n")
	for _, match := range matches {
		event := match.Event
		fmt.Fprintf(&b, "%d. *%s*\n📍 %s | 📅 %s\n🔗 [More Info](%s)\n\n",
			match.Rank, event.Title, event.Venue, displayDate(event.Date), event.URL)
	}
	return b.String()
}

// renderSingleMatch formats one free-text search hit as a short reply.
func renderSingleMatch(match recommend.RankedMatch) string {
	event := match.Event
	return fmt.Sprintf("🎈 %s\n📍 %s\n🔗 %s", event.Title, event.Venue, event.URL)
}

// displayDate truncates an ISO-ish date string to its date portion.
func displayDate(date string) string {
	if len(date) > 10 {
		return date[:10]
	}
	return date
}

package notifier

import (
	"fmt"
	"strings"

	"github.com/prathmesh008/scrappingsydney/store"
)

// renderNotification formats the push message for a matched event in
// Telegram Markdown.
func renderNotification(preference string, event *store.EventRecord) string {
	var b strings.Builder
	b.WriteString("🌟 *Recommendation Match!*\n\n")
	fmt.Fprintf(&b, "Based on your interest in *'%s'*, check this out:\n\n", preference)
	fmt.Fprintf(&b, "📅 *%s*\n", event.Title)
	fmt.Fprintf(&b, "📍 %s | %s\n", event.Venue, displayDate(event.Date))
	fmt.Fprintf(&b, "🔗 [View Event](%s)", event.URL)
	return b.String()
}

// displayDate truncates an ISO-ish date string to its date portion.
func displayDate(date string) string {
	if len(date) > 10 {
		return date[:10]
	}
	return date
}

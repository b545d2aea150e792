package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRecordFromDocument(t *testing.T) {
	id := primitive.NewObjectID()
	doc := &eventDocument{
		ID:          id,
		Title:       "Jazz Night",
		Description: "Live jazz in the basement.",
		Venue:       "The Basement",
		StartDate:   "2026-09-01",
		SourceURL:   "https://example.com/jazz-night",
	}

	record := recordFromDocument(doc)

	assert.Equal(t, id.Hex(), record.ID)
	assert.Equal(t, "Jazz Night", record.Title)
	assert.Equal(t, "The Basement", record.Venue)
	assert.Equal(t, "2026-09-01", record.Date)
	assert.Equal(t, "https://example.com/jazz-night", record.URL)
	assert.Equal(t,
		"Title: Jazz Night. Venue: The Basement. Date: 2026-09-01. Description: Live jazz in the basement.",
		record.EmbeddingText)
}

func TestRecordFromDocumentDefaults(t *testing.T) {
	doc := &eventDocument{ID: primitive.NewObjectID(), StartDate: "2026-09-01"}

	record := recordFromDocument(doc)

	assert.Equal(t, "Unknown Event", record.Title)
	assert.Equal(t, "Sydney", record.Venue)
	assert.Contains(t, record.EmbeddingText, "Title: Unknown Event. Venue: Sydney.")
}

// Package ingest loads scraped event documents from the upstream MongoDB
// store, embeds them and upserts them into the vector index.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/prathmesh008/scrappingsydney/ai"
	"github.com/prathmesh008/scrappingsydney/internal/profile"
	"github.com/prathmesh008/scrappingsydney/store"
)

// embedBatchSize bounds how many embedding texts go into one provider call.
const embedBatchSize = 64

// eventDocument is the MongoDB document shape produced by the scraper.
type eventDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Venue       string             `bson:"venue"`
	StartDate   string             `bson:"startDate"`
	SourceURL   string             `bson:"sourceUrl"`
	Status      string             `bson:"status"`
}

// Ingestor runs the MongoDB to vector index ETL.
type Ingestor struct {
	profile  *profile.Profile
	store    *store.Store
	embedder ai.EmbeddingService
}

// NewIngestor creates an ingestor.
func NewIngestor(instanceProfile *profile.Profile, storeInstance *store.Store, embedder ai.EmbeddingService) *Ingestor {
	return &Ingestor{
		profile:  instanceProfile,
		store:    storeInstance,
		embedder: embedder,
	}
}

// Run fetches active events, embeds them and upserts them into the index.
// The upstream _id becomes the stable event ID, so re-running replaces
// records instead of duplicating them. Returns the number of events
// ingested.
func (i *Ingestor) Run(ctx context.Context) (int, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(i.profile.MongoURI))
	if err != nil {
		return 0, errors.Wrap(err, "failed to connect to mongodb")
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			slog.Warn("failed to disconnect from mongodb", "error", err)
		}
	}()

	collection := client.Database(i.profile.MongoDatabase).Collection(i.profile.MongoCollection)

	// Inactive events are the scraper's tombstones; skip them.
	cursor, err := collection.Find(ctx, bson.M{"status": bson.M{"$ne": "inactive"}})
	if err != nil {
		return 0, errors.Wrap(err, "failed to query events collection")
	}
	defer cursor.Close(ctx)

	records := []*store.EventRecord{}
	for cursor.Next(ctx) {
		var doc eventDocument
		if err := cursor.Decode(&doc); err != nil {
			return 0, errors.Wrap(err, "failed to decode event document")
		}
		records = append(records, recordFromDocument(&doc))
	}
	if err := cursor.Err(); err != nil {
		return 0, errors.Wrap(err, "failed to iterate events collection")
	}

	if len(records) == 0 {
		slog.Info("no events found to ingest")
		return 0, nil
	}

	slog.Info("embedding and indexing events", "count", len(records))

	for start := 0; start < len(records); start += embedBatchSize {
		end := min(start+embedBatchSize, len(records))
		batch := records[start:end]

		texts := make([]string, len(batch))
		for j, record := range batch {
			texts[j] = record.EmbeddingText
		}

		vectors, err := i.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return 0, errors.Wrap(err, "failed to embed event batch")
		}
		if len(vectors) != len(batch) {
			return 0, errors.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(batch))
		}

		upserts := make([]*store.EventUpsert, len(batch))
		for j, record := range batch {
			upserts[j] = &store.EventUpsert{Record: record, Embedding: vectors[j]}
		}
		if err := i.store.UpsertEvents(ctx, upserts); err != nil {
			return 0, errors.Wrap(err, "failed to upsert event batch")
		}
	}

	slog.Info("ingestion complete", "count", len(records))
	return len(records), nil
}

// recordFromDocument builds the index record, combining title, venue, date
// and description into one text blob for the embedding model.
func recordFromDocument(doc *eventDocument) *store.EventRecord {
	title := doc.Title
	if title == "" {
		title = "Unknown Event"
	}
	venue := doc.Venue
	if venue == "" {
		venue = "Sydney"
	}

	return &store.EventRecord{
		ID:    doc.ID.Hex(),
		Title: title,
		Venue: venue,
		Date:  doc.StartDate,
		URL:   doc.SourceURL,
		EmbeddingText: fmt.Sprintf("Title: %s. Venue: %s. Date: %s. Description: %s",
			title, venue, doc.StartDate, doc.Description),
	}
}

package postgres

import (
	"context"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/prathmesh008/scrappingsydney/store"
)

// UpsertEvents inserts or replaces event records with their embeddings.
// Upserting the same event ID twice replaces the row, never duplicates it.
func (d *DB) UpsertEvents(ctx context.Context, upserts []*store.EventUpsert) error {
	if len(upserts) == 0 {
		return nil
	}

	stmt := `
		INSERT INTO event (id, title, venue, date, url, embedding_text, embedding, updated_ts)
		VALUES (` + placeholders(8) + `)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			venue = EXCLUDED.venue,
			date = EXCLUDED.date,
			url = EXCLUDED.url,
			embedding_text = EXCLUDED.embedding_text,
			embedding = EXCLUDED.embedding,
			updated_ts = EXCLUDED.updated_ts
	`

	now := time.Now().Unix()
	for _, upsert := range upserts {
		vector := pgvector.NewVector(upsert.Embedding)
		_, err := d.db.ExecContext(ctx, stmt,
			upsert.Record.ID,
			upsert.Record.Title,
			upsert.Record.Venue,
			upsert.Record.Date,
			upsert.Record.URL,
			upsert.Record.EmbeddingText,
			vector,
			now,
		)
		if err != nil {
			return errors.Wrapf(err, "failed to upsert event %s", upsert.Record.ID)
		}
	}

	return nil
}

// SearchEvents performs vector similarity search using pgvector.
//
// With the cosine metric the <=> operator computes cosine distance
// (1 - cosine_similarity), so ordering by distance ASC returns the most
// similar rows first and the reported score is 1 - distance. With l2 the
// <-> operator computes Euclidean distance and the score is its negation,
// keeping "higher score is more relevant" for both metrics. Distance ties
// are broken by seq, the insertion order of the index.
func (d *DB) SearchEvents(ctx context.Context, vector []float32, limit int) ([]*store.EventMatch, error) {
	// pgvector would reject the mismatched vector server-side; failing
	// here keeps the error identical across drivers.
	if len(vector) != d.profile.EmbeddingDim {
		return nil, errors.Errorf("invalid query vector dimension: got %d, want %d", len(vector), d.profile.EmbeddingDim)
	}
	if limit <= 0 {
		limit = 10
	}

	operator, scoreExpr := "<=>", "1 - (embedding <=> $1)"
	if d.profile.DistanceMetric == "l2" {
		operator, scoreExpr = "<->", "-(embedding <-> $1)"
	}

	query := `
		SELECT id, title, venue, date, url, embedding_text, ` + scoreExpr + ` AS score
		FROM event
		ORDER BY embedding ` + operator + ` $1, seq
		LIMIT $2
	`

	rows, err := d.db.QueryContext(ctx, query, pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search events")
	}
	defer rows.Close()

	matches := []*store.EventMatch{}
	for rows.Next() {
		event := &store.EventRecord{}
		match := &store.EventMatch{Event: event}
		err := rows.Scan(
			&event.ID,
			&event.Title,
			&event.Venue,
			&event.Date,
			&event.URL,
			&event.EmbeddingText,
			&match.Score,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan event search result")
		}
		matches = append(matches, match)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return matches, nil
}

// CountEvents returns the number of indexed events.
func (d *DB) CountEvents(ctx context.Context) (int64, error) {
	var count int64
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM event").Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count events")
	}
	return count, nil
}

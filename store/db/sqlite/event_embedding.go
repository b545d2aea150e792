package sqlite

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/prathmesh008/scrappingsydney/store"
)

// ============================================================================
// SQLITE VECTOR INDEX
// ============================================================================
// SQLite has no native vector type, so:
// - Vectors are stored as BLOBs (little-endian float32 arrays).
// - Similarity is computed in the Go application layer over a full scan.
//
// This is fine for a single-city event catalog (hundreds to low thousands
// of rows). Larger catalogs should use the postgres driver with pgvector.
// ============================================================================

// float32ArrayToBLOB converts a []float32 to a BLOB.
// It validates that the vector has the expected dimension.
func float32ArrayToBLOB(vec []float32, dim int) ([]byte, error) {
	if len(vec) != dim {
		return nil, fmt.Errorf("invalid vector dimension: got %d, want %d", len(vec), dim)
	}

	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(v))
	}
	return buf, nil
}

// blobToFloat32Array converts an embedding BLOB back to a float32 array.
// This is the inverse of float32ArrayToBLOB.
func blobToFloat32Array(blob []byte, dim int) ([]float32, error) {
	expectedLen := dim * 4
	if len(blob) != expectedLen {
		return nil, fmt.Errorf("invalid BLOB length: got %d, want %d", len(blob), expectedLen)
	}

	vec := make([]float32, dim)
	for i := 0; i < dim; i++ {
		bits := binary.LittleEndian.Uint32(blob[i*4 : i*4+4])
		vec[i] = math.Float32frombits(bits)
	}
	return vec, nil
}

// cosineSimilarity computes the cosine similarity between two vectors.
// Returns 0 when either vector has zero magnitude.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// l2Distance computes the Euclidean distance between two vectors.
func l2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// UpsertEvents inserts or replaces event records with their embeddings.
// Upserting the same event ID twice replaces the row, never duplicates it.
func (d *DB) UpsertEvents(ctx context.Context, upserts []*store.EventUpsert) error {
	if len(upserts) == 0 {
		return nil
	}

	stmt := `
		INSERT INTO event (id, title, venue, date, url, embedding_text, embedding, updated_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			venue = excluded.venue,
			date = excluded.date,
			url = excluded.url,
			embedding_text = excluded.embedding_text,
			embedding = excluded.embedding,
			updated_ts = excluded.updated_ts
	`

	now := time.Now().Unix()
	for _, upsert := range upserts {
		blob, err := float32ArrayToBLOB(upsert.Embedding, d.profile.EmbeddingDim)
		if err != nil {
			return errors.Wrapf(err, "failed to encode embedding for event %s", upsert.Record.ID)
		}
		_, err = d.db.ExecContext(ctx, stmt,
			upsert.Record.ID,
			upsert.Record.Title,
			upsert.Record.Venue,
			upsert.Record.Date,
			upsert.Record.URL,
			upsert.Record.EmbeddingText,
			blob,
			now,
		)
		if err != nil {
			return errors.Wrapf(err, "failed to upsert event %s", upsert.Record.ID)
		}
	}

	return nil
}

// SearchEvents scans all event embeddings and returns the limit nearest
// matches, best first. The scan runs in rowid order and the sort is
// stable, so distance ties keep insertion order.
func (d *DB) SearchEvents(ctx context.Context, vector []float32, limit int) ([]*store.EventMatch, error) {
	// The query vector comes from the embedding provider, which may not
	// honor the configured dimension. Reject it here like stored blobs
	// are rejected, instead of reading past the shorter vector below.
	if len(vector) != d.profile.EmbeddingDim {
		return nil, errors.Errorf("invalid query vector dimension: got %d, want %d", len(vector), d.profile.EmbeddingDim)
	}
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, title, venue, date, url, embedding_text, embedding
		FROM event
		ORDER BY rowid
	`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan events for vector search")
	}
	defer rows.Close()

	matches := []*store.EventMatch{}
	for rows.Next() {
		event := &store.EventRecord{}
		var blob []byte
		err := rows.Scan(
			&event.ID,
			&event.Title,
			&event.Venue,
			&event.Date,
			&event.URL,
			&event.EmbeddingText,
			&blob,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan event row")
		}

		embedding, err := blobToFloat32Array(blob, d.profile.EmbeddingDim)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode embedding for event %s", event.ID)
		}

		var score float64
		if d.profile.DistanceMetric == "l2" {
			score = -l2Distance(vector, embedding)
		} else {
			score = cosineSimilarity(vector, embedding)
		}

		matches = append(matches, &store.EventMatch{Event: event, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
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

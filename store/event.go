package store

// EventRecord represents one catalog event as projected into the vector
// index. Records are produced by ingestion and read-only afterwards.
// ID is stable across re-ingestion so upserts replace rather than duplicate.
type EventRecord struct {
	// ID is the upstream document identifier (Mongo ObjectID hex).
	ID    string
	Title string
	Venue string
	// Date is an ISO-ish date string; display code truncates it to the
	// date portion.
	Date string
	URL  string
	// EmbeddingText is the derived text the vector was computed from:
	// title, venue, date and description concatenated.
	EmbeddingText string
}

// EventUpsert pairs an event record with its embedding vector for
// idempotent insertion into the vector index.
type EventUpsert struct {
	Record    *EventRecord
	Embedding []float32
}

// EventMatch is a vector search hit. Score is a similarity: higher means
// more relevant regardless of the configured distance metric (cosine
// similarity for cosine, negated distance for l2).
type EventMatch struct {
	Event *EventRecord
	Score float64
}

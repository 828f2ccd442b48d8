// Package vectorstore defines the cosine-similarity index the retriever and
// ingestion pipeline operate on, together with an in-memory implementation.
// The Postgres implementation backed by pgvector lives in the repository
// package.
package vectorstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Payload is the metadata stored alongside each vector.
type Payload struct {
	URL        string  `json:"url"`
	Text       string  `json:"text"`
	DocIndex   int     `json:"doc_index"`
	ChunkIndex int     `json:"chunk_index"`
	Timestamp  float64 `json:"timestamp"`
}

// Entry is a single indexed chunk. ID is content-addressed: re-inserting an
// entry derived from the same chunk is an overwrite, never a duplicate.
type Entry struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// Match pairs an entry with its cosine similarity to the query vector.
type Match struct {
	Entry Entry
	Score float32
}

// Store is the vector index contract. Implementations must keep search
// results sorted by descending score with ties broken by insertion order,
// and must treat Upsert of an existing ID as an overwrite.
type Store interface {
	Upsert(ctx context.Context, entries []Entry) error
	Search(ctx context.Context, vector []float32, k int) ([]Match, error)
	Count(ctx context.Context) (int, error)
	Sample(ctx context.Context, limit int) ([]Entry, error)
}

// EntryID derives the content-addressed identifier for a chunk from its
// origin and text. A full-width SHA-256 keeps the collision probability
// negligible at any realistic corpus size.
func EntryID(url string, docIndex, chunkIndex int, text string) string {
	textHash := sha256.Sum256([]byte(text))
	key := fmt.Sprintf("%s_%d_%d_%s", url, docIndex, chunkIndex, hex.EncodeToString(textHash[:]))
	id := sha256.Sum256([]byte(key))
	return hex.EncodeToString(id[:])
}

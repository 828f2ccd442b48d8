package domain

// Document is a single raw record from the ingestion corpus. Documents are
// immutable once loaded; they are identified by URL plus their position in
// the ingestion batch.
type Document struct {
	URL       string
	RawText   string
	Timestamp float64
}

// Chunk is a bounded text window derived from a Document. Chunks are the
// unit of embedding and retrieval and are never mutated after creation.
type Chunk struct {
	URL        string
	DocIndex   int
	ChunkIndex int
	Text       string
	Timestamp  float64
}

// RetrievedPassage is a ranked search hit returned to callers of the
// retriever. Score is cosine similarity in [0, 1].
type RetrievedPassage struct {
	Text       string  `json:"text"`
	URL        string  `json:"url"`
	Score      float32 `json:"score"`
	ChunkIndex int     `json:"chunk_index"`
	DocIndex   int     `json:"doc_index"`
	Timestamp  float64 `json:"timestamp"`
}

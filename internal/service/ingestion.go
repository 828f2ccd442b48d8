package service

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/stroytech/stroybot/internal/domain"
	"github.com/stroytech/stroybot/internal/vectorstore"
)

// embedBatchSize bounds how many chunk texts go into a single embeddings
// request.
const embedBatchSize = 64

// maxCorpusLine is the scanner buffer limit for a single JSONL record.
const maxCorpusLine = 1 << 20

// CorpusSource supplies the raw corpus as a JSONL stream.
type CorpusSource interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Name() string
}

// Embedder produces embedding vectors for batches of texts.
type Embedder interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// IngestStats summarizes a single corpus ingestion run.
type IngestStats struct {
	Documents      int `json:"documents"`
	SkippedRecords int `json:"skipped_records"`
	Chunks         int `json:"chunks"`
}

// IngestionService loads the corpus, splits it into chunks, embeds them and
// writes the result into the vector store. Re-running ingestion over the same
// corpus is idempotent: chunk ids are derived from content, so unchanged
// chunks overwrite themselves.
type IngestionService struct {
	source   CorpusSource
	embedder Embedder
	store    vectorstore.Store
	cfg      ChunkConfig
}

func NewIngestionService(source CorpusSource, embedder Embedder, store vectorstore.Store, cfg ChunkConfig) (*IngestionService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &IngestionService{
		source:   source,
		embedder: embedder,
		store:    store,
		cfg:      cfg,
	}, nil
}

// Ingest runs a full corpus pass: parse, chunk, embed, upsert.
func (s *IngestionService) Ingest(ctx context.Context) (IngestStats, error) {
	rc, err := s.source.Open(ctx)
	if err != nil {
		return IngestStats{}, fmt.Errorf("open corpus %s: %w", s.source.Name(), err)
	}
	defer rc.Close()

	docs, skipped, err := ParseCorpus(rc)
	if err != nil {
		return IngestStats{}, fmt.Errorf("parse corpus %s: %w", s.source.Name(), err)
	}

	stats := IngestStats{Documents: len(docs), SkippedRecords: skipped}

	chunks := make([]domain.Chunk, 0, len(docs))
	for docIdx, doc := range docs {
		for chunkIdx, text := range SplitText(doc.RawText, s.cfg) {
			chunks = append(chunks, domain.Chunk{
				URL:        doc.URL,
				DocIndex:   docIdx,
				ChunkIndex: chunkIdx,
				Text:       text,
				Timestamp:  doc.Timestamp,
			})
		}
	}
	stats.Chunks = len(chunks)

	for offset := 0; offset < len(chunks); offset += embedBatchSize {
		end := offset + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := s.ingestBatch(ctx, chunks[offset:end]); err != nil {
			return stats, err
		}
	}

	log.Printf("ingestion: %d documents, %d chunks, %d records skipped",
		stats.Documents, stats.Chunks, stats.SkippedRecords)
	return stats, nil
}

func (s *IngestionService) ingestBatch(ctx context.Context, batch []domain.Chunk) error {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	vectors, err := s.embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunk batch: %w", err)
	}

	entries := make([]vectorstore.Entry, len(batch))
	for i, c := range batch {
		entries[i] = vectorstore.Entry{
			ID:     vectorstore.EntryID(c.URL, c.DocIndex, c.ChunkIndex, c.Text),
			Vector: vectors[i],
			Payload: vectorstore.Payload{
				URL:        c.URL,
				Text:       c.Text,
				DocIndex:   c.DocIndex,
				ChunkIndex: c.ChunkIndex,
				Timestamp:  c.Timestamp,
			},
		}
	}

	if err := s.store.Upsert(ctx, entries); err != nil {
		return fmt.Errorf("upsert chunk batch: %w", err)
	}
	return nil
}

// corpusRecord is the wire shape of one crawler output line. Records that
// carry a crawl error have no usable content.
type corpusRecord struct {
	URL       string  `json:"url"`
	Content   string  `json:"content"`
	Error     *string `json:"error"`
	Timestamp float64 `json:"timestamp"`
}

// ParseCorpus reads JSONL records of the form
//
//	{"url": "...", "content": "...", "error": null, "timestamp": 1700000000}
//
// one per line. Malformed lines, records with a crawl error and records
// without content are counted and skipped rather than failing the whole run.
func ParseCorpus(r io.Reader) ([]domain.Document, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxCorpusLine)

	var docs []domain.Document
	skipped := 0
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var rec corpusRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			log.Printf("corpus: skipping malformed record at line %d: %v", line, err)
			skipped++
			continue
		}
		if rec.Content == "" || (rec.Error != nil && *rec.Error != "") {
			skipped++
			continue
		}
		docs = append(docs, domain.Document{
			URL:       rec.URL,
			RawText:   rec.Content,
			Timestamp: rec.Timestamp,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("read corpus: %w", err)
	}
	return docs, skipped, nil
}

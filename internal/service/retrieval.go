package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/stroytech/stroybot/internal/domain"
	"github.com/stroytech/stroybot/internal/telemetry"
	"github.com/stroytech/stroybot/internal/vectorstore"
)

// QueryEmbedder produces an embedding vector for a single query text.
type QueryEmbedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// RetrievalService answers semantic queries over the ingested corpus.
type RetrievalService struct {
	embedder QueryEmbedder
	store    vectorstore.Store
	topK     int
}

func NewRetrievalService(embedder QueryEmbedder, store vectorstore.Store, topK int) *RetrievalService {
	if topK <= 0 {
		topK = 5
	}
	return &RetrievalService{
		embedder: embedder,
		store:    store,
		topK:     topK,
	}
}

// Retrieve embeds the query and returns the top matching passages ordered by
// descending similarity. An empty query is a validation error; downstream
// failures are wrapped so callers can distinguish retrieval faults from user
// mistakes.
func (s *RetrievalService) Retrieve(ctx context.Context, query string) ([]domain.RetrievedPassage, error) {
	return s.RetrieveTopK(ctx, query, s.topK)
}

// RetrieveTopK is Retrieve with a per-call result limit. A non-positive
// topK falls back to the configured default.
func (s *RetrievalService) RetrieveTopK(ctx context.Context, query string, topK int) ([]domain.RetrievedPassage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}
	if topK <= 0 {
		topK = s.topK
	}

	ctx, span := telemetry.StartSpan(ctx, "RetrievalService.Retrieve", telemetry.SpanAttributes{
		Operation: "retrieve",
	})
	defer span.End()

	vector, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeRetrieval,
			fmt.Sprintf("embed query: %v", err), err)
	}

	matches, err := s.store.Search(ctx, vector, topK)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeRetrieval,
			fmt.Sprintf("search index: %v", err), err)
	}

	passages := make([]domain.RetrievedPassage, len(matches))
	for i, m := range matches {
		passages[i] = domain.RetrievedPassage{
			Text:       m.Entry.Payload.Text,
			URL:        m.Entry.Payload.URL,
			Score:      m.Score,
			DocIndex:   m.Entry.Payload.DocIndex,
			ChunkIndex: m.Entry.Payload.ChunkIndex,
			Timestamp:  m.Entry.Payload.Timestamp,
		}
	}
	return passages, nil
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/stroytech/stroybot/internal/domain"
	"github.com/stroytech/stroybot/internal/vectorstore"
)

// CorpusChunkRepository is the pgvector-backed vector store. Chunk ids are
// content-addressed, so upserts of unchanged chunks are no-ops and ingestion
// can be re-run at any time. The seq column preserves insertion order and
// breaks score ties deterministically.
type CorpusChunkRepository struct {
	pool      *pgxpool.Pool
	dimension int
}

func NewCorpusChunkRepository(pool *pgxpool.Pool, dimension int) *CorpusChunkRepository {
	return &CorpusChunkRepository{pool: pool, dimension: dimension}
}

// EnsureDimension verifies that the table was provisioned for the configured
// embedding width. A mismatch is a configuration error and fatal at startup.
func (r *CorpusChunkRepository) EnsureDimension(ctx context.Context) error {
	var dimension int
	err := r.pool.QueryRow(ctx, `SELECT dimension FROM index_meta WHERE id = 1`).Scan(&dimension)
	if err != nil {
		return err
	}
	if dimension != r.dimension {
		return domain.ErrDimensionMismatch
	}
	return nil
}

func (r *CorpusChunkRepository) Upsert(ctx context.Context, entries []vectorstore.Entry) error {
	for _, e := range entries {
		if len(e.Vector) != r.dimension {
			return domain.ErrDimensionMismatch
		}
		_, err := r.pool.Exec(ctx,
			`INSERT INTO corpus_chunks (id, url, doc_index, chunk_index, content, source_ts, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (id) DO UPDATE SET
				url = EXCLUDED.url,
				doc_index = EXCLUDED.doc_index,
				chunk_index = EXCLUDED.chunk_index,
				content = EXCLUDED.content,
				source_ts = EXCLUDED.source_ts,
				embedding = EXCLUDED.embedding`,
			e.ID,
			e.Payload.URL,
			e.Payload.DocIndex,
			e.Payload.ChunkIndex,
			e.Payload.Text,
			e.Payload.Timestamp,
			pgvector.NewVector(e.Vector),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *CorpusChunkRepository) Search(ctx context.Context, vector []float32, k int) ([]vectorstore.Match, error) {
	if len(vector) != r.dimension {
		return nil, domain.ErrDimensionMismatch
	}
	if k <= 0 {
		return []vectorstore.Match{}, nil
	}

	vec := pgvector.NewVector(vector)
	rows, err := r.pool.Query(ctx,
		`SELECT id, url, doc_index, chunk_index, content, source_ts, embedding,
			1.0 - (embedding <=> $1) AS score
		 FROM corpus_chunks
		 ORDER BY embedding <=> $1 ASC, seq ASC
		 LIMIT $2`,
		vec, k,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]vectorstore.Match, 0, k)
	for rows.Next() {
		var m vectorstore.Match
		var embedding pgvector.Vector
		var score float64
		if err := rows.Scan(
			&m.Entry.ID,
			&m.Entry.Payload.URL,
			&m.Entry.Payload.DocIndex,
			&m.Entry.Payload.ChunkIndex,
			&m.Entry.Payload.Text,
			&m.Entry.Payload.Timestamp,
			&embedding,
			&score,
		); err != nil {
			return nil, err
		}
		m.Entry.Vector = embedding.Slice()
		m.Score = clampScore(float32(score))
		matches = append(matches, m)
	}

	return matches, rows.Err()
}

func (r *CorpusChunkRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM corpus_chunks`).Scan(&count)
	return count, err
}

// Sample returns up to limit entries in insertion order, for inspection
// tooling.
func (r *CorpusChunkRepository) Sample(ctx context.Context, limit int) ([]vectorstore.Entry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, url, doc_index, chunk_index, content, source_ts, embedding
		 FROM corpus_chunks
		 ORDER BY seq ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]vectorstore.Entry, 0, limit)
	for rows.Next() {
		var e vectorstore.Entry
		var embedding pgvector.Vector
		if err := rows.Scan(
			&e.ID,
			&e.Payload.URL,
			&e.Payload.DocIndex,
			&e.Payload.ChunkIndex,
			&e.Payload.Text,
			&e.Payload.Timestamp,
			&embedding,
		); err != nil {
			return nil, err
		}
		e.Vector = embedding.Slice()
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// clampScore bounds cosine similarity to [0, 1] against floating point
// drift in the distance computation.
func clampScore(score float32) float32 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

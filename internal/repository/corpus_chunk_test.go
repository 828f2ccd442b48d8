//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stroytech/stroybot/internal/domain"
	"github.com/stroytech/stroybot/internal/testutil"
	"github.com/stroytech/stroybot/internal/vectorstore"
)

const testDimension = 1536

func testVector(seed float32) []float32 {
	v := make([]float32, testDimension)
	v[0] = seed
	v[1] = 1 - seed
	return v
}

func testEntry(id string, seed float32, text string) vectorstore.Entry {
	return vectorstore.Entry{
		ID:     id,
		Vector: testVector(seed),
		Payload: vectorstore.Payload{
			URL:       "https://example.ru/" + id,
			Text:      text,
			Timestamp: 1700000000,
		},
	}
}

func TestCorpusChunkRepository_EnsureDimension(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	require.NoError(t, NewCorpusChunkRepository(pool, testDimension).EnsureDimension(ctx))

	err := NewCorpusChunkRepository(pool, 768).EnsureDimension(ctx)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestCorpusChunkRepository_UpsertAndSearch(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewCorpusChunkRepository(pool, testDimension)

	entries := []vectorstore.Entry{
		testEntry("chunk-a", 1.0, "Бетон М300 для фундаментов"),
		testEntry("chunk-b", 0.0, "Песок речной"),
	}
	require.NoError(t, repo.Upsert(ctx, entries))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	matches, err := repo.Search(ctx, testVector(1.0), 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "chunk-a", matches[0].Entry.ID)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-4)
	assert.Greater(t, matches[0].Score, matches[1].Score)
	assert.GreaterOrEqual(t, matches[1].Score, float32(0))
}

func TestCorpusChunkRepository_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewCorpusChunkRepository(pool, testDimension)
	entry := testEntry("chunk-a", 1.0, "Бетон М300")

	require.NoError(t, repo.Upsert(ctx, []vectorstore.Entry{entry}))
	require.NoError(t, repo.Upsert(ctx, []vectorstore.Entry{entry}))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	sample, err := repo.Sample(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sample, 1)
	assert.Equal(t, "Бетон М300", sample[0].Payload.Text)
}

func TestCorpusChunkRepository_DimensionGuard(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewCorpusChunkRepository(pool, testDimension)

	err := repo.Upsert(ctx, []vectorstore.Entry{{ID: "bad", Vector: []float32{1, 2, 3}}})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	_, err = repo.Search(ctx, []float32{1, 2, 3}, 5)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

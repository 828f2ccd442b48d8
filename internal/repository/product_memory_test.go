package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stroytech/stroybot/internal/domain"
)

func TestMemoryProductRepositoryFindByTypeAndMark(t *testing.T) {
	repo := NewMemoryProductRepository(nil)

	products, err := repo.Find(context.Background(),
		domain.ProductFilter{ProductType: "бетон", Mark: "М300"})

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Бетон товарный М300", products[0].Name)
}

func TestMemoryProductRepositoryMarkFilterKeepsUnmarkedProducts(t *testing.T) {
	repo := NewMemoryProductRepository(nil)

	// Sand carries no mark, so a mark filter must not exclude it.
	products, err := repo.Find(context.Background(),
		domain.ProductFilter{ProductType: "песок", Mark: "М300"})

	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestMemoryProductRepositoryFractionFilter(t *testing.T) {
	repo := NewMemoryProductRepository(nil)

	products, err := repo.Find(context.Background(),
		domain.ProductFilter{ProductType: "щебень", Fraction: "5-20"})

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Щебень гранитный 5-20", products[0].Name)
}

func TestMemoryProductRepositorySkipsUnavailable(t *testing.T) {
	beton := "бетон"
	repo := NewMemoryProductRepository([]domain.Product{
		{ID: 1, Name: "Бетон М300", ProductType: beton, Available: false},
		{ID: 2, Name: "Бетон М350", ProductType: beton, Available: true},
	})

	products, err := repo.Find(context.Background(), domain.ProductFilter{ProductType: beton})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Бетон М350", products[0].Name)

	listed, err := repo.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestMemoryProductRepositoryListLimit(t *testing.T) {
	repo := NewMemoryProductRepository(nil)

	products, err := repo.List(context.Background(), 3)

	require.NoError(t, err)
	assert.Len(t, products, 3)
	assert.Equal(t, int64(1), products[0].ID)
}

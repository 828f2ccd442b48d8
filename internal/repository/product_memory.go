package repository

import (
	"context"
	"strings"

	"github.com/stroytech/stroybot/internal/domain"
)

// MemoryProductRepository serves the catalog from a fixed in-memory slice.
// It backs the no-database development mode and mirrors the filter semantics
// of the SQL repository.
type MemoryProductRepository struct {
	products []domain.Product
}

func NewMemoryProductRepository(products []domain.Product) *MemoryProductRepository {
	if products == nil {
		products = SeedProducts()
	}
	return &MemoryProductRepository{products: products}
}

func (r *MemoryProductRepository) Find(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	matched := make([]domain.Product, 0)
	for _, p := range r.products {
		if !p.Available {
			continue
		}
		if filter.ProductType != "" && !strings.EqualFold(p.ProductType, filter.ProductType) {
			continue
		}
		if filter.Mark != "" && p.Mark != nil && !strings.EqualFold(*p.Mark, filter.Mark) {
			continue
		}
		if filter.Fraction != "" && p.Fraction != nil && *p.Fraction != filter.Fraction {
			continue
		}
		matched = append(matched, p)
	}
	return matched, nil
}

func (r *MemoryProductRepository) List(_ context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 10
	}
	listed := make([]domain.Product, 0, limit)
	for _, p := range r.products {
		if !p.Available {
			continue
		}
		listed = append(listed, p)
		if len(listed) == limit {
			break
		}
	}
	return listed, nil
}

// SeedProducts is the default development catalog. The SQL seed migration
// carries the same items.
func SeedProducts() []domain.Product {
	str := func(s string) *string { return &s }

	return []domain.Product{
		{
			ID: 1, Name: "Бетон товарный М300", ProductType: "бетон", Mark: str("М300"),
			PricePerUnit: 4500, Unit: "м3", Available: true,
			Description: "Товарный бетон для фундаментов и перекрытий",
		},
		{
			ID: 2, Name: "Бетон товарный М350", ProductType: "бетон", Mark: str("М350"),
			PricePerUnit: 4800, Unit: "м3", Available: true,
			Description: "Бетон повышенной прочности для несущих конструкций",
		},
		{
			ID: 3, Name: "Бетон товарный М400", ProductType: "бетон", Mark: str("М400"),
			PricePerUnit: 5200, Unit: "м3", Available: true,
			Description: "Бетон для гидротехнических сооружений",
		},
		{
			ID: 4, Name: "Песок речной", ProductType: "песок",
			PricePerUnit: 800, Unit: "т", Available: true,
			Description: "Мытый речной песок для растворов и стяжки",
		},
		{
			ID: 5, Name: "Песок карьерный", ProductType: "песок",
			PricePerUnit: 600, Unit: "т", Available: true,
			Description: "Карьерный песок для обратной засыпки и планировки",
		},
		{
			ID: 6, Name: "Щебень гранитный 5-20", ProductType: "щебень", Fraction: str("5-20"),
			PricePerUnit: 1900, Unit: "т", Available: true,
			Description: "Гранитный щебень для производства бетона",
		},
		{
			ID: 7, Name: "Щебень гранитный 20-40", ProductType: "щебень", Fraction: str("20-40"),
			PricePerUnit: 1750, Unit: "т", Available: true,
			Description: "Гранитный щебень для дорожного строительства",
		},
		{
			ID: 8, Name: "Гравий 5-20", ProductType: "гравий", Fraction: str("5-20"),
			PricePerUnit: 1400, Unit: "т", Available: true,
			Description: "Гравий для дренажа и отсыпки",
		},
	}
}

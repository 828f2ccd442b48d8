package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/stroytech/stroybot/internal/domain"
)

// fallbackListingLimit bounds the generic listing shown when no product
// matches the specification at all.
const fallbackListingLimit = 3

// ProductRepository is the catalog lookup contract.
type ProductRepository interface {
	Find(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	List(ctx context.Context, limit int) ([]domain.Product, error)
}

// CatalogService turns a completed order specification into product offers.
// Lookups relax in stages: full filter, then product type only, then a short
// generic listing, so the user always gets something to react to.
type CatalogService struct {
	products ProductRepository
}

func NewCatalogService(products ProductRepository) *CatalogService {
	return &CatalogService{products: products}
}

// FindMatching returns products for the specification, relaxing the filter
// until something matches. An empty result after all stages is valid.
func (s *CatalogService) FindMatching(ctx context.Context, spec domain.OrderSpec) ([]domain.Product, error) {
	filter := domain.ProductFilter{
		ProductType: domain.StringValue(spec.ProductType),
		Mark:        spec.Mark(),
		Fraction:    spec.Fraction(),
	}

	products, err := s.products.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	if len(products) > 0 {
		return products, nil
	}

	if filter.Mark != "" || filter.Fraction != "" {
		products, err = s.products.Find(ctx, domain.ProductFilter{ProductType: filter.ProductType})
		if err != nil {
			return nil, fmt.Errorf("find products by type: %w", err)
		}
		if len(products) > 0 {
			return products, nil
		}
	}

	products, err = s.products.List(ctx, fallbackListingLimit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// FormatProductListing renders offers as the user-facing message.
func FormatProductListing(products []domain.Product) string {
	if len(products) == 0 {
		return "К сожалению, товары по вашим параметрам не найдены. Попробуйте изменить параметры заказа."
	}

	var b strings.Builder
	b.WriteString("Вот предложения по вашему запросу:\n")
	for _, p := range products {
		b.WriteString(fmt.Sprintf("\n%s\n", p.Name))
		if p.Description != "" {
			b.WriteString(fmt.Sprintf("%s\n", p.Description))
		}
		b.WriteString(fmt.Sprintf("Цена: %d руб./%s\n", p.PricePerUnit, p.Unit))
	}
	b.WriteString("\nДля оформления заказа укажите количество и адрес доставки.")
	return b.String()
}

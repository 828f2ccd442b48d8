package handlers

import (
	"context"
	"net/http"

	"github.com/stroytech/stroybot/internal/api"
	"github.com/stroytech/stroybot/internal/domain"
)

type ProductCatalog interface {
	Find(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	List(ctx context.Context, limit int) ([]domain.Product, error)
}

type ProductsHandler struct {
	catalog ProductCatalog
}

func NewProductsHandler(catalog ProductCatalog) *ProductsHandler {
	return &ProductsHandler{catalog: catalog}
}

type ProductResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	ProductType  string  `json:"product_type"`
	Mark         *string `json:"mark,omitempty"`
	Fraction     *string `json:"fraction,omitempty"`
	PricePerUnit int64   `json:"price_per_unit"`
	Unit         string  `json:"unit"`
	Available    bool    `json:"available"`
	Description  string  `json:"description,omitempty"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
}

// List returns catalog products, optionally filtered by query parameters.
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ProductFilter{
		ProductType: q.Get("product_type"),
		Mark:        q.Get("mark"),
		Fraction:    q.Get("fraction"),
	}

	var (
		products []domain.Product
		err      error
	)
	if filter == (domain.ProductFilter{}) {
		products, err = h.catalog.List(r.Context(), 0)
	} else {
		products, err = h.catalog.Find(r.Context(), filter)
	}
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]ProductResponse, len(products))
	for i, p := range products {
		responses[i] = ProductResponse{
			ID:           p.ID,
			Name:         p.Name,
			ProductType:  p.ProductType,
			Mark:         p.Mark,
			Fraction:     p.Fraction,
			PricePerUnit: p.PricePerUnit,
			Unit:         p.Unit,
			Available:    p.Available,
			Description:  p.Description,
		}
	}

	api.Success(w, http.StatusOK, ProductListResponse{Products: responses})
}

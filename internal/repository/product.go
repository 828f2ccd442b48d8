package repository

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stroytech/stroybot/internal/domain"
)

// ProductRepository implements catalog lookups over the products table.
type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Find returns available products matching the filter. Products without a
// mark or fraction pass the corresponding filter, so generic items stay
// visible regardless of the requested characteristics.
func (r *ProductRepository) Find(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	query := `
		SELECT id, name, product_type, mark, fraction, price_per_unit, unit, available, description
		FROM products
		WHERE available = TRUE`
	args := []interface{}{}

	if filter.ProductType != "" {
		args = append(args, filter.ProductType)
		query += ` AND LOWER(product_type) = LOWER($` + strconv.Itoa(len(args)) + `)`
	}
	if filter.Mark != "" {
		args = append(args, filter.Mark)
		query += ` AND (mark IS NULL OR LOWER(mark) = LOWER($` + strconv.Itoa(len(args)) + `))`
	}
	if filter.Fraction != "" {
		args = append(args, filter.Fraction)
		query += ` AND (fraction IS NULL OR fraction = $` + strconv.Itoa(len(args)) + `)`
	}

	query += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProductRows(rows)
}

// List returns the first available products in catalog order.
func (r *ProductRepository) List(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, name, product_type, mark, fraction, price_per_unit, unit, available, description
		 FROM products
		 WHERE available = TRUE
		 ORDER BY id
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProductRows(rows)
}

func scanProductRows(rows pgx.Rows) ([]domain.Product, error) {
	products := make([]domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.ProductType,
			&p.Mark,
			&p.Fraction,
			&p.PricePerUnit,
			&p.Unit,
			&p.Available,
			&p.Description,
		); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

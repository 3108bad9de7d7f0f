package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lny-platform/product-catalog/internal/apperr"
	"github.com/lny-platform/product-catalog/internal/model"
	"github.com/lny-platform/product-catalog/internal/storage/db"
)

// Sort selects the ordering of a product listing.
type Sort string

const (
	SortDefault   Sort = ""
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
)

// Validate implements the enum contract used by the validator package.
func (s Sort) Validate() error {
	switch s {
	case SortDefault, SortPriceAsc, SortPriceDesc:
		return nil
	}
	return fmt.Errorf("unknown sort key: %s", s)
}

type CreateProductParams struct {
	Name      string
	Price     float64
	Category  string
	CreatedAt time.Time
}

type UpdateProductParams struct {
	Name     *string
	Price    *float64
	Category *string
}

type ListProductsParams struct {
	Category *string
	Sort     Sort
}

// CategoryStat is a per-category aggregate over currently stored products.
type CategoryStat struct {
	Category     string  `json:"category"`
	Count        int64   `json:"count"`
	AveragePrice float64 `json:"average_price"`
	TotalPrice   float64 `json:"total_price"`
}

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	GetProduct(ctx context.Context, id int64) (model.Product, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error)
	UpdateProduct(ctx context.Context, id int64, params UpdateProductParams) (model.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]string, error)
	CountProducts(ctx context.Context) (int64, error)
	CategoryStats(ctx context.Context) ([]CategoryStat, error)
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	price, err := numericFromFloat(params.Price)
	if err != nil {
		return model.Product{}, fmt.Errorf("scan price: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO products (name, price, category, created_at)
		VALUES (@name, @price, @category, @created_at)
		RETURNING id, name, price, category, created_at
	`, pgx.NamedArgs{
		"name":       params.Name,
		"price":      price,
		"category":   params.Category,
		"created_at": params.CreatedAt,
	})

	product, err := scanProduct(row)
	if err != nil {
		return model.Product{}, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

func (r productRepository) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, price, category, created_at
		FROM products
		WHERE id = @id
	`, pgx.NamedArgs{"id": id})

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, apperr.ProductNotFoundErr.WrapParent(err)
		}
		return model.Product{}, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

func (r productRepository) ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error) {
	// Ties are broken by id, the store's insertion order.
	orderBy := "created_at DESC, id DESC"
	switch params.Sort {
	case SortPriceAsc:
		orderBy = "price ASC, id ASC"
	case SortPriceDesc:
		orderBy = "price DESC, id ASC"
	}

	query := `
		SELECT id, name, price, category, created_at
		FROM products
		WHERE (@category::text IS NULL OR category = @category)
		ORDER BY ` + orderBy

	rows, err := r.db.Query(ctx, query, pgx.NamedArgs{"category": params.Category})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r productRepository) UpdateProduct(ctx context.Context, id int64, params UpdateProductParams) (model.Product, error) {
	var price *pgtype.Numeric
	if params.Price != nil {
		n, err := numericFromFloat(*params.Price)
		if err != nil {
			return model.Product{}, fmt.Errorf("scan price: %w", err)
		}
		price = &n
	}

	// Unsupplied fields keep their stored values; id and created_at are
	// never part of the SET list.
	row := r.db.QueryRow(ctx, `
		UPDATE products
		SET name     = COALESCE(@name, name),
		    price    = COALESCE(@price, price),
		    category = COALESCE(@category, category)
		WHERE id = @id
		RETURNING id, name, price, category, created_at
	`, pgx.NamedArgs{
		"id":       id,
		"name":     params.Name,
		"price":    price,
		"category": params.Category,
	})

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, apperr.ProductNotFoundErr.WrapParent(err)
		}
		return model.Product{}, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

func (r productRepository) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM products WHERE id = @id
	`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.ProductNotFoundErr
	}

	return nil
}

func (r productRepository) ListCategories(ctx context.Context) ([]string, error) {
	// Deduplicated, in the order each category was first seen.
	rows, err := r.db.Query(ctx, `
		SELECT category
		FROM products
		GROUP BY category
		ORDER BY MIN(id)
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return categories, nil
}

func (r productRepository) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

func (r productRepository) CategoryStats(ctx context.Context) ([]CategoryStat, error) {
	rows, err := r.db.Query(ctx, `
		SELECT category, COUNT(*), AVG(price), SUM(price)
		FROM products
		GROUP BY category
		ORDER BY MIN(id)
	`)
	if err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}
	defer rows.Close()

	stats := make([]CategoryStat, 0)
	for rows.Next() {
		var (
			stat     CategoryStat
			avg, sum pgtype.Numeric
		)
		if err := rows.Scan(&stat.Category, &stat.Count, &avg, &sum); err != nil {
			return nil, fmt.Errorf("scan category stat: %w", err)
		}

		avgValue, err := avg.Float64Value()
		if err != nil {
			return nil, fmt.Errorf("convert average price: %w", err)
		}
		sumValue, err := sum.Float64Value()
		if err != nil {
			return nil, fmt.Errorf("convert total price: %w", err)
		}

		stat.AveragePrice = avgValue.Float64
		stat.TotalPrice = sumValue.Float64
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}

	return stats, nil
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var (
		product model.Product
		price   pgtype.Numeric
	)
	if err := row.Scan(&product.ID, &product.Name, &price, &product.Category, &product.CreatedAt); err != nil {
		return model.Product{}, err
	}

	priceValue, err := price.Float64Value()
	if err != nil {
		return model.Product{}, fmt.Errorf("convert price to float64: %w", err)
	}
	product.Price = priceValue.Float64

	return product, nil
}

func collectProducts(rows pgx.Rows) ([]model.Product, error) {
	products := make([]model.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("collect products: %w", err)
	}

	return products, nil
}

// numericFromFloat converts a price to NUMERIC(10,2), the precision the
// store persists.
func numericFromFloat(f float64) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(strconv.FormatFloat(f, 'f', 2, 64)); err != nil {
		return pgtype.Numeric{}, err
	}
	return n, nil
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aaravmahajanofficial/buyzaar/internal/models"
	"github.com/aaravmahajanofficial/buyzaar/internal/utils"
	"github.com/google/uuid"
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	// UpdateProduct writes the catalog fields. Stock is written only when
	// expectedStock is set, and only if the row still holds that value.
	UpdateProduct(ctx context.Context, product *models.Product, expectedStock *int) error
	ListProducts(ctx context.Context, page, size int) ([]*models.Product, int, error)
	// DecrementStock atomically moves quantity units from stock to total_sold.
	// It returns ErrInsufficientStock when stock < quantity at write time.
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error
	UpdateRating(ctx context.Context, id uuid.UUID, summary models.RatingSummary) error
}

type productRepository struct {
	DB DBTX
}

func NewProductRepo(db DBTX) ProductRepository {
	return &productRepository{DB: db}
}

const productColumns = `id, subcategory_id, name, short_description, long_description, price, discount_price,
		stock, total_sold, average_rating, total_ratings, images, created_at, updated_at`

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	imagesJSON, err := json.Marshal(product.Images)
	if err != nil {
		return fmt.Errorf("failed to marshal product images: %w", err)
	}

	query := `
		INSERT INTO products (id, subcategory_id, name, short_description, long_description, price, discount_price, stock, images)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err = r.DB.QueryRowContext(dbCtx, query, product.ID, product.SubcategoryID, product.Name, product.ShortDescription,
		product.LongDescription, product.Price, product.DiscountPrice, product.Stock, imagesJSON).
		Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", translateError(err))
	}

	return nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	return product, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product, expectedStock *int) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	imagesJSON, err := json.Marshal(product.Images)
	if err != nil {
		return fmt.Errorf("failed to marshal product images: %w", err)
	}

	args := []any{product.SubcategoryID, product.Name, product.ShortDescription, product.LongDescription,
		product.Price, product.DiscountPrice, imagesJSON, product.ID}

	query := `
		UPDATE products
		SET subcategory_id = $1, name = $2, short_description = $3, long_description = $4,
			price = $5, discount_price = $6, images = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING stock, updated_at
	`

	if expectedStock != nil {
		query = `
		UPDATE products
		SET subcategory_id = $1, name = $2, short_description = $3, long_description = $4,
			price = $5, discount_price = $6, images = $7, stock = $9, updated_at = NOW()
		WHERE id = $8 AND stock = $10
		RETURNING stock, updated_at
	`
		args = append(args, product.Stock, *expectedStock)
	}

	err = r.DB.QueryRowContext(dbCtx, query, args...).Scan(&product.Stock, &product.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if expectedStock != nil {
				return ErrStockChanged
			}

			return err
		}

		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

func (r *productRepository) ListProducts(ctx context.Context, page, size int) ([]*models.Product, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int

	if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.DB.QueryContext(dbCtx, query, size, offset(page, size))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*models.Product{}

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}

		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE products
		SET stock = stock - $1, total_sold = total_sold + $1, updated_at = NOW()
		WHERE id = $2 AND stock >= $1
	`

	result, err := r.DB.ExecContext(dbCtx, query, quantity, id)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updatedRows == 0 {
		return ErrInsufficientStock
	}

	return nil
}

func (r *productRepository) UpdateRating(ctx context.Context, id uuid.UUID, summary models.RatingSummary) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE products
		SET average_rating = $1, total_ratings = $2, updated_at = NOW()
		WHERE id = $3
	`

	result, err := r.DB.ExecContext(dbCtx, query, summary.Average, summary.Count, id)
	if err != nil {
		return fmt.Errorf("failed to update product rating: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updatedRows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func scanProduct(row rowScanner) (*models.Product, error) {
	product := &models.Product{}

	var imagesJSON []byte

	err := row.Scan(&product.ID, &product.SubcategoryID, &product.Name, &product.ShortDescription, &product.LongDescription,
		&product.Price, &product.DiscountPrice, &product.Stock, &product.TotalSold, &product.AverageRating,
		&product.TotalRatings, &imagesJSON, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(imagesJSON) > 0 {
		if err := json.Unmarshal(imagesJSON, &product.Images); err != nil {
			return nil, fmt.Errorf("failed to unmarshal product images: %w", err)
		}
	}

	return product, nil
}

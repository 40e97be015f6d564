package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/aaravmahajanofficial/buyzaar/internal/api/middleware"
	"github.com/aaravmahajanofficial/buyzaar/internal/cache"
	appErrors "github.com/aaravmahajanofficial/buyzaar/internal/errors"
	"github.com/aaravmahajanofficial/buyzaar/internal/models"
	repository "github.com/aaravmahajanofficial/buyzaar/internal/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductService interface {
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error)
	ListProducts(ctx context.Context, page, pageSize int) ([]*models.Product, int, error)
}

type productService struct {
	repo  repository.ProductRepository
	cache cache.Cache
}

// NewProductService reads through cache when it is not nil.
func NewProductService(repo repository.ProductRepository, cache cache.Cache) ProductService {
	return &productService{repo: repo, cache: cache}
}

func (s *productService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	if err := validatePricing(req.Price, req.DiscountPrice); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:               uuid.New(),
		SubcategoryID:    req.SubcategoryID,
		Name:             req.Name,
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		Price:            req.Price,
		Stock:            req.Stock,
		Images:           req.Images,
	}

	if req.DiscountPrice != nil {
		product.DiscountPrice = decimal.NewNullDecimal(*req.DiscountPrice)
	}

	if product.Images == nil {
		product.Images = []string{}
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, appErrors.DatabaseError("Failed to create product").WithError(err)
	}

	middleware.LoggerFromContext(ctx).Info("Product created", slog.String("productId", product.ID.String()))

	return product, nil
}

func (s *productService) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	logger := middleware.LoggerFromContext(ctx)
	key := cache.ProductKey(id)

	if s.cache != nil {
		var cached models.Product

		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			logger.Warn("Product cache read failed", slog.String("key", key), slog.Any("error", err))
		} else if found {
			return &cached, nil
		}
	}

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Product not found")
		}

		return nil, appErrors.DatabaseError("Failed to fetch product").WithError(err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, product, 0); err != nil {
			logger.Warn("Product cache write failed", slog.String("key", key), slog.Any("error", err))
		}
	}

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Product not found")
		}

		return nil, appErrors.DatabaseError("Failed to fetch product").WithError(err)
	}

	if req.SubcategoryID != nil {
		product.SubcategoryID = *req.SubcategoryID
	}

	if req.Name != nil {
		product.Name = *req.Name
	}

	if req.ShortDescription != nil {
		product.ShortDescription = *req.ShortDescription
	}

	if req.LongDescription != nil {
		product.LongDescription = *req.LongDescription
	}

	if req.Price != nil {
		product.Price = *req.Price
	}

	if req.DiscountPrice != nil {
		product.DiscountPrice = decimal.NewNullDecimal(*req.DiscountPrice)
	}

	var expectedStock *int

	if req.Stock != nil {
		current := product.Stock
		expectedStock = &current
		product.Stock = *req.Stock
	}

	if req.Images != nil {
		product.Images = req.Images
	}

	var discount *decimal.Decimal
	if product.DiscountPrice.Valid {
		discount = &product.DiscountPrice.Decimal
	}

	if err := validatePricing(product.Price, discount); err != nil {
		return nil, err
	}

	if product.Stock < 0 {
		return nil, appErrors.ValidationError("Stock cannot be negative")
	}

	if err := s.repo.UpdateProduct(ctx, product, expectedStock); err != nil {
		if errors.Is(err, repository.ErrStockChanged) {
			return nil, appErrors.ConflictError("Stock changed since it was read, retry the update").WithError(err)
		}

		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Product not found")
		}

		return nil, appErrors.DatabaseError("Failed to update product").WithError(err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, cache.ProductKey(id)); err != nil {
			middleware.LoggerFromContext(ctx).Warn("Failed to invalidate product cache", slog.Any("error", err))
		}
	}

	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, page, pageSize int) ([]*models.Product, int, error) {
	products, total, err := s.repo.ListProducts(ctx, page, pageSize)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to fetch products").WithError(err)
	}

	return products, total, nil
}

func validatePricing(price decimal.Decimal, discount *decimal.Decimal) error {
	if !price.IsPositive() {
		return appErrors.ValidationError("Price must be greater than zero")
	}

	if discount != nil && (discount.IsNegative() || discount.GreaterThan(price)) {
		return appErrors.ValidationError("Discount price must be between zero and the price")
	}

	return nil
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/aaravmahajanofficial/buyzaar/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/buyzaar/internal/errors"
	"github.com/aaravmahajanofficial/buyzaar/internal/metrics"
	"github.com/aaravmahajanofficial/buyzaar/internal/models"
	repository "github.com/aaravmahajanofficial/buyzaar/internal/repositories"
	"github.com/google/uuid"
)

type CartService interface {
	// GetCart returns an empty, unsaved cart when the user has none.
	GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, req *models.AddCartItemRequest) (*models.Cart, error)
	UpdateItem(ctx context.Context, userID uuid.UUID, req *models.UpdateCartItemRequest) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (*models.Cart, error)
	ClearCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{cartRepo: cartRepo, productRepo: productRepo}
}

func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.NewCart(userID), nil
		}

		return nil, appErrors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	return cart, nil
}

func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddCartItemRequest) (*models.Cart, error) {
	logger := middleware.LoggerFromContext(ctx).With(slog.String("productId", req.ProductID.String()))

	if req.Quantity < 1 {
		return nil, appErrors.ValidationError("Quantity must be at least 1")
	}

	product, err := s.productRepo.GetProductByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Product not found")
		}

		return nil, appErrors.DatabaseError("Failed to fetch product").WithError(err)
	}

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		cart = models.NewCart(userID)
		cart.ID = uuid.New()

		if err := s.addToCart(cart, product, req.Quantity); err != nil {
			return nil, err
		}

		err = s.cartRepo.CreateCart(ctx, cart)
		if err == nil {
			logger.Info("Cart created")
			metrics.CartMutated("add")

			return cart, nil
		}

		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.DatabaseError("Failed to create cart").WithError(err)
		}

		// A concurrent request created the cart first; apply the add to that one.
		if cart, err = s.cartRepo.GetCartByUserID(ctx, userID); err != nil {
			return nil, appErrors.DatabaseError("Failed to fetch cart").WithError(err)
		}
	case err != nil:
		return nil, appErrors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	if err := s.addToCart(cart, product, req.Quantity); err != nil {
		return nil, err
	}

	if err := s.cartRepo.UpdateCart(ctx, cart); err != nil {
		return nil, appErrors.DatabaseError("Failed to update cart").WithError(err)
	}

	metrics.CartMutated("add")
	logger.Info("Item added to cart", slog.Int("quantity", cart.QuantityOf(product.ID)))

	return cart, nil
}

// addToCart checks stock against the quantity the line will hold after the
// merge, not only the quantity being added.
func (s *cartService) addToCart(cart *models.Cart, product *models.Product, quantity int) error {
	if product.Stock < cart.QuantityOf(product.ID)+quantity {
		return appErrors.InsufficientStockError(product.Name)
	}

	cart.AddItem(product.ID, quantity, product.EffectivePrice())

	return nil
}

func (s *cartService) UpdateItem(ctx context.Context, userID uuid.UUID, req *models.UpdateCartItemRequest) (*models.Cart, error) {
	if req.Quantity < 1 {
		return nil, appErrors.ValidationError("Quantity must be at least 1")
	}

	cart, err := s.existingCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !cart.SetQuantity(req.ProductID, req.Quantity) {
		return nil, appErrors.ItemNotFoundError("Item not found in cart")
	}

	if err := s.cartRepo.UpdateCart(ctx, cart); err != nil {
		return nil, appErrors.DatabaseError("Failed to update cart").WithError(err)
	}

	metrics.CartMutated("update")

	return cart, nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (*models.Cart, error) {
	cart, err := s.existingCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !cart.RemoveItem(productID) {
		return cart, nil
	}

	if err := s.cartRepo.UpdateCart(ctx, cart); err != nil {
		return nil, appErrors.DatabaseError("Failed to update cart").WithError(err)
	}

	metrics.CartMutated("remove")

	return cart, nil
}

func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.NewCart(userID), nil
		}

		return nil, appErrors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	if cart.IsEmpty() {
		cart.Recalculate()
		return cart, nil
	}

	cart.Clear()

	if err := s.cartRepo.UpdateCart(ctx, cart); err != nil {
		return nil, appErrors.DatabaseError("Failed to clear cart").WithError(err)
	}

	metrics.CartMutated("clear")

	return cart, nil
}

func (s *cartService) existingCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Cart not found")
		}

		return nil, appErrors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	return cart, nil
}

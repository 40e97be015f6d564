package service_test

import (
	"database/sql"
	"errors"
	"testing"

	appErrors "github.com/aaravmahajanofficial/buyzaar/internal/errors"
	"github.com/aaravmahajanofficial/buyzaar/internal/models"
	repository "github.com/aaravmahajanofficial/buyzaar/internal/repositories"
	"github.com/aaravmahajanofficial/buyzaar/internal/repositories/mocks"
	service "github.com/aaravmahajanofficial/buyzaar/internal/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupCartService(t *testing.T) (service.CartService, *mocks.CartRepository, *mocks.ProductRepository) {
	t.Helper()

	cartRepo := mocks.NewCartRepository(t)
	productRepo := mocks.NewProductRepository(t)

	return service.NewCartService(cartRepo, productRepo), cartRepo, productRepo
}

func TestCartService_GetCart(t *testing.T) {
	userID := uuid.New()

	t.Run("Missing cart is returned empty without being saved", func(t *testing.T) {
		// Arrange
		cartService, cartRepo, _ := setupCartService(t)
		cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(nil, sql.ErrNoRows).Once()

		// Act
		cart, err := cartService.GetCart(t.Context(), userID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, userID, cart.UserID)
		assert.Empty(t, cart.Items)
		assert.True(t, cart.TotalAmount.IsZero())
		cartRepo.AssertNotCalled(t, "CreateCart", mock.Anything, mock.Anything)
	})

	t.Run("Database error", func(t *testing.T) {
		// Arrange
		cartService, cartRepo, _ := setupCartService(t)
		cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(nil, errors.New("timeout")).Once()

		// Act
		_, err := cartService.GetCart(t.Context(), userID)

		// Assert
		requireAppError(t, err, appErrors.ErrCodeDatabaseError)
	})
}

func TestCartService_AddItem(t *testing.T) {
	userID := uuid.New()

	newProduct := func(stock int) *models.Product {
		return &models.Product{ID: uuid.New(), Name: "Notebook", Price: decimal.RequireFromString("4.50"), Stock: stock}
	}

	t.Run("Creates the cart lazily", func(t *testing.T) {
		// Arrange
		cartService, cartRepo, productRepo := setupCartService(t)
		product := newProduct(10)

		productRepo.On("GetProductByID", mock.Anything, product.ID).Return(product, nil).Once()
		cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(nil, sql.ErrNoRows).Once()
		cartRepo.On("CreateCart", mock.Anything, mock.MatchedBy(func(c *models.Cart) bool {
			return c.ID != uuid.Nil && c.UserID == userID && len(c.Items) == 1
		})).Return(nil).Once()

		// Act
		cart, err := cartService.AddItem(t.Context(), userID, &models.AddCartItemRequest{ProductID: product.ID, Quantity: 2})

		// Assert
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 2, cart.Items[0].Quantity)
		assert.True(t, decimal.RequireFromString("9.00").Equal(cart.TotalAmount))
	})

	t.Run("Merges into an existing line and keeps its price", func(t *testing.T) {
		// Arrange
		cartService, cartRepo, productRepo := setupCartService(t)
		product := newProduct(10)
		product.DiscountPrice = decimal.NewNullDecimal(decimal.RequireFromString("3.00"))

		existing := models.NewCart(userID)
		existing.ID = uuid.New()
		existing.AddItem(product.ID, 1, decimal.RequireFromString("4.50"))

		productRepo.On("GetProductByID", mock.Anything, product.ID).Return(product, nil).Once()
		cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(existing, nil).Once()
		cartRepo.On("UpdateCart", mock.Anything, existing).Return(nil).Once()

		// Act
		cart, err := cartService.AddItem(t.Context(), userID, &models.AddCartItemRequest{ProductID: product.ID, Quantity: 2})

		// Assert
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 3, cart.Items[0].Quantity)
		assert.True(t, decimal.RequireFromString("13.50").Equal(cart.TotalAmount))
	})

	t.Run("New line snapshots the discount price", func(t *testing.T) {
		// Arrange
		cartService, cartRepo, productRepo := setupCartService(t)
		product := newProduct(10)
		product.DiscountPrice = decimal.NewNullDecimal(decimal.RequireFromString("3.00"))

		existing := models.NewCart(userID)
		existing.ID = uuid.New()

		productRepo.On("GetProductByID", mock.Anything, product.ID).Return(product, nil).Once()
		cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(existing, nil).Once()
		cartRepo.On("UpdateCart", mock.Anything, existing).Return(nil).Once()

		// Act
		cart, err := cartService.AddItem(t.Context(), userID, &models.AddCartItemRequest{ProductID: product.ID, Quantity: 1})

		// Assert
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("3.00").Equal(cart.Items[0].Price))
	})

	t.Run("Stock check counts what is already in the cart", func(t *testing.T) {
		// Arrange
		cartService, cartRepo, productRepo := setupCartService(t)
		product := newProduct(3)

		existing := models.NewCart(userID)
		existing.AddItem(product.ID, 2, product.Price)

		productRepo.On("GetProductByID", mock.Anything, product.ID).Return(product, nil).Once()
		cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(existing, nil).Once()

		// Act
		cart, err := cartService.AddItem(t.Context(), userID, &models.AddCartItemRequest{ProductID: product.ID, Quantity: 2})

		// Assert
		assert.Nil(t, cart)
		requireAppError(t, err, appErrors.ErrCodeInsufficientStock)
		cartRepo.AssertNotCalled(t, "UpdateCart", mock.Anything, mock.Anything)
	})

	t.Run("Concurrent creation falls back to the winner's cart", func(t *testing.T) {
		// Arrange
		cartService, cartRepo, productRepo := setupCartService(t)
		product := newProduct(10)

		winner := models.NewCart(userID)
		winner.ID = uuid.New()

		productRepo.On("GetProductByID", mock.Anything, product.ID).Return(product, nil).Once()
		cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(nil, sql.ErrNoRows).Once()
		cartRepo.On("CreateCart", mock.Anything, mock.Anything).Return(repository.ErrDuplicate).Once()
		cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(winner, nil).Once()
		cartRepo.On("UpdateCart", mock.Anything, winner).Return(nil).Once()

		// Act
		cart, err := cartService.AddItem(t.Context(), userID, &models.AddCartItemRequest{ProductID: product.ID, Quantity: 1})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, winner.ID, cart.ID)
		assert.Equal(t, 1, cart.QuantityOf(product.ID))
	})

	t.Run("Unknown product", func(t *testing.T) {
		// Arrange
		cartService, _, productRepo := setupCartService(t)
		productID := uuid.New()
		productRepo.On("GetProductByID", mock.Anything, productID).Return(nil, sql.ErrNoRows).Once()

		// Act
		_, err := cartService.AddItem(t.Context(), userID, &models.AddCartItemRequest{ProductID: productID, Quantity: 1})

		// Assert
		requireAppError(t, err, appErrors.ErrCodeNotFound)
	})

	t.Run("Zero quantity", func(t *testing.T) {
		cartService, _, _ := setupCartService(t)

		_, err := cartService.AddItem(t.Context(), userID, &models.AddCartItemRequest{ProductID: uuid.New(), Quantity: 0})

		requireAppError(t, err, appErrors.ErrCodeValidation)
	})
}

func TestCartService_UpdateItem(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		cartService, cartRepo, _ := setupCartService(t)
		existing := models.NewCart(userID)
		existing.AddItem(productID, 1, decimal.RequireFromString("2.00"))

		cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(existing, nil).Once()
		cartRepo.On("UpdateCart", mock.Anything, existing).Return(nil).Once()

		// Act
		cart, err := cartService.UpdateItem(t.Context(), userID, &models.UpdateCartItemRequest{ProductID: productID, Quantity: 4})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 4, cart.QuantityOf(productID))
		assert.True(t, decimal.RequireFromString("8.00").Equal(cart.TotalAmount))
	})

	t.Run("Item not in cart", func(t *testing.T) {
		// Arrange
		cartService, cartRepo, _ := setupCartService(t)
		cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(models.NewCart(userID), nil).Once()

		// Act
		_, err := cartService.UpdateItem(t.Context(), userID, &models.UpdateCartItemRequest{ProductID: productID, Quantity: 4})

		// Assert
		requireAppError(t, err, appErrors.ErrCodeItemNotFound)
	})

	t.Run("Cart missing", func(t *testing.T) {
		// Arrange
		cartService, cartRepo, _ := setupCartService(t)
		cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(nil, sql.ErrNoRows).Once()

		// Act
		_, err := cartService.UpdateItem(t.Context(), userID, &models.UpdateCartItemRequest{ProductID: productID, Quantity: 4})

		// Assert
		requireAppError(t, err, appErrors.ErrCodeNotFound)
	})
}

func TestCartService_RemoveItem(t *testing.T) {
	userID := uuid.New()
	keep, drop := uuid.New(), uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		cartService, cartRepo, _ := setupCartService(t)
		existing := models.NewCart(userID)
		existing.AddItem(keep, 1, decimal.RequireFromString("2.00"))
		existing.AddItem(drop, 3, decimal.RequireFromString("1.00"))

		cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(existing, nil).Once()
		cartRepo.On("UpdateCart", mock.Anything, existing).Return(nil).Once()

		// Act
		cart, err := cartService.RemoveItem(t.Context(), userID, drop)

		// Assert
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, keep, cart.Items[0].ProductID)
		assert.True(t, decimal.RequireFromString("2.00").Equal(cart.TotalAmount))
	})

	t.Run("Absent item leaves the cart unchanged", func(t *testing.T) {
		// Arrange
		cartService, cartRepo, _ := setupCartService(t)
		existing := models.NewCart(userID)
		existing.AddItem(uuid.New(), 1, decimal.RequireFromString("2.00"))
		cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(existing, nil).Once()

		// Act
		cart, err := cartService.RemoveItem(t.Context(), userID, drop)

		// Assert
		require.NoError(t, err)
		assert.Len(t, cart.Items, 1)
		assert.True(t, decimal.RequireFromString("2.00").Equal(cart.TotalAmount))
		cartRepo.AssertNotCalled(t, "UpdateCart", mock.Anything, mock.Anything)
	})
}

func TestCartService_ClearCart(t *testing.T) {
	userID := uuid.New()

	t.Run("Clears items", func(t *testing.T) {
		// Arrange
		cartService, cartRepo, _ := setupCartService(t)
		existing := models.NewCart(userID)
		existing.AddItem(uuid.New(), 2, decimal.RequireFromString("7.25"))

		cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(existing, nil).Once()
		cartRepo.On("UpdateCart", mock.Anything, existing).Return(nil).Once()

		// Act
		cart, err := cartService.ClearCart(t.Context(), userID)

		// Assert
		require.NoError(t, err)
		assert.True(t, cart.IsEmpty())
		assert.True(t, cart.TotalAmount.IsZero())
	})

	t.Run("Idempotent on an empty cart", func(t *testing.T) {
		// Arrange
		cartService, cartRepo, _ := setupCartService(t)
		cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(models.NewCart(userID), nil).Once()

		// Act
		cart, err := cartService.ClearCart(t.Context(), userID)

		// Assert
		require.NoError(t, err)
		assert.True(t, cart.IsEmpty())
		cartRepo.AssertNotCalled(t, "UpdateCart", mock.Anything, mock.Anything)
	})

	t.Run("Missing cart", func(t *testing.T) {
		// Arrange
		cartService, cartRepo, _ := setupCartService(t)
		cartRepo.On("GetCartByUserID", mock.Anything, userID).Return(nil, sql.ErrNoRows).Once()

		// Act
		cart, err := cartService.ClearCart(t.Context(), userID)

		// Assert
		require.NoError(t, err)
		assert.True(t, cart.IsEmpty())
	})
}

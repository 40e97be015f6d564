package repository_test

import (
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aaravmahajanofficial/buyzaar/internal/models"
	repository "github.com/aaravmahajanofficial/buyzaar/internal/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderRowColumns = []string{
	"id", "user_id", "items", "shipping_address", "total_price", "payment_method", "payment_status",
	"order_status", "payment_intent_id", "created_at", "updated_at",
}

func sampleOrder(userID, productID uuid.UUID) *models.Order {
	return &models.Order{
		ID:     uuid.New(),
		UserID: userID,
		Items: []models.OrderLineItem{
			{ProductID: productID, Name: "Desk Lamp", Price: decimal.NewFromInt(10), Quantity: 2, Image: "lamp.png"},
		},
		ShippingAddress: models.ShippingAddress{
			FullName: "Asha Rao", Phone: "9999999999", HouseNo: "12", Area: "MG Road",
			City: "Pune", State: "MH", PostalCode: "411001", Country: "India",
		},
		TotalPrice:    decimal.NewFromInt(20),
		PaymentMethod: models.PaymentMethodCOD,
		PaymentStatus: models.PaymentStatusPending,
		OrderStatus:   models.OrderStatusProcessing,
	}
}

func TestOrderRepository_CreateOrder(t *testing.T) {
	ctx := t.Context()
	order := sampleOrder(uuid.New(), uuid.New())
	now := time.Now()

	itemsJSON, err := json.Marshal(order.Items)
	require.NoError(t, err)
	addressJSON, err := json.Marshal(order.ShippingAddress)
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewOrderRepo(db)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
			WithArgs(order.ID, order.UserID, itemsJSON, addressJSON, order.TotalPrice,
				order.PaymentMethod, order.PaymentStatus, order.OrderStatus, "").
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		// Act
		err := repo.CreateOrder(ctx, order)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, now, order.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database error", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewOrderRepo(db)
		dbErr := errors.New("insert failed")

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).WillReturnError(dbErr)

		// Act
		err := repo.CreateOrder(ctx, order)

		// Assert
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestOrderRepository_GetOrderByID(t *testing.T) {
	ctx := t.Context()
	userID := uuid.New()
	productID := uuid.New()
	order := sampleOrder(userID, productID)
	now := time.Now()

	itemsJSON, _ := json.Marshal(order.Items)
	addressJSON, _ := json.Marshal(order.ShippingAddress)

	t.Run("Success", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewOrderRepo(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = $1")).
			WithArgs(order.ID).
			WillReturnRows(sqlmock.NewRows(orderRowColumns).AddRow(
				order.ID.String(), userID.String(), itemsJSON, addressJSON, "20.00",
				"cod", "pending", "processing", "", now, now))

		// Act
		got, err := repo.GetOrderByID(ctx, order.ID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, userID, got.UserID)
		assert.True(t, got.ContainsProduct(productID))
		assert.Equal(t, "Pune", got.ShippingAddress.City)
		assert.Equal(t, models.OrderStatusProcessing, got.OrderStatus)
		assert.True(t, decimal.NewFromInt(20).Equal(got.TotalPrice))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewOrderRepo(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = $1")).WillReturnError(sql.ErrNoRows)

		// Act
		got, err := repo.GetOrderByID(ctx, order.ID)

		// Assert
		assert.Nil(t, got)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestOrderRepository_ListOrdersByUser(t *testing.T) {
	// Arrange
	ctx := t.Context()
	db, mock := newMockDB(t)
	repo := repository.NewOrderRepo(db)
	userID := uuid.New()
	order := sampleOrder(userID, uuid.New())
	now := time.Now()

	itemsJSON, _ := json.Marshal(order.Items)
	addressJSON, _ := json.Marshal(order.ShippingAddress)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM orders WHERE user_id = $1")).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT $2 OFFSET $3")).
		WithArgs(userID, 10, 0).
		WillReturnRows(sqlmock.NewRows(orderRowColumns).AddRow(
			order.ID.String(), userID.String(), itemsJSON, addressJSON, "20.00",
			"cod", "pending", "processing", "", now, now))

	// Act
	orders, total, err := repo.ListOrdersByUser(ctx, userID, 1, 10)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_UpdatePaymentStatus(t *testing.T) {
	ctx := t.Context()
	orderID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := repository.NewOrderRepo(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET payment_status = $1")).
			WithArgs(models.PaymentStatusPaid, orderID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdatePaymentStatus(ctx, orderID, models.PaymentStatusPaid)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Order missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := repository.NewOrderRepo(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET payment_status = $1")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdatePaymentStatus(ctx, orderID, models.PaymentStatusPaid)

		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestOrderRepository_HasPurchased(t *testing.T) {
	ctx := t.Context()
	userID := uuid.New()
	productID := uuid.New()

	containment, err := json.Marshal([]map[string]uuid.UUID{{"product_id": productID}})
	require.NoError(t, err)

	tests := []struct {
		name   string
		exists bool
	}{
		{name: "Purchased", exists: true},
		{name: "Never purchased", exists: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			db, mock := newMockDB(t)
			repo := repository.NewOrderRepo(db)

			mock.ExpectQuery(regexp.QuoteMeta("items @> $2::jsonb")).
				WithArgs(userID, containment).
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(tc.exists))

			// Act
			got, err := repo.HasPurchased(ctx, userID, productID)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tc.exists, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

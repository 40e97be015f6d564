package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/buyzaar/internal/api/handlers"
	appErrors "github.com/aaravmahajanofficial/buyzaar/internal/errors"
	"github.com/aaravmahajanofficial/buyzaar/internal/models"
	"github.com/aaravmahajanofficial/buyzaar/internal/services/mocks"
	"github.com/aaravmahajanofficial/buyzaar/internal/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validPlaceOrderRequest() models.PlaceOrderRequest {
	return models.PlaceOrderRequest{
		ShippingAddress: &models.ShippingAddress{
			FullName:   "Asha Rao",
			Phone:      "+91 98450 00000",
			HouseNo:    "12B",
			Area:       "Indiranagar",
			City:       "Bengaluru",
			State:      "KA",
			PostalCode: "560038",
			Country:    "IN",
		},
		PaymentMethod: models.PaymentMethodCOD,
	}
}

func TestOrderHandler_PlaceOrder(t *testing.T) {
	t.Run("Success - confirmation sent in the background", func(t *testing.T) {
		// Arrange
		orderService := mocks.NewOrderService(t)
		notificationService := mocks.NewNotificationService(t)
		handler := handlers.NewOrderHandler(orderService, notificationService)
		userID := uuid.New()
		req := validPlaceOrderRequest()

		order := &models.Order{
			ID:            uuid.New(),
			UserID:        userID,
			Items:         []models.OrderLineItem{{ProductID: uuid.New(), Name: "Desk Lamp", Price: decimal.RequireFromString("12.50"), Quantity: 2}},
			TotalPrice:    decimal.RequireFromString("25.00"),
			PaymentMethod: models.PaymentMethodCOD,
			PaymentStatus: models.PaymentStatusPending,
			OrderStatus:   models.OrderStatusProcessing,
		}

		orderService.On("PlaceOrder", mock.Anything, userID, req.ShippingAddress, models.PaymentMethodCOD).Return(order, nil).Once()

		sent := make(chan struct{})
		var hasDeadline bool

		notificationService.On("SendOrderConfirmation", mock.Anything, "test@example.com", order).
			Run(func(args mock.Arguments) {
				_, hasDeadline = args.Get(0).(context.Context).Deadline()
				close(sent)
			}).
			Return(&models.Notification{ID: uuid.New(), Status: models.NotificationStatusSent}, nil).Once()

		r := testutils.CreateTestRequestWithContext(http.MethodPost, "/orders", jsonBody(t, req), userID, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.PlaceOrder().ServeHTTP(rr, r)

		// Assert
		assert.Equal(t, http.StatusCreated, rr.Code)

		var got models.Order
		testutils.DecodeResponse(t, rr, &got)
		assert.Equal(t, order.ID, got.ID)
		assert.True(t, order.TotalPrice.Equal(got.TotalPrice))
		assert.Equal(t, models.OrderStatusProcessing, got.OrderStatus)

		select {
		case <-sent:
		case <-time.After(2 * time.Second):
			t.Fatal("order confirmation was not sent")
		}

		assert.True(t, hasDeadline, "confirmation send must be bounded by a timeout")
	})

	t.Run("Service errors map to status codes", func(t *testing.T) {
		tests := []struct {
			name           string
			err            error
			expectedStatus int
			expectedCode   string
		}{
			{name: "Empty cart", err: appErrors.EmptyCartError(), expectedStatus: http.StatusBadRequest, expectedCode: appErrors.ErrCodeEmptyCart},
			{name: "Insufficient stock", err: appErrors.InsufficientStockError("Desk Lamp"), expectedStatus: http.StatusConflict, expectedCode: appErrors.ErrCodeInsufficientStock},
			{name: "Product missing", err: appErrors.NotFoundError("Product not found"), expectedStatus: http.StatusNotFound, expectedCode: appErrors.ErrCodeNotFound},
			{name: "Database failure", err: appErrors.DatabaseError("Failed to place order"), expectedStatus: http.StatusInternalServerError, expectedCode: appErrors.ErrCodeDatabaseError},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				// Arrange
				orderService := mocks.NewOrderService(t)
				notificationService := mocks.NewNotificationService(t)
				handler := handlers.NewOrderHandler(orderService, notificationService)
				userID := uuid.New()

				orderService.On("PlaceOrder", mock.Anything, userID, mock.Anything, mock.Anything).Return(nil, tc.err).Once()

				r := testutils.CreateTestRequestWithContext(http.MethodPost, "/orders", jsonBody(t, validPlaceOrderRequest()), userID, nil)
				rr := httptest.NewRecorder()

				// Act
				handler.PlaceOrder().ServeHTTP(rr, r)

				// Assert
				assert.Equal(t, tc.expectedStatus, rr.Code)

				resp := testutils.DecodeResponse(t, rr, nil)
				require.NotNil(t, resp.Error)
				assert.Equal(t, tc.expectedCode, resp.Error.Code)
				notificationService.AssertNotCalled(t, "SendOrderConfirmation", mock.Anything, mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("Unknown payment method", func(t *testing.T) {
		orderService := mocks.NewOrderService(t)
		handler := handlers.NewOrderHandler(orderService, nil)
		req := validPlaceOrderRequest()
		req.PaymentMethod = "barter"

		r := testutils.CreateTestRequestWithContext(http.MethodPost, "/orders", jsonBody(t, req), uuid.New(), nil)
		rr := httptest.NewRecorder()

		handler.PlaceOrder().ServeHTTP(rr, r)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Missing address field", func(t *testing.T) {
		orderService := mocks.NewOrderService(t)
		handler := handlers.NewOrderHandler(orderService, nil)
		req := validPlaceOrderRequest()
		req.ShippingAddress.City = ""

		r := testutils.CreateTestRequestWithContext(http.MethodPost, "/orders", jsonBody(t, req), uuid.New(), nil)
		rr := httptest.NewRecorder()

		handler.PlaceOrder().ServeHTTP(rr, r)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		orderService := mocks.NewOrderService(t)
		handler := handlers.NewOrderHandler(orderService, nil)
		r := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/orders", jsonBody(t, validPlaceOrderRequest()), nil)
		rr := httptest.NewRecorder()

		handler.PlaceOrder().ServeHTTP(rr, r)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestOrderHandler_GetOrder(t *testing.T) {
	tests := []struct {
		name           string
		role           models.Role
		err            error
		expectedStatus int
	}{
		{name: "Owner", role: models.RoleUser, expectedStatus: http.StatusOK},
		{name: "Admin", role: models.RoleAdmin, expectedStatus: http.StatusOK},
		{name: "Someone else's order", role: models.RoleUser, err: appErrors.NotAuthorizedError("Not your order"), expectedStatus: http.StatusForbidden},
		{name: "Missing", role: models.RoleUser, err: appErrors.NotFoundError("Order not found"), expectedStatus: http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			orderService := mocks.NewOrderService(t)
			handler := handlers.NewOrderHandler(orderService, nil)
			userID := uuid.New()
			orderID := uuid.New()

			var order *models.Order
			if tc.err == nil {
				order = &models.Order{ID: orderID, UserID: userID}
			}

			orderService.On("GetOrderByID", mock.Anything, models.Actor{UserID: userID, Role: tc.role}, orderID).Return(order, tc.err).Once()

			r := testutils.CreateTestRequestWithRole(http.MethodGet, "/orders/"+orderID.String(), nil, userID, tc.role,
				map[string]string{"id": orderID.String()})
			rr := httptest.NewRecorder()

			// Act
			handler.GetOrder().ServeHTTP(rr, r)

			// Assert
			assert.Equal(t, tc.expectedStatus, rr.Code)
		})
	}
}

func TestOrderHandler_ListMyOrders(t *testing.T) {
	// Arrange
	orderService := mocks.NewOrderService(t)
	handler := handlers.NewOrderHandler(orderService, nil)
	userID := uuid.New()
	orders := []*models.Order{{ID: uuid.New(), UserID: userID}}

	orderService.On("ListMyOrders", mock.Anything, userID, 1, 10).Return(orders, 1, nil).Once()

	r := testutils.CreateTestRequestWithContext(http.MethodGet, "/orders/mine", nil, userID, nil)
	rr := httptest.NewRecorder()

	// Act
	handler.ListMyOrders().ServeHTTP(rr, r)

	// Assert
	assert.Equal(t, http.StatusOK, rr.Code)

	var got struct {
		Data  []models.Order `json:"data"`
		Total int            `json:"total"`
	}
	testutils.DecodeResponse(t, rr, &got)
	require.Len(t, got.Data, 1)
	assert.Equal(t, orders[0].ID, got.Data[0].ID)
	assert.Equal(t, 1, got.Total)
}

func TestOrderHandler_ListAllOrders(t *testing.T) {
	// Arrange
	orderService := mocks.NewOrderService(t)
	handler := handlers.NewOrderHandler(orderService, nil)
	orderService.On("ListAllOrders", mock.Anything, 3, 20).Return([]*models.Order{}, 41, nil).Once()

	r := testutils.CreateTestRequestWithRole(http.MethodGet, "/orders?page=3&pageSize=20", nil, uuid.New(), models.RoleAdmin, nil)
	rr := httptest.NewRecorder()

	// Act
	handler.ListAllOrders().ServeHTTP(rr, r)

	// Assert
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestOrderHandler_UpdateOrderStatus(t *testing.T) {
	shipped := models.OrderStatusShipped

	t.Run("Success", func(t *testing.T) {
		// Arrange
		orderService := mocks.NewOrderService(t)
		handler := handlers.NewOrderHandler(orderService, nil)
		orderID := uuid.New()

		orderService.On("UpdateOrderStatus", mock.Anything, orderID, mock.MatchedBy(func(req *models.UpdateOrderStatusRequest) bool {
			return req.OrderStatus != nil && *req.OrderStatus == shipped && req.PaymentStatus == nil
		})).Return(&models.Order{ID: orderID, OrderStatus: shipped, PaymentStatus: models.PaymentStatusPaid}, nil).Once()

		r := testutils.CreateTestRequestWithRole(http.MethodPatch, "/orders/"+orderID.String()+"/status",
			jsonBody(t, models.UpdateOrderStatusRequest{OrderStatus: &shipped}), uuid.New(), models.RoleAdmin,
			map[string]string{"id": orderID.String()})
		rr := httptest.NewRecorder()

		// Act
		handler.UpdateOrderStatus().ServeHTTP(rr, r)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var got models.Order
		testutils.DecodeResponse(t, rr, &got)
		assert.Equal(t, shipped, got.OrderStatus)
	})

	t.Run("Unknown status value", func(t *testing.T) {
		orderService := mocks.NewOrderService(t)
		handler := handlers.NewOrderHandler(orderService, nil)
		orderID := uuid.New()

		r := testutils.CreateTestRequestWithRole(http.MethodPatch, "/orders/"+orderID.String()+"/status",
			jsonBody(t, map[string]string{"order_status": "lost"}), uuid.New(), models.RoleAdmin,
			map[string]string{"id": orderID.String()})
		rr := httptest.NewRecorder()

		handler.UpdateOrderStatus().ServeHTTP(rr, r)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Illegal transition", func(t *testing.T) {
		orderService := mocks.NewOrderService(t)
		handler := handlers.NewOrderHandler(orderService, nil)
		orderID := uuid.New()

		orderService.On("UpdateOrderStatus", mock.Anything, orderID, mock.Anything).
			Return(nil, appErrors.BadRequestError("Cannot move order from delivered to shipped")).Once()

		r := testutils.CreateTestRequestWithRole(http.MethodPatch, "/orders/"+orderID.String()+"/status",
			jsonBody(t, models.UpdateOrderStatusRequest{OrderStatus: &shipped}), uuid.New(), models.RoleAdmin,
			map[string]string{"id": orderID.String()})
		rr := httptest.NewRecorder()

		handler.UpdateOrderStatus().ServeHTTP(rr, r)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aaravmahajanofficial/buyzaar/internal/models"
	service "github.com/aaravmahajanofficial/buyzaar/internal/services"
	"github.com/aaravmahajanofficial/buyzaar/internal/utils"
	"github.com/aaravmahajanofficial/buyzaar/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

// confirmationTimeout bounds the background confirmation email.
const confirmationTimeout = 30 * time.Second

type OrderHandler struct {
	orderService        service.OrderService
	notificationService service.NotificationService
	validator           *validator.Validate
}

// NewOrderHandler sends order confirmations through notificationService when
// it is not nil.
func NewOrderHandler(orderService service.OrderService, notificationService service.NotificationService) *OrderHandler {
	return &OrderHandler{
		orderService:        orderService,
		notificationService: notificationService,
		validator:           validator.New(),
	}
}

// PlaceOrder godoc
//
//	@Summary		Place an order
//	@Description	Converts the caller's cart into an order. Stock is decremented and the cart emptied atomically.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			order	body		models.PlaceOrderRequest	true	"Shipping address and payment method"
//	@Success		201		{object}	response.APIResponse{data=models.Order}
//	@Failure		400		{object}	response.APIResponse	"Validation error or empty cart"
//	@Failure		401		{object}	response.APIResponse	"Authentication required"
//	@Failure		404		{object}	response.APIResponse	"Product no longer exists"
//	@Failure		409		{object}	response.APIResponse	"Insufficient stock"
//	@Failure		500		{object}	response.APIResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/orders [post]
func (h *OrderHandler) PlaceOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, logger, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var req models.PlaceOrderRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		order, err := h.orderService.PlaceOrder(r.Context(), claims.UserID, req.ShippingAddress, req.PaymentMethod)
		if err != nil {
			logger.Warn("Order placement failed", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		logger.Info("Order placed",
			slog.String("orderId", order.ID.String()),
			slog.String("total", order.TotalPrice.StringFixed(2)),
		)

		if h.notificationService != nil && claims.Email != "" {
			go h.sendConfirmation(context.WithoutCancel(r.Context()), logger, claims.Email, order)
		}

		response.Success(w, http.StatusCreated, order)
	}
}

func (h *OrderHandler) sendConfirmation(ctx context.Context, logger *slog.Logger, to string, order *models.Order) {
	ctx, cancel := context.WithTimeout(ctx, confirmationTimeout)
	defer cancel()

	notification, err := h.notificationService.SendOrderConfirmation(ctx, to, order)
	if err != nil {
		logger.Error("Order confirmation not sent", slog.String("orderId", order.ID.String()), slog.Any("error", err))
		return
	}

	logger.Info("Order confirmation sent", slog.String("orderId", order.ID.String()), slog.String("notificationId", notification.ID.String()))
}

// ListMyOrders godoc
//
//	@Summary		List the caller's orders
//	@Tags			Orders
//	@Produce		json
//	@Param			page		query		int	false	"Page number"	minimum(1)
//	@Param			pageSize	query		int	false	"Items per page"	minimum(1)	maximum(100)
//	@Success		200			{object}	response.APIResponse{data=models.PaginatedResponse{data=[]models.Order}}
//	@Failure		401			{object}	response.APIResponse	"Authentication required"
//	@Security		BearerAuth
//	@Router			/orders/mine [get]
func (h *OrderHandler) ListMyOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, logger, ok := requireClaims(w, r)
		if !ok {
			return
		}

		page, pageSize := utils.ParsePagination(r)

		orders, total, err := h.orderService.ListMyOrders(r.Context(), claims.UserID, page, pageSize)
		if err != nil {
			logger.Error("Failed to list orders", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, models.PaginatedResponse{Data: orders, Total: total, Page: page, PageSize: pageSize})
	}
}

// GetOrder godoc
//
//	@Summary		Get an order
//	@Description	Owners see their own orders. Administrators see any order.
//	@Tags			Orders
//	@Produce		json
//	@Param			id	path		string	true	"Order ID"	Format(uuid)
//	@Success		200	{object}	response.APIResponse{data=models.Order}
//	@Failure		400	{object}	response.APIResponse	"Invalid order ID"
//	@Failure		403	{object}	response.APIResponse	"Not your order"
//	@Failure		404	{object}	response.APIResponse	"Order not found"
//	@Security		BearerAuth
//	@Router			/orders/{id} [get]
func (h *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, logger, ok := requireClaims(w, r)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		order, err := h.orderService.GetOrderByID(r.Context(), claims.Actor(), id)
		if err != nil {
			logger.Warn("Failed to get order", slog.String("orderId", id.String()), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, order)
	}
}

// ListAllOrders godoc
//
//	@Summary		List every order
//	@Tags			Orders
//	@Produce		json
//	@Param			page		query		int	false	"Page number"	minimum(1)
//	@Param			pageSize	query		int	false	"Items per page"	minimum(1)	maximum(100)
//	@Success		200			{object}	response.APIResponse{data=models.PaginatedResponse{data=[]models.Order}}
//	@Failure		403			{object}	response.APIResponse	"Admin access required"
//	@Security		BearerAuth
//	@Router			/orders [get]
func (h *OrderHandler) ListAllOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, logger, ok := requireClaims(w, r)
		if !ok {
			return
		}

		page, pageSize := utils.ParsePagination(r)

		orders, total, err := h.orderService.ListAllOrders(r.Context(), page, pageSize)
		if err != nil {
			logger.Error("Failed to list all orders", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, models.PaginatedResponse{Data: orders, Total: total, Page: page, PageSize: pageSize})
	}
}

// UpdateOrderStatus godoc
//
//	@Summary		Update order or payment status
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Order ID"	Format(uuid)
//	@Param			status	body		models.UpdateOrderStatusRequest	true	"New statuses"
//	@Success		200		{object}	response.APIResponse{data=models.Order}
//	@Failure		400		{object}	response.APIResponse	"Invalid transition"
//	@Failure		403		{object}	response.APIResponse	"Admin access required"
//	@Failure		404		{object}	response.APIResponse	"Order not found"
//	@Security		BearerAuth
//	@Router			/orders/{id}/status [patch]
func (h *OrderHandler) UpdateOrderStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, logger, ok := requireClaims(w, r)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.UpdateOrderStatusRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		order, err := h.orderService.UpdateOrderStatus(r.Context(), id, &req)
		if err != nil {
			logger.Warn("Failed to update order status", slog.String("orderId", id.String()), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		logger.Info("Order status updated",
			slog.String("orderId", id.String()),
			slog.String("orderStatus", string(order.OrderStatus)),
			slog.String("paymentStatus", string(order.PaymentStatus)),
		)
		response.Success(w, http.StatusOK, order)
	}
}

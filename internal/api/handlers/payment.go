package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/buyzaar/internal/api/middleware"
	"github.com/aaravmahajanofficial/buyzaar/internal/errors"
	"github.com/aaravmahajanofficial/buyzaar/internal/models"
	service "github.com/aaravmahajanofficial/buyzaar/internal/services"
	"github.com/aaravmahajanofficial/buyzaar/internal/utils"
	"github.com/aaravmahajanofficial/buyzaar/internal/utils/response"
)

// maxWebhookBodyBytes matches the limit Stripe documents for event payloads.
const maxWebhookBodyBytes = 65536

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePayment godoc
//
//	@Summary		Start card payment for an order
//	@Description	Creates a Stripe payment intent and returns its client secret.
//	@Tags			Payments
//	@Produce		json
//	@Param			id	path		string	true	"Order ID"	Format(uuid)
//	@Success		201	{object}	response.APIResponse{data=models.PaymentResponse}
//	@Failure		400	{object}	response.APIResponse	"Order not payable"
//	@Failure		403	{object}	response.APIResponse	"Not your order"
//	@Failure		404	{object}	response.APIResponse	"Order not found"
//	@Failure		500	{object}	response.APIResponse	"Payment provider error"
//	@Security		BearerAuth
//	@Router			/orders/{id}/payments [post]
func (h *PaymentHandler) CreatePayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, logger, ok := requireClaims(w, r)
		if !ok {
			return
		}

		orderID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		resp, err := h.paymentService.CreatePayment(r.Context(), claims.Actor(), orderID)
		if err != nil {
			logger.Warn("Failed to create payment", slog.String("orderId", orderID.String()), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		logger.Info("Payment intent created", slog.String("orderId", orderID.String()), slog.String("paymentId", resp.Payment.ID.String()))
		response.Success(w, http.StatusCreated, resp)
	}
}

// GetPayment godoc
//
//	@Summary		Get a payment
//	@Tags			Payments
//	@Produce		json
//	@Param			id	path		string	true	"Payment ID"	Format(uuid)
//	@Success		200	{object}	response.APIResponse{data=models.Payment}
//	@Failure		403	{object}	response.APIResponse	"Not your payment"
//	@Failure		404	{object}	response.APIResponse	"Payment not found"
//	@Security		BearerAuth
//	@Router			/payments/{id} [get]
func (h *PaymentHandler) GetPayment() http.HandlerFunc {
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

		payment, err := h.paymentService.GetPaymentByID(r.Context(), claims.Actor(), id)
		if err != nil {
			logger.Warn("Failed to get payment", slog.String("paymentId", id.String()), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, payment)
	}
}

// ListPayments godoc
//
//	@Summary		List the caller's payments
//	@Tags			Payments
//	@Produce		json
//	@Param			page		query		int	false	"Page number"	minimum(1)
//	@Param			pageSize	query		int	false	"Items per page"	minimum(1)	maximum(100)
//	@Success		200			{object}	response.APIResponse{data=models.PaginatedResponse{data=[]models.Payment}}
//	@Security		BearerAuth
//	@Router			/payments [get]
func (h *PaymentHandler) ListPayments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, logger, ok := requireClaims(w, r)
		if !ok {
			return
		}

		page, pageSize := utils.ParsePagination(r)

		payments, total, err := h.paymentService.ListPaymentsByUser(r.Context(), claims.UserID, page, pageSize)
		if err != nil {
			logger.Error("Failed to list payments", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, models.PaginatedResponse{Data: payments, Total: total, Page: page, PageSize: pageSize})
	}
}

// HandleStripeWebhook godoc
//
//	@Summary		Stripe webhook
//	@Description	Verifies the Stripe signature and applies payment status changes to the order.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			Stripe-Signature	header		string	true	"Stripe signature"
//	@Success		200					{object}	response.APIResponse
//	@Failure		400					{object}	response.APIResponse	"Bad payload or signature"
//	@Router			/payments/webhook [post]
func (h *PaymentHandler) HandleStripeWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
		if err != nil {
			logger.Error("Failed to read webhook body", slog.Any("error", err))
			response.Error(w, errors.BadRequestError("Failed to read request body").WithError(err))

			return
		}

		signature := r.Header.Get("Stripe-Signature")
		if signature == "" {
			logger.Warn("Webhook without Stripe-Signature header")
			response.Error(w, errors.BadRequestError("Missing Stripe-Signature header"))

			return
		}

		event, err := h.paymentService.ProcessWebhook(r.Context(), payload, signature)
		if err != nil {
			logger.Error("Webhook processing failed", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		logger.Info("Webhook processed", slog.String("eventId", event.ID), slog.String("eventType", string(event.Type)))
		response.Success(w, http.StatusOK, map[string]string{"received": string(event.Type)})
	}
}

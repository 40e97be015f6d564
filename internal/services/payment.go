package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/aaravmahajanofficial/buyzaar/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/buyzaar/internal/errors"
	"github.com/aaravmahajanofficial/buyzaar/internal/models"
	repository "github.com/aaravmahajanofficial/buyzaar/internal/repositories"
	"github.com/aaravmahajanofficial/buyzaar/pkg/stripe"
	"github.com/google/uuid"
)

type PaymentService interface {
	// CreatePayment opens a Stripe payment intent for a pending card order.
	CreatePayment(ctx context.Context, actor models.Actor, orderID uuid.UUID) (*models.PaymentResponse, error)
	GetPaymentByID(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Payment, error)
	ListPaymentsByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.Payment, int, error)
	ProcessWebhook(ctx context.Context, payload []byte, signature string) (stripe.Event, error)
}

type paymentService struct {
	repo         repository.PaymentRepository
	orderRepo    repository.OrderRepository
	stripeClient stripe.Client
	currency     string
}

func NewPaymentService(repo repository.PaymentRepository, orderRepo repository.OrderRepository, stripeClient stripe.Client, currency string) PaymentService {
	return &paymentService{repo: repo, orderRepo: orderRepo, stripeClient: stripeClient, currency: currency}
}

func (s *paymentService) CreatePayment(ctx context.Context, actor models.Actor, orderID uuid.UUID) (*models.PaymentResponse, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Order not found")
		}

		return nil, appErrors.DatabaseError("Failed to fetch order").WithError(err)
	}

	if order.UserID != actor.UserID {
		return nil, appErrors.NotAuthorizedError("You can only pay for your own orders")
	}

	if order.PaymentMethod != models.PaymentMethodCard {
		return nil, appErrors.BadRequestError("Order is not payable by card")
	}

	if order.PaymentStatus != models.PaymentStatusPending || order.OrderStatus == models.OrderStatusCancelled {
		return nil, appErrors.BadRequestError("Order is not awaiting payment")
	}

	// Stripe amounts are integers in the currency's smallest unit.
	amount := order.TotalPrice.Shift(2).Round(0).IntPart()

	intent, err := s.stripeClient.CreatePaymentIntent(ctx, amount, s.currency, order.ID.String())
	if err != nil {
		return nil, appErrors.ThirdPartyError("Failed to create payment intent").WithError(err)
	}

	payment := &models.Payment{
		ID:       uuid.New(),
		OrderID:  order.ID,
		UserID:   order.UserID,
		Amount:   order.TotalPrice,
		Currency: s.currency,
		Status:   models.PaymentStatusPending,
		StripeID: intent.ID,
	}

	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return nil, appErrors.DatabaseError("Failed to record payment").WithError(err)
	}

	order.PaymentIntentID = intent.ID

	if err := s.orderRepo.UpdateOrderState(ctx, order); err != nil {
		return nil, appErrors.DatabaseError("Failed to attach payment to order").WithError(err)
	}

	middleware.LoggerFromContext(ctx).Info("Payment intent created",
		slog.String("orderId", order.ID.String()),
		slog.String("paymentId", payment.ID.String()),
		slog.Int64("amount", amount))

	return &models.PaymentResponse{Payment: payment, ClientSecret: intent.ClientSecret}, nil
}

func (s *paymentService) GetPaymentByID(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Payment, error) {
	payment, err := s.repo.GetPaymentByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Payment not found")
		}

		return nil, appErrors.DatabaseError("Failed to fetch payment").WithError(err)
	}

	if !actor.CanAccess(payment.UserID) {
		return nil, appErrors.NotAuthorizedError("You are not allowed to view this payment")
	}

	return payment, nil
}

func (s *paymentService) ListPaymentsByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.Payment, int, error) {
	payments, total, err := s.repo.ListPaymentsByUser(ctx, userID, page, size)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to fetch payments").WithError(err)
	}

	return payments, total, nil
}

// ProcessWebhook applies a verified Stripe event to the payment row and its
// order. Unhandled event types are acknowledged without changes.
func (s *paymentService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (stripe.Event, error) {
	event, err := s.stripeClient.VerifyWebhookSignature(payload, signature)
	if err != nil {
		return stripe.Event{}, appErrors.BadRequestError("Webhook signature verification failed").WithError(err)
	}

	var (
		status  models.PaymentStatus
		idField string
	)

	switch event.Type {
	case stripe.EventPaymentIntentSucceeded:
		status, idField = models.PaymentStatusPaid, "id"
	case stripe.EventPaymentIntentFailed:
		status, idField = models.PaymentStatusFailed, "id"
	case stripe.EventChargeRefunded:
		status, idField = models.PaymentStatusRefunded, "payment_intent"
	default:
		return event, nil
	}

	if event.Data == nil {
		return event, appErrors.ThirdPartyError("Missing event data in webhook")
	}

	intentID, ok := event.Data.Object[idField].(string)
	if !ok || intentID == "" {
		return event, appErrors.ThirdPartyError("Missing payment intent ID in webhook")
	}

	orderID, err := s.repo.UpdateStatusByStripeID(ctx, intentID, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return event, appErrors.NotFoundError("Payment not found")
		}

		return event, appErrors.DatabaseError("Failed to update payment status").WithError(err)
	}

	if err := s.orderRepo.UpdatePaymentStatus(ctx, orderID, status); err != nil {
		return event, appErrors.DatabaseError("Failed to update order payment status").WithError(err)
	}

	middleware.LoggerFromContext(ctx).Info("Payment webhook applied",
		slog.String("eventType", string(event.Type)),
		slog.String("orderId", orderID.String()),
		slog.String("paymentStatus", string(status)))

	return event, nil
}

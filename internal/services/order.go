package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/aaravmahajanofficial/buyzaar/internal/api/middleware"
	"github.com/aaravmahajanofficial/buyzaar/internal/cache"
	appErrors "github.com/aaravmahajanofficial/buyzaar/internal/errors"
	"github.com/aaravmahajanofficial/buyzaar/internal/metrics"
	"github.com/aaravmahajanofficial/buyzaar/internal/models"
	repository "github.com/aaravmahajanofficial/buyzaar/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/aaravmahajanofficial/buyzaar/internal/services"

type OrderService interface {
	// PlaceOrder converts the user's cart into an order. Stock decrements, the
	// order insert and the cart reset commit together or not at all.
	PlaceOrder(ctx context.Context, userID uuid.UUID, address *models.ShippingAddress, method models.PaymentMethod) (*models.Order, error)
	ListMyOrders(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.Order, int, error)
	GetOrderByID(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Order, error)
	ListAllOrders(ctx context.Context, page, size int) ([]*models.Order, int, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, req *models.UpdateOrderStatusRequest) (*models.Order, error)
}

type orderService struct {
	uow       repository.UnitOfWork
	orderRepo repository.OrderRepository
	cache     cache.Cache
	validator *validator.Validate
}

// NewOrderService accepts a nil cache; product entries are then not invalidated.
func NewOrderService(uow repository.UnitOfWork, orderRepo repository.OrderRepository, cache cache.Cache) OrderService {
	return &orderService{uow: uow, orderRepo: orderRepo, cache: cache, validator: validator.New()}
}

func (s *orderService) PlaceOrder(ctx context.Context, userID uuid.UUID, address *models.ShippingAddress, method models.PaymentMethod) (*models.Order, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "OrderService.PlaceOrder")
	defer span.End()

	logger := middleware.LoggerFromContext(ctx)

	if err := s.validateCheckout(address, method); err != nil {
		return nil, err
	}

	var order *models.Order

	err := s.uow.WithinTx(ctx, func(repos repository.TxRepositories) error {
		cart, err := repos.Carts.LockCartByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.EmptyCartError()
			}

			return appErrors.DatabaseError("Failed to fetch cart").WithError(err)
		}

		if cart.IsEmpty() {
			return appErrors.EmptyCartError()
		}

		products, err := reserveStock(ctx, repos.Products, cart)
		if err != nil {
			return err
		}

		items := make([]models.OrderLineItem, 0, len(cart.Items))
		total := decimal.Zero

		for i, item := range cart.Items {
			product := products[i]

			if err := repos.Products.DecrementStock(ctx, product.ID, item.Quantity); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					return appErrors.InsufficientStockError(product.Name)
				}

				return appErrors.DatabaseError("Failed to update stock").WithError(err)
			}

			total = total.Add(item.Subtotal())
			items = append(items, models.OrderLineItem{
				ProductID: product.ID,
				Name:      product.Name,
				Price:     item.Price,
				Quantity:  item.Quantity,
				Image:     product.PrimaryImage(),
			})
		}

		order = &models.Order{
			ID:              uuid.New(),
			UserID:          userID,
			Items:           items,
			ShippingAddress: *address,
			TotalPrice:      total,
			PaymentMethod:   method,
			PaymentStatus:   models.PaymentStatusPending,
			OrderStatus:     models.OrderStatusProcessing,
		}

		if err := repos.Orders.CreateOrder(ctx, order); err != nil {
			return appErrors.DatabaseError("Failed to create order").WithError(err)
		}

		cart.Clear()

		if err := repos.Carts.UpdateCart(ctx, cart); err != nil {
			return appErrors.DatabaseError("Failed to clear cart").WithError(err)
		}

		return nil
	})
	if err != nil {
		reason := appErrors.ErrCodeInternal
		if appErr, ok := appErrors.IsAppError(err); ok {
			reason = appErr.Code
		} else {
			err = appErrors.DatabaseError("Failed to place order").WithError(err)
		}

		metrics.OrderPlacementFailed(reason)
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		logger.Warn("Order placement failed", slog.String("reason", reason), slog.Any("error", err))

		return nil, err
	}

	s.invalidateProducts(ctx, order)

	metrics.OrderPlaced(string(order.PaymentMethod))
	metrics.StockSold(order.UnitCount())
	span.SetAttributes(
		attribute.String("order.id", order.ID.String()),
		attribute.Int("order.items", len(order.Items)),
	)
	logger.Info("Order placed", slog.String("orderId", order.ID.String()), slog.String("total", order.TotalPrice.String()))

	return order, nil
}

func (s *orderService) validateCheckout(address *models.ShippingAddress, method models.PaymentMethod) error {
	if address == nil {
		return appErrors.ValidationError("Shipping address is required")
	}

	if err := s.validator.Struct(address); err != nil {
		return appErrors.ValidationError("Invalid shipping address").WithError(err)
	}

	if !method.Valid() {
		return appErrors.ValidationError("Unsupported payment method: " + string(method))
	}

	return nil
}

// reserveStock loads every product in cart order and checks it can cover its
// line before anything is written.
func reserveStock(ctx context.Context, products repository.ProductRepository, cart *models.Cart) ([]*models.Product, error) {
	reserved := make([]*models.Product, 0, len(cart.Items))

	for _, item := range cart.Items {
		product, err := products.GetProductByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.NotFoundError("Product not found: " + item.ProductID.String())
			}

			return nil, appErrors.DatabaseError("Failed to fetch product").WithError(err)
		}

		if product.Stock < item.Quantity {
			return nil, appErrors.InsufficientStockError(product.Name)
		}

		reserved = append(reserved, product)
	}

	return reserved, nil
}

func (s *orderService) invalidateProducts(ctx context.Context, order *models.Order) {
	if s.cache == nil {
		return
	}

	ids := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}

	if err := s.cache.Delete(ctx, cache.ProductKeys(ids...)...); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to invalidate product cache", slog.Any("error", err))
	}
}

func (s *orderService) ListMyOrders(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.Order, int, error) {
	orders, total, err := s.orderRepo.ListOrdersByUser(ctx, userID, page, size)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return orders, total, nil
}

func (s *orderService) GetOrderByID(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Order not found")
		}

		return nil, appErrors.DatabaseError("Failed to fetch order").WithError(err)
	}

	if !actor.CanAccess(order.UserID) {
		return nil, appErrors.NotAuthorizedError("You are not allowed to view this order")
	}

	return order, nil
}

func (s *orderService) ListAllOrders(ctx context.Context, page, size int) ([]*models.Order, int, error) {
	orders, total, err := s.orderRepo.ListAllOrders(ctx, page, size)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return orders, total, nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, req *models.UpdateOrderStatusRequest) (*models.Order, error) {
	if req.OrderStatus == nil && req.PaymentStatus == nil {
		return nil, appErrors.ValidationError("Nothing to update")
	}

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Order not found")
		}

		return nil, appErrors.DatabaseError("Failed to fetch order").WithError(err)
	}

	changed := false

	if next := req.OrderStatus; next != nil && *next != order.OrderStatus {
		if !next.Valid() || !order.OrderStatus.CanTransitionTo(*next) {
			return nil, appErrors.ValidationError("Cannot move order from " + string(order.OrderStatus) + " to " + string(*next))
		}

		order.OrderStatus = *next
		changed = true
	}

	if next := req.PaymentStatus; next != nil && *next != order.PaymentStatus {
		if !next.Valid() {
			return nil, appErrors.ValidationError("Unknown payment status: " + string(*next))
		}

		order.PaymentStatus = *next
		changed = true
	}

	if !changed {
		return order, nil
	}

	if err := s.orderRepo.UpdateOrderState(ctx, order); err != nil {
		return nil, appErrors.DatabaseError("Failed to update order").WithError(err)
	}

	middleware.LoggerFromContext(ctx).Info("Order status updated",
		slog.String("orderId", order.ID.String()),
		slog.String("orderStatus", string(order.OrderStatus)),
		slog.String("paymentStatus", string(order.PaymentStatus)))

	return order, nil
}

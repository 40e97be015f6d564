package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShippingAddress is copied into the order document; it is never a reference.
type ShippingAddress struct {
	FullName   string `json:"full_name" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	HouseNo    string `json:"house_no" validate:"required"`
	Area       string `json:"area" validate:"required"`
	Landmark   string `json:"landmark,omitempty"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// OrderLineItem is detached from the catalog: later product edits never reach it.
type OrderLineItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
}

func (i OrderLineItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	Items           []OrderLineItem `json:"items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	OrderStatus     OrderStatus     `json:"order_status"`
	PaymentIntentID string          `json:"payment_intent_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ContainsProduct reports whether any line item references productID.
func (o *Order) ContainsProduct(productID uuid.UUID) bool {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return true
		}
	}

	return false
}

// UnitCount is the total quantity across all line items.
func (o *Order) UnitCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}

	return n
}

type PlaceOrderRequest struct {
	ShippingAddress *ShippingAddress `json:"shipping_address" validate:"required"`
	PaymentMethod   PaymentMethod    `json:"payment_method" validate:"required,oneof=cod card upi netbanking"`
}

type UpdateOrderStatusRequest struct {
	OrderStatus   *OrderStatus   `json:"order_status,omitempty" validate:"omitempty,oneof=processing shipped delivered cancelled"`
	PaymentStatus *PaymentStatus `json:"payment_status,omitempty" validate:"omitempty,oneof=pending paid failed refunded"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLineItem references a live product and carries the unit price captured
// when the product was first added.
type CartLineItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Subtotal is price × quantity.
func (i CartLineItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Cart struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Items       []CartLineItem  `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewCart returns an empty cart owned by userID. It is not persisted.
func NewCart(userID uuid.UUID) *Cart {
	return &Cart{
		UserID:      userID,
		Items:       []CartLineItem{},
		TotalAmount: decimal.Zero,
	}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Recalculate derives TotalAmount from the line items. Every mutator calls it.
func (c *Cart) Recalculate() {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}

	c.TotalAmount = total
}

func (c *Cart) indexOf(productID uuid.UUID) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}

	return -1
}

// QuantityOf returns the quantity already held for productID (0 if absent).
func (c *Cart) QuantityOf(productID uuid.UUID) int {
	if i := c.indexOf(productID); i >= 0 {
		return c.Items[i].Quantity
	}

	return 0
}

// AddItem merges quantity into an existing line, keeping its original price
// snapshot, or appends a new line priced at price.
func (c *Cart) AddItem(productID uuid.UUID, quantity int, price decimal.Decimal) {
	if i := c.indexOf(productID); i >= 0 {
		c.Items[i].Quantity += quantity
	} else {
		c.Items = append(c.Items, CartLineItem{ProductID: productID, Quantity: quantity, Price: price})
	}

	c.Recalculate()
}

// SetQuantity replaces the quantity of an existing line. It reports false when
// the product is not in the cart.
func (c *Cart) SetQuantity(productID uuid.UUID, quantity int) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}

	c.Items[i].Quantity = quantity
	c.Recalculate()

	return true
}

// RemoveItem drops the line for productID, reporting whether it was present.
func (c *Cart) RemoveItem(productID uuid.UUID) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}

	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.Recalculate()

	return true
}

func (c *Cart) Clear() {
	c.Items = []CartLineItem{}
	c.Recalculate()
}

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type UpdateCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

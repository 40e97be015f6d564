package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID               uuid.UUID           `json:"id"`
	SubcategoryID    uuid.UUID           `json:"subcategory_id"`
	Name             string              `json:"name"`
	ShortDescription string              `json:"short_description"`
	LongDescription  string              `json:"long_description,omitempty"`
	Price            decimal.Decimal     `json:"price"`
	DiscountPrice    decimal.NullDecimal `json:"discount_price"`
	Stock            int                 `json:"stock"`
	TotalSold        int                 `json:"total_sold"`
	AverageRating    float64             `json:"average_rating"`
	TotalRatings     int                 `json:"total_ratings"`
	Images           []string            `json:"images"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// PrimaryImage returns the first image reference, or "" when the product has none.
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}

	return p.Images[0]
}

// EffectivePrice is the price a cart snapshots: the discount price when one is
// set and lower than the list price, otherwise the list price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice.Valid && p.DiscountPrice.Decimal.LessThan(p.Price) {
		return p.DiscountPrice.Decimal
	}

	return p.Price
}

type CreateProductRequest struct {
	SubcategoryID    uuid.UUID        `json:"subcategory_id" validate:"required"`
	Name             string           `json:"name" validate:"required,min=3,max=200"`
	ShortDescription string           `json:"short_description" validate:"required,max=500"`
	LongDescription  string           `json:"long_description,omitempty"`
	Price            decimal.Decimal  `json:"price"`
	DiscountPrice    *decimal.Decimal `json:"discount_price,omitempty"`
	Stock            int              `json:"stock" validate:"gte=0"`
	Images           []string         `json:"images,omitempty" validate:"omitempty,dive,required"`
}

type UpdateProductRequest struct {
	SubcategoryID    *uuid.UUID       `json:"subcategory_id,omitempty"`
	Name             *string          `json:"name,omitempty" validate:"omitempty,min=3,max=200"`
	ShortDescription *string          `json:"short_description,omitempty" validate:"omitempty,max=500"`
	LongDescription  *string          `json:"long_description,omitempty"`
	Price            *decimal.Decimal `json:"price,omitempty"`
	DiscountPrice    *decimal.Decimal `json:"discount_price,omitempty"`
	Stock            *int             `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Images           []string         `json:"images,omitempty" validate:"omitempty,dive,required"`
}

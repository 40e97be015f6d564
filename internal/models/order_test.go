package models_test

import (
	"testing"

	"github.com/aaravmahajanofficial/buyzaar/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOrderContainsProduct(t *testing.T) {
	bought := uuid.New()
	order := &models.Order{Items: []models.OrderLineItem{{ProductID: bought, Quantity: 1}}}

	assert.True(t, order.ContainsProduct(bought))
	assert.False(t, order.ContainsProduct(uuid.New()))
	assert.False(t, (&models.Order{}).ContainsProduct(bought))
}

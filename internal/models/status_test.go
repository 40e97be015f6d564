package models_test

import (
	"testing"

	"github.com/aaravmahajanofficial/buyzaar/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to models.OrderStatus
		allowed  bool
	}{
		{models.OrderStatusProcessing, models.OrderStatusShipped, true},
		{models.OrderStatusProcessing, models.OrderStatusCancelled, true},
		{models.OrderStatusShipped, models.OrderStatusDelivered, true},
		{models.OrderStatusShipped, models.OrderStatusCancelled, true},
		{models.OrderStatusProcessing, models.OrderStatusDelivered, false},
		{models.OrderStatusDelivered, models.OrderStatusProcessing, false},
		{models.OrderStatusCancelled, models.OrderStatusShipped, false},
	}

	for _, tc := range tests {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestPaymentMethodValid(t *testing.T) {
	for _, m := range []models.PaymentMethod{models.PaymentMethodCOD, models.PaymentMethodCard, models.PaymentMethodUPI, models.PaymentMethodNetBanking} {
		assert.True(t, m.Valid(), m)
	}

	assert.False(t, models.PaymentMethod("bitcoin").Valid())
	assert.False(t, models.PaymentMethod("").Valid())
}

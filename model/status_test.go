package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	allowed := []struct {
		from, to OrderStatus
	}{
		{OrderStatusPending, OrderStatusApproved},
		{OrderStatusPending, OrderStatusShipped}, // direct-payment shortcut
		{OrderStatusPending, OrderStatusCancelled},
		{OrderStatusApproved, OrderStatusShipped},
		{OrderStatusApproved, OrderStatusCancelled},
		{OrderStatusShipped, OrderStatusDelivered},
		{OrderStatusDelivered, OrderStatusArchived},
		{OrderStatusCancelled, OrderStatusArchived},
	}
	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransition(tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct {
		from, to OrderStatus
	}{
		{OrderStatusPending, OrderStatusDelivered},
		{OrderStatusShipped, OrderStatusPending},
		{OrderStatusShipped, OrderStatusCancelled},
		{OrderStatusDelivered, OrderStatusShipped},
		{OrderStatusCancelled, OrderStatusPending},
		{OrderStatusArchived, OrderStatusPending},
		{OrderStatusArchived, OrderStatusArchived},
	}
	for _, tc := range denied {
		assert.False(t, tc.from.CanTransition(tc.to), "%s -> %s should be rejected", tc.from, tc.to)
	}
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{
		OrderStatusPending, OrderStatusApproved, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusArchived,
	} {
		assert.True(t, s.Valid())
	}
	assert.False(t, OrderStatus("refunded").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestOrderStatusDeletable(t *testing.T) {
	assert.True(t, OrderStatusCancelled.Deletable())
	assert.True(t, OrderStatusArchived.Deletable())

	for _, s := range []OrderStatus{
		OrderStatusPending, OrderStatusApproved, OrderStatusShipped, OrderStatusDelivered,
	} {
		assert.False(t, s.Deletable(), "%s orders must not be deletable", s)
	}
}

func TestPaymentMethodValid(t *testing.T) {
	assert.True(t, PaymentMethodCard.Valid())
	assert.True(t, PaymentMethodPaypal.Valid())
	assert.False(t, PaymentMethod("cash").Valid())
}

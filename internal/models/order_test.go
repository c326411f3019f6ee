// internal/models/order_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderCanTransitionTo(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusConfirmed, OrderStatusShipped, true},
		{OrderStatusConfirmed, OrderStatusCancelled, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusRefunded, true},
		{OrderStatusDelivered, OrderStatusRefunded, true},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusRefunded, OrderStatusConfirmed, false},
	}

	for _, tc := range cases {
		order := &Order{Status: tc.from}
		assert.Equal(t, tc.allowed, order.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestVariantEffectivePrice(t *testing.T) {
	discount := 200000
	v := &ProductVariant{RegularPrice: 250000}
	assert.Equal(t, 250000, v.EffectivePrice())

	v.DiscountPrice = &discount
	assert.Equal(t, 200000, v.EffectivePrice())
}

func TestVariantDisplayImage(t *testing.T) {
	v := &ProductVariant{
		Product: Product{Images: []ProductImage{{ImageURL: "https://assets.test/p.jpg"}}},
	}
	assert.Equal(t, "https://assets.test/p.jpg", v.DisplayImage())

	v.ImageURL = "https://assets.test/v.jpg"
	assert.Equal(t, "https://assets.test/v.jpg", v.DisplayImage())

	bare := &ProductVariant{}
	assert.Empty(t, bare.DisplayImage())
}

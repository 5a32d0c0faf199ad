package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderTotals(t *testing.T) {
	order := Order{
		Discount: 10,
		Items: []OrderItem{
			{ProductID: "a", Price: decimal.RequireFromString("19.99"), Quantity: 2},
			{ProductID: "b", Price: decimal.RequireFromString("5.01"), Quantity: 1},
		},
	}

	assert.True(t, order.TotalCostBeforeDiscount().Equal(decimal.RequireFromString("44.99")))
	assert.True(t, order.DiscountAmount().Equal(decimal.RequireFromString("4.499")))
	assert.True(t, order.TotalCost().Equal(decimal.RequireFromString("40.491")))
}

func TestOrderDiscountZeroWithoutCoupon(t *testing.T) {
	order := Order{Items: []OrderItem{{Price: decimal.RequireFromString("3.30"), Quantity: 3}}}

	assert.True(t, order.DiscountAmount().IsZero())
	assert.True(t, order.TotalCost().Equal(decimal.RequireFromString("9.90")))
}

func TestOrderProductIDsDeduplicates(t *testing.T) {
	order := Order{Items: []OrderItem{{ProductID: "a"}, {ProductID: "b"}, {ProductID: "a"}}}
	assert.Equal(t, []string{"a", "b"}, order.ProductIDs())
}

func TestOrderStripeURL(t *testing.T) {
	assert.Equal(t, "", Order{}.StripeURL(true))

	order := Order{StripeID: "pi_123"}
	assert.Equal(t, "https://dashboard.stripe.com/test/payments/pi_123", order.StripeURL(true))
	assert.Equal(t, "https://dashboard.stripe.com/payments/pi_123", order.StripeURL(false))
}

package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Order is the persisted snapshot of a cart at checkout time.
type Order struct {
	Record
	OrderNo    string      `json:"orderNo"`
	StripeID   string      `json:"stripeId,omitempty"`
	FirstName  string      `json:"firstName"`
	LastName   string      `json:"lastName"`
	Email      string      `json:"email"`
	Address    string      `json:"address"`
	PostalCode string      `json:"postalCode"`
	City       string      `json:"city"`
	Paid       bool        `json:"paid"`
	CouponID   *string     `json:"couponId,omitempty"`
	Discount   int         `json:"discount"`
	Items      []OrderItem `json:"items,omitempty"`
}

// OrderItem freezes the price and quantity of one purchased product.
type OrderItem struct {
	Record
	OrderID     string          `json:"orderId"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// Cost is price times quantity.
func (i OrderItem) Cost() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (o Order) TotalCostBeforeDiscount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Cost())
	}
	return total
}

func (o Order) DiscountAmount() decimal.Decimal {
	if o.Discount <= 0 {
		return decimal.Zero
	}
	return o.TotalCostBeforeDiscount().Mul(decimal.NewFromInt(int64(o.Discount)).Div(hundred))
}

func (o Order) TotalCost() decimal.Decimal {
	return o.TotalCostBeforeDiscount().Sub(o.DiscountAmount())
}

// ProductIDs lists the distinct products of the order in item order.
func (o Order) ProductIDs() []string {
	seen := make(map[string]struct{}, len(o.Items))
	ids := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// StripeURL links to the payment in the Stripe dashboard, or "" when unpaid.
func (o Order) StripeURL(testMode bool) string {
	if o.StripeID == "" {
		return ""
	}
	path := "/"
	if testMode {
		path = "/test/"
	}
	return fmt.Sprintf("https://dashboard.stripe.com%spayments/%s", path, o.StripeID)
}

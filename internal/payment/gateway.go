package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Gateway is a hosted checkout provider.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error)
	// ParseEvent verifies a webhook payload against its signature header.
	ParseEvent(payload []byte, signature string) (Event, error)
}

type CheckoutRequest struct {
	OrderNo         string
	Lines           []CheckoutLine
	DiscountPercent int
	SuccessURL      string
	CancelURL       string
}

type CheckoutLine struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Event is the provider-neutral subset of a webhook notification.
type Event struct {
	ID              string
	Type            string
	OrderNo         string
	PaymentIntentID string
	Mode            string
	PaymentStatus   string
}

const EventCheckoutCompleted = "checkout.session.completed"

// PaidCheckout reports whether e confirms a completed one-off payment.
func (e Event) PaidCheckout() bool {
	return e.Type == EventCheckoutCompleted && e.Mode == "payment" && e.PaymentStatus == "paid"
}

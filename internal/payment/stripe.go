package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"wheeldeal/internal/config"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/checkout/session"
	"github.com/stripe/stripe-go/v83/coupon"
	"github.com/stripe/stripe-go/v83/webhook"
)

var hundred = decimal.NewFromInt(100)

// StripeGateway creates Stripe Checkout sessions and verifies Stripe webhooks.
type StripeGateway struct {
	sessions      session.Client
	coupons       coupon.Client
	webhookSecret string
	currency      string
}

func NewStripeGateway(cfg config.StripeConfig) *StripeGateway {
	backend := stripe.GetBackend(stripe.APIBackend)
	currency := strings.ToLower(cfg.Currency)
	if currency == "" {
		currency = "usd"
	}
	return &StripeGateway{
		sessions:      session.Client{B: backend, Key: cfg.SecretKey},
		coupons:       coupon.Client{B: backend, Key: cfg.SecretKey},
		webhookSecret: cfg.WebhookSecret,
		currency:      currency,
	}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error) {
	params := checkoutParams(req, g.currency)
	params.Context = ctx

	if req.DiscountPercent > 0 {
		c, err := g.coupons.New(&stripe.CouponParams{
			Params:     stripe.Params{Context: ctx},
			Name:       stripe.String(fmt.Sprintf("Order %s discount", req.OrderNo)),
			PercentOff: stripe.Float64(float64(req.DiscountPercent)),
			Duration:   stripe.String(string(stripe.CouponDurationOnce)),
		})
		if err != nil {
			return "", fmt.Errorf("create stripe coupon: %w", err)
		}
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{{Coupon: stripe.String(c.ID)}}
	}

	s, err := g.sessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return s.URL, nil
}

func (g *StripeGateway) ParseEvent(payload []byte, signature string) (Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	out := Event{ID: ev.ID, Type: string(ev.Type)}
	if !strings.HasPrefix(out.Type, "checkout.session.") {
		return out, nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
		return Event{}, fmt.Errorf("decode checkout session: %w", err)
	}
	out.OrderNo = cs.ClientReferenceID
	out.Mode = string(cs.Mode)
	out.PaymentStatus = string(cs.PaymentStatus)
	if cs.PaymentIntent != nil {
		out.PaymentIntentID = cs.PaymentIntent.ID
	}
	return out, nil
}

func checkoutParams(req CheckoutRequest, currency string) *stripe.CheckoutSessionParams {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(req.OrderNo),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
	}
	for _, l := range req.Lines {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(unitAmount(l.UnitPrice)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(l.Name),
				},
			},
			Quantity: stripe.Int64(int64(l.Quantity)),
		})
	}
	return params
}

// unitAmount converts a price to integer minor units.
func unitAmount(price decimal.Decimal) int64 {
	return price.Mul(hundred).IntPart()
}

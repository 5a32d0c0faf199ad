package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"wheeldeal/internal/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestCheckoutParams(t *testing.T) {
	params := checkoutParams(CheckoutRequest{
		OrderNo:    "AB2CD",
		SuccessURL: "https://shop.example/payment/completed",
		CancelURL:  "https://shop.example/payment/canceled",
		Lines: []CheckoutLine{
			{Name: "Rim", UnitPrice: decimal.RequireFromString("120.50"), Quantity: 2},
			{Name: "Valve", UnitPrice: decimal.RequireFromString("0.99"), Quantity: 1},
		},
	}, "eur")

	require.Len(t, params.LineItems, 2)
	assert.Equal(t, "payment", *params.Mode)
	assert.Equal(t, "AB2CD", *params.ClientReferenceID)
	assert.Equal(t, int64(12050), *params.LineItems[0].PriceData.UnitAmount)
	assert.Equal(t, int64(99), *params.LineItems[1].PriceData.UnitAmount)
	assert.Equal(t, int64(2), *params.LineItems[0].Quantity)
	assert.Equal(t, "eur", *params.LineItems[0].PriceData.Currency)
	assert.Equal(t, "Rim", *params.LineItems[0].PriceData.ProductData.Name)
}

func TestParseEventVerifiesSignature(t *testing.T) {
	gw := NewStripeGateway(config.StripeConfig{SecretKey: "sk_test_x", WebhookSecret: "whsec_test"})
	payload := []byte(`{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"api_version": "2020-08-27",
		"data": {"object": {
			"id": "cs_1",
			"object": "checkout.session",
			"client_reference_id": "AB2CD",
			"mode": "payment",
			"payment_status": "paid",
			"payment_intent": "pi_123"
		}}
	}`)

	ev, err := gw.ParseEvent(payload, sign(payload, "whsec_test", time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", ev.ID)
	assert.Equal(t, "AB2CD", ev.OrderNo)
	assert.Equal(t, "pi_123", ev.PaymentIntentID)
	assert.True(t, ev.PaidCheckout())

	_, err = gw.ParseEvent(payload, sign(payload, "whsec_other", time.Now()))
	assert.True(t, errors.Is(err, ErrInvalidSignature), "got %v", err)
}

func TestParseEventIgnoresOtherObjects(t *testing.T) {
	gw := NewStripeGateway(config.StripeConfig{WebhookSecret: "whsec_test"})
	payload := []byte(`{"id":"evt_2","object":"event","type":"charge.refunded","data":{"object":{"id":"ch_1","object":"charge"}}}`)

	ev, err := gw.ParseEvent(payload, sign(payload, "whsec_test", time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "charge.refunded", ev.Type)
	assert.False(t, ev.PaidCheckout())
}

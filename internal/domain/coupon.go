package domain

import "time"

// Coupon grants a percentage discount on a whole cart.
type Coupon struct {
	Record
	Code      string    `json:"code"`
	ValidFrom time.Time `json:"validFrom"`
	ValidTo   time.Time `json:"validTo"`
	Discount  int       `json:"discount"`
	Active    bool      `json:"active"`
}

// ValidAt reports whether the coupon can be redeemed at t.
func (c Coupon) ValidAt(t time.Time) bool {
	if !c.Active {
		return false
	}
	return !t.Before(c.ValidFrom) && !t.After(c.ValidTo)
}

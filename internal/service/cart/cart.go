package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"wheeldeal/internal/domain"

	"github.com/shopspring/decimal"
)

// MaxLines bounds the number of distinct products so the cart still fits
// in a session cookie.
const MaxLines = 20

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrCartFull        = fmt.Errorf("cart holds at most %d different products", MaxLines)
	hundred            = decimal.NewFromInt(100)
)

type productLookup interface {
	ListByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
}

type couponLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Coupon, error)
}

// line is the session representation of one cart entry. The price is kept
// as a decimal string captured when the product was first added.
type line struct {
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

// Item is a cart line joined with its catalog product.
type Item struct {
	Product    domain.Product
	Quantity   int
	Price      decimal.Decimal
	TotalPrice decimal.Decimal
}

type Cart struct {
	sess     Session
	products productLookup
	coupons  couponLookup
	lines    map[string]line
}

// New loads the cart stored in sess. A missing or unreadable cart value is
// replaced by an empty one.
func New(sess Session, products productLookup, coupons couponLookup) *Cart {
	c := &Cart{sess: sess, products: products, coupons: coupons}
	raw, ok := sess.Get(sessionCartKey)
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &c.lines); err != nil {
			c.lines = nil
		}
	}
	if c.lines == nil {
		c.lines = make(map[string]line)
		c.save()
	}
	return c
}

// Add puts quantity units of product in the cart. With override the line
// quantity is replaced, otherwise it is incremented.
func (c *Cart) Add(product domain.Product, quantity int, override bool) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	l, ok := c.lines[product.ID]
	if !ok {
		if len(c.lines) >= MaxLines {
			return ErrCartFull
		}
		l = line{Quantity: 0, Price: product.Price.String()}
	}
	if override {
		l.Quantity = quantity
	} else {
		l.Quantity += quantity
	}
	c.lines[product.ID] = l
	c.save()
	return nil
}

func (c *Cart) Remove(productID string) {
	if _, ok := c.lines[productID]; !ok {
		return
	}
	delete(c.lines, productID)
	c.save()
}

// Items resolves every line against the catalog. Lines whose product no
// longer exists are skipped. Items are sorted by product name.
func (c *Cart) Items(ctx context.Context) ([]Item, error) {
	if len(c.lines) == 0 {
		return nil, nil
	}
	products, err := c.products.ListByIDs(ctx, c.ProductIDs())
	if err != nil {
		return nil, fmt.Errorf("load cart products: %w", err)
	}

	items := make([]Item, 0, len(products))
	for _, p := range products {
		l, ok := c.lines[p.ID]
		if !ok {
			continue
		}
		price := l.price()
		items = append(items, Item{
			Product:    p,
			Quantity:   l.Quantity,
			Price:      price,
			TotalPrice: price.Mul(decimal.NewFromInt(int64(l.Quantity))),
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Product.Name == items[j].Product.Name {
			return items[i].Product.ID < items[j].Product.ID
		}
		return items[i].Product.Name < items[j].Product.Name
	})
	return items, nil
}

// ProductIDs lists carted product ids in a stable order.
func (c *Cart) ProductIDs() []string {
	ids := make([]string, 0, len(c.lines))
	for id := range c.lines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len is the number of units in the cart.
func (c *Cart) Len() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Quantity(productID string) int {
	return c.lines[productID].Quantity
}

func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.price().Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

func (c *Cart) CouponID() string {
	id, _ := c.sess.Get(sessionCouponKey)
	return id
}

func (c *Cart) SetCoupon(id string) {
	c.sess.Set(sessionCouponKey, id)
}

func (c *Cart) ClearCoupon() {
	c.sess.Delete(sessionCouponKey)
}

// Coupon returns the applied coupon, or nil when none is set or the stored
// id no longer resolves.
func (c *Cart) Coupon(ctx context.Context) (*domain.Coupon, error) {
	id := c.CouponID()
	if id == "" || c.coupons == nil {
		return nil, nil
	}
	coupon, err := c.coupons.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return coupon, nil
}

func (c *Cart) Discount(ctx context.Context) (decimal.Decimal, error) {
	coupon, err := c.Coupon(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if coupon == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromInt(int64(coupon.Discount)).Div(hundred).Mul(c.TotalPrice()), nil
}

func (c *Cart) TotalPriceAfterDiscount(ctx context.Context) (decimal.Decimal, error) {
	discount, err := c.Discount(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return c.TotalPrice().Sub(discount), nil
}

// Clear empties the cart. The session key is kept holding an empty mapping.
func (c *Cart) Clear() {
	c.lines = make(map[string]line)
	c.save()
}

func (c *Cart) save() {
	raw, _ := json.Marshal(c.lines)
	c.sess.Set(sessionCartKey, string(raw))
}

func (l line) price() decimal.Decimal {
	p, err := decimal.NewFromString(l.Price)
	if err != nil {
		return decimal.Zero
	}
	return p
}

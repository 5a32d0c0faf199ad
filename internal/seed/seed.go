package seed

import (
	"context"
	"fmt"
	"time"

	"wheeldeal/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CategoryWriter interface {
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
}

type ProductWriter interface {
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}

type CouponWriter interface {
	Upsert(ctx context.Context, c domain.Coupon) (*domain.Coupon, error)
}

type Writers struct {
	Categories CategoryWriter
	Products   ProductWriter
	Coupons    CouponWriter
}

type productSeed struct {
	Slug        string
	Name        string
	Description string
	Price       string
}

type categorySeed struct {
	Slug     string
	Name     string
	Products []productSeed
}

var catalog = []categorySeed{
	{
		Slug: "wheels",
		Name: "Wheels",
		Products: []productSeed{
			{Slug: "alloy-rim-17", Name: "Alloy Rim 17\"", Description: "Five-spoke alloy rim", Price: "129.90"},
			{Slug: "steel-rim-15", Name: "Steel Rim 15\"", Description: "Black steel winter rim", Price: "54.00"},
		},
	},
	{
		Slug: "tyres",
		Name: "Tyres",
		Products: []productSeed{
			{Slug: "summer-205-55", Name: "Summer Tyre 205/55 R16", Description: "Low rolling resistance", Price: "79.50"},
			{Slug: "winter-205-55", Name: "Winter Tyre 205/55 R16", Description: "Three-peak mountain snowflake rated", Price: "89.99"},
		},
	},
	{
		Slug: "accessories",
		Name: "Accessories",
		Products: []productSeed{
			{Slug: "lug-nut-set", Name: "Lug Nut Set", Description: "20 chrome lug nuts", Price: "19.99"},
			{Slug: "valve-caps", Name: "Valve Caps", Description: "Aluminium, set of 4", Price: "4.50"},
		},
	},
}

// Apply inserts demo catalog data and a welcome coupon. It is idempotent:
// every write is an upsert keyed on slug or code.
func Apply(ctx context.Context, w Writers, now time.Time, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	products := 0
	for _, cs := range catalog {
		cat, err := w.Categories.Upsert(ctx, domain.Category{Name: cs.Name, Slug: cs.Slug})
		if err != nil {
			return fmt.Errorf("upsert category %s: %w", cs.Slug, err)
		}
		for _, ps := range cs.Products {
			price, err := decimal.NewFromString(ps.Price)
			if err != nil {
				return fmt.Errorf("price of %s: %w", ps.Slug, err)
			}
			p := domain.Product{
				CategoryID:  cat.ID,
				Name:        ps.Name,
				Slug:        ps.Slug,
				Description: ps.Description,
				Price:       price,
				Available:   true,
			}
			if _, err := w.Products.Upsert(ctx, p); err != nil {
				return fmt.Errorf("upsert product %s: %w", ps.Slug, err)
			}
			products++
		}
	}

	if w.Coupons != nil {
		welcome := domain.Coupon{
			Code:      "WELCOME10",
			ValidFrom: now.Add(-24 * time.Hour),
			ValidTo:   now.AddDate(1, 0, 0),
			Discount:  10,
			Active:    true,
		}
		if _, err := w.Coupons.Upsert(ctx, welcome); err != nil {
			return fmt.Errorf("upsert coupon %s: %w", welcome.Code, err)
		}
	}
	logger.Info("seed applied", zap.Int("categories", len(catalog)), zap.Int("products", products))
	return nil
}

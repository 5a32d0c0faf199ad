package coupon

import (
	"context"

	"wheeldeal/internal/domain"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Coupon, error)
	// GetByCode matches codes case-insensitively.
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	Upsert(ctx context.Context, c domain.Coupon) (*domain.Coupon, error)
}

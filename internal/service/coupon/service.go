package coupon

import (
	"context"
	"errors"
	"time"

	"wheeldeal/internal/domain"
	couponrepo "wheeldeal/internal/repository/coupon"
)

var ErrInvalidCoupon = errors.New("coupon is invalid or expired")

// Cart receives the applied coupon id.
type Cart interface {
	SetCoupon(id string)
	ClearCoupon()
}

type Service struct {
	repo couponrepo.Repository
	now  func() time.Time
}

func New(repo couponrepo.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Apply attaches the coupon with the given code to the cart. Any previously
// applied coupon is dropped when the code does not resolve to a usable one.
func (s *Service) Apply(ctx context.Context, c Cart, code string) (*domain.Coupon, error) {
	coupon, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.ClearCoupon()
			return nil, ErrInvalidCoupon
		}
		return nil, err
	}
	if !coupon.ValidAt(s.now()) {
		c.ClearCoupon()
		return nil, ErrInvalidCoupon
	}
	c.SetCoupon(coupon.ID)
	return coupon, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Coupon, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Upsert(ctx context.Context, c domain.Coupon) (*domain.Coupon, error) {
	return s.repo.Upsert(ctx, c)
}

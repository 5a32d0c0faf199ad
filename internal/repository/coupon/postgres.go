package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wheeldeal/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const couponColumns = `id::text, code, valid_from, valid_to, discount, active, created_at, updated_at`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Coupon, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return r.getOne(ctx, `SELECT `+couponColumns+` FROM coupons WHERE id = $1`, id)
}

func (r *postgresRepo) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrNotFound
	}
	return r.getOne(ctx, `SELECT `+couponColumns+` FROM coupons WHERE upper(code) = upper($1)`, code)
}

func (r *postgresRepo) Upsert(ctx context.Context, c domain.Coupon) (*domain.Coupon, error) {
	if c.Discount < 0 || c.Discount > 100 {
		return nil, fmt.Errorf("coupon %q: discount %d out of range", c.Code, c.Discount)
	}
	const q = `
INSERT INTO coupons (code, valid_from, valid_to, discount, active)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (code) DO UPDATE SET
    valid_from = EXCLUDED.valid_from,
    valid_to = EXCLUDED.valid_to,
    discount = EXCLUDED.discount,
    active = EXCLUDED.active,
    updated_at = now()
RETURNING ` + couponColumns
	return scanCoupon(r.pool.QueryRow(ctx, q, c.Code, c.ValidFrom, c.ValidTo, c.Discount, c.Active))
}

func (r *postgresRepo) getOne(ctx context.Context, q string, arg string) (*domain.Coupon, error) {
	c, err := scanCoupon(r.pool.QueryRow(ctx, q, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func scanCoupon(row pgx.Row) (*domain.Coupon, error) {
	var c domain.Coupon
	if err := row.Scan(&c.ID, &c.Code, &c.ValidFrom, &c.ValidTo, &c.Discount, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

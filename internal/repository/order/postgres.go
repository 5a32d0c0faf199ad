package order

import (
	"context"
	"errors"
	"fmt"

	"wheeldeal/internal/db"
	"wheeldeal/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const orderColumns = `id::text, order_no, stripe_id, first_name, last_name, email, address, postal_code, city, paid, coupon_id::text, discount, created_at, updated_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("order_repo")}
}

func (r *postgresRepo) InTx(ctx context.Context, fn func(w Writer) error) error {
	return db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&txWriter{tx: tx})
	})
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return r.fetch(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *postgresRepo) GetByOrderNo(ctx context.Context, orderNo string) (*domain.Order, error) {
	if orderNo == "" {
		return nil, domain.ErrNotFound
	}
	return r.fetch(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_no = $1`, orderNo)
}

func (r *postgresRepo) MarkPaid(ctx context.Context, id, stripeID string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, domain.ErrNotFound
	}
	const q = `
UPDATE orders
SET paid = TRUE,
    stripe_id = $2,
    updated_at = now()
WHERE id = $1 AND paid = FALSE
RETURNING id::text
`
	var updated string
	err := r.pool.QueryRow(ctx, q, id, stripeID).Scan(&updated)
	if err == nil {
		r.logger.Info("order paid", zap.String("id", id), zap.String("stripe_id", stripeID))
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.logger.Error("mark paid failed", zap.String("id", id), zap.Error(err))
		return false, err
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, domain.ErrNotFound
	}
	return false, nil
}

func (r *postgresRepo) fetch(ctx context.Context, q string, arg string) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, q, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("fetch order failed", zap.String("key", arg), zap.Error(err))
		return nil, err
	}

	const itemsQuery = `
SELECT oi.id::text, oi.order_id::text, oi.product_id::text, p.name, oi.price::text, oi.quantity, oi.created_at, oi.updated_at
FROM order_items oi
JOIN products p ON p.id = oi.product_id
WHERE oi.order_id = $1
ORDER BY oi.created_at ASC, oi.id ASC
`
	rows, err := r.pool.Query(ctx, itemsQuery, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item  domain.OrderItem
			price string
		)
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &price, &item.Quantity, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		if item.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse item price %q: %w", price, err)
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return o, nil
}

type txWriter struct {
	tx pgx.Tx
}

func (w *txWriter) CreateOrder(ctx context.Context, o *domain.Order) error {
	const q = `
INSERT INTO orders (order_no, first_name, last_name, email, address, postal_code, city, coupon_id, discount)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (order_no) DO NOTHING
RETURNING id::text, created_at, updated_at
`
	err := w.tx.QueryRow(ctx, q,
		o.OrderNo,
		o.FirstName,
		o.LastName,
		o.Email,
		o.Address,
		o.PostalCode,
		o.City,
		o.CouponID,
		o.Discount,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || db.IsUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (w *txWriter) CreateItem(ctx context.Context, item *domain.OrderItem) error {
	const q = `
INSERT INTO order_items (order_id, product_id, price, quantity)
VALUES ($1, $2, $3::numeric, $4)
RETURNING id::text, created_at, updated_at
`
	return w.tx.QueryRow(ctx, q, item.OrderID, item.ProductID, item.Price.StringFixed(2), item.Quantity).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	if err := row.Scan(
		&o.ID,
		&o.OrderNo,
		&o.StripeID,
		&o.FirstName,
		&o.LastName,
		&o.Email,
		&o.Address,
		&o.PostalCode,
		&o.City,
		&o.Paid,
		&o.CouponID,
		&o.Discount,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &o, nil
}

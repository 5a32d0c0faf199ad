package order

import (
	"context"

	"wheeldeal/internal/domain"
)

type Repository interface {
	// InTx runs fn with a Writer bound to one transaction. Nothing written
	// through the Writer is visible unless fn returns nil.
	InTx(ctx context.Context, fn func(w Writer) error) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByOrderNo(ctx context.Context, orderNo string) (*domain.Order, error)
	// MarkPaid flips paid and records the Stripe payment id. It reports false
	// when the order was already paid.
	MarkPaid(ctx context.Context, id, stripeID string) (bool, error)
}

type Writer interface {
	// CreateOrder inserts o and fills its generated fields. It returns
	// domain.ErrAlreadyExists when o.OrderNo is taken.
	CreateOrder(ctx context.Context, o *domain.Order) error
	CreateItem(ctx context.Context, item *domain.OrderItem) error
}

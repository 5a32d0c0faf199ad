package payment

import (
	"context"
	"errors"
	"fmt"

	"wheeldeal/internal/domain"

	"go.uber.org/zap"
)

var (
	ErrNotConfigured    = errors.New("payments are not configured")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrAlreadyPaid      = errors.New("order is already paid")
)

type orderStore interface {
	GetByOrderNo(ctx context.Context, orderNo string) (*domain.Order, error)
	MarkPaid(ctx context.Context, id, stripeID string) (bool, error)
}

type purchaseRecorder interface {
	ProductsBought(ctx context.Context, ids []string) error
}

type notifier interface {
	PaymentCompleted(ctx context.Context, orderID string) error
}

type Service struct {
	gateway   Gateway
	orders    orderStore
	purchases purchaseRecorder
	notifier  notifier
	logger    *zap.Logger
}

func NewService(gateway Gateway, orders orderStore, purchases purchaseRecorder, notifier notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		gateway:   gateway,
		orders:    orders,
		purchases: purchases,
		notifier:  notifier,
		logger:    logger.Named("payment"),
	}
}

// Process opens a hosted checkout for the order and returns its URL.
func (s *Service) Process(ctx context.Context, orderNo, successURL, cancelURL string) (string, error) {
	if s.gateway == nil {
		return "", ErrNotConfigured
	}
	o, err := s.orders.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return "", err
	}
	if o.Paid {
		return "", ErrAlreadyPaid
	}

	req := CheckoutRequest{
		OrderNo:         o.OrderNo,
		DiscountPercent: o.Discount,
		SuccessURL:      successURL,
		CancelURL:       cancelURL,
	}
	for _, item := range o.Items {
		req.Lines = append(req.Lines, CheckoutLine{Name: item.ProductName, UnitPrice: item.Price, Quantity: item.Quantity})
	}
	url, err := s.gateway.CreateCheckoutSession(ctx, req)
	if err != nil {
		s.logger.Error("checkout session failed", zap.String("order_no", o.OrderNo), zap.Error(err))
		return "", err
	}
	s.logger.Info("checkout session created", zap.String("order_no", o.OrderNo))
	return url, nil
}

func (s *Service) ParseEvent(payload []byte, signature string) (Event, error) {
	if s.gateway == nil {
		return Event{}, ErrNotConfigured
	}
	return s.gateway.ParseEvent(payload, signature)
}

// HandleEvent applies a verified webhook event. Only paid checkout
// completions have an effect, and each order is processed once.
func (s *Service) HandleEvent(ctx context.Context, ev Event) error {
	if !ev.PaidCheckout() {
		s.logger.Debug("event ignored", zap.String("type", ev.Type), zap.String("id", ev.ID))
		return nil
	}
	o, err := s.orders.GetByOrderNo(ctx, ev.OrderNo)
	if err != nil {
		return fmt.Errorf("order %q: %w", ev.OrderNo, err)
	}
	changed, err := s.orders.MarkPaid(ctx, o.ID, ev.PaymentIntentID)
	if err != nil {
		return err
	}
	if !changed {
		s.logger.Info("duplicate payment event", zap.String("order_no", o.OrderNo), zap.String("event_id", ev.ID))
		return nil
	}

	if s.purchases != nil {
		if err := s.purchases.ProductsBought(ctx, o.ProductIDs()); err != nil {
			s.logger.Warn("record co-purchases failed", zap.String("order_no", o.OrderNo), zap.Error(err))
		}
	}
	if s.notifier != nil {
		if err := s.notifier.PaymentCompleted(ctx, o.ID); err != nil {
			s.logger.Warn("queue payment notification failed", zap.String("order_no", o.OrderNo), zap.Error(err))
		}
	}
	return nil
}

package order

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"wheeldeal/internal/domain"
	orderrepo "wheeldeal/internal/repository/order"
	"wheeldeal/internal/service/cart"

	"go.uber.org/zap"
)

const maxOrderNoAttempts = 10

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrOrderNoExhausted = errors.New("could not allocate a unique order number")
)

// ValidationError lists the customer fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid customer fields: " + strings.Join(e.Fields, ", ")
}

// CustomerInput is the checkout form. Binding only caps lengths; Create
// reports missing or malformed fields as a ValidationError.
type CustomerInput struct {
	FirstName  string `json:"firstName" binding:"max=50"`
	LastName   string `json:"lastName" binding:"max=50"`
	Email      string `json:"email" binding:"max=254"`
	Address    string `json:"address" binding:"max=250"`
	PostalCode string `json:"postalCode" binding:"max=20"`
	City       string `json:"city" binding:"max=100"`
}

// Cart is the part of a shopping cart that checkout reads and clears.
type Cart interface {
	Items(ctx context.Context) ([]cart.Item, error)
	Coupon(ctx context.Context) (*domain.Coupon, error)
	Clear()
	ClearCoupon()
}

type notifier interface {
	OrderCreated(ctx context.Context, orderID string) error
}

type Service struct {
	repo     orderrepo.Repository
	notifier notifier
	logger   *zap.Logger
	newNo    func() (string, error)
}

func New(repo orderrepo.Repository, notifier notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, notifier: notifier, logger: logger.Named("order_service"), newNo: randomOrderNo}
}

// Create turns the cart into a persisted order. The cart is cleared only
// after the order and all of its items are committed.
func (s *Service) Create(ctx context.Context, c Cart, in CustomerInput) (*domain.Order, error) {
	in = in.normalized()
	if err := in.validate(); err != nil {
		return nil, err
	}

	items, err := c.Items(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	coupon, err := c.Coupon(ctx)
	if err != nil {
		return nil, err
	}

	o := &domain.Order{
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      in.Email,
		Address:    in.Address,
		PostalCode: in.PostalCode,
		City:       in.City,
	}
	if coupon != nil {
		id := coupon.ID
		o.CouponID = &id
		o.Discount = coupon.Discount
	}

	err = s.repo.InTx(ctx, func(w orderrepo.Writer) error {
		if err := s.insertWithOrderNo(ctx, w, o); err != nil {
			return err
		}
		o.Items = make([]domain.OrderItem, 0, len(items))
		for _, it := range items {
			item := domain.OrderItem{
				OrderID:     o.ID,
				ProductID:   it.Product.ID,
				ProductName: it.Product.Name,
				Price:       it.Price,
				Quantity:    it.Quantity,
			}
			if err := w.CreateItem(ctx, &item); err != nil {
				return fmt.Errorf("create item for product %s: %w", it.Product.ID, err)
			}
			o.Items = append(o.Items, item)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("create order failed", zap.Error(err))
		return nil, err
	}

	c.Clear()
	c.ClearCoupon()
	s.logger.Info("order created", zap.String("order_no", o.OrderNo), zap.String("id", o.ID), zap.Int("items", len(o.Items)))

	if s.notifier != nil {
		if err := s.notifier.OrderCreated(ctx, o.ID); err != nil {
			s.logger.Warn("queue order created notification failed", zap.String("order_no", o.OrderNo), zap.Error(err))
		}
	}
	return o, nil
}

func (s *Service) insertWithOrderNo(ctx context.Context, w orderrepo.Writer, o *domain.Order) error {
	for i := 0; i < maxOrderNoAttempts; i++ {
		no, err := s.newNo()
		if err != nil {
			return err
		}
		o.OrderNo = no
		err = w.CreateOrder(ctx, o)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			s.logger.Debug("order number collision", zap.String("order_no", no))
			continue
		}
		return err
	}
	o.OrderNo = ""
	return ErrOrderNoExhausted
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByOrderNo(ctx context.Context, orderNo string) (*domain.Order, error) {
	return s.repo.GetByOrderNo(ctx, strings.ToUpper(strings.TrimSpace(orderNo)))
}

func (in CustomerInput) normalized() CustomerInput {
	return CustomerInput{
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Email:      strings.TrimSpace(in.Email),
		Address:    strings.TrimSpace(in.Address),
		PostalCode: strings.TrimSpace(in.PostalCode),
		City:       strings.TrimSpace(in.City),
	}
}

func (in CustomerInput) validate() error {
	var bad []string
	required := []struct {
		name  string
		value string
	}{
		{"firstName", in.FirstName},
		{"lastName", in.LastName},
		{"email", in.Email},
		{"address", in.Address},
		{"postalCode", in.PostalCode},
		{"city", in.City},
	}
	for _, f := range required {
		if f.value == "" {
			bad = append(bad, f.name)
		}
	}
	if in.Email != "" {
		if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
			bad = append(bad, "email")
		}
	}
	if len(bad) > 0 {
		return &ValidationError{Fields: bad}
	}
	return nil
}

package httpserver

import (
	"context"

	"wheeldeal/internal/domain"
	"wheeldeal/internal/payment"
	couponsvc "wheeldeal/internal/service/coupon"
	ordersvc "wheeldeal/internal/service/order"
	productsvc "wheeldeal/internal/service/product"
)

type CategoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
}

type ProductService interface {
	ListAvailable(ctx context.Context, categorySlug string) ([]productsvc.View, error)
	GetAvailable(ctx context.Context, id, slug string) (*productsvc.View, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	Views(ctx context.Context, products []domain.Product) []productsvc.View
}

type CouponService interface {
	Apply(ctx context.Context, c couponsvc.Cart, code string) (*domain.Coupon, error)
	GetByID(ctx context.Context, id string) (*domain.Coupon, error)
}

type OrderService interface {
	Create(ctx context.Context, c ordersvc.Cart, in ordersvc.CustomerInput) (*domain.Order, error)
	GetByOrderNo(ctx context.Context, orderNo string) (*domain.Order, error)
}

type PaymentService interface {
	Process(ctx context.Context, orderNo, successURL, cancelURL string) (string, error)
	ParseEvent(payload []byte, signature string) (payment.Event, error)
	HandleEvent(ctx context.Context, ev payment.Event) error
}

type Recommender interface {
	SuggestProductsFor(ctx context.Context, ids []string, max int) ([]domain.Product, error)
	ClearPurchases(ctx context.Context) (int, error)
}

type InvoiceRenderer interface {
	Render(ctx context.Context, o *domain.Order) ([]byte, error)
}

// Deps are the services the router dispatches to.
type Deps struct {
	CategorySvc CategoryService
	ProductSvc  ProductService
	CouponSvc   CouponService
	OrderSvc    OrderService
	PaymentSvc  PaymentService
	Recommender Recommender
	Invoices    InvoiceRenderer
	Checks      map[string]Check
}

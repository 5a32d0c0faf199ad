package order

import (
	"context"
	"errors"
	"strings"
	"testing"

	"wheeldeal/internal/domain"
	orderrepo "wheeldeal/internal/repository/order"
	"wheeldeal/internal/service/cart"

	"github.com/shopspring/decimal"
)

// stubRepo keeps committed orders in memory. Writes made inside InTx are
// staged and only kept when the callback succeeds.
type stubRepo struct {
	committed    map[string]*domain.Order
	takenNos     map[string]bool
	failOnItem   int
	itemsWritten int
}

func newStubRepo() *stubRepo {
	return &stubRepo{committed: map[string]*domain.Order{}, takenNos: map[string]bool{}}
}

type stagedWriter struct {
	repo   *stubRepo
	orders []*domain.Order
	items  []domain.OrderItem
}

func (w *stagedWriter) CreateOrder(_ context.Context, o *domain.Order) error {
	if w.repo.takenNos[o.OrderNo] {
		return domain.ErrAlreadyExists
	}
	o.ID = "order-" + o.OrderNo
	w.orders = append(w.orders, o)
	return nil
}

func (w *stagedWriter) CreateItem(_ context.Context, item *domain.OrderItem) error {
	w.repo.itemsWritten++
	if w.repo.failOnItem > 0 && w.repo.itemsWritten == w.repo.failOnItem {
		return errors.New("disk full")
	}
	w.items = append(w.items, *item)
	return nil
}

func (r *stubRepo) InTx(ctx context.Context, fn func(w orderrepo.Writer) error) error {
	w := &stagedWriter{repo: r}
	if err := fn(w); err != nil {
		return err
	}
	for _, o := range w.orders {
		stored := *o
		stored.Items = nil
		for _, it := range w.items {
			if it.OrderID == o.ID {
				stored.Items = append(stored.Items, it)
			}
		}
		r.committed[o.ID] = &stored
		r.takenNos[o.OrderNo] = true
	}
	return nil
}

func (r *stubRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := r.committed[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (r *stubRepo) GetByOrderNo(_ context.Context, no string) (*domain.Order, error) {
	for _, o := range r.committed {
		if o.OrderNo == no {
			return o, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubRepo) MarkPaid(context.Context, string, string) (bool, error) {
	return false, nil
}

type stubProducts map[string]domain.Product

func (s stubProducts) ListByIDs(_ context.Context, ids []string) ([]domain.Product, error) {
	var out []domain.Product
	for _, id := range ids {
		if p, ok := s[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type stubCoupons map[string]domain.Coupon

func (s stubCoupons) GetByID(_ context.Context, id string) (*domain.Coupon, error) {
	c, ok := s[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

type recordingNotifier struct {
	created []string
}

func (n *recordingNotifier) OrderCreated(_ context.Context, id string) error {
	n.created = append(n.created, id)
	return nil
}

var validCustomer = CustomerInput{
	FirstName:  "Ada",
	LastName:   "Lovelace",
	Email:      "ada@example.com",
	Address:    "12 Analytical St",
	PostalCode: "1815",
	City:       "London",
}

func filledCart(t *testing.T) *cart.Cart {
	t.Helper()
	products := stubProducts{
		"p1": {Record: domain.Record{ID: "p1"}, Name: "Rim", Price: decimal.RequireFromString("100.00")},
		"p2": {Record: domain.Record{ID: "p2"}, Name: "Tyre", Price: decimal.RequireFromString("45.50")},
		"p3": {Record: domain.Record{ID: "p3"}, Name: "Valve", Price: decimal.RequireFromString("2.25")},
	}
	coupons := stubCoupons{"c1": {Record: domain.Record{ID: "c1"}, Code: "TEN", Discount: 10, Active: true}}
	c := cart.New(cart.NewMemorySession(), products, coupons)
	for id, qty := range map[string]int{"p1": 1, "p2": 4, "p3": 2} {
		if err := c.Add(products[id], qty, false); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	c.SetCoupon("c1")
	return c
}

func TestCreateSnapshotsCartAndClearsIt(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	notif := &recordingNotifier{}
	svc := New(repo, notif, nil)
	c := filledCart(t)

	o, err := svc.Create(ctx, c, validCustomer)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(o.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(o.Items))
	}
	if o.Discount != 10 || o.CouponID == nil || *o.CouponID != "c1" {
		t.Fatalf("expected coupon snapshot, got discount=%d coupon=%v", o.Discount, o.CouponID)
	}
	if o.TotalCostBeforeDiscount().StringFixed(2) != "286.50" {
		t.Fatalf("unexpected total %s", o.TotalCostBeforeDiscount())
	}
	if c.Len() != 0 || c.CouponID() != "" {
		t.Fatalf("expected cleared cart, len=%d coupon=%q", c.Len(), c.CouponID())
	}
	if _, ok := repo.committed[o.ID]; !ok {
		t.Fatalf("order not committed")
	}
	if len(notif.created) != 1 || notif.created[0] != o.ID {
		t.Fatalf("expected one notification for %s, got %v", o.ID, notif.created)
	}

	got, err := svc.GetByOrderNo(ctx, strings.ToLower(o.OrderNo))
	if err != nil || got.ID != o.ID {
		t.Fatalf("GetByOrderNo: %+v %v", got, err)
	}
}

func TestCreateIsAllOrNothing(t *testing.T) {
	repo := newStubRepo()
	repo.failOnItem = 2
	notif := &recordingNotifier{}
	svc := New(repo, notif, nil)
	c := filledCart(t)

	if _, err := svc.Create(context.Background(), c, validCustomer); err == nil {
		t.Fatalf("expected failure")
	}
	if len(repo.committed) != 0 {
		t.Fatalf("expected no committed orders, got %d", len(repo.committed))
	}
	if c.Len() != 7 || c.CouponID() != "c1" {
		t.Fatalf("cart must be untouched, len=%d coupon=%q", c.Len(), c.CouponID())
	}
	if len(notif.created) != 0 {
		t.Fatalf("no notification expected")
	}
}

func TestCreateRejectsEmptyCart(t *testing.T) {
	repo := newStubRepo()
	svc := New(repo, nil, nil)
	c := cart.New(cart.NewMemorySession(), stubProducts{}, stubCoupons{})

	if _, err := svc.Create(context.Background(), c, validCustomer); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if repo.itemsWritten != 0 || len(repo.committed) != 0 {
		t.Fatalf("storage must not be touched")
	}
}

func TestCreateValidatesCustomer(t *testing.T) {
	svc := New(newStubRepo(), nil, nil)
	in := validCustomer
	in.FirstName = "  "
	in.Email = "not-an-email"

	_, err := svc.Create(context.Background(), filledCart(t), in)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 2 {
		t.Fatalf("expected two invalid fields, got %v", verr.Fields)
	}
}

func TestCreateRetriesOrderNoCollision(t *testing.T) {
	repo := newStubRepo()
	repo.takenNos["AAAAA"] = true
	svc := New(repo, nil, nil)
	seq := []string{"AAAAA", "AAAAA", "BBBBB"}
	calls := 0
	svc.newNo = func() (string, error) {
		no := seq[calls]
		calls++
		return no, nil
	}

	o, err := svc.Create(context.Background(), filledCart(t), validCustomer)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if o.OrderNo != "BBBBB" || calls != 3 {
		t.Fatalf("expected BBBBB after 3 attempts, got %s after %d", o.OrderNo, calls)
	}
}

func TestCreateGivesUpAfterMaxAttempts(t *testing.T) {
	repo := newStubRepo()
	repo.takenNos["AAAAA"] = true
	svc := New(repo, nil, nil)
	calls := 0
	svc.newNo = func() (string, error) {
		calls++
		return "AAAAA", nil
	}
	c := filledCart(t)

	if _, err := svc.Create(context.Background(), c, validCustomer); !errors.Is(err, ErrOrderNoExhausted) {
		t.Fatalf("expected ErrOrderNoExhausted, got %v", err)
	}
	if calls != maxOrderNoAttempts {
		t.Fatalf("expected %d attempts, got %d", maxOrderNoAttempts, calls)
	}
	if c.Len() == 0 {
		t.Fatalf("cart must not be cleared")
	}
}

func TestRandomOrderNo(t *testing.T) {
	for i := 0; i < 2000; i++ {
		no, err := randomOrderNo()
		if err != nil {
			t.Fatalf("randomOrderNo: %v", err)
		}
		if len(no) != 5 {
			t.Fatalf("expected 5 characters, got %q", no)
		}
		if strings.ContainsAny(no, "0O1I") {
			t.Fatalf("ambiguous character in %q", no)
		}
		for _, r := range no {
			if !(r >= 'A' && r <= 'Z') && !(r >= '2' && r <= '9') {
				t.Fatalf("unexpected character %q in %q", r, no)
			}
		}
	}
}

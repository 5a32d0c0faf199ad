package order

import (
	"context"
	"errors"
	"os"
	"testing"

	"wheeldeal/internal/domain"
	"wheeldeal/internal/migrate"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func TestPostgres_CreateAndFetch(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)
	productID := insertProduct(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	o := &domain.Order{OrderNo: "AB2CD", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Address: "1 Main", PostalCode: "1000", City: "Town", Discount: 10}
	err := repo.InTx(ctx, func(w Writer) error {
		if err := w.CreateOrder(ctx, o); err != nil {
			return err
		}
		return w.CreateItem(ctx, &domain.OrderItem{OrderID: o.ID, ProductID: productID, Price: decimal.RequireFromString("12.50"), Quantity: 2})
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}
	if o.ID == "" {
		t.Fatalf("expected generated id")
	}

	got, err := repo.GetByOrderNo(ctx, "AB2CD")
	if err != nil {
		t.Fatalf("GetByOrderNo: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].ProductName != "Rim" {
		t.Fatalf("unexpected items %+v", got.Items)
	}
	if got.TotalCost().StringFixed(2) != "22.50" {
		t.Fatalf("unexpected total %s", got.TotalCost())
	}

	byID, err := repo.GetByID(ctx, o.ID)
	if err != nil || byID.OrderNo != "AB2CD" {
		t.Fatalf("GetByID: %+v %v", byID, err)
	}

	err = repo.InTx(ctx, func(w Writer) error {
		return w.CreateOrder(ctx, &domain.Order{OrderNo: "AB2CD", FirstName: "B", LastName: "C", Email: "b@example.com", Address: "x", PostalCode: "y", City: "z"})
	})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists for duplicate code, got %v", err)
	}
}

func TestPostgres_InTxRollsBack(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)
	productID := insertProduct(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	boom := errors.New("boom")
	err := repo.InTx(ctx, func(w Writer) error {
		o := &domain.Order{OrderNo: "ZZ9ZZ", FirstName: "A", LastName: "B", Email: "a@example.com", Address: "x", PostalCode: "y", City: "z"}
		if err := w.CreateOrder(ctx, o); err != nil {
			return err
		}
		if err := w.CreateItem(ctx, &domain.OrderItem{OrderID: o.ID, ProductID: productID, Price: decimal.NewFromInt(5), Quantity: 1}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, err := repo.GetByOrderNo(ctx, "ZZ9ZZ"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected rolled back order, got %v", err)
	}
}

func TestPostgres_MarkPaid(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	o := &domain.Order{OrderNo: "PA1D2", FirstName: "A", LastName: "B", Email: "a@example.com", Address: "x", PostalCode: "y", City: "z"}
	if err := repo.InTx(ctx, func(w Writer) error { return w.CreateOrder(ctx, o) }); err != nil {
		t.Fatalf("create: %v", err)
	}

	changed, err := repo.MarkPaid(ctx, o.ID, "pi_123")
	if err != nil || !changed {
		t.Fatalf("first MarkPaid: changed=%v err=%v", changed, err)
	}
	changed, err = repo.MarkPaid(ctx, o.ID, "pi_123")
	if err != nil || changed {
		t.Fatalf("second MarkPaid: changed=%v err=%v", changed, err)
	}
	if _, err := repo.MarkPaid(ctx, "00000000-0000-0000-0000-000000000000", "pi_x"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	got, err := repo.GetByID(ctx, o.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.Paid || got.StripeID != "pi_123" {
		t.Fatalf("unexpected order %+v", got)
	}
}

func insertProduct(ctx context.Context, t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	var categoryID, productID string
	if err := pool.QueryRow(ctx, `INSERT INTO categories (name, slug) VALUES ('Wheels', 'wheels') RETURNING id::text`).Scan(&categoryID); err != nil {
		t.Fatalf("insert category: %v", err)
	}
	err := pool.QueryRow(ctx, `
		INSERT INTO products (category_id, name, slug, price)
		VALUES ($1, 'Rim', 'rim', 12.50)
		RETURNING id::text
	`, categoryID).Scan(&productID)
	if err != nil {
		t.Fatalf("insert product: %v", err)
	}
	return productID
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE order_items, orders, coupons, products, categories RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

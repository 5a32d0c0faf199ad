package coupon

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"wheeldeal/internal/domain"
	"wheeldeal/internal/migrate"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestPostgres_UpsertAndLookup(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool)
	from := time.Now().Add(-time.Hour).UTC().Truncate(time.Second)
	to := from.Add(48 * time.Hour)

	created, err := repo.Upsert(ctx, domain.Coupon{Code: "SPRING10", ValidFrom: from, ValidTo: to, Discount: 10, Active: true})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	byCode, err := repo.GetByCode(ctx, "  spring10 ")
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if byCode.ID != created.ID || byCode.Discount != 10 {
		t.Fatalf("unexpected coupon %+v", byCode)
	}

	byID, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !byID.ValidTo.Equal(to) {
		t.Fatalf("expected valid_to %s, got %s", to, byID.ValidTo)
	}

	updated, err := repo.Upsert(ctx, domain.Coupon{Code: "SPRING10", ValidFrom: from, ValidTo: to, Discount: 25, Active: false})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if updated.ID != created.ID || updated.Discount != 25 || updated.Active {
		t.Fatalf("unexpected updated coupon %+v", updated)
	}

	if _, err := repo.GetByCode(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByID(ctx, "bad-id"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed id, got %v", err)
	}
	if _, err := repo.Upsert(ctx, domain.Coupon{Code: "TOO-MUCH", Discount: 101}); err == nil {
		t.Fatalf("expected out of range discount to fail")
	}
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

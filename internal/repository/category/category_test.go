package category

import (
	"context"
	"errors"
	"os"
	"testing"

	"wheeldeal/internal/domain"
	"wheeldeal/internal/migrate"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestPostgres_UpsertListAndGet(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool)
	first, err := repo.Upsert(ctx, domain.Category{Name: "Wheels", Slug: "wheels"})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, err := repo.Upsert(ctx, domain.Category{Name: "Brakes", Slug: "brakes"}); err != nil {
		t.Fatalf("Upsert second: %v", err)
	}

	renamed, err := repo.Upsert(ctx, domain.Category{Name: "Alloy Wheels", Slug: "wheels"})
	if err != nil {
		t.Fatalf("Upsert rename: %v", err)
	}
	if renamed.ID != first.ID {
		t.Fatalf("expected upsert to keep id %s, got %s", first.ID, renamed.ID)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Alloy Wheels" || list[1].Name != "Brakes" {
		t.Fatalf("unexpected list %+v", list)
	}

	got, err := repo.GetBySlug(ctx, "wheels")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if got.ID != first.ID {
		t.Fatalf("unexpected category %+v", got)
	}

	if _, err := repo.GetBySlug(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
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

package product

import (
	"context"
	"errors"
	"fmt"

	"wheeldeal/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const productColumns = `id::text, category_id::text, name, slug, description, image_key, price::text, available, created_at, updated_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("product_repo")}
}

// ListAvailable returns available products, optionally restricted to one category.
func (r *postgresRepo) ListAvailable(ctx context.Context, categoryID string) ([]domain.Product, error) {
	q := `SELECT ` + productColumns + `
FROM products
WHERE available = TRUE AND ($1 = '' OR category_id::text = $1)
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, categoryID)
	if err != nil {
		r.logger.Error("list failed", zap.String("category_id", categoryID), zap.Error(err))
		return nil, err
	}
	result, err := scanProducts(rows)
	if err != nil {
		r.logger.Error("list rows failed", zap.String("category_id", categoryID), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("list", zap.String("category_id", categoryID), zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	q := `SELECT ` + productColumns + `
FROM products
WHERE id = $1
`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("get not found", zap.String("id", id))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("get failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

// ListByIDs fetches every product whose id is in ids. Result order is unspecified;
// ids that are not valid UUIDs or no longer exist are skipped.
func (r *postgresRepo) ListByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return nil, nil
	}
	q := `SELECT ` + productColumns + `
FROM products
WHERE id::text = ANY($1::text[])
`
	rows, err := r.pool.Query(ctx, q, valid)
	if err != nil {
		r.logger.Error("list by ids failed", zap.Int("ids", len(valid)), zap.Error(err))
		return nil, err
	}
	return scanProducts(rows)
}

func (r *postgresRepo) AllIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id::text FROM products`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if !product.Price.IsPositive() {
		return nil, fmt.Errorf("product %q: price %s must be greater than zero", product.Slug, product.Price)
	}
	const q = `
INSERT INTO products (category_id, name, slug, description, image_key, price, available)
VALUES ($1, $2, $3, $4, $5, $6::numeric, $7)
ON CONFLICT (category_id, slug) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    image_key = COALESCE(NULLIF(EXCLUDED.image_key, ''), products.image_key),
    price = EXCLUDED.price,
    available = EXCLUDED.available,
    updated_at = now()
RETURNING ` + productColumns
	res, err := scanProduct(r.pool.QueryRow(ctx, q,
		product.CategoryID,
		product.Name,
		product.Slug,
		product.Description,
		product.ImageKey,
		product.Price.StringFixed(2),
		product.Available,
	))
	if err != nil {
		r.logger.Error("upsert failed", zap.String("slug", product.Slug), zap.String("category_id", product.CategoryID), zap.Error(err))
		return nil, err
	}
	r.logger.Info("upserted", zap.String("slug", res.Slug), zap.String("id", res.ID))
	return res, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p     domain.Product
		price string
	)
	if err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.Description, &p.ImageKey, &price, &p.Available, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q for product %s: %w", price, p.ID, err)
	}
	p.Price = parsed
	return &p, nil
}

func scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	defer rows.Close()
	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

package recommender

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"wheeldeal/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxResults is the suggestion count used when callers pass zero.
const DefaultMaxResults = 6

const (
	clearBatchSize = 500
	cleanupTimeout = 2 * time.Second
)

type catalog interface {
	ListByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	AllIDs(ctx context.Context) ([]string, error)
}

// Recommender keeps, for every product, a sorted set of the products bought
// together with it, scored by the number of orders they shared.
type Recommender struct {
	store   Store
	catalog catalog
	logger  *zap.Logger
}

func New(store Store, catalog catalog, logger *zap.Logger) *Recommender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recommender{store: store, catalog: catalog, logger: logger.Named("recommender")}
}

func ProductKey(id string) string {
	return "product:" + id + ":purchased_with"
}

// ProductsBought records that ids were bought in the same order.
func (r *Recommender) ProductsBought(ctx context.Context, ids []string) error {
	ids = normalize(ids)
	for _, id := range ids {
		for _, with := range ids {
			if id == with {
				continue
			}
			if err := r.store.IncrBy(ctx, ProductKey(id), with, 1); err != nil {
				return err
			}
		}
	}
	r.logger.Debug("products bought", zap.Strings("ids", ids))
	return nil
}

// SuggestIDs ranks the products most often bought with ids. Inputs never
// appear in the result, which may hold fewer than max ids.
func (r *Recommender) SuggestIDs(ctx context.Context, ids []string, max int) ([]string, error) {
	if max <= 0 {
		max = DefaultMaxResults
	}
	ids = normalize(ids)
	switch len(ids) {
	case 0:
		return nil, nil
	case 1:
		ranked, err := r.store.RangeDesc(ctx, ProductKey(ids[0]), max+1)
		if err != nil {
			return nil, err
		}
		return exclude(ranked, ids, max), nil
	}

	tmp := "tmp:suggest:" + uuid.NewString()
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
		defer cancel()
		if err := r.store.Delete(cleanupCtx, tmp); err != nil {
			r.logger.Warn("delete temporary key failed", zap.String("key", tmp), zap.Error(err))
		}
	}()

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = ProductKey(id)
	}
	if err := r.store.UnionStore(ctx, tmp, keys); err != nil {
		return nil, err
	}
	if err := r.store.Remove(ctx, tmp, ids...); err != nil {
		return nil, err
	}
	ranked, err := r.store.RangeDesc(ctx, tmp, max)
	if err != nil {
		return nil, err
	}
	return exclude(ranked, ids, max), nil
}

// SuggestProductsFor resolves SuggestIDs through the catalog, keeping rank
// order and dropping ids the catalog no longer knows.
func (r *Recommender) SuggestProductsFor(ctx context.Context, ids []string, max int) ([]domain.Product, error) {
	ranked, err := r.SuggestIDs(ctx, ids, max)
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		return nil, nil
	}
	products, err := r.catalog.ListByIDs(ctx, ranked)
	if err != nil {
		return nil, fmt.Errorf("load suggested products: %w", err)
	}
	rank := make(map[string]int, len(ranked))
	for i, id := range ranked {
		rank[id] = i
	}
	sort.SliceStable(products, func(i, j int) bool {
		return rank[products[i].ID] < rank[products[j].ID]
	})
	return products, nil
}

// ClearPurchases drops the co-purchase set of every catalog product.
func (r *Recommender) ClearPurchases(ctx context.Context) (int, error) {
	ids, err := r.catalog.AllIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list product ids: %w", err)
	}
	for start := 0; start < len(ids); start += clearBatchSize {
		end := min(start+clearBatchSize, len(ids))
		keys := make([]string, 0, end-start)
		for _, id := range ids[start:end] {
			keys = append(keys, ProductKey(id))
		}
		if err := r.store.Delete(ctx, keys...); err != nil {
			return start, err
		}
	}
	r.logger.Info("purchases cleared", zap.Int("products", len(ids)))
	return len(ids), nil
}

func normalize(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func exclude(ranked, inputs []string, max int) []string {
	skip := make(map[string]struct{}, len(inputs))
	for _, id := range inputs {
		skip[id] = struct{}{}
	}
	out := make([]string, 0, len(ranked))
	for _, id := range ranked {
		if _, ok := skip[id]; ok {
			continue
		}
		out = append(out, id)
		if len(out) == max {
			break
		}
	}
	return out
}

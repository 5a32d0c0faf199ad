package product

import (
	"context"
	"strings"

	"wheeldeal/internal/domain"
	productrepo "wheeldeal/internal/repository/product"

	"go.uber.org/zap"
)

type categoryLookup interface {
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
}

type imageURLs interface {
	URL(ctx context.Context, key string) (string, error)
}

// View is a product as shown to shoppers, with a resolved image URL.
type View struct {
	domain.Product
	ImageURL string `json:"imageUrl,omitempty"`
}

type Service struct {
	repo       productrepo.Repository
	categories categoryLookup
	images     imageURLs
	logger     *zap.Logger
}

func New(repo productrepo.Repository, categories categoryLookup, images imageURLs, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, categories: categories, images: images, logger: logger.Named("product_service")}
}

// ListAvailable lists products on sale, optionally within the category
// identified by categorySlug. An unknown slug yields domain.ErrNotFound.
func (s *Service) ListAvailable(ctx context.Context, categorySlug string) ([]View, error) {
	categoryID := ""
	if slug := strings.TrimSpace(categorySlug); slug != "" {
		c, err := s.categories.GetBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		categoryID = c.ID
	}
	products, err := s.repo.ListAvailable(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return s.Views(ctx, products), nil
}

// GetAvailable returns the product detail for id and slug. Unavailable
// products and slug mismatches are reported as not found.
func (s *Service) GetAvailable(ctx context.Context, id, slug string) (*View, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Available || (slug != "" && p.Slug != slug) {
		return nil, domain.ErrNotFound
	}
	v := s.view(ctx, *p)
	return &v, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	return s.repo.ListByIDs(ctx, ids)
}

func (s *Service) AllIDs(ctx context.Context) ([]string, error) {
	return s.repo.AllIDs(ctx)
}

func (s *Service) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	return s.repo.Upsert(ctx, p)
}

// Views attaches image URLs. A URL that cannot be resolved is left empty.
func (s *Service) Views(ctx context.Context, products []domain.Product) []View {
	out := make([]View, 0, len(products))
	for _, p := range products {
		out = append(out, s.view(ctx, p))
	}
	return out
}

func (s *Service) view(ctx context.Context, p domain.Product) View {
	v := View{Product: p}
	if s.images == nil || p.ImageKey == "" {
		return v
	}
	u, err := s.images.URL(ctx, p.ImageKey)
	if err != nil {
		s.logger.Warn("image url failed", zap.String("product_id", p.ID), zap.Error(err))
		return v
	}
	v.ImageURL = u
	return v
}

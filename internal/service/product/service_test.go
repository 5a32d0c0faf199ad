package product

import (
	"context"
	"errors"
	"testing"

	"wheeldeal/internal/domain"

	"github.com/shopspring/decimal"
)

type stubRepo struct {
	products       map[string]domain.Product
	lastCategoryID string
}

func (s *stubRepo) ListAvailable(_ context.Context, categoryID string) ([]domain.Product, error) {
	s.lastCategoryID = categoryID
	var out []domain.Product
	for _, p := range s.products {
		if p.Available && (categoryID == "" || p.CategoryID == categoryID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *stubRepo) ListByIDs(context.Context, []string) ([]domain.Product, error) { return nil, nil }
func (s *stubRepo) AllIDs(context.Context) ([]string, error)                     { return nil, nil }
func (s *stubRepo) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	return &p, nil
}

type stubCategories map[string]domain.Category

func (s stubCategories) GetBySlug(_ context.Context, slug string) (*domain.Category, error) {
	c, ok := s[slug]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

type stubImages struct {
	err error
}

func (s stubImages) URL(_ context.Context, key string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "https://img.example/" + key, nil
}

func newService(images imageURLs) (*Service, *stubRepo) {
	repo := &stubRepo{products: map[string]domain.Product{
		"p1": {Record: domain.Record{ID: "p1"}, CategoryID: "c1", Name: "Rim", Slug: "rim", ImageKey: "rim.jpg", Price: decimal.NewFromInt(10), Available: true},
		"p2": {Record: domain.Record{ID: "p2"}, CategoryID: "c2", Name: "Pad", Slug: "pad", Price: decimal.NewFromInt(5), Available: true},
		"p3": {Record: domain.Record{ID: "p3"}, CategoryID: "c1", Name: "Old", Slug: "old", Price: decimal.NewFromInt(1), Available: false},
	}}
	cats := stubCategories{"wheels": {Record: domain.Record{ID: "c1"}, Slug: "wheels"}}
	return New(repo, cats, images, nil), repo
}

func TestListAvailableByCategory(t *testing.T) {
	svc, repo := newService(stubImages{})
	views, err := svc.ListAvailable(context.Background(), "wheels")
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if repo.lastCategoryID != "c1" || len(views) != 1 || views[0].ID != "p1" {
		t.Fatalf("unexpected listing %+v (category %q)", views, repo.lastCategoryID)
	}
	if views[0].ImageURL != "https://img.example/rim.jpg" {
		t.Fatalf("unexpected image url %q", views[0].ImageURL)
	}

	if _, err := svc.ListAvailable(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown category, got %v", err)
	}
}

func TestGetAvailable(t *testing.T) {
	svc, _ := newService(nil)
	ctx := context.Background()

	v, err := svc.GetAvailable(ctx, "p1", "rim")
	if err != nil || v.ID != "p1" {
		t.Fatalf("GetAvailable: %+v %v", v, err)
	}
	if _, err := svc.GetAvailable(ctx, "p1", "wrong-slug"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for slug mismatch, got %v", err)
	}
	if _, err := svc.GetAvailable(ctx, "p3", "old"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unavailable product, got %v", err)
	}
}

func TestViewsTolerateImageFailure(t *testing.T) {
	svc, repo := newService(stubImages{err: errors.New("minio down")})
	views := svc.Views(context.Background(), []domain.Product{repo.products["p1"]})
	if len(views) != 1 || views[0].ImageURL != "" {
		t.Fatalf("expected view without url, got %+v", views)
	}
}

package seed

import (
	"context"
	"errors"
	"testing"
	"time"

	"wheeldeal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWriters struct {
	categories map[string]domain.Category
	products   map[string]domain.Product
	coupons    map[string]domain.Coupon
	failOn     string
}

func newMemWriters() *memWriters {
	return &memWriters{
		categories: map[string]domain.Category{},
		products:   map[string]domain.Product{},
		coupons:    map[string]domain.Coupon{},
	}
}

type catWriter struct{ m *memWriters }
type prodWriter struct{ m *memWriters }
type couponWriter struct{ m *memWriters }

func (w catWriter) Upsert(_ context.Context, c domain.Category) (*domain.Category, error) {
	c.ID = "cat-" + c.Slug
	w.m.categories[c.Slug] = c
	return &c, nil
}

func (w prodWriter) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	if p.Slug == w.m.failOn {
		return nil, errors.New("boom")
	}
	w.m.products[p.CategoryID+"/"+p.Slug] = p
	return &p, nil
}

func (w couponWriter) Upsert(_ context.Context, c domain.Coupon) (*domain.Coupon, error) {
	w.m.coupons[c.Code] = c
	return &c, nil
}

func (m *memWriters) writers() Writers {
	return Writers{Categories: catWriter{m}, Products: prodWriter{m}, Coupons: couponWriter{m}}
}

func TestApplyIsIdempotent(t *testing.T) {
	m := newMemWriters()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, Apply(context.Background(), m.writers(), now, nil))
	require.NoError(t, Apply(context.Background(), m.writers(), now, nil))

	assert.Len(t, m.categories, 3)
	assert.Len(t, m.products, 6)
	require.Contains(t, m.coupons, "WELCOME10")
	assert.True(t, m.coupons["WELCOME10"].ValidAt(now))

	rim := m.products["cat-wheels/alloy-rim-17"]
	assert.Equal(t, "129.90", rim.Price.StringFixed(2))
	assert.True(t, rim.Available)
}

func TestApplyStopsOnProductError(t *testing.T) {
	m := newMemWriters()
	m.failOn = "steel-rim-15"
	err := Apply(context.Background(), m.writers(), time.Now(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steel-rim-15")
	assert.Empty(t, m.coupons)
}

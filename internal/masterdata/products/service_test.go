package products

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotedesk/quotedesk/internal/masterdata/shared"
)

type mockRepository struct {
	byID   map[int64]Product
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{byID: make(map[int64]Product), nextID: 1}
}

func (m *mockRepository) List(_ context.Context, filters shared.ListFilters) ([]Product, int, error) {
	var out []Product
	for _, p := range m.byID {
		if filters.CategoryID != nil && p.CategoryID != *filters.CategoryID {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(_ context.Context, id int64) (Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return Product{}, shared.ErrNotFound
	}
	return p, nil
}

func (m *mockRepository) Create(_ context.Context, product Product) (Product, error) {
	for _, existing := range m.byID {
		if existing.Code == product.Code {
			return Product{}, shared.ErrDuplicateCode
		}
	}
	product.ID = m.nextID
	m.nextID++
	m.byID[product.ID] = product
	return product, nil
}

func (m *mockRepository) Update(_ context.Context, id int64, product Product) error {
	if _, ok := m.byID[id]; !ok {
		return shared.ErrNotFound
	}
	product.ID = id
	m.byID[id] = product
	return nil
}

func (m *mockRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func TestServiceCreateNormalizesCode(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), Product{
		Code: "  widget-a ", Name: " Widget Assembly ", CategoryID: 1, UnitPrice: 1000, TaxPct: 18,
	})
	require.NoError(t, err)
	assert.Equal(t, "WIDGET-A", created.Code)
	assert.Equal(t, "Widget Assembly", created.Name)

	// Same code in different casing collides after normalization.
	_, err = svc.Create(context.Background(), Product{
		Code: "Widget-A", Name: "Clone", CategoryID: 1,
	})
	assert.ErrorIs(t, err, shared.ErrDuplicateCode)
}

func TestServiceCreateValidatesPricingFields(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.Create(context.Background(), Product{Code: "W", Name: "Widget", CategoryID: 1, UnitPrice: -1})
	assert.EqualError(t, err, "product unit price cannot be negative")

	_, err = svc.Create(context.Background(), Product{Code: "W", Name: "Widget", CategoryID: 1, TaxPct: 101})
	assert.EqualError(t, err, "product tax percentage must be between 0 and 100")

	_, err = svc.Create(context.Background(), Product{Code: "W", Name: "Widget"})
	assert.EqualError(t, err, "product category is required")
}

func TestServiceUpdate(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), Product{Code: "W", Name: "Widget", CategoryID: 1, UnitPrice: 100, TaxPct: 9})
	require.NoError(t, err)

	require.NoError(t, svc.Update(context.Background(), created.ID, Product{Code: "W", Name: "Widget v2", CategoryID: 1, UnitPrice: 120, TaxPct: 9}))
	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget v2", got.Name)
	assert.Equal(t, 120.0, got.UnitPrice)

	err = svc.Update(context.Background(), created.ID, Product{Code: "", Name: "Widget", CategoryID: 1})
	assert.EqualError(t, err, "product code is required")
}

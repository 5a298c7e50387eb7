package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotedesk/quotedesk/internal/masterdata/shared"
)

type mockRepository struct {
	byID   map[int64]Account
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{byID: make(map[int64]Account), nextID: 1}
}

func (m *mockRepository) List(_ context.Context, filters shared.ListFilters) ([]Account, int, error) {
	var out []Account
	for _, a := range m.byID {
		if filters.IsActive != nil && a.IsActive != *filters.IsActive {
			continue
		}
		out = append(out, a)
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(_ context.Context, id int64) (Account, error) {
	a, ok := m.byID[id]
	if !ok {
		return Account{}, shared.ErrNotFound
	}
	return a, nil
}

func (m *mockRepository) Create(_ context.Context, account Account) (Account, error) {
	for _, existing := range m.byID {
		if existing.Code == account.Code {
			return Account{}, shared.ErrDuplicateCode
		}
	}
	account.ID = m.nextID
	m.nextID++
	m.byID[account.ID] = account
	return account, nil
}

func (m *mockRepository) Update(_ context.Context, id int64, account Account) error {
	if _, ok := m.byID[id]; !ok {
		return shared.ErrNotFound
	}
	account.ID = id
	m.byID[id] = account
	return nil
}

func (m *mockRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func TestServiceCreate(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), Account{Code: "ACME", Name: "Acme Pte Ltd", IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	_, err = svc.Create(context.Background(), Account{Code: "ACME", Name: "Acme Clone"})
	assert.ErrorIs(t, err, shared.ErrDuplicateCode)
}

func TestServiceCreateRejectsBlankFields(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.Create(context.Background(), Account{Code: "  ", Name: "Acme"})
	assert.EqualError(t, err, "account code is required")

	_, err = svc.Create(context.Background(), Account{Code: "ACME", Name: ""})
	assert.EqualError(t, err, "account name is required")
}

func TestServiceGetAndUpdate(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), Account{Code: "ACME", Name: "Acme Pte Ltd"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), 0)
	assert.Error(t, err)

	require.NoError(t, svc.Update(context.Background(), created.ID, Account{Code: "ACME", Name: "Acme Holdings"}))
	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Holdings", got.Name)

	err = svc.Update(context.Background(), 999, Account{Code: "X", Name: "Y"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestServiceDelete(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), Account{Code: "ACME", Name: "Acme Pte Ltd"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	_, err = svc.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

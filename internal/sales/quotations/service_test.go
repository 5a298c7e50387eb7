package quotations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotedesk/quotedesk/internal/masterdata/accounts"
)

type mockRepository struct {
	quotations map[int64]*Quotation
	lines      map[int64][]LineItem
	nextID     int64
	now        time.Time

	// Error injection
	createFailures int
	createErr      error
}

func newMockRepository(now time.Time) *mockRepository {
	return &mockRepository{
		quotations: make(map[int64]*Quotation),
		lines:      make(map[int64][]LineItem),
		nextID:     1,
		now:        now,
	}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Quotation, error) {
	q, ok := m.quotations[id]
	if !ok || q.DeletedAt != nil {
		return nil, ErrNotFound
	}
	out := *q
	out.Lines = nil
	for _, ln := range m.lines[id] {
		if ln.DeletedAt == nil {
			out.Lines = append(out.Lines, ln)
		}
	}
	return &out, nil
}

func (m *mockRepository) GetByNumber(ctx context.Context, number string) (*Quotation, error) {
	for id, q := range m.quotations {
		if q.QuotationNumber == number && q.DeletedAt == nil {
			return m.Get(ctx, id)
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepository) List(ctx context.Context, req ListQuotationsRequest) ([]QuotationWithDetails, int, error) {
	var out []QuotationWithDetails
	for _, q := range m.quotations {
		if q.DeletedAt != nil {
			continue
		}
		if req.Status != nil && q.Status != *req.Status {
			continue
		}
		out = append(out, QuotationWithDetails{Quotation: *q})
	}
	return out, len(out), nil
}

func (m *mockRepository) Create(ctx context.Context, quotation Quotation) (int64, error) {
	if m.createFailures > 0 {
		m.createFailures--
		return 0, m.createErr
	}
	for _, q := range m.quotations {
		if q.QuotationNumber == quotation.QuotationNumber {
			return 0, ErrDuplicateNumber
		}
		if quotation.Reference != "" && q.Reference == quotation.Reference {
			return 0, ErrDuplicateReference
		}
	}
	id := m.nextID
	m.nextID++
	quotation.ID = id
	quotation.CreatedAt = m.now
	quotation.UpdatedAt = m.now
	m.quotations[id] = &quotation
	return id, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, updates map[string]any) error {
	q, ok := m.quotations[id]
	if !ok || q.DeletedAt != nil {
		return ErrNotFound
	}
	for col, val := range updates {
		switch col {
		case "subtotal":
			q.Subtotal = val.(float64)
		case "discount_amount":
			q.DiscountAmount = val.(float64)
		case "tax_amount":
			q.TaxAmount = val.(float64)
		case "total_amount":
			q.TotalAmount = val.(float64)
		case "tax_rate":
			q.TaxRate = val.(float64)
		case "quote_date":
			q.QuoteDate = val.(time.Time)
		case "valid_until":
			q.ValidUntil = val.(time.Time)
		case "notes":
			notes := val.(string)
			q.Notes = &notes
		}
	}
	q.UpdatedAt = m.now
	return nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	q, ok := m.quotations[id]
	if !ok || q.DeletedAt != nil {
		return ErrNotFound
	}
	q.Status = status
	return nil
}

func (m *mockRepository) InsertLine(ctx context.Context, line LineItem) (int64, error) {
	line.ID = int64(len(m.lines[line.QuotationID]) + 1)
	m.lines[line.QuotationID] = append(m.lines[line.QuotationID], line)
	return line.ID, nil
}

func (m *mockRepository) DeleteLines(ctx context.Context, quotationID int64) error {
	deleted := m.now
	lines := m.lines[quotationID]
	for i := range lines {
		lines[i].DeletedAt = &deleted
	}
	return nil
}

func (m *mockRepository) SoftDelete(ctx context.Context, id int64) error {
	q, ok := m.quotations[id]
	if !ok || q.DeletedAt != nil {
		return ErrNotFound
	}
	deleted := m.now
	q.DeletedAt = &deleted
	return nil
}

func (m *mockRepository) LatestNumberInMonth(ctx context.Context, at time.Time) (string, error) {
	var latest *Quotation
	for _, q := range m.quotations {
		if q.CreatedAt.Year() != at.Year() || q.CreatedAt.Month() != at.Month() {
			continue
		}
		if latest == nil || q.ID > latest.ID {
			latest = q
		}
	}
	if latest == nil {
		return "", nil
	}
	return latest.QuotationNumber, nil
}

func (m *mockRepository) ListExpired(ctx context.Context, asOf time.Time) ([]Quotation, error) {
	var out []Quotation
	for _, q := range m.quotations {
		if q.DeletedAt != nil {
			continue
		}
		if (q.Status == StatusPending || q.Status == StatusApproved) && q.ValidUntil.Before(asOf) {
			out = append(out, *q)
		}
	}
	return out, nil
}

type mockAccounts struct{}

func (mockAccounts) Get(ctx context.Context, id int64) (accounts.Account, error) {
	return accounts.Account{ID: id, Code: "ACME", Name: "Acme Pte Ltd", IsActive: true}, nil
}

func newTestService(repo *mockRepository, now time.Time) *Service {
	svc := NewService(repo, mockAccounts{}, nil)
	svc.now = func() time.Time { return now }
	return svc
}

func createRequest(lines ...LineItemInput) CreateQuotationRequest {
	return CreateQuotationRequest{
		AccountID:  1,
		QuoteDate:  time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC),
		ValidUntil: time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC),
		TaxRate:    18,
		Lines:      lines,
	}
}

func TestCreateComputesTotals(t *testing.T) {
	now := time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)
	repo := newMockRepository(now)
	svc := newTestService(repo, now)

	q, err := svc.Create(context.Background(), createRequest(
		LineItemInput{ProductID: 1, Quantity: 2, ProposedUnitPrice: 1000.00, DiscountPct: 10, TaxPct: 18},
	), 7)
	require.NoError(t, err)

	require.Len(t, q.Lines, 1)
	line := q.Lines[0]
	assert.Equal(t, 2000.00, line.Subtotal)
	assert.Equal(t, 200.00, line.DiscountAmount)
	assert.Equal(t, 1800.00, line.TaxableAmount)
	assert.Equal(t, 324.00, line.TaxAmount)
	assert.Equal(t, 2124.00, line.Total)

	assert.Equal(t, StatusDraft, q.Status)
	assert.Equal(t, int64(7), q.CreatedBy)
}

func TestCreateAggregatesFromQuotationTaxRate(t *testing.T) {
	now := time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)
	repo := newMockRepository(now)
	svc := newTestService(repo, now)

	q, err := svc.Create(context.Background(), createRequest(
		LineItemInput{ProductID: 1, Quantity: 2, ProposedUnitPrice: 1000.00, DiscountPct: 10, TaxPct: 18},
		LineItemInput{ProductID: 2, Quantity: 5, ProposedUnitPrice: 1000.00, TaxPct: 5},
	), 7)
	require.NoError(t, err)

	assert.Equal(t, 7000.00, q.Subtotal)
	assert.Equal(t, 200.00, q.DiscountAmount)
	assert.Equal(t, 1224.00, q.TaxAmount)
	assert.Equal(t, 7824.00, q.TotalAmount)
	assert.Equal(t, q.TotalAmount, q.GrandTotal())
}

func TestCreateAllocatesNumber(t *testing.T) {
	now := time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)
	repo := newMockRepository(now)
	svc := newTestService(repo, now)

	q, err := svc.Create(context.Background(), createRequest(), 1)
	require.NoError(t, err)

	assert.Len(t, q.QuotationNumber, 12)
	assert.Equal(t, "QT2025110001", q.QuotationNumber)
}

func TestCreateSequenceContinues(t *testing.T) {
	now := time.Date(2025, 11, 20, 10, 0, 0, 0, time.UTC)
	repo := newMockRepository(now)
	svc := newTestService(repo, now)

	for _, number := range []string{"QT2025110001", "QT2025110002", "QT2025110003"} {
		req := createRequest()
		req.QuotationNumber = number
		_, err := svc.Create(context.Background(), req, 1)
		require.NoError(t, err)
	}

	q, err := svc.Create(context.Background(), createRequest(), 1)
	require.NoError(t, err)
	assert.Equal(t, "QT2025110004", q.QuotationNumber)
}

func TestCreateSequenceResetsNextMonth(t *testing.T) {
	november := time.Date(2025, 11, 20, 10, 0, 0, 0, time.UTC)
	repo := newMockRepository(november)
	svc := newTestService(repo, november)

	req := createRequest()
	req.QuotationNumber = "QT2025110042"
	_, err := svc.Create(context.Background(), req, 1)
	require.NoError(t, err)

	december := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)
	repo.now = december
	svc.now = func() time.Time { return december }

	q, err := svc.Create(context.Background(), createRequest(), 1)
	require.NoError(t, err)
	assert.Equal(t, "QT2025120001", q.QuotationNumber)
}

func TestCreateSequenceSurvivesDeletedLatest(t *testing.T) {
	now := time.Date(2025, 11, 20, 10, 0, 0, 0, time.UTC)
	repo := newMockRepository(now)
	svc := newTestService(repo, now)

	req := createRequest()
	req.QuotationNumber = "QT2025110005"
	q, err := svc.Create(context.Background(), req, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), q.ID))

	next, err := svc.Create(context.Background(), createRequest(), 1)
	require.NoError(t, err)
	assert.Equal(t, "QT2025110006", next.QuotationNumber)
}

func TestCreateRetriesOnNumberConflict(t *testing.T) {
	now := time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)
	repo := newMockRepository(now)
	repo.createFailures = 1
	repo.createErr = ErrDuplicateNumber
	svc := newTestService(repo, now)

	q, err := svc.Create(context.Background(), createRequest(), 1)
	require.NoError(t, err)
	assert.Equal(t, "QT2025110001", q.QuotationNumber)
}

func TestCreateConflictExhaustsRetries(t *testing.T) {
	now := time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)
	repo := newMockRepository(now)
	repo.createFailures = maxNumberAttempts
	repo.createErr = ErrDuplicateNumber
	svc := newTestService(repo, now)

	_, err := svc.Create(context.Background(), createRequest(), 1)
	assert.ErrorIs(t, err, ErrNumberExhausted)
}

func TestCreateExplicitNumberConflictIsNotRetried(t *testing.T) {
	now := time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)
	repo := newMockRepository(now)
	svc := newTestService(repo, now)

	req := createRequest()
	req.QuotationNumber = "QT2025110009"
	_, err := svc.Create(context.Background(), req, 1)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), req, 1)
	assert.ErrorIs(t, err, ErrDuplicateNumber)
}

func TestCreateRejectsMalformedExplicitNumber(t *testing.T) {
	now := time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)
	repo := newMockRepository(now)
	svc := newTestService(repo, now)

	req := createRequest()
	req.QuotationNumber = "QT20251100AB"
	_, err := svc.Create(context.Background(), req, 1)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, repo.quotations)

	// A rejected number must not poison sequence derivation for the month.
	q, err := svc.Create(context.Background(), createRequest(), 1)
	require.NoError(t, err)
	assert.Equal(t, "QT2025110001", q.QuotationNumber)
}

func TestCreateRejectsNegativeQuantity(t *testing.T) {
	now := time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)
	repo := newMockRepository(now)
	svc := newTestService(repo, now)

	_, err := svc.Create(context.Background(), createRequest(
		LineItemInput{ProductID: 1, Quantity: -1, ProposedUnitPrice: 100},
	), 1)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, repo.quotations)
}

func TestCreateRejectsOutOfRangeDiscount(t *testing.T) {
	now := time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)
	repo := newMockRepository(now)
	svc := newTestService(repo, now)

	_, err := svc.Create(context.Background(), createRequest(
		LineItemInput{ProductID: 1, Quantity: 1, ProposedUnitPrice: 100, DiscountPct: 101},
	), 1)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateWithNoLines(t *testing.T) {
	now := time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)
	repo := newMockRepository(now)
	svc := newTestService(repo, now)

	q, err := svc.Create(context.Background(), createRequest(), 1)
	require.NoError(t, err)
	assert.Zero(t, q.Subtotal)
	assert.Zero(t, q.TotalAmount)
}

func TestUpdateRecomputesTotals(t *testing.T) {
	now := time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)
	repo := newMockRepository(now)
	svc := newTestService(repo, now)

	q, err := svc.Create(context.Background(), createRequest(
		LineItemInput{ProductID: 1, Quantity: 1, ProposedUnitPrice: 100},
	), 1)
	require.NoError(t, err)

	lines := []LineItemInput{
		{ProductID: 1, Quantity: 2, ProposedUnitPrice: 1000.00, DiscountPct: 10, TaxPct: 18},
		{ProductID: 2, Quantity: 5, ProposedUnitPrice: 1000.00, TaxPct: 5},
	}
	updated, err := svc.Update(context.Background(), q.ID, UpdateQuotationRequest{Lines: &lines})
	require.NoError(t, err)

	assert.Equal(t, 7000.00, updated.Subtotal)
	assert.Equal(t, 200.00, updated.DiscountAmount)
	assert.Equal(t, 1224.00, updated.TaxAmount)
	assert.Equal(t, 7824.00, updated.TotalAmount)
	assert.Len(t, updated.Lines, 2)
}

func TestUpdateTaxRateOnlyRecomputes(t *testing.T) {
	now := time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)
	repo := newMockRepository(now)
	svc := newTestService(repo, now)

	q, err := svc.Create(context.Background(), createRequest(
		LineItemInput{ProductID: 1, Quantity: 2, ProposedUnitPrice: 1000.00, DiscountPct: 10, TaxPct: 18},
	), 1)
	require.NoError(t, err)

	rate := 10.0
	updated, err := svc.Update(context.Background(), q.ID, UpdateQuotationRequest{TaxRate: &rate})
	require.NoError(t, err)

	assert.Equal(t, 2000.00, updated.Subtotal)
	assert.Equal(t, 180.00, updated.TaxAmount)
	assert.Equal(t, 1980.00, updated.TotalAmount)
}

func TestUpdateRejectsNonDraft(t *testing.T) {
	now := time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)
	repo := newMockRepository(now)
	svc := newTestService(repo, now)

	q, err := svc.Create(context.Background(), createRequest(), 1)
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), q.ID)
	require.NoError(t, err)

	notes := "late edit"
	_, err = svc.Update(context.Background(), q.ID, UpdateQuotationRequest{Notes: &notes})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestStatusTransitions(t *testing.T) {
	now := time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)
	repo := newMockRepository(now)
	svc := newTestService(repo, now)
	ctx := context.Background()

	q, err := svc.Create(ctx, createRequest(), 1)
	require.NoError(t, err)

	q, err = svc.Submit(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, q.Status)

	q, err = svc.Approve(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, q.Status)

	q, err = svc.MarkOrderReceived(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOrderReceived, q.Status)
}

func TestRejectRequiresPending(t *testing.T) {
	now := time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)
	repo := newMockRepository(now)
	svc := newTestService(repo, now)
	ctx := context.Background()

	q, err := svc.Create(ctx, createRequest(), 1)
	require.NoError(t, err)

	_, err = svc.Reject(ctx, q.ID)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.Submit(ctx, q.ID)
	require.NoError(t, err)
	q, err = svc.Reject(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, q.Status)
}

func TestUnknownStatusIsRejectedBeforePersistence(t *testing.T) {
	now := time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)
	repo := newMockRepository(now)
	svc := newTestService(repo, now)
	ctx := context.Background()

	q, err := svc.Create(ctx, createRequest(), 1)
	require.NoError(t, err)

	_, err = svc.transition(ctx, q.ID, StatusDraft, Status("cancelled"))
	assert.ErrorIs(t, err, ErrInvalidStatus)

	stored, err := svc.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, stored.Status)
}

func TestListRejectsUnknownStatusFilter(t *testing.T) {
	now := time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)
	repo := newMockRepository(now)
	svc := newTestService(repo, now)

	bogus := Status("cancelled")
	_, _, err := svc.List(context.Background(), ListQuotationsRequest{Status: &bogus})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestDeleteIsSoft(t *testing.T) {
	now := time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)
	repo := newMockRepository(now)
	svc := newTestService(repo, now)
	ctx := context.Background()

	q, err := svc.Create(ctx, createRequest(), 1)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, q.ID))
	_, err = svc.Get(ctx, q.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Row is retained for numbering continuity.
	assert.NotNil(t, repo.quotations[q.ID].DeletedAt)
}

package export

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotedesk/quotedesk/internal/masterdata/accounts"
	"github.com/quotedesk/quotedesk/internal/masterdata/contacts"
	"github.com/quotedesk/quotedesk/internal/masterdata/products"
	"github.com/quotedesk/quotedesk/internal/sales/quotations"
)

type fakeConverter struct {
	html string
}

func (f *fakeConverter) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	f.html = html
	return []byte("MOCK-PDF-CONTENT"), nil
}

type fakeAccounts struct{}

func (fakeAccounts) Get(ctx context.Context, id int64) (accounts.Account, error) {
	return accounts.Account{ID: id, Name: "Acme Pte Ltd", BillingAddress: "12 Harbour Road"}, nil
}

type fakeContacts struct{}

func (fakeContacts) Get(ctx context.Context, id int64) (contacts.Contact, error) {
	return contacts.Contact{ID: id, Name: "Dana Lim"}, nil
}

type fakeProducts struct{}

func (fakeProducts) Get(ctx context.Context, id int64) (products.Product, error) {
	return products.Product{ID: id, Name: "Widget Assembly"}, nil
}

func testQuotation() *quotations.Quotation {
	notes := "Lead time four weeks from order confirmation."
	contactID := int64(3)
	return &quotations.Quotation{
		ID:              1,
		QuotationNumber: "QT2025110007",
		Reference:       "PO-REQ-881",
		AccountID:       2,
		ContactID:       &contactID,
		QuoteDate:       time.Date(2025, 11, 7, 0, 0, 0, 0, time.UTC),
		ValidUntil:      time.Date(2025, 12, 7, 0, 0, 0, 0, time.UTC),
		Status:          quotations.StatusDraft,
		TaxRate:         18,
		Subtotal:        7000.00,
		DiscountAmount:  200.00,
		TaxAmount:       1224.00,
		TotalAmount:     7824.00,
		Notes:           &notes,
		Lines: []quotations.LineItem{
			{ProductID: 5, Quantity: 2, ProposedUnitPrice: 1000.00, DiscountPct: 10, TaxPct: 18, Subtotal: 2000.00, DiscountAmount: 200.00, TaxableAmount: 1800.00, TaxAmount: 324.00, Total: 2124.00},
			{ProductID: 6, Quantity: 5, ProposedUnitPrice: 1000.00, Subtotal: 5000.00, TaxableAmount: 5000.00, TaxAmount: 250.00, Total: 5250.00, TaxPct: 5},
		},
	}
}

func TestRenderQuote(t *testing.T) {
	converter := &fakeConverter{}
	renderer, err := NewQuoteRenderer(converter, fakeAccounts{}, fakeContacts{}, fakeProducts{}, "USD")
	require.NoError(t, err)

	pdf, err := renderer.RenderQuote(context.Background(), testQuotation())
	require.NoError(t, err)
	assert.Equal(t, "MOCK-PDF-CONTENT", string(pdf))

	html := converter.html
	assert.Contains(t, html, "QT2025110007")
	assert.Contains(t, html, "PO-REQ-881")
	assert.Contains(t, html, "Acme Pte Ltd")
	assert.Contains(t, html, "Attn: Dana Lim")
	assert.Contains(t, html, "Widget Assembly")
	assert.Contains(t, html, "Lead time four weeks")

	// Amounts carry two decimals and a thousands separator.
	assert.Contains(t, html, "7,824.00")
	assert.Contains(t, html, "1,224.00")
	assert.Contains(t, html, "2,124.00")
}

func TestRenderQuoteUnknownCurrency(t *testing.T) {
	_, err := NewQuoteRenderer(&fakeConverter{}, fakeAccounts{}, fakeContacts{}, fakeProducts{}, "ZZZ")
	assert.Error(t, err)
}

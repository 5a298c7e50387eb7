// Package export renders printable quote documents. HTML is produced
// from an embedded template and converted to PDF by the Gotenberg
// service.
package export

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/quotedesk/quotedesk/internal/masterdata/accounts"
	"github.com/quotedesk/quotedesk/internal/masterdata/contacts"
	"github.com/quotedesk/quotedesk/internal/masterdata/products"
	"github.com/quotedesk/quotedesk/internal/sales/quotations"
	"github.com/quotedesk/quotedesk/web"
)

// PDFConverter turns rendered HTML into PDF bytes.
type PDFConverter interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

type AccountReader interface {
	Get(ctx context.Context, id int64) (accounts.Account, error)
}

type ContactReader interface {
	Get(ctx context.Context, id int64) (contacts.Contact, error)
}

type ProductReader interface {
	Get(ctx context.Context, id int64) (products.Product, error)
}

// QuotePayload is the template model for the quote document.
type QuotePayload struct {
	Number         string
	Reference      string
	StatusLabel    string
	QuoteDate      time.Time
	ValidUntil     time.Time
	AccountName    string
	ContactName    string
	BillingAddress string
	Lines          []QuoteLine
	TaxRate        float64
	Subtotal       float64
	DiscountAmount float64
	TaxAmount      float64
	GrandTotal     float64
	Notes          string
}

type QuoteLine struct {
	LineNumber  int
	Description string
	Quantity    int64
	UnitPrice   float64
	DiscountPct float64
	TaxPct      float64
	Total       float64
}

// QuoteRenderer builds the quote HTML and hands it to Gotenberg.
type QuoteRenderer struct {
	converter PDFConverter
	accounts  AccountReader
	contacts  ContactReader
	products  ProductReader
	tpl       *template.Template
}

func NewQuoteRenderer(converter PDFConverter, accounts AccountReader, contacts ContactReader, products ProductReader, currencyCode string) (*QuoteRenderer, error) {
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", currencyCode, err)
	}
	printer := message.NewPrinter(language.English)
	symbol := printer.Sprint(currency.Symbol(unit))

	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("January 2, 2006")
		},
		"money": func(v float64) string {
			return symbol + printer.Sprintf("%.2f", v)
		},
		"pct": func(v float64) string {
			s := fmt.Sprintf("%.2f", v)
			s = strings.TrimRight(s, "0")
			return strings.TrimRight(s, ".")
		},
		"now": func() string {
			return time.Now().Format("January 2, 2006")
		},
	}

	tpl, err := template.New("quote_pdf.html").Funcs(funcMap).ParseFS(
		web.Templates, "templates/reports/quote_pdf.html",
	)
	if err != nil {
		return nil, fmt.Errorf("parse quote template: %w", err)
	}

	return &QuoteRenderer{
		converter: converter,
		accounts:  accounts,
		contacts:  contacts,
		products:  products,
		tpl:       tpl,
	}, nil
}

// RenderQuote produces the PDF for a quotation.
func (r *QuoteRenderer) RenderQuote(ctx context.Context, quotation *quotations.Quotation) ([]byte, error) {
	payload, err := r.buildPayload(ctx, quotation)
	if err != nil {
		return nil, err
	}
	html, err := r.buildHTML(payload)
	if err != nil {
		return nil, fmt.Errorf("render quote template: %w", err)
	}
	return r.converter.RenderHTML(ctx, html)
}

func (r *QuoteRenderer) buildPayload(ctx context.Context, quotation *quotations.Quotation) (QuotePayload, error) {
	payload := QuotePayload{
		Number:         quotation.QuotationNumber,
		Reference:      quotation.Reference,
		StatusLabel:    strings.ReplaceAll(string(quotation.Status), "_", " "),
		QuoteDate:      quotation.QuoteDate,
		ValidUntil:     quotation.ValidUntil,
		TaxRate:        quotation.TaxRate,
		Subtotal:       quotation.Subtotal,
		DiscountAmount: quotation.DiscountAmount,
		TaxAmount:      quotation.TaxAmount,
		GrandTotal:     quotation.GrandTotal(),
	}
	if quotation.Notes != nil {
		payload.Notes = *quotation.Notes
	}
	payload.Lines = make([]QuoteLine, len(quotation.Lines))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		account, err := r.accounts.Get(ctx, quotation.AccountID)
		if err != nil {
			return fmt.Errorf("load account: %w", err)
		}
		payload.AccountName = account.Name
		payload.BillingAddress = account.BillingAddress
		return nil
	})
	if quotation.ContactID != nil {
		contactID := *quotation.ContactID
		g.Go(func() error {
			contact, err := r.contacts.Get(ctx, contactID)
			if err == nil {
				payload.ContactName = contact.Name
			}
			return nil
		})
	}
	for i, line := range quotation.Lines {
		ql := QuoteLine{
			LineNumber:  i + 1,
			Quantity:    line.Quantity,
			UnitPrice:   line.ProposedUnitPrice,
			DiscountPct: line.DiscountPct,
			TaxPct:      line.TaxPct,
			Total:       line.Total,
		}
		if line.Description != nil && *line.Description != "" {
			ql.Description = *line.Description
		}
		payload.Lines[i] = ql
		if ql.Description == "" {
			i, productID := i, line.ProductID
			g.Go(func() error {
				if product, err := r.products.Get(ctx, productID); err == nil {
					payload.Lines[i].Description = product.Name
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return QuotePayload{}, err
	}
	return payload, nil
}

func (r *QuoteRenderer) buildHTML(payload QuotePayload) (string, error) {
	buf := &bytes.Buffer{}
	if err := r.tpl.ExecuteTemplate(buf, "quote_pdf.html", payload); err != nil {
		return "", err
	}
	return buf.String(), nil
}

package quotations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quotedesk/quotedesk/internal/masterdata/accounts"
	"github.com/quotedesk/quotedesk/internal/observability"
	"github.com/quotedesk/quotedesk/internal/sales/calc"
)

var (
	ErrInvalidStatus   = errors.New("invalid quotation status")
	ErrValidation      = errors.New("validation failed")
	ErrNumberExhausted = errors.New("quotation number allocation failed after retries")
)

// maxNumberAttempts bounds the allocate-insert retry loop when two
// creations race on the same monthly sequence.
const maxNumberAttempts = 3

type AccountReader interface {
	Get(ctx context.Context, id int64) (accounts.Account, error)
}

type Service struct {
	repo     Repository
	accounts AccountReader
	metrics  *observability.Metrics
	now      func() time.Time
}

func NewService(repo Repository, accounts AccountReader, metrics *observability.Metrics) *Service {
	return &Service{repo: repo, accounts: accounts, metrics: metrics, now: time.Now}
}

func (s *Service) Get(ctx context.Context, id int64) (*Quotation, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListQuotationsRequest) ([]QuotationWithDetails, int, error) {
	if req.Status != nil && !ValidStatus(*req.Status) {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrInvalidStatus, *req.Status)
	}
	return s.repo.List(ctx, req)
}

// Create persists a new draft quotation with its lines. The quotation
// number is allocated inside the transaction unless the caller supplied
// one; a number collision under concurrent creation triggers a fresh
// allocation, bounded by maxNumberAttempts.
func (s *Service) Create(ctx context.Context, req CreateQuotationRequest, createdBy int64) (*Quotation, error) {
	if req.ValidUntil.Before(req.QuoteDate) {
		return nil, fmt.Errorf("%w: valid_until must not precede quote_date", ErrValidation)
	}
	if req.QuotationNumber != "" && !ValidNumber(req.QuotationNumber) {
		return nil, fmt.Errorf("%w: quotation number must be QT followed by ten digits", ErrValidation)
	}
	if err := validateLines(req.Lines); err != nil {
		return nil, err
	}
	if _, err := s.accounts.Get(ctx, req.AccountID); err != nil {
		return nil, fmt.Errorf("verify account: %w", err)
	}

	lines, totals := buildLines(req.Lines, req.TaxRate)

	quotation := Quotation{
		QuotationNumber: req.QuotationNumber,
		Reference:       req.Reference,
		AccountID:       req.AccountID,
		ContactID:       req.ContactID,
		QuoteDate:       req.QuoteDate,
		ValidUntil:      req.ValidUntil,
		Status:          StatusDraft,
		TaxRate:         req.TaxRate,
		Subtotal:        totals.Subtotal,
		DiscountAmount:  totals.DiscountAmount,
		TaxAmount:       totals.TaxAmount,
		TotalAmount:     totals.TotalAmount,
		Notes:           req.Notes,
		CreatedBy:       createdBy,
	}

	var quotationID int64
	allocate := req.QuotationNumber == ""

	for attempt := 1; ; attempt++ {
		err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
			if allocate {
				latest, err := repo.LatestNumberInMonth(ctx, s.now())
				if err != nil {
					return err
				}
				number, err := NextNumber(latest, s.now())
				if err != nil {
					return err
				}
				quotation.QuotationNumber = number
			}

			id, err := repo.Create(ctx, quotation)
			if err != nil {
				return err
			}
			quotationID = id

			for _, line := range lines {
				line.QuotationID = id
				if _, err := repo.InsertLine(ctx, line); err != nil {
					return err
				}
			}
			return nil
		})
		if err == nil {
			break
		}
		if allocate && errors.Is(err, ErrDuplicateNumber) {
			s.metrics.NumberRetry()
			if attempt < maxNumberAttempts {
				continue
			}
			return nil, fmt.Errorf("%w: %d attempts", ErrNumberExhausted, attempt)
		}
		return nil, err
	}

	s.metrics.QuotationCreated()
	return s.repo.Get(ctx, quotationID)
}

// Update applies header edits and optional full line replacement. Only
// draft quotations may change; totals are recomputed in the same
// transaction whenever lines or the tax rate move.
func (s *Service) Update(ctx context.Context, id int64, req UpdateQuotationRequest) (*Quotation, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status != StatusDraft {
		return nil, fmt.Errorf("%w: only draft quotations can be edited", ErrInvalidStatus)
	}

	quoteDate := existing.QuoteDate
	if req.QuoteDate != nil {
		quoteDate = *req.QuoteDate
	}
	validUntil := existing.ValidUntil
	if req.ValidUntil != nil {
		validUntil = *req.ValidUntil
	}
	if validUntil.Before(quoteDate) {
		return nil, fmt.Errorf("%w: valid_until must not precede quote_date", ErrValidation)
	}

	taxRate := existing.TaxRate
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}

	var newLines []LineItem
	totals := calc.QuotationTotals{
		Subtotal:       existing.Subtotal,
		DiscountAmount: existing.DiscountAmount,
		TaxAmount:      existing.TaxAmount,
		TotalAmount:    existing.TotalAmount,
	}
	recompute := req.Lines != nil || req.TaxRate != nil

	if req.Lines != nil {
		if err := validateLines(*req.Lines); err != nil {
			return nil, err
		}
		newLines, totals = buildLines(*req.Lines, taxRate)
	} else if recompute {
		inputs := make([]calc.LineInput, len(existing.Lines))
		for i, ln := range existing.Lines {
			inputs[i] = calc.LineInput{Subtotal: ln.Subtotal, DiscountAmount: ln.DiscountAmount}
		}
		totals = calc.RecomputeTotals(inputs, taxRate)
	}

	updates := make(map[string]any)
	if req.Reference != nil {
		updates["reference"] = nullIfEmpty(*req.Reference)
	}
	if req.ContactID != nil {
		updates["contact_id"] = *req.ContactID
	}
	if req.QuoteDate != nil {
		updates["quote_date"] = *req.QuoteDate
	}
	if req.ValidUntil != nil {
		updates["valid_until"] = *req.ValidUntil
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.TaxRate != nil {
		updates["tax_rate"] = taxRate
	}
	if recompute {
		updates["subtotal"] = totals.Subtotal
		updates["discount_amount"] = totals.DiscountAmount
		updates["tax_amount"] = totals.TaxAmount
		updates["total_amount"] = totals.TotalAmount
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if len(updates) > 0 {
			if err := repo.Update(ctx, id, updates); err != nil {
				return err
			}
		}
		if req.Lines != nil {
			if err := repo.DeleteLines(ctx, id); err != nil {
				return err
			}
			for _, line := range newLines {
				line.QuotationID = id
				if _, err := repo.InsertLine(ctx, line); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Submit(ctx context.Context, id int64) (*Quotation, error) {
	return s.transition(ctx, id, StatusDraft, StatusPending)
}

func (s *Service) Approve(ctx context.Context, id int64) (*Quotation, error) {
	return s.transition(ctx, id, StatusPending, StatusApproved)
}

func (s *Service) Reject(ctx context.Context, id int64) (*Quotation, error) {
	return s.transition(ctx, id, StatusPending, StatusRejected)
}

func (s *Service) MarkOrderReceived(ctx context.Context, id int64) (*Quotation, error) {
	return s.transition(ctx, id, StatusApproved, StatusOrderReceived)
}

func (s *Service) transition(ctx context.Context, id int64, from, to Status) (*Quotation, error) {
	if !ValidStatus(to) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidStatus, to)
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status != from {
		return nil, fmt.Errorf("%w: cannot move %s quotation to %s", ErrInvalidStatus, existing.Status, to)
	}
	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}

// buildLines derives the stored amounts for each requested line and
// aggregates quotation totals from the same derived figures.
func buildLines(reqs []LineItemInput, taxRate float64) ([]LineItem, calc.QuotationTotals) {
	lines := make([]LineItem, 0, len(reqs))
	inputs := make([]calc.LineInput, 0, len(reqs))
	for i, lr := range reqs {
		lt := calc.ComputeLine(float64(lr.Quantity), lr.ProposedUnitPrice, lr.DiscountPct, lr.TaxPct)
		order := lr.LineOrder
		if order == 0 {
			order = i + 1
		}
		lines = append(lines, LineItem{
			ProductID:         lr.ProductID,
			Description:       lr.Description,
			Quantity:          lr.Quantity,
			ProposedUnitPrice: lr.ProposedUnitPrice,
			DiscountPct:       lr.DiscountPct,
			TaxPct:            lr.TaxPct,
			Subtotal:          lt.Subtotal,
			DiscountAmount:    lt.DiscountAmount,
			TaxableAmount:     lt.TaxableAmount,
			TaxAmount:         lt.TaxAmount,
			Total:             lt.Total,
			LineOrder:         order,
		})
		inputs = append(inputs, calc.LineInput{Subtotal: lt.Subtotal, DiscountAmount: lt.DiscountAmount})
	}
	return lines, calc.RecomputeTotals(inputs, taxRate)
}

// validateLines rejects out-of-range numeric input before the calculator
// is invoked. Values are never clamped.
func validateLines(reqs []LineItemInput) error {
	for i, lr := range reqs {
		switch {
		case lr.Quantity < 0:
			return fmt.Errorf("%w: line %d quantity cannot be negative", ErrValidation, i+1)
		case lr.ProposedUnitPrice < 0:
			return fmt.Errorf("%w: line %d unit price cannot be negative", ErrValidation, i+1)
		case lr.DiscountPct < 0 || lr.DiscountPct > 100:
			return fmt.Errorf("%w: line %d discount must be between 0 and 100", ErrValidation, i+1)
		case lr.TaxPct < 0:
			return fmt.Errorf("%w: line %d tax cannot be negative", ErrValidation, i+1)
		}
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

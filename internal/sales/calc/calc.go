// Package calc holds the quotation arithmetic: per-line totals and the
// quotation-level aggregate. All monetary outputs are rounded to two
// decimal places, and every derived figure is computed from the already
// rounded figure before it, so the stored values always reconcile.
package calc

import "math"

// LineTotals is the full derived breakdown for one quotation line.
type LineTotals struct {
	Subtotal       float64
	DiscountAmount float64
	TaxableAmount  float64
	TaxAmount      float64
	Total          float64
}

// QuotationTotals is the aggregate over a quotation's lines. TotalAmount
// is the single stored grand total; GrandTotal on the quotation model is
// an accessor over the same value.
type QuotationTotals struct {
	Subtotal       float64
	DiscountAmount float64
	TaxAmount      float64
	TotalAmount    float64
}

// LineInput is the sum-relevant slice of a persisted line item.
type LineInput struct {
	Subtotal       float64
	DiscountAmount float64
}

// ComputeLine derives the five stored amounts for a single line. Inputs
// are assumed validated (quantity and price non-negative, discount within
// [0,100], tax non-negative); the function itself is total and pure.
func ComputeLine(quantity, unitPrice, discountPct, taxPct float64) LineTotals {
	subtotal := round2(quantity * unitPrice)
	discount := round2(subtotal * (discountPct / 100))
	taxable := round2(subtotal - discount)
	tax := round2(taxable * (taxPct / 100))
	return LineTotals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxableAmount:  taxable,
		TaxAmount:      tax,
		Total:          round2(taxable + tax),
	}
}

// RecomputeTotals aggregates line subtotals and discounts, then applies
// the quotation-level tax rate against the net subtotal. The aggregate
// tax deliberately ignores the per-line tax amounts: the quotation rate
// is authoritative for the total, per-line tax is display-only. An empty
// line set yields all zeros.
func RecomputeTotals(lines []LineInput, taxRate float64) QuotationTotals {
	var subtotal, discount float64
	for _, ln := range lines {
		subtotal += ln.Subtotal
		discount += ln.DiscountAmount
	}
	subtotal = round2(subtotal)
	discount = round2(discount)
	tax := round2((subtotal - discount) * (taxRate / 100))
	return QuotationTotals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxAmount:      tax,
		TotalAmount:    round2(subtotal - discount + tax),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

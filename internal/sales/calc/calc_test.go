package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeLine(t *testing.T) {
	tests := []struct {
		name        string
		quantity    float64
		unitPrice   float64
		discountPct float64
		taxPct      float64
		want        LineTotals
	}{
		{
			name:      "standard discount and tax",
			quantity:  2, unitPrice: 1000.00, discountPct: 10, taxPct: 18,
			want: LineTotals{Subtotal: 2000.00, DiscountAmount: 200.00, TaxableAmount: 1800.00, TaxAmount: 324.00, Total: 2124.00},
		},
		{
			name:      "no discount no tax",
			quantity:  5, unitPrice: 100.00,
			want: LineTotals{Subtotal: 500.00, TaxableAmount: 500.00, Total: 500.00},
		},
		{
			name:      "full discount",
			quantity:  3, unitPrice: 250.00, discountPct: 100, taxPct: 18,
			want: LineTotals{Subtotal: 750.00, DiscountAmount: 750.00},
		},
		{
			name:      "zero quantity",
			quantity:  0, unitPrice: 999.99, discountPct: 5, taxPct: 10,
			want: LineTotals{},
		},
		{
			name:      "fractional rounding",
			quantity:  3, unitPrice: 33.33, discountPct: 10, taxPct: 12,
			want: LineTotals{Subtotal: 99.99, DiscountAmount: 10.00, TaxableAmount: 89.99, TaxAmount: 10.80, Total: 100.79},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeLine(tt.quantity, tt.unitPrice, tt.discountPct, tt.taxPct)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeLineIdentities(t *testing.T) {
	cases := []struct{ qty, price, disc, tax float64 }{
		{1, 0.01, 0, 0},
		{7, 19.95, 12.5, 18},
		{100, 3.33, 33.33, 7.77},
		{2, 1000, 10, 18},
		{50, 49.99, 100, 25},
	}
	for _, c := range cases {
		got := ComputeLine(c.qty, c.price, c.disc, c.tax)
		assert.Equal(t, round2(c.qty*c.price), got.Subtotal)
		assert.Equal(t, round2(got.Subtotal*(c.disc/100)), got.DiscountAmount)
		assert.Equal(t, round2(got.Subtotal-got.DiscountAmount), got.TaxableAmount)
		assert.Equal(t, round2(got.TaxableAmount*(c.tax/100)), got.TaxAmount)
		assert.Equal(t, round2(got.TaxableAmount+got.TaxAmount), got.Total)
		assert.GreaterOrEqual(t, got.Total, 0.0)
	}
}

func TestComputeLineIsPure(t *testing.T) {
	first := ComputeLine(2, 1000, 10, 18)
	second := ComputeLine(2, 1000, 10, 18)
	assert.Equal(t, first, second)
}

func TestRecomputeTotals(t *testing.T) {
	lines := []LineInput{
		{Subtotal: 2000.00, DiscountAmount: 200.00},
		{Subtotal: 5000.00, DiscountAmount: 0},
	}
	got := RecomputeTotals(lines, 18)
	assert.Equal(t, 7000.00, got.Subtotal)
	assert.Equal(t, 200.00, got.DiscountAmount)
	assert.Equal(t, 1224.00, got.TaxAmount)
	assert.Equal(t, 7824.00, got.TotalAmount)
}

func TestRecomputeTotalsEmpty(t *testing.T) {
	got := RecomputeTotals(nil, 18)
	assert.Equal(t, QuotationTotals{}, got)
}

func TestRecomputeTotalsIdempotent(t *testing.T) {
	lines := []LineInput{
		{Subtotal: 1234.56, DiscountAmount: 12.34},
		{Subtotal: 99.99, DiscountAmount: 0.99},
	}
	first := RecomputeTotals(lines, 11)
	second := RecomputeTotals(lines, 11)
	assert.Equal(t, first, second)
}

// The aggregate tax comes from the quotation-level rate against the net
// subtotal, not from summing per-line tax. Lines with heterogeneous tax
// percentages can legitimately disagree with the aggregate.
func TestRecomputeTotalsIgnoresLineTax(t *testing.T) {
	a := ComputeLine(1, 1000, 0, 5)
	b := ComputeLine(1, 1000, 0, 28)
	lines := []LineInput{
		{Subtotal: a.Subtotal, DiscountAmount: a.DiscountAmount},
		{Subtotal: b.Subtotal, DiscountAmount: b.DiscountAmount},
	}
	got := RecomputeTotals(lines, 18)
	assert.Equal(t, 360.00, got.TaxAmount)
	assert.NotEqual(t, a.TaxAmount+b.TaxAmount, got.TaxAmount)
}

package quotations

import "time"

type Status string

const (
	StatusDraft         Status = "draft"
	StatusPending       Status = "pending"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
	StatusOrderReceived Status = "order_received"
)

// ValidStatus reports whether s belongs to the closed status set. Writes
// carrying any other value are rejected before they reach the database.
func ValidStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected, StatusOrderReceived:
		return true
	}
	return false
}

type Quotation struct {
	ID              int64      `json:"id"`
	QuotationNumber string     `json:"quotation_number"`
	Reference       string     `json:"reference,omitempty"`
	AccountID       int64      `json:"account_id"`
	ContactID       *int64     `json:"contact_id,omitempty"`
	QuoteDate       time.Time  `json:"quote_date"`
	ValidUntil      time.Time  `json:"valid_until"`
	Status          Status     `json:"status"`
	TaxRate         float64    `json:"tax_rate"`
	Subtotal        float64    `json:"subtotal"`
	DiscountAmount  float64    `json:"discount_amount"`
	TaxAmount       float64    `json:"tax_amount"`
	TotalAmount     float64    `json:"total_amount"`
	Notes           *string    `json:"notes,omitempty"`
	CreatedBy       int64      `json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
	Lines           []LineItem `json:"lines,omitempty"`
}

// GrandTotal is a second label over the stored total amount. The two
// figures are always equal because only one value is persisted.
func (q *Quotation) GrandTotal() float64 {
	return q.TotalAmount
}

type LineItem struct {
	ID                int64      `json:"id"`
	QuotationID       int64      `json:"quotation_id"`
	ProductID         int64      `json:"product_id"`
	Description       *string    `json:"description,omitempty"`
	Quantity          int64      `json:"quantity"`
	ProposedUnitPrice float64    `json:"proposed_unit_price"`
	DiscountPct       float64    `json:"discount_pct"`
	TaxPct            float64    `json:"tax_pct"`
	Subtotal          float64    `json:"subtotal"`
	DiscountAmount    float64    `json:"discount_amount"`
	TaxableAmount     float64    `json:"taxable_amount"`
	TaxAmount         float64    `json:"tax_amount"`
	Total             float64    `json:"total"`
	LineOrder         int        `json:"line_order"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	DeletedAt         *time.Time `json:"deleted_at,omitempty"`
}

// QuotationWithDetails joins display names for list views.
type QuotationWithDetails struct {
	Quotation
	AccountName   string `json:"account_name"`
	CreatedByName string `json:"created_by_name"`
}

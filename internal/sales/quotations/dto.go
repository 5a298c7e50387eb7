package quotations

import "time"

type CreateQuotationRequest struct {
	QuotationNumber string          `json:"quotation_number,omitempty" validate:"omitempty,len=12"`
	Reference       string          `json:"reference,omitempty" validate:"max=64"`
	AccountID       int64           `json:"account_id" validate:"required,gt=0"`
	ContactID       *int64          `json:"contact_id,omitempty" validate:"omitempty,gt=0"`
	QuoteDate       time.Time       `json:"quote_date" validate:"required"`
	ValidUntil      time.Time       `json:"valid_until" validate:"required"`
	TaxRate         float64         `json:"tax_rate" validate:"gte=0,lte=100"`
	Notes           *string         `json:"notes,omitempty"`
	Lines           []LineItemInput `json:"lines" validate:"dive"`
}

type LineItemInput struct {
	ProductID         int64   `json:"product_id" validate:"required,gt=0"`
	Description       *string `json:"description,omitempty"`
	Quantity          int64   `json:"quantity" validate:"gte=0"`
	ProposedUnitPrice float64 `json:"proposed_unit_price" validate:"gte=0"`
	DiscountPct       float64 `json:"discount_pct" validate:"gte=0,lte=100"`
	TaxPct            float64 `json:"tax_pct" validate:"gte=0"`
	LineOrder         int     `json:"line_order" validate:"gte=0"`
}

type UpdateQuotationRequest struct {
	Reference  *string          `json:"reference,omitempty" validate:"omitempty,max=64"`
	ContactID  *int64           `json:"contact_id,omitempty" validate:"omitempty,gt=0"`
	QuoteDate  *time.Time       `json:"quote_date,omitempty"`
	ValidUntil *time.Time       `json:"valid_until,omitempty"`
	TaxRate    *float64         `json:"tax_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	Notes      *string          `json:"notes,omitempty"`
	Lines      *[]LineItemInput `json:"lines,omitempty" validate:"omitempty,dive"`
}

type ListQuotationsRequest struct {
	AccountID *int64     `json:"account_id,omitempty"`
	Status    *Status    `json:"status,omitempty"`
	DateFrom  *time.Time `json:"date_from,omitempty"`
	DateTo    *time.Time `json:"date_to,omitempty"`
	Search    string     `json:"search,omitempty"`
	Page      int        `json:"page" validate:"gte=0"`
	Limit     int        `json:"limit" validate:"gte=0,lte=1000"`
}

package accounts

import "time"

// Account represents a customer company that quotations are issued to.
type Account struct {
	ID             int64     `json:"id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	BillingAddress string    `json:"billing_address"`
	TaxNumber      string    `json:"tax_number"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

package shared

// ListFilters captures the common listing parameters for masterdata records.
type ListFilters struct {
	Page       int
	Limit      int
	Search     string
	SortBy     string
	SortDir    string
	CategoryID *int64
	AccountID  *int64
	IsActive   *bool
}

// Offset returns the row offset implied by the page and limit.
func (f ListFilters) Offset() int {
	offset := (f.Page - 1) * f.Limit
	if offset < 0 {
		return 0
	}
	return offset
}

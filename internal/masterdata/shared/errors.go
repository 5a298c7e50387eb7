package shared

import "errors"

var (
	// ErrNotFound indicates the requested masterdata record does not exist.
	ErrNotFound = errors.New("masterdata: not found")
	// ErrDuplicateCode indicates a unique code collision.
	ErrDuplicateCode = errors.New("masterdata: duplicate code")
	// ErrInUse indicates the record is referenced by other data and cannot be removed.
	ErrInUse = errors.New("masterdata: record in use")
)

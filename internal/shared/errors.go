package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrConflict indicates a uniqueness violation that could not be resolved.
	ErrConflict = errors.New("conflict")
)

// UserSafeMessage returns a message suitable to display to end users.
// Internal errors are masked behind a generic message.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "The requested record does not exist."
	case errors.Is(err, ErrInvalidCredentials):
		return "Email or password is incorrect."
	case errors.Is(err, ErrConflict):
		return "The record conflicts with an existing one."
	default:
		return "Something went wrong. Please try again."
	}
}

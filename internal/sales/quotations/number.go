package quotations

import (
	"fmt"
	"strconv"
	"time"
)

const numberPrefix = "QT"

// FormatNumber renders a quotation number for the given month and
// sequence, e.g. QT2025110007.
func FormatNumber(t time.Time, seq int) string {
	return fmt.Sprintf("%s%04d%02d%04d", numberPrefix, t.Year(), int(t.Month()), seq)
}

// ValidNumber reports whether s is a well-formed quotation number: the
// QT prefix followed by ten digits. Caller-supplied numbers must pass
// this check before persistence, otherwise a malformed value would poison
// sequence derivation for the rest of its month.
func ValidNumber(s string) bool {
	if len(s) != 12 || s[:2] != numberPrefix {
		return false
	}
	for _, r := range s[2:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NextNumber derives the number for a quotation created at now, given the
// number of the latest quotation created in the same calendar month. An
// empty latest means the month has no quotations yet and the sequence
// starts at 1. Only the trailing four digits of latest are consulted, so
// continuity survives deletions of earlier records.
func NextNumber(latest string, now time.Time) (string, error) {
	seq := 1
	if latest != "" {
		if len(latest) != 12 {
			return "", fmt.Errorf("malformed quotation number %q", latest)
		}
		prev, err := strconv.Atoi(latest[8:])
		if err != nil {
			return "", fmt.Errorf("malformed quotation number %q: %w", latest, err)
		}
		seq = prev + 1
	}
	return FormatNumber(now, seq), nil
}

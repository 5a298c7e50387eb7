package quotations

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumber(t *testing.T) {
	at := time.Date(2025, time.November, 7, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "QT2025110007", FormatNumber(at, 7))
	assert.Len(t, FormatNumber(at, 1), 12)

	january := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "QT2026010001", FormatNumber(january, 1))
}

func TestNextNumber(t *testing.T) {
	now := time.Date(2025, time.November, 20, 0, 0, 0, 0, time.UTC)

	n, err := NextNumber("", now)
	require.NoError(t, err)
	assert.Equal(t, "QT2025110001", n)

	n, err = NextNumber("QT2025110003", now)
	require.NoError(t, err)
	assert.Equal(t, "QT2025110004", n)

	// Only the trailing digits of the latest number are consulted, so a
	// deleted earlier record never disturbs continuity.
	n, err = NextNumber("QT2025110042", now)
	require.NoError(t, err)
	assert.Equal(t, "QT2025110043", n)
}

func TestValidNumber(t *testing.T) {
	assert.True(t, ValidNumber("QT2025110007"))
	assert.True(t, ValidNumber("QT2026010001"))

	assert.False(t, ValidNumber(""))
	assert.False(t, ValidNumber("QT202511001"))   // too short
	assert.False(t, ValidNumber("QT20251100012")) // too long
	assert.False(t, ValidNumber("QT20251100AB"))  // letters in sequence
	assert.False(t, ValidNumber("XX2025110001"))  // wrong prefix
}

func TestNextNumberMalformed(t *testing.T) {
	now := time.Date(2025, time.November, 20, 0, 0, 0, 0, time.UTC)

	_, err := NextNumber("QT25110003", now)
	assert.Error(t, err)

	_, err = NextNumber("QT20251100AB", now)
	assert.Error(t, err)
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "CNT-2025-001", FormatNumber("CNT", 2025, 1))
	assert.Equal(t, "DEV-2025-003", FormatNumber("DEV", 2025, 3))
	assert.Equal(t, "FAC-2024-120", FormatNumber("FAC", 2024, 120))
	// Past 999 the sequence just widens.
	assert.Equal(t, "FAC-2025-1000", FormatNumber("FAC", 2025, 1000))
}

func TestNumberPrefix(t *testing.T) {
	assert.Equal(t, "DEV", TypeQuote.NumberPrefix())
	assert.Equal(t, "FAC", TypeInvoice.NumberPrefix())
	assert.Equal(t, "CNT", TypeContract.NumberPrefix())
}

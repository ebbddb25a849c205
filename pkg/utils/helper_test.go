package utils

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseInt(t *testing.T) {
	assert.Equal(t, 10, ParseInt("", 10))
	assert.Equal(t, 5, ParseInt("5", 10))
	assert.Equal(t, 10, ParseInt("abc", 10))
	assert.Equal(t, 10, ParseInt("0", 10))
	assert.Equal(t, 10, ParseInt("-3", 10))
}

func TestTransactionRef(t *testing.T) {
	bookingID := uuid.New()

	hexID := strings.ReplaceAll(bookingID.String(), "-", "")

	ref := TransactionRef(bookingID)
	assert.True(t, strings.HasPrefix(ref, "TXN"))
	assert.Len(t, ref, 35)
	assert.Equal(t, "TXN"+strings.ToUpper(hexID), ref)

	// Deterministic per booking.
	assert.Equal(t, ref, TransactionRef(bookingID))
	assert.NotEqual(t, ref, TransactionRef(uuid.New()))
}

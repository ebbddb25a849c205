package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ParseInt converts string to int with default value
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	if result < 1 {
		return defaultValue
	}

	return result
}

// TransactionRef derives a unique payment transaction reference from a
// booking ID. The full un-hyphenated ID is kept, so references collide
// exactly when booking IDs do.
func TransactionRef(bookingID uuid.UUID) string {
	hexID := strings.ReplaceAll(bookingID.String(), "-", "")
	return fmt.Sprintf("TXN%s", strings.ToUpper(hexID))
}

package entity

import (
	"github.com/google/uuid"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusRefunded  TransactionStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
)

// Payment is the 1:1 settlement record of a booking, created in the same
// atomic scope as the booking itself.
type Payment struct {
	Base
	BookingID     uuid.UUID         `db:"booking_id"`
	UserID        uuid.UUID         `db:"user_id"`
	Amount        float64           `db:"amount"`
	Method        PaymentMethod     `db:"payment_method"`
	Status        TransactionStatus `db:"status"`
	TransactionID string            `db:"transaction_id"`
}

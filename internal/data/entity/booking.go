package entity

import (
	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// PaymentStatus tracks how a booking was settled. Cancellation moves a paid
// booking to refunded, never back.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// MaxTicketsPerBooking bounds a single reservation request.
const MaxTicketsPerBooking = 10

type Booking struct {
	Base
	UserID        uuid.UUID     `db:"user_id"`
	EventID       uuid.UUID     `db:"event_id"`
	TicketsCount  int           `db:"tickets_count"`
	TotalAmount   float64       `db:"total_amount"`
	Status        BookingStatus `db:"status"`
	PaymentStatus PaymentStatus `db:"payment_status"`
}

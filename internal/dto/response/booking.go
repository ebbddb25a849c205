package response

import (
	"time"

	"event-ticketing/internal/data/entity"
)

type BookingResponse struct {
	ID            string               `json:"id"`
	EventID       string               `json:"event_id"`
	TicketsCount  int                  `json:"tickets_count"`
	TotalAmount   float64              `json:"total_amount"`
	Status        entity.BookingStatus `json:"status"`
	PaymentStatus entity.PaymentStatus `json:"payment_status"`
	CanCancel     bool                 `json:"can_cancel"`
	Event         *EventSnapshot       `json:"event,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// EventSnapshot is the slice of event fields shown alongside a booking.
type EventSnapshot struct {
	Title    string  `json:"title"`
	Date     string  `json:"date"`
	Time     string  `json:"time"`
	Venue    string  `json:"venue"`
	Location *string `json:"location,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
}

type BookingConfirmation struct {
	BookingResponse
	Payment PaymentResponse `json:"payment"`
}

type PaymentResponse struct {
	ID            string                   `json:"id"`
	Amount        float64                  `json:"amount"`
	Method        entity.PaymentMethod     `json:"payment_method"`
	Status        entity.TransactionStatus `json:"status"`
	TransactionID string                   `json:"transaction_id"`
}

type CancellationResult struct {
	BookingID       string  `json:"booking_id"`
	TicketsReturned int     `json:"tickets_returned"`
	RefundAmount    float64 `json:"refund_amount"`
}

// AdminBookingResponse adds the customer fields shown on the admin list.
type AdminBookingResponse struct {
	BookingResponse
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
}

// Helper converters
func BookingToResponse(booking *entity.Booking, event *entity.Event) BookingResponse {
	resp := BookingResponse{
		ID:            booking.ID.String(),
		EventID:       booking.EventID.String(),
		TicketsCount:  booking.TicketsCount,
		TotalAmount:   booking.TotalAmount,
		Status:        booking.Status,
		PaymentStatus: booking.PaymentStatus,
		CreatedAt:     booking.CreatedAt,
	}
	if event != nil {
		resp.CanCancel = booking.Status == entity.BookingStatusConfirmed &&
			booking.PaymentStatus == entity.PaymentStatusPaid &&
			event.StartsAt().After(time.Now())
		resp.Event = &EventSnapshot{
			Title:    event.Title,
			Date:     event.Date.Format("2006-01-02"),
			Time:     event.Time.Format("15:04"),
			Venue:    event.Venue,
			Location: event.Location,
			ImageURL: event.ImageURL,
		}
	}
	return resp
}

func PaymentToResponse(payment *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            payment.ID.String(),
		Amount:        payment.Amount,
		Method:        payment.Method,
		Status:        payment.Status,
		TransactionID: payment.TransactionID,
	}
}

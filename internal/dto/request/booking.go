package request

type CreateBookingRequest struct {
	EventID      string `json:"event_id" validate:"required,uuid"`
	TicketsCount int    `json:"tickets_count" validate:"required,min=1,max=10"`
}

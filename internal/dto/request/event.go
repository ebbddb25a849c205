package request

type CreateEventRequest struct {
	Title             string  `json:"title" validate:"required,min=3,max=200"`
	Description       *string `json:"description,omitempty"`
	CategoryID        *string `json:"category_id,omitempty" validate:"omitempty,uuid"`
	Date              string  `json:"date" validate:"required,datetime=2006-01-02"`
	Time              string  `json:"time" validate:"required,datetime=15:04"`
	Venue             string  `json:"venue" validate:"required,min=2,max=200"`
	Location          *string `json:"location,omitempty"`
	Price             float64 `json:"price" validate:"gte=0"`
	AvailableTickets  int     `json:"available_tickets" validate:"required,min=1"`
	MaxTicketsPerUser *int    `json:"max_tickets_per_user,omitempty" validate:"omitempty,min=1"`
	ImageURL          *string `json:"image_url,omitempty"`
	Status            *string `json:"status,omitempty" validate:"omitempty,oneof=upcoming ongoing completed cancelled"`
}

// UpdateEventRequest is a partial update, nil fields are left untouched.
type UpdateEventRequest struct {
	Title             *string  `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description       *string  `json:"description,omitempty"`
	CategoryID        *string  `json:"category_id,omitempty" validate:"omitempty,uuid"`
	Date              *string  `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Time              *string  `json:"time,omitempty" validate:"omitempty,datetime=15:04"`
	Venue             *string  `json:"venue,omitempty" validate:"omitempty,min=2,max=200"`
	Location          *string  `json:"location,omitempty"`
	Price             *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	AvailableTickets  *int     `json:"available_tickets,omitempty" validate:"omitempty,min=0"`
	MaxTicketsPerUser *int     `json:"max_tickets_per_user,omitempty" validate:"omitempty,min=1"`
	ImageURL          *string  `json:"image_url,omitempty"`
	Status            *string  `json:"status,omitempty" validate:"omitempty,oneof=upcoming ongoing completed cancelled"`
}

package response

import (
	"time"

	"event-ticketing/internal/data/entity"
)

type EventResponse struct {
	ID                string             `json:"id"`
	Title             string             `json:"title"`
	Description       *string            `json:"description,omitempty"`
	CategoryID        *string            `json:"category_id,omitempty"`
	CategoryName      *string            `json:"category_name,omitempty"`
	Date              string             `json:"date"`
	Time              string             `json:"time"`
	Venue             string             `json:"venue"`
	Location          *string            `json:"location,omitempty"`
	Price             float64            `json:"price"`
	AvailableTickets  int                `json:"available_tickets"`
	MaxTicketsPerUser int                `json:"max_tickets_per_user"`
	ImageURL          *string            `json:"image_url,omitempty"`
	Status            entity.EventStatus `json:"status"`
	CreatedAt         time.Time          `json:"created_at"`
}

// EventDetailResponse adds the confirmed booking count to the event page.
type EventDetailResponse struct {
	EventResponse
	BookedCount int64 `json:"booked_count"`
}

type CategoryResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
}

// Helper converters
func EventToResponse(event *entity.Event) EventResponse {
	resp := EventResponse{
		ID:                event.ID.String(),
		Title:             event.Title,
		Description:       event.Description,
		Date:              event.Date.Format("2006-01-02"),
		Time:              event.Time.Format("15:04"),
		Venue:             event.Venue,
		Location:          event.Location,
		Price:             event.Price,
		AvailableTickets:  event.AvailableTickets,
		MaxTicketsPerUser: event.MaxTicketsPerUser,
		ImageURL:          event.ImageURL,
		Status:            event.Status,
		CreatedAt:         event.CreatedAt,
	}
	if event.CategoryID != nil {
		id := event.CategoryID.String()
		resp.CategoryID = &id
	}
	return resp
}

func EventsToResponse(events []*entity.Event) []EventResponse {
	resp := make([]EventResponse, len(events))
	for i, event := range events {
		resp[i] = EventToResponse(event)
	}
	return resp
}

func CategoryToResponse(category *entity.Category) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID.String(),
		Name:        category.Name,
		Description: category.Description,
		Icon:        category.Icon,
	}
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusOngoing   EventStatus = "ongoing"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// DefaultMaxTicketsPerUser caps cumulative confirmed tickets one user may
// hold for one event unless the event overrides it.
const DefaultMaxTicketsPerUser = 10

type Event struct {
	Base
	Title             string      `db:"title"`
	Description       *string     `db:"description"`
	CategoryID        *uuid.UUID  `db:"category_id"`
	Date              time.Time   `db:"date"`
	Time              time.Time   `db:"time"`
	Venue             string      `db:"venue"`
	Location          *string     `db:"location"`
	Price             float64     `db:"price"`
	AvailableTickets  int         `db:"available_tickets"`
	MaxTicketsPerUser int         `db:"max_tickets_per_user"`
	ImageURL          *string     `db:"image_url"`
	Status            EventStatus `db:"status"`
}

// StartsAt combines the event date and start time into one instant.
func (e *Event) StartsAt() time.Time {
	return time.Date(
		e.Date.Year(), e.Date.Month(), e.Date.Day(),
		e.Time.Hour(), e.Time.Minute(), 0, 0,
		e.Date.Location(),
	)
}

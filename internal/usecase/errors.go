package usecase

import "errors"

// Domain errors. Handlers map these to HTTP status codes with errors.Is, so
// services wrap them with context instead of minting ad hoc strings.
var (
	ErrEventNotFound    = errors.New("event not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrCategoryNotFound = errors.New("category not found")

	ErrInvalidQuantity     = errors.New("tickets count must be between 1 and 10")
	ErrInsufficientTickets = errors.New("not enough tickets available")
	ErrTicketLimitExceeded = errors.New("ticket limit for this event exceeded")

	ErrAlreadyCancelled     = errors.New("booking is already cancelled")
	ErrEventAlreadyOccurred = errors.New("cannot cancel booking for past event")
	ErrNotBookingOwner      = errors.New("booking belongs to another user")
	ErrEventHasBookings     = errors.New("event has existing bookings")

	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrCannotDeleteSelf   = errors.New("cannot delete your own account")
	ErrCannotDeleteAdmin  = errors.New("cannot delete an admin account")

	ErrValidation = errors.New("validation failed")
)

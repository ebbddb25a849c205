package adaptor

import (
	"errors"
	"net/http"

	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth    *AuthHandler
	Event   *EventHandler
	Booking *BookingHandler
	Admin   *AdminHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(service.Auth, log),
		Event:   NewEventHandler(service.Event, log),
		Booking: NewBookingHandler(service.Ticketing, log),
		Admin:   NewAdminHandler(service.Admin, log),
	}
}

// handleServiceError maps domain errors onto HTTP responses. Services wrap
// the sentinels from usecase with context, so errors.Is sees through the
// wrapping and the message still carries the detail.
func handleServiceError(log *zap.Logger, w http.ResponseWriter, err error, operation string) {
	errMsg := err.Error()

	switch {
	case errors.Is(err, usecase.ErrEventNotFound),
		errors.Is(err, usecase.ErrBookingNotFound),
		errors.Is(err, usecase.ErrUserNotFound),
		errors.Is(err, usecase.ErrCategoryNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, errMsg)

	case errors.Is(err, usecase.ErrInvalidCredentials):
		log.Warn(operation+" failed - bad credentials", zap.Error(err))
		utils.ResponseUnauthorized(w, errMsg)

	case errors.Is(err, usecase.ErrNotBookingOwner):
		log.Warn(operation+" failed - not owner", zap.Error(err))
		utils.ResponseForbidden(w, errMsg)

	case errors.Is(err, repository.ErrBusy):
		log.Warn(operation+" failed - storage busy", zap.Error(err))
		utils.ResponseConflict(w, "Booking system is busy, please try again")

	case errors.Is(err, usecase.ErrValidation),
		errors.Is(err, usecase.ErrInvalidQuantity),
		errors.Is(err, usecase.ErrInsufficientTickets),
		errors.Is(err, usecase.ErrTicketLimitExceeded),
		errors.Is(err, usecase.ErrAlreadyCancelled),
		errors.Is(err, usecase.ErrEventAlreadyOccurred),
		errors.Is(err, usecase.ErrEventHasBookings),
		errors.Is(err, usecase.ErrEmailTaken),
		errors.Is(err, usecase.ErrCannotDeleteSelf),
		errors.Is(err, usecase.ErrCannotDeleteAdmin):
		log.Warn(operation+" rejected", zap.Error(err))
		utils.ResponseBadRequest(w, errMsg, nil)

	default:
		log.Error(operation+" failed", zap.Error(err))
		utils.ResponseInternalError(w, "Something went wrong")
	}
}

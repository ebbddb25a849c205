package wire

import (
	"event-ticketing/internal/adaptor"
	"event-ticketing/pkg/middleware"
	"event-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAdmin(
	r chi.Router,
	adminHandler *adaptor.AdminHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/api/admin", func(r chi.Router) {
		// Require both authentication and admin role
		r.Use(middleware.Auth(config.JWT, log))
		r.Use(middleware.Admin(log))

		r.Get("/events", adminHandler.ListEvents)
		r.Post("/events", adminHandler.CreateEvent)
		r.Put("/events/{id}", adminHandler.UpdateEvent)
		r.Delete("/events/{id}", adminHandler.DeleteEvent)

		r.Get("/bookings", adminHandler.ListBookings)
		r.Delete("/bookings/{id}", adminHandler.DeleteBooking)

		r.Get("/users", adminHandler.ListUsers)
		r.Post("/users", adminHandler.CreateUser)
		r.Delete("/users/{id}", adminHandler.DeleteUser)

		r.Get("/stats", adminHandler.GetStats)
	})
}

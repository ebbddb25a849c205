package wire

import (
	"event-ticketing/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireEvent(r chi.Router, eventHandler *adaptor.EventHandler) {
	// Public browsing routes
	r.Get("/api/events", eventHandler.ListEvents)
	r.Get("/api/events/search/{query}", eventHandler.SearchEvents)
	r.Get("/api/events/category/{categoryID}", eventHandler.GetEventsByCategory)
	r.Get("/api/events/{id}", eventHandler.GetEvent)
	r.Get("/api/categories", eventHandler.ListCategories)
}

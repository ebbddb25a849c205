package adaptor

import (
	"net/http"

	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventHandler struct {
	service usecase.EventService
	log     *zap.Logger
}

func NewEventHandler(service usecase.EventService, log *zap.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		log:     log.With(zap.String("handler", "event")),
	}
}

// ListEvents handles GET /api/events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit := utils.ParseInt(r.URL.Query().Get("limit"), 0)

	events, err := h.service.ListEvents(r.Context(), limit)
	if err != nil {
		handleServiceError(h.log, w, err, "list events")
		return
	}

	utils.ResponseSuccess(w, "success", events)
}

// GetEvent handles GET /api/events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid event ID", nil)
		return
	}

	event, err := h.service.GetEvent(r.Context(), eventID)
	if err != nil {
		handleServiceError(h.log, w, err, "get event")
		return
	}

	utils.ResponseSuccess(w, "success", event)
}

// SearchEvents handles GET /api/events/search/{query}
func (h *EventHandler) SearchEvents(w http.ResponseWriter, r *http.Request) {
	query := chi.URLParam(r, "query")
	if query == "" {
		utils.ResponseBadRequest(w, "Search query is required", nil)
		return
	}

	events, err := h.service.SearchEvents(r.Context(), query)
	if err != nil {
		handleServiceError(h.log, w, err, "search events")
		return
	}

	utils.ResponseSuccess(w, "success", events)
}

// GetEventsByCategory handles GET /api/events/category/{categoryID}
func (h *EventHandler) GetEventsByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := uuid.Parse(chi.URLParam(r, "categoryID"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid category ID", nil)
		return
	}

	events, err := h.service.GetEventsByCategory(r.Context(), categoryID)
	if err != nil {
		handleServiceError(h.log, w, err, "list events by category")
		return
	}

	utils.ResponseSuccess(w, "success", events)
}

// ListCategories handles GET /api/categories
func (h *EventHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		handleServiceError(h.log, w, err, "list categories")
		return
	}

	utils.ResponseSuccess(w, "success", categories)
}

package usecase

import (
	"context"
	"fmt"

	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventService interface {
	ListEvents(ctx context.Context, limit int) ([]response.EventResponse, error)
	GetEvent(ctx context.Context, eventID uuid.UUID) (*response.EventDetailResponse, error)
	SearchEvents(ctx context.Context, query string) ([]response.EventResponse, error)
	GetEventsByCategory(ctx context.Context, categoryID uuid.UUID) ([]response.EventResponse, error)
	ListCategories(ctx context.Context) ([]response.CategoryResponse, error)
}

type eventService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewEventService(repo *repository.Repository, log *zap.Logger) EventService {
	return &eventService{
		repo: repo,
		log:  log.With(zap.String("service", "event")),
	}
}

func (s *eventService) ListEvents(ctx context.Context, limit int) ([]response.EventResponse, error) {
	events, err := s.repo.Events.FindPublished(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	return s.withCategoryNames(ctx, response.EventsToResponse(events)), nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID uuid.UUID) (*response.EventDetailResponse, error) {
	event, err := s.repo.Events.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID.String())
	}

	booked, err := s.repo.Bookings.CountConfirmedByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count event bookings: %w", err)
	}

	resp := response.EventDetailResponse{
		EventResponse: response.EventToResponse(event),
		BookedCount:   booked,
	}
	if event.CategoryID != nil {
		if category, err := s.repo.Categories.FindByID(ctx, *event.CategoryID); err == nil && category != nil {
			resp.CategoryName = &category.Name
		}
	}

	return &resp, nil
}

func (s *eventService) SearchEvents(ctx context.Context, query string) ([]response.EventResponse, error) {
	events, err := s.repo.Events.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search events %q: %w", query, err)
	}

	return s.withCategoryNames(ctx, response.EventsToResponse(events)), nil
}

func (s *eventService) GetEventsByCategory(ctx context.Context, categoryID uuid.UUID) ([]response.EventResponse, error) {
	category, err := s.repo.Categories.FindByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if category == nil {
		return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, categoryID.String())
	}

	events, err := s.repo.Events.FindByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list events by category: %w", err)
	}

	resp := response.EventsToResponse(events)
	for i := range resp {
		resp[i].CategoryName = &category.Name
	}
	return resp, nil
}

func (s *eventService) ListCategories(ctx context.Context) ([]response.CategoryResponse, error) {
	categories, err := s.repo.Categories.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	resp := make([]response.CategoryResponse, len(categories))
	for i, category := range categories {
		resp[i] = response.CategoryToResponse(category)
	}
	return resp, nil
}

// withCategoryNames resolves category names for a result page. Category
// lookups are cached per call, the list is small.
func (s *eventService) withCategoryNames(ctx context.Context, events []response.EventResponse) []response.EventResponse {
	names := make(map[string]*string)
	for i := range events {
		if events[i].CategoryID == nil {
			continue
		}
		id := *events[i].CategoryID
		name, ok := names[id]
		if !ok {
			categoryID, err := uuid.Parse(id)
			if err != nil {
				continue
			}
			category, err := s.repo.Categories.FindByID(ctx, categoryID)
			if err != nil || category == nil {
				names[id] = nil
				continue
			}
			name = &category.Name
			names[id] = name
		}
		events[i].CategoryName = name
	}
	return events
}

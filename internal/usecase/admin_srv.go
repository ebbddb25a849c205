package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/dto/response"
	"event-ticketing/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AdminService interface {
	// Events
	ListAllEvents(ctx context.Context) ([]response.EventResponse, error)
	CreateEvent(ctx context.Context, req *request.CreateEventRequest) (*response.EventResponse, error)
	UpdateEvent(ctx context.Context, eventID uuid.UUID, req *request.UpdateEventRequest) (*response.EventResponse, error)
	DeleteEvent(ctx context.Context, eventID uuid.UUID) error

	// Bookings
	ListBookings(ctx context.Context) ([]response.AdminBookingResponse, error)
	DeleteBooking(ctx context.Context, bookingID uuid.UUID) error

	// Users
	ListUsers(ctx context.Context) ([]response.AdminUserResponse, error)
	CreateUser(ctx context.Context, req *request.CreateUserRequest) (*response.UserResponse, error)
	DeleteUser(ctx context.Context, adminID, userID uuid.UUID) error

	// Dashboard
	GetStats(ctx context.Context) (*response.StatsResponse, error)
}

type adminService struct {
	store repository.Store
	log   *zap.Logger
}

func NewAdminService(store repository.Store, log *zap.Logger) AdminService {
	return &adminService{
		store: store,
		log:   log.With(zap.String("service", "admin")),
	}
}

func (s *adminService) ListAllEvents(ctx context.Context) ([]response.EventResponse, error) {
	events, err := s.store.Repos().Events.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all events: %w", err)
	}
	return response.EventsToResponse(events), nil
}

func (s *adminService) CreateEvent(ctx context.Context, req *request.CreateEventRequest) (*response.EventResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create event validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	repo := s.store.Repos()

	date, eventTime, err := parseEventSchedule(req.Date, req.Time)
	if err != nil {
		return nil, err
	}

	var categoryID *uuid.UUID
	if req.CategoryID != nil {
		id, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid category ID %q", ErrValidation, *req.CategoryID)
		}
		category, err := repo.Categories.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("find category: %w", err)
		}
		if category == nil {
			return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, id.String())
		}
		categoryID = &id
	}

	maxPerUser := entity.DefaultMaxTicketsPerUser
	if req.MaxTicketsPerUser != nil {
		maxPerUser = *req.MaxTicketsPerUser
	}
	status := entity.EventStatusUpcoming
	if req.Status != nil {
		status = entity.EventStatus(*req.Status)
	}

	now := time.Now()
	event := &entity.Event{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:             req.Title,
		Description:       req.Description,
		CategoryID:        categoryID,
		Date:              date,
		Time:              eventTime,
		Venue:             req.Venue,
		Location:          req.Location,
		Price:             req.Price,
		AvailableTickets:  req.AvailableTickets,
		MaxTicketsPerUser: maxPerUser,
		ImageURL:          req.ImageURL,
		Status:            status,
	}

	if err := repo.Events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.log.Info("Event created",
		zap.String("event_id", event.ID.String()),
		zap.String("title", event.Title),
	)

	resp := response.EventToResponse(event)
	return &resp, nil
}

// UpdateEvent applies the non-nil fields of req. It runs under the event row
// lock so an availability edit cannot race a concurrent reservation.
func (s *adminService) UpdateEvent(ctx context.Context, eventID uuid.UUID, req *request.UpdateEventRequest) (*response.EventResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	var resp response.EventResponse
	err := s.store.InTx(ctx, func(r *repository.Repository) error {
		event, err := r.Events.LockByID(ctx, eventID)
		if err != nil {
			return fmt.Errorf("lock event: %w", err)
		}
		if event == nil {
			return fmt.Errorf("%w: %s", ErrEventNotFound, eventID.String())
		}

		if req.Title != nil {
			event.Title = *req.Title
		}
		if req.Description != nil {
			event.Description = req.Description
		}
		if req.CategoryID != nil {
			id, err := uuid.Parse(*req.CategoryID)
			if err != nil {
				return fmt.Errorf("%w: invalid category ID %q", ErrValidation, *req.CategoryID)
			}
			category, err := r.Categories.FindByID(ctx, id)
			if err != nil {
				return fmt.Errorf("find category: %w", err)
			}
			if category == nil {
				return fmt.Errorf("%w: %s", ErrCategoryNotFound, id.String())
			}
			event.CategoryID = &id
		}
		if req.Date != nil || req.Time != nil {
			dateStr := event.Date.Format("2006-01-02")
			timeStr := event.Time.Format("15:04")
			if req.Date != nil {
				dateStr = *req.Date
			}
			if req.Time != nil {
				timeStr = *req.Time
			}
			date, eventTime, err := parseEventSchedule(dateStr, timeStr)
			if err != nil {
				return err
			}
			event.Date = date
			event.Time = eventTime
		}
		if req.Venue != nil {
			event.Venue = *req.Venue
		}
		if req.Location != nil {
			event.Location = req.Location
		}
		if req.Price != nil {
			event.Price = *req.Price
		}
		if req.AvailableTickets != nil {
			event.AvailableTickets = *req.AvailableTickets
		}
		if req.MaxTicketsPerUser != nil {
			event.MaxTicketsPerUser = *req.MaxTicketsPerUser
		}
		if req.ImageURL != nil {
			event.ImageURL = req.ImageURL
		}
		if req.Status != nil {
			event.Status = entity.EventStatus(*req.Status)
		}
		event.UpdatedAt = time.Now()

		if err := r.Events.Update(ctx, event); err != nil {
			return fmt.Errorf("update event: %w", err)
		}

		resp = response.EventToResponse(event)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Event updated", zap.String("event_id", eventID.String()))

	return &resp, nil
}

// DeleteEvent refuses while any booking, cancelled ones included, still
// references the event.
func (s *adminService) DeleteEvent(ctx context.Context, eventID uuid.UUID) error {
	err := s.store.InTx(ctx, func(r *repository.Repository) error {
		event, err := r.Events.FindByID(ctx, eventID)
		if err != nil {
			return fmt.Errorf("find event: %w", err)
		}
		if event == nil {
			return fmt.Errorf("%w: %s", ErrEventNotFound, eventID.String())
		}

		count, err := r.Bookings.CountByEventID(ctx, eventID)
		if err != nil {
			return fmt.Errorf("count event bookings: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: %d bookings", ErrEventHasBookings, count)
		}

		return r.Events.Delete(ctx, eventID)
	})
	if err != nil {
		return err
	}

	s.log.Info("Event deleted", zap.String("event_id", eventID.String()))
	return nil
}

func (s *adminService) ListBookings(ctx context.Context) ([]response.AdminBookingResponse, error) {
	repo := s.store.Repos()

	bookings, err := repo.Bookings.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	return s.adminBookingList(ctx, repo, bookings)
}

// DeleteBooking removes a booking outright. Tickets held by a confirmed
// booking go back to the event, a cancelled booking already returned them.
func (s *adminService) DeleteBooking(ctx context.Context, bookingID uuid.UUID) error {
	err := s.store.InTx(ctx, func(r *repository.Repository) error {
		booking, err := r.Bookings.FindByID(ctx, bookingID)
		if err != nil {
			return fmt.Errorf("find booking: %w", err)
		}
		if booking == nil {
			return fmt.Errorf("%w: %s", ErrBookingNotFound, bookingID.String())
		}

		if booking.Status == entity.BookingStatusConfirmed {
			if _, err := r.Events.LockByID(ctx, booking.EventID); err != nil {
				return fmt.Errorf("lock event: %w", err)
			}
			// Credit only if this scope wins the transition out of
			// confirmed; a racing cancel already returned the tickets.
			err := r.Bookings.TransitionStatus(ctx, bookingID,
				entity.BookingStatusConfirmed, entity.BookingStatusCancelled, entity.PaymentStatusRefunded)
			switch {
			case err == nil:
				if err := r.Ledger.Release(ctx, booking.EventID, booking.TicketsCount); err != nil {
					return fmt.Errorf("release tickets: %w", err)
				}
			case !errors.Is(err, repository.ErrNotFound):
				return fmt.Errorf("transition booking status: %w", err)
			}
		}

		if err := r.Payments.DeleteByBookingID(ctx, bookingID); err != nil {
			return fmt.Errorf("delete payment: %w", err)
		}
		if err := r.Bookings.Delete(ctx, bookingID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrBookingNotFound, bookingID.String())
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("Booking deleted", zap.String("booking_id", bookingID.String()))
	return nil
}

func (s *adminService) ListUsers(ctx context.Context) ([]response.AdminUserResponse, error) {
	repo := s.store.Repos()

	users, err := repo.Users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	resp := make([]response.AdminUserResponse, 0, len(users))
	for _, user := range users {
		count, spent, err := repo.Bookings.SummaryByUserID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("summarize user bookings: %w", err)
		}
		resp = append(resp, response.AdminUserToResponse(user, count, spent))
	}

	return resp, nil
}

func (s *adminService) CreateUser(ctx context.Context, req *request.CreateUserRequest) (*response.UserResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	repo := s.store.Repos()

	existing, err := repo.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check existing email: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrEmailTaken, req.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Phone:        req.Phone,
		IsAdmin:      req.IsAdmin,
	}

	if err := repo.Users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("User created by admin",
		zap.String("user_id", user.ID.String()),
		zap.Bool("is_admin", user.IsAdmin),
	)

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *adminService) DeleteUser(ctx context.Context, adminID, userID uuid.UUID) error {
	if adminID == userID {
		return ErrCannotDeleteSelf
	}

	repo := s.store.Repos()

	user, err := repo.Users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("%w: %s", ErrUserNotFound, userID.String())
	}
	if user.IsAdmin {
		return ErrCannotDeleteAdmin
	}

	if err := repo.Users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.log.Info("User deleted", zap.String("user_id", userID.String()))
	return nil
}

func (s *adminService) GetStats(ctx context.Context) (*response.StatsResponse, error) {
	repo := s.store.Repos()
	weekAgo := time.Now().AddDate(0, 0, -7)

	stats := &response.StatsResponse{}
	var err error

	if stats.TotalEvents, err = repo.Events.Count(ctx); err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	if stats.UpcomingEvents, err = repo.Events.CountUpcoming(ctx); err != nil {
		return nil, fmt.Errorf("count upcoming events: %w", err)
	}
	if stats.TotalBookings, err = repo.Bookings.CountConfirmed(ctx); err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	if stats.BookingsLastWeek, err = repo.Bookings.CountConfirmedSince(ctx, weekAgo); err != nil {
		return nil, fmt.Errorf("count recent bookings: %w", err)
	}
	if stats.TotalCustomers, err = repo.Users.CountCustomers(ctx); err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	if stats.TotalRevenue, err = repo.Bookings.Revenue(ctx); err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}
	if stats.RevenueLastWeek, err = repo.Bookings.RevenueSince(ctx, weekAgo); err != nil {
		return nil, fmt.Errorf("sum recent revenue: %w", err)
	}

	recent, err := repo.Bookings.FindCreatedSince(ctx, weekAgo, 10)
	if err != nil {
		return nil, fmt.Errorf("list recent bookings: %w", err)
	}
	if stats.RecentBookings, err = s.adminBookingList(ctx, repo, recent); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *adminService) adminBookingList(ctx context.Context, repo *repository.Repository, bookings []*entity.Booking) ([]response.AdminBookingResponse, error) {
	resp := make([]response.AdminBookingResponse, 0, len(bookings))
	events := make(map[uuid.UUID]*entity.Event)
	users := make(map[uuid.UUID]*entity.User)

	for _, booking := range bookings {
		event, ok := events[booking.EventID]
		if !ok {
			var err error
			event, err = repo.Events.FindByID(ctx, booking.EventID)
			if err != nil {
				return nil, fmt.Errorf("find booking event: %w", err)
			}
			events[booking.EventID] = event
		}

		user, ok := users[booking.UserID]
		if !ok {
			var err error
			user, err = repo.Users.FindByID(ctx, booking.UserID)
			if err != nil {
				return nil, fmt.Errorf("find booking user: %w", err)
			}
			users[booking.UserID] = user
		}

		item := response.AdminBookingResponse{
			BookingResponse: response.BookingToResponse(booking, event),
			UserID:          booking.UserID.String(),
		}
		if user != nil {
			item.UserName = user.Name
			item.UserEmail = user.Email
		}
		resp = append(resp, item)
	}

	return resp, nil
}

func parseEventSchedule(dateStr, timeStr string) (time.Time, time.Time, error) {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid date %q", ErrValidation, dateStr)
	}
	eventTime, err := time.Parse("15:04", timeStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid time %q", ErrValidation, timeStr)
	}
	return date, eventTime, nil
}

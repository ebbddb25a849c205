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
)

type TicketingService interface {
	CreateBooking(ctx context.Context, userID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingConfirmation, error)
	CancelBooking(ctx context.Context, userID, bookingID uuid.UUID) (*response.CancellationResult, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID) ([]response.BookingResponse, error)
}

type ticketingService struct {
	store repository.Store
	log   *zap.Logger
}

func NewTicketingService(store repository.Store, log *zap.Logger) TicketingService {
	return &ticketingService{
		store: store,
		log:   log.With(zap.String("service", "ticketing")),
	}
}

// CreateBooking reserves tickets and settles them in one atomic scope. The
// event row is locked first, so availability and the per-user limit are
// checked against a state no concurrent booking can move under us.
func (s *ticketingService) CreateBooking(ctx context.Context, userID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingConfirmation, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid event ID %q", ErrValidation, req.EventID)
	}

	if req.TicketsCount < 1 || req.TicketsCount > entity.MaxTicketsPerBooking {
		return nil, ErrInvalidQuantity
	}

	var confirmation *response.BookingConfirmation
	err = s.store.InTx(ctx, func(r *repository.Repository) error {
		event, err := r.Events.LockByID(ctx, eventID)
		if err != nil {
			return fmt.Errorf("lock event: %w", err)
		}
		if event == nil {
			return fmt.Errorf("%w: %s", ErrEventNotFound, eventID.String())
		}

		if event.AvailableTickets < req.TicketsCount {
			return fmt.Errorf("%w: %d remaining", ErrInsufficientTickets, event.AvailableTickets)
		}

		maxPerUser := event.MaxTicketsPerUser
		if maxPerUser <= 0 {
			maxPerUser = entity.DefaultMaxTicketsPerUser
		}
		held, err := r.Bookings.SumConfirmedTickets(ctx, userID, eventID)
		if err != nil {
			return fmt.Errorf("sum confirmed tickets: %w", err)
		}
		if held+req.TicketsCount > maxPerUser {
			return fmt.Errorf("%w: %d of %d already booked", ErrTicketLimitExceeded, held, maxPerUser)
		}

		if err := r.Ledger.Reserve(ctx, eventID, req.TicketsCount); err != nil {
			if errors.Is(err, repository.ErrInsufficientTickets) {
				return fmt.Errorf("%w: %d remaining", ErrInsufficientTickets, event.AvailableTickets)
			}
			return fmt.Errorf("reserve tickets: %w", err)
		}

		now := time.Now()
		booking := &entity.Booking{
			Base: entity.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			UserID:        userID,
			EventID:       eventID,
			TicketsCount:  req.TicketsCount,
			TotalAmount:   event.Price * float64(req.TicketsCount),
			Status:        entity.BookingStatusConfirmed,
			PaymentStatus: entity.PaymentStatusPaid,
		}
		if err := r.Bookings.Create(ctx, booking); err != nil {
			return fmt.Errorf("create booking: %w", err)
		}

		payment := &entity.Payment{
			Base: entity.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			BookingID:     booking.ID,
			UserID:        userID,
			Amount:        booking.TotalAmount,
			Method:        entity.PaymentMethodCard,
			Status:        entity.TransactionStatusCompleted,
			TransactionID: utils.TransactionRef(booking.ID),
		}
		if err := r.Payments.Create(ctx, payment); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		confirmation = &response.BookingConfirmation{
			BookingResponse: response.BookingToResponse(booking, event),
			Payment:         response.PaymentToResponse(payment),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Booking created",
		zap.String("booking_id", confirmation.ID),
		zap.String("event_id", eventID.String()),
		zap.String("user_id", userID.String()),
		zap.Int("tickets", req.TicketsCount),
	)

	return confirmation, nil
}

// CancelBooking reverses a confirmed booking: status flips to cancelled, the
// payment is marked refunded and the tickets go back to the event, all in
// one atomic scope. Cancelling twice fails rather than credit twice.
func (s *ticketingService) CancelBooking(ctx context.Context, userID, bookingID uuid.UUID) (*response.CancellationResult, error) {
	var result *response.CancellationResult
	err := s.store.InTx(ctx, func(r *repository.Repository) error {
		booking, err := r.Bookings.FindByID(ctx, bookingID)
		if err != nil {
			return fmt.Errorf("find booking: %w", err)
		}
		if booking == nil {
			return fmt.Errorf("%w: %s", ErrBookingNotFound, bookingID.String())
		}
		if booking.UserID != userID {
			return ErrNotBookingOwner
		}
		if booking.Status == entity.BookingStatusCancelled {
			return ErrAlreadyCancelled
		}

		event, err := r.Events.LockByID(ctx, booking.EventID)
		if err != nil {
			return fmt.Errorf("lock event: %w", err)
		}
		if event == nil {
			return fmt.Errorf("%w: %s", ErrEventNotFound, booking.EventID.String())
		}
		if event.StartsAt().Before(time.Now()) {
			return ErrEventAlreadyOccurred
		}

		refund := 0.0
		if booking.PaymentStatus == entity.PaymentStatusPaid {
			refund = booking.TotalAmount
		}

		// The guarded transition decides the race: a cancel that committed
		// between our read and here leaves nothing to transition, and we
		// must not credit the tickets a second time.
		err = r.Bookings.TransitionStatus(ctx, bookingID,
			entity.BookingStatusConfirmed, entity.BookingStatusCancelled, entity.PaymentStatusRefunded)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrAlreadyCancelled
			}
			return fmt.Errorf("transition booking status: %w", err)
		}
		if err := r.Payments.UpdateStatusByBookingID(ctx, bookingID, entity.TransactionStatusRefunded); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("update payment status: %w", err)
			}
		}
		if err := r.Ledger.Release(ctx, booking.EventID, booking.TicketsCount); err != nil {
			return fmt.Errorf("release tickets: %w", err)
		}

		result = &response.CancellationResult{
			BookingID:       bookingID.String(),
			TicketsReturned: booking.TicketsCount,
			RefundAmount:    refund,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Booking cancelled",
		zap.String("booking_id", bookingID.String()),
		zap.String("user_id", userID.String()),
		zap.Int("tickets_returned", result.TicketsReturned),
	)

	return result, nil
}

func (s *ticketingService) GetUserBookings(ctx context.Context, userID uuid.UUID) ([]response.BookingResponse, error) {
	repo := s.store.Repos()

	bookings, err := repo.Bookings.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user bookings: %w", err)
	}

	resp := make([]response.BookingResponse, 0, len(bookings))
	events := make(map[uuid.UUID]*entity.Event)
	for _, booking := range bookings {
		event, ok := events[booking.EventID]
		if !ok {
			event, err = repo.Events.FindByID(ctx, booking.EventID)
			if err != nil {
				return nil, fmt.Errorf("find booking event: %w", err)
			}
			events[booking.EventID] = event
		}
		resp = append(resp, response.BookingToResponse(booking, event))
	}

	return resp, nil
}

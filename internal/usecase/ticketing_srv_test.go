package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func seedUser(t *testing.T, store repository.Store, isAdmin bool) uuid.UUID {
	t.Helper()

	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         "Test User",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		IsAdmin:      isAdmin,
	}
	require.NoError(t, store.Repos().Users.Create(context.Background(), user))
	return user.ID
}

func seedEvent(t *testing.T, store repository.Store, tickets int, price float64, startsIn time.Duration) uuid.UUID {
	t.Helper()

	starts := time.Now().Add(startsIn)
	now := time.Now()
	event := &entity.Event{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:             "Summer Concert",
		Date:              starts,
		Time:              starts,
		Venue:             "Main Hall",
		Price:             price,
		AvailableTickets:  tickets,
		MaxTicketsPerUser: entity.DefaultMaxTicketsPerUser,
		Status:            entity.EventStatusUpcoming,
	}
	require.NoError(t, store.Repos().Events.Create(context.Background(), event))
	return event.ID
}

func availableTickets(t *testing.T, store repository.Store, eventID uuid.UUID) int {
	t.Helper()

	event, err := store.Repos().Events.FindByID(context.Background(), eventID)
	require.NoError(t, err)
	require.NotNil(t, event)
	return event.AvailableTickets
}

func bookingReq(eventID uuid.UUID, tickets int) *request.CreateBookingRequest {
	return &request.CreateBookingRequest{
		EventID:      eventID.String(),
		TicketsCount: tickets,
	}
}

func TestCreateBookingConfirmsAndDebitsLedger(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewTicketingService(store, zap.NewNop())
	ctx := context.Background()

	userID := seedUser(t, store, false)
	eventID := seedEvent(t, store, 100, 50.0, 48*time.Hour)

	confirmation, err := svc.CreateBooking(ctx, userID, bookingReq(eventID, 3))
	require.NoError(t, err)

	assert.Equal(t, entity.BookingStatusConfirmed, confirmation.Status)
	assert.Equal(t, entity.PaymentStatusPaid, confirmation.PaymentStatus)
	assert.Equal(t, 3, confirmation.TicketsCount)
	assert.Equal(t, 150.0, confirmation.TotalAmount)
	assert.Equal(t, entity.TransactionStatusCompleted, confirmation.Payment.Status)
	assert.True(t, strings.HasPrefix(confirmation.Payment.TransactionID, "TXN"))
	require.NotNil(t, confirmation.Event)
	assert.Equal(t, "Summer Concert", confirmation.Event.Title)

	assert.Equal(t, 97, availableTickets(t, store, eventID))
}

func TestCreateBookingInsufficientTickets(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewTicketingService(store, zap.NewNop())
	ctx := context.Background()

	userID := seedUser(t, store, false)
	eventID := seedEvent(t, store, 2, 25.0, 48*time.Hour)

	_, err := svc.CreateBooking(ctx, userID, bookingReq(eventID, 5))
	require.ErrorIs(t, err, ErrInsufficientTickets)

	assert.Equal(t, 2, availableTickets(t, store, eventID))
}

func TestCreateBookingQuantityBounds(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewTicketingService(store, zap.NewNop())
	ctx := context.Background()

	userID := seedUser(t, store, false)
	eventID := seedEvent(t, store, 100, 25.0, 48*time.Hour)

	_, err := svc.CreateBooking(ctx, userID, bookingReq(eventID, 0))
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateBooking(ctx, userID, bookingReq(eventID, 11))
	require.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, 100, availableTickets(t, store, eventID))
}

func TestCreateBookingEventNotFound(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewTicketingService(store, zap.NewNop())

	userID := seedUser(t, store, false)

	_, err := svc.CreateBooking(context.Background(), userID, bookingReq(uuid.New(), 1))
	require.ErrorIs(t, err, ErrEventNotFound)
}

func TestCreateBookingPerUserLimit(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewTicketingService(store, zap.NewNop())
	ctx := context.Background()

	userID := seedUser(t, store, false)
	eventID := seedEvent(t, store, 100, 10.0, 48*time.Hour)

	// 6 + 4 reaches the default limit of 10, one more must fail.
	_, err := svc.CreateBooking(ctx, userID, bookingReq(eventID, 6))
	require.NoError(t, err)
	_, err = svc.CreateBooking(ctx, userID, bookingReq(eventID, 4))
	require.NoError(t, err)

	_, err = svc.CreateBooking(ctx, userID, bookingReq(eventID, 1))
	require.ErrorIs(t, err, ErrTicketLimitExceeded)

	assert.Equal(t, 90, availableTickets(t, store, eventID))

	// A different user is not affected by the first user's limit.
	otherID := seedUser(t, store, false)
	_, err = svc.CreateBooking(ctx, otherID, bookingReq(eventID, 5))
	require.NoError(t, err)
}

func TestCancelledBookingsDoNotCountTowardLimit(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewTicketingService(store, zap.NewNop())
	ctx := context.Background()

	userID := seedUser(t, store, false)
	eventID := seedEvent(t, store, 100, 10.0, 48*time.Hour)

	first, err := svc.CreateBooking(ctx, userID, bookingReq(eventID, 10))
	require.NoError(t, err)

	bookingID, err := uuid.Parse(first.ID)
	require.NoError(t, err)
	_, err = svc.CancelBooking(ctx, userID, bookingID)
	require.NoError(t, err)

	_, err = svc.CreateBooking(ctx, userID, bookingReq(eventID, 10))
	require.NoError(t, err)
}

func TestBookingLifecycleScenario(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewTicketingService(store, zap.NewNop())
	ctx := context.Background()

	// Capacity 5, at most 3 tickets per user.
	starts := time.Now().Add(48 * time.Hour)
	now := time.Now()
	event := &entity.Event{
		Base:              entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Title:             "Club Night",
		Date:              starts,
		Time:              starts,
		Venue:             "Basement",
		Price:             10.0,
		AvailableTickets:  5,
		MaxTicketsPerUser: 3,
		Status:            entity.EventStatusUpcoming,
	}
	require.NoError(t, store.Repos().Events.Create(ctx, event))

	alice := seedUser(t, store, false)
	bob := seedUser(t, store, false)
	carol := seedUser(t, store, false)

	first, err := svc.CreateBooking(ctx, alice, bookingReq(event.ID, 3))
	require.NoError(t, err)
	assert.Equal(t, 2, availableTickets(t, store, event.ID))

	_, err = svc.CreateBooking(ctx, alice, bookingReq(event.ID, 2))
	require.ErrorIs(t, err, ErrTicketLimitExceeded)
	assert.Equal(t, 2, availableTickets(t, store, event.ID))

	_, err = svc.CreateBooking(ctx, bob, bookingReq(event.ID, 2))
	require.NoError(t, err)
	assert.Equal(t, 0, availableTickets(t, store, event.ID))

	_, err = svc.CreateBooking(ctx, carol, bookingReq(event.ID, 1))
	require.ErrorIs(t, err, ErrInsufficientTickets)

	firstID, err := uuid.Parse(first.ID)
	require.NoError(t, err)
	_, err = svc.CancelBooking(ctx, alice, firstID)
	require.NoError(t, err)
	assert.Equal(t, 3, availableTickets(t, store, event.ID))

	held, err := store.Repos().Bookings.SumConfirmedTickets(ctx, alice, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, held)
}

func TestConcurrentBookingsNeverOversell(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewTicketingService(store, zap.NewNop())
	ctx := context.Background()

	eventID := seedEvent(t, store, 50, 20.0, 48*time.Hour)

	// 20 users race for 5 tickets each, only 10 can win.
	userIDs := make([]uuid.UUID, 20)
	for i := range userIDs {
		userIDs[i] = seedUser(t, store, false)
	}

	var g errgroup.Group
	results := make([]error, len(userIDs))
	for i, userID := range userIDs {
		i, userID := i, userID
		g.Go(func() error {
			_, err := svc.CreateBooking(ctx, userID, bookingReq(eventID, 5))
			results[i] = err
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var won, lost int
	for _, err := range results {
		if err == nil {
			won++
			continue
		}
		require.ErrorIs(t, err, ErrInsufficientTickets)
		lost++
	}

	assert.Equal(t, 10, won)
	assert.Equal(t, 10, lost)
	assert.Equal(t, 0, availableTickets(t, store, eventID))

	// Conservation: remaining plus confirmed tickets equals the capacity.
	bookings, err := store.Repos().Bookings.FindAll(ctx)
	require.NoError(t, err)
	var confirmed int
	for _, booking := range bookings {
		if booking.Status == entity.BookingStatusConfirmed {
			confirmed += booking.TicketsCount
		}
	}
	assert.Equal(t, 50, confirmed+availableTickets(t, store, eventID))
}

func TestTwoRacersForLastTicket(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewTicketingService(store, zap.NewNop())
	ctx := context.Background()

	eventID := seedEvent(t, store, 1, 20.0, 48*time.Hour)
	alice := seedUser(t, store, false)
	bob := seedUser(t, store, false)

	var g errgroup.Group
	errs := make([]error, 2)
	for i, userID := range []uuid.UUID{alice, bob} {
		i, userID := i, userID
		g.Go(func() error {
			_, err := svc.CreateBooking(ctx, userID, bookingReq(eventID, 1))
			errs[i] = err
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var won int
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			require.ErrorIs(t, err, ErrInsufficientTickets)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 0, availableTickets(t, store, eventID))
}

func TestCancelBookingRestoresTickets(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewTicketingService(store, zap.NewNop())
	ctx := context.Background()

	userID := seedUser(t, store, false)
	eventID := seedEvent(t, store, 100, 50.0, 48*time.Hour)

	confirmation, err := svc.CreateBooking(ctx, userID, bookingReq(eventID, 4))
	require.NoError(t, err)
	require.Equal(t, 96, availableTickets(t, store, eventID))

	bookingID, err := uuid.Parse(confirmation.ID)
	require.NoError(t, err)

	result, err := svc.CancelBooking(ctx, userID, bookingID)
	require.NoError(t, err)

	assert.Equal(t, 4, result.TicketsReturned)
	assert.Equal(t, 200.0, result.RefundAmount)
	assert.Equal(t, 100, availableTickets(t, store, eventID))

	booking, err := store.Repos().Bookings.FindByID(ctx, bookingID)
	require.NoError(t, err)
	require.NotNil(t, booking)
	assert.Equal(t, entity.BookingStatusCancelled, booking.Status)
	assert.Equal(t, entity.PaymentStatusRefunded, booking.PaymentStatus)

	payment, err := store.Repos().Payments.FindByBookingID(ctx, bookingID)
	require.NoError(t, err)
	require.NotNil(t, payment)
	assert.Equal(t, entity.TransactionStatusRefunded, payment.Status)
}

func TestCancelBookingTwiceFails(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewTicketingService(store, zap.NewNop())
	ctx := context.Background()

	userID := seedUser(t, store, false)
	eventID := seedEvent(t, store, 10, 50.0, 48*time.Hour)

	confirmation, err := svc.CreateBooking(ctx, userID, bookingReq(eventID, 2))
	require.NoError(t, err)
	bookingID, err := uuid.Parse(confirmation.ID)
	require.NoError(t, err)

	_, err = svc.CancelBooking(ctx, userID, bookingID)
	require.NoError(t, err)

	// The second cancellation must not credit the tickets again.
	_, err = svc.CancelBooking(ctx, userID, bookingID)
	require.ErrorIs(t, err, ErrAlreadyCancelled)
	assert.Equal(t, 10, availableTickets(t, store, eventID))
}

func TestCancelBookingNotOwner(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewTicketingService(store, zap.NewNop())
	ctx := context.Background()

	owner := seedUser(t, store, false)
	intruder := seedUser(t, store, false)
	eventID := seedEvent(t, store, 10, 50.0, 48*time.Hour)

	confirmation, err := svc.CreateBooking(ctx, owner, bookingReq(eventID, 2))
	require.NoError(t, err)
	bookingID, err := uuid.Parse(confirmation.ID)
	require.NoError(t, err)

	_, err = svc.CancelBooking(ctx, intruder, bookingID)
	require.ErrorIs(t, err, ErrNotBookingOwner)

	booking, err := store.Repos().Bookings.FindByID(ctx, bookingID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusConfirmed, booking.Status)
}

func TestCancelBookingPastEvent(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewTicketingService(store, zap.NewNop())
	ctx := context.Background()

	userID := seedUser(t, store, false)
	eventID := seedEvent(t, store, 10, 50.0, -2*time.Hour)

	// Seed the booking directly, the event already started.
	now := time.Now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:        userID,
		EventID:       eventID,
		TicketsCount:  2,
		TotalAmount:   100.0,
		Status:        entity.BookingStatusConfirmed,
		PaymentStatus: entity.PaymentStatusPaid,
	}
	require.NoError(t, store.Repos().Bookings.Create(ctx, booking))

	_, err := svc.CancelBooking(ctx, userID, booking.ID)
	require.ErrorIs(t, err, ErrEventAlreadyOccurred)
}

func TestCancelBookingNotFound(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewTicketingService(store, zap.NewNop())

	userID := seedUser(t, store, false)

	_, err := svc.CancelBooking(context.Background(), userID, uuid.New())
	require.ErrorIs(t, err, ErrBookingNotFound)
}

// staleBookingStore serves reads of one booking from a snapshot taken before
// a racing reversal committed, the way a second transaction under read
// committed still observes the pre-commit row. Writes hit the real store.
type staleBookingStore struct {
	inner repository.Store
	stale entity.Booking
}

func (s *staleBookingStore) Repos() *repository.Repository {
	return s.inner.Repos()
}

func (s *staleBookingStore) InTx(ctx context.Context, fn func(r *repository.Repository) error) error {
	return s.inner.InTx(ctx, func(r *repository.Repository) error {
		shadow := *r
		shadow.Bookings = &staleBookings{BookingRepository: r.Bookings, stale: s.stale}
		return fn(&shadow)
	})
}

type staleBookings struct {
	repository.BookingRepository
	stale entity.Booking
}

func (b *staleBookings) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	if id == b.stale.ID {
		booking := b.stale
		return &booking, nil
	}
	return b.BookingRepository.FindByID(ctx, id)
}

func TestCancelRacingCancelCreditsOnce(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewTicketingService(store, zap.NewNop())
	ctx := context.Background()

	userID := seedUser(t, store, false)
	eventID := seedEvent(t, store, 10, 50.0, 48*time.Hour)

	confirmation, err := svc.CreateBooking(ctx, userID, bookingReq(eventID, 3))
	require.NoError(t, err)
	bookingID, err := uuid.Parse(confirmation.ID)
	require.NoError(t, err)

	snapshot, err := store.Repos().Bookings.FindByID(ctx, bookingID)
	require.NoError(t, err)
	require.Equal(t, entity.BookingStatusConfirmed, snapshot.Status)

	// Both cancels observe the booking as confirmed; the guarded transition
	// must let exactly one of them credit the tickets back.
	staleSvc := NewTicketingService(&staleBookingStore{inner: store, stale: *snapshot}, zap.NewNop())

	_, err = staleSvc.CancelBooking(ctx, userID, bookingID)
	require.NoError(t, err)
	require.Equal(t, 10, availableTickets(t, store, eventID))

	_, err = staleSvc.CancelBooking(ctx, userID, bookingID)
	require.ErrorIs(t, err, ErrAlreadyCancelled)
	assert.Equal(t, 10, availableTickets(t, store, eventID))
}

// paymentFailStore wraps a store and makes every payment insert fail, so a
// reservation can never settle.
type paymentFailStore struct {
	inner repository.Store
}

func (s *paymentFailStore) Repos() *repository.Repository {
	return s.inner.Repos()
}

func (s *paymentFailStore) InTx(ctx context.Context, fn func(r *repository.Repository) error) error {
	return s.inner.InTx(ctx, func(r *repository.Repository) error {
		broken := *r
		broken.Payments = failingPayments{}
		return fn(&broken)
	})
}

type failingPayments struct{}

func (failingPayments) Create(ctx context.Context, payment *entity.Payment) error {
	return errors.New("payment gateway down")
}

func (failingPayments) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error) {
	return nil, nil
}

func (failingPayments) UpdateStatusByBookingID(ctx context.Context, bookingID uuid.UUID, status entity.TransactionStatus) error {
	return nil
}

func (failingPayments) DeleteByBookingID(ctx context.Context, bookingID uuid.UUID) error {
	return nil
}

func TestCreateBookingRollsBackWhenPaymentFails(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewTicketingService(&paymentFailStore{inner: store}, zap.NewNop())
	ctx := context.Background()

	userID := seedUser(t, store, false)
	eventID := seedEvent(t, store, 10, 50.0, 48*time.Hour)

	_, err := svc.CreateBooking(ctx, userID, bookingReq(eventID, 3))
	require.Error(t, err)

	// Nothing may survive the failed scope: no debit, no booking row.
	assert.Equal(t, 10, availableTickets(t, store, eventID))
	bookings, err := store.Repos().Bookings.FindByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestGetUserBookings(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewTicketingService(store, zap.NewNop())
	ctx := context.Background()

	userID := seedUser(t, store, false)
	otherID := seedUser(t, store, false)
	eventID := seedEvent(t, store, 100, 30.0, 48*time.Hour)

	_, err := svc.CreateBooking(ctx, userID, bookingReq(eventID, 2))
	require.NoError(t, err)
	_, err = svc.CreateBooking(ctx, otherID, bookingReq(eventID, 1))
	require.NoError(t, err)

	bookings, err := svc.GetUserBookings(ctx, userID)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, 2, bookings[0].TicketsCount)
	require.NotNil(t, bookings[0].Event)
	assert.Equal(t, "Summer Concert", bookings[0].Event.Title)
}

func TestGetUserBookingsCanCancel(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewTicketingService(store, zap.NewNop())
	ctx := context.Background()

	userID := seedUser(t, store, false)
	futureEvent := seedEvent(t, store, 100, 30.0, 48*time.Hour)
	pastEvent := seedEvent(t, store, 100, 30.0, -2*time.Hour)

	active, err := svc.CreateBooking(ctx, userID, bookingReq(futureEvent, 1))
	require.NoError(t, err)
	assert.True(t, active.CanCancel)

	cancelled, err := svc.CreateBooking(ctx, userID, bookingReq(futureEvent, 1))
	require.NoError(t, err)
	cancelledID, err := uuid.Parse(cancelled.ID)
	require.NoError(t, err)
	_, err = svc.CancelBooking(ctx, userID, cancelledID)
	require.NoError(t, err)

	// A booking on an event that already started can no longer be cancelled.
	now := time.Now()
	past := &entity.Booking{
		Base:          entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		UserID:        userID,
		EventID:       pastEvent,
		TicketsCount:  1,
		TotalAmount:   30.0,
		Status:        entity.BookingStatusConfirmed,
		PaymentStatus: entity.PaymentStatusPaid,
	}
	require.NoError(t, store.Repos().Bookings.Create(ctx, past))

	bookings, err := svc.GetUserBookings(ctx, userID)
	require.NoError(t, err)
	require.Len(t, bookings, 3)

	flags := make(map[string]bool, len(bookings))
	for _, booking := range bookings {
		flags[booking.ID] = booking.CanCancel
	}
	assert.True(t, flags[active.ID])
	assert.False(t, flags[cancelled.ID])
	assert.False(t, flags[past.ID.String()])
}

package usecase

import (
	"context"
	"testing"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedCategory(t *testing.T, store repository.Store, name string) uuid.UUID {
	t.Helper()

	category := &entity.Category{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		Name: name,
	}
	require.NoError(t, store.Repos().Categories.Create(context.Background(), category))
	return category.ID
}

func strPtr(s string) *string { return &s }

func TestCreateEvent(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewAdminService(store, zap.NewNop())
	ctx := context.Background()

	categoryID := seedCategory(t, store, "Music")

	event, err := svc.CreateEvent(ctx, &request.CreateEventRequest{
		Title:            "Jazz Night",
		CategoryID:       strPtr(categoryID.String()),
		Date:             "2026-10-15",
		Time:             "19:30",
		Venue:            "Blue Note",
		Price:            45.0,
		AvailableTickets: 80,
	})
	require.NoError(t, err)

	assert.Equal(t, "Jazz Night", event.Title)
	assert.Equal(t, entity.EventStatusUpcoming, event.Status)
	assert.Equal(t, 80, event.AvailableTickets)
	assert.Equal(t, entity.DefaultMaxTicketsPerUser, event.MaxTicketsPerUser)
	assert.Equal(t, "2026-10-15", event.Date)
	assert.Equal(t, "19:30", event.Time)
}

func TestCreateEventRejectsBadInput(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewAdminService(store, zap.NewNop())
	ctx := context.Background()

	// Unknown category
	_, err := svc.CreateEvent(ctx, &request.CreateEventRequest{
		Title:            "Jazz Night",
		CategoryID:       strPtr(uuid.NewString()),
		Date:             "2026-10-15",
		Time:             "19:30",
		Venue:            "Blue Note",
		Price:            45.0,
		AvailableTickets: 80,
	})
	require.ErrorIs(t, err, ErrCategoryNotFound)

	// Negative price
	_, err = svc.CreateEvent(ctx, &request.CreateEventRequest{
		Title:            "Jazz Night",
		Date:             "2026-10-15",
		Time:             "19:30",
		Venue:            "Blue Note",
		Price:            -1.0,
		AvailableTickets: 80,
	})
	require.ErrorIs(t, err, ErrValidation)

	// Malformed date
	_, err = svc.CreateEvent(ctx, &request.CreateEventRequest{
		Title:            "Jazz Night",
		Date:             "15-10-2026",
		Time:             "19:30",
		Venue:            "Blue Note",
		Price:            45.0,
		AvailableTickets: 80,
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdateEventPartial(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewAdminService(store, zap.NewNop())
	ctx := context.Background()

	eventID := seedEvent(t, store, 100, 50.0, 48*time.Hour)

	price := 75.0
	updated, err := svc.UpdateEvent(ctx, eventID, &request.UpdateEventRequest{
		Price: &price,
	})
	require.NoError(t, err)

	assert.Equal(t, 75.0, updated.Price)
	assert.Equal(t, "Summer Concert", updated.Title)
	assert.Equal(t, 100, updated.AvailableTickets)
}

func TestUpdateEventNotFound(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewAdminService(store, zap.NewNop())

	price := 10.0
	_, err := svc.UpdateEvent(context.Background(), uuid.New(), &request.UpdateEventRequest{Price: &price})
	require.ErrorIs(t, err, ErrEventNotFound)
}

func TestDeleteEventBlockedByBookings(t *testing.T) {
	store := repository.NewMemoryStore()
	admin := NewAdminService(store, zap.NewNop())
	ticketing := NewTicketingService(store, zap.NewNop())
	ctx := context.Background()

	userID := seedUser(t, store, false)
	eventID := seedEvent(t, store, 10, 20.0, 48*time.Hour)

	confirmation, err := ticketing.CreateBooking(ctx, userID, bookingReq(eventID, 2))
	require.NoError(t, err)

	err = admin.DeleteEvent(ctx, eventID)
	require.ErrorIs(t, err, ErrEventHasBookings)

	// A cancelled booking still blocks deletion, the history stays.
	bookingID, err := uuid.Parse(confirmation.ID)
	require.NoError(t, err)
	_, err = ticketing.CancelBooking(ctx, userID, bookingID)
	require.NoError(t, err)

	err = admin.DeleteEvent(ctx, eventID)
	require.ErrorIs(t, err, ErrEventHasBookings)
}

func TestDeleteEventWithoutBookings(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewAdminService(store, zap.NewNop())
	ctx := context.Background()

	eventID := seedEvent(t, store, 10, 20.0, 48*time.Hour)

	require.NoError(t, svc.DeleteEvent(ctx, eventID))

	event, err := store.Repos().Events.FindByID(ctx, eventID)
	require.NoError(t, err)
	assert.Nil(t, event)
}

func TestDeleteBookingReturnsTickets(t *testing.T) {
	store := repository.NewMemoryStore()
	admin := NewAdminService(store, zap.NewNop())
	ticketing := NewTicketingService(store, zap.NewNop())
	ctx := context.Background()

	userID := seedUser(t, store, false)
	eventID := seedEvent(t, store, 10, 20.0, 48*time.Hour)

	confirmation, err := ticketing.CreateBooking(ctx, userID, bookingReq(eventID, 3))
	require.NoError(t, err)
	require.Equal(t, 7, availableTickets(t, store, eventID))

	bookingID, err := uuid.Parse(confirmation.ID)
	require.NoError(t, err)

	require.NoError(t, admin.DeleteBooking(ctx, bookingID))

	assert.Equal(t, 10, availableTickets(t, store, eventID))

	booking, err := store.Repos().Bookings.FindByID(ctx, bookingID)
	require.NoError(t, err)
	assert.Nil(t, booking)

	payment, err := store.Repos().Payments.FindByBookingID(ctx, bookingID)
	require.NoError(t, err)
	assert.Nil(t, payment)
}

func TestDeleteCancelledBookingDoesNotCreditTwice(t *testing.T) {
	store := repository.NewMemoryStore()
	admin := NewAdminService(store, zap.NewNop())
	ticketing := NewTicketingService(store, zap.NewNop())
	ctx := context.Background()

	userID := seedUser(t, store, false)
	eventID := seedEvent(t, store, 10, 20.0, 48*time.Hour)

	confirmation, err := ticketing.CreateBooking(ctx, userID, bookingReq(eventID, 3))
	require.NoError(t, err)
	bookingID, err := uuid.Parse(confirmation.ID)
	require.NoError(t, err)

	_, err = ticketing.CancelBooking(ctx, userID, bookingID)
	require.NoError(t, err)
	require.Equal(t, 10, availableTickets(t, store, eventID))

	require.NoError(t, admin.DeleteBooking(ctx, bookingID))
	assert.Equal(t, 10, availableTickets(t, store, eventID))
}

func TestDeleteBookingRacingCancelDoesNotCredit(t *testing.T) {
	store := repository.NewMemoryStore()
	ticketing := NewTicketingService(store, zap.NewNop())
	ctx := context.Background()

	userID := seedUser(t, store, false)
	eventID := seedEvent(t, store, 10, 20.0, 48*time.Hour)

	confirmation, err := ticketing.CreateBooking(ctx, userID, bookingReq(eventID, 3))
	require.NoError(t, err)
	bookingID, err := uuid.Parse(confirmation.ID)
	require.NoError(t, err)

	snapshot, err := store.Repos().Bookings.FindByID(ctx, bookingID)
	require.NoError(t, err)
	require.Equal(t, entity.BookingStatusConfirmed, snapshot.Status)

	// The cancel commits first and returns the tickets.
	_, err = ticketing.CancelBooking(ctx, userID, bookingID)
	require.NoError(t, err)
	require.Equal(t, 10, availableTickets(t, store, eventID))

	// The delete still sees the pre-cancel row. It loses the guarded
	// transition and must remove the booking without crediting again.
	admin := NewAdminService(&staleBookingStore{inner: store, stale: *snapshot}, zap.NewNop())
	require.NoError(t, admin.DeleteBooking(ctx, bookingID))

	assert.Equal(t, 10, availableTickets(t, store, eventID))

	booking, err := store.Repos().Bookings.FindByID(ctx, bookingID)
	require.NoError(t, err)
	assert.Nil(t, booking)
}

func TestDeleteUserGuards(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewAdminService(store, zap.NewNop())
	ctx := context.Background()

	adminID := seedUser(t, store, true)
	otherAdmin := seedUser(t, store, true)
	customer := seedUser(t, store, false)

	require.ErrorIs(t, svc.DeleteUser(ctx, adminID, adminID), ErrCannotDeleteSelf)
	require.ErrorIs(t, svc.DeleteUser(ctx, adminID, otherAdmin), ErrCannotDeleteAdmin)
	require.ErrorIs(t, svc.DeleteUser(ctx, adminID, uuid.New()), ErrUserNotFound)

	require.NoError(t, svc.DeleteUser(ctx, adminID, customer))

	user, err := store.Repos().Users.FindByID(ctx, customer)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestGetStats(t *testing.T) {
	store := repository.NewMemoryStore()
	admin := NewAdminService(store, zap.NewNop())
	ticketing := NewTicketingService(store, zap.NewNop())
	ctx := context.Background()

	seedUser(t, store, true)
	alice := seedUser(t, store, false)
	bob := seedUser(t, store, false)
	eventID := seedEvent(t, store, 100, 25.0, 48*time.Hour)

	_, err := ticketing.CreateBooking(ctx, alice, bookingReq(eventID, 2))
	require.NoError(t, err)
	confirmation, err := ticketing.CreateBooking(ctx, bob, bookingReq(eventID, 4))
	require.NoError(t, err)

	// A cancelled booking drops out of counts and revenue.
	bookingID, err := uuid.Parse(confirmation.ID)
	require.NoError(t, err)
	_, err = ticketing.CancelBooking(ctx, bob, bookingID)
	require.NoError(t, err)

	stats, err := admin.GetStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.TotalEvents)
	assert.Equal(t, int64(1), stats.UpcomingEvents)
	assert.Equal(t, int64(1), stats.TotalBookings)
	assert.Equal(t, int64(2), stats.TotalCustomers)
	assert.Equal(t, 50.0, stats.TotalRevenue)
	assert.Len(t, stats.RecentBookings, 2)
}

func TestListUsersWithSummary(t *testing.T) {
	store := repository.NewMemoryStore()
	admin := NewAdminService(store, zap.NewNop())
	ticketing := NewTicketingService(store, zap.NewNop())
	ctx := context.Background()

	alice := seedUser(t, store, false)
	eventID := seedEvent(t, store, 100, 25.0, 48*time.Hour)

	_, err := ticketing.CreateBooking(ctx, alice, bookingReq(eventID, 2))
	require.NoError(t, err)

	users, err := admin.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, int64(1), users[0].BookingsCount)
	assert.Equal(t, 50.0, users[0].TotalSpent)
}

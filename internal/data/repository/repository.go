package repository

import (
	"context"
	"errors"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInsufficientTickets is returned by the ledger when an event does not
// have enough remaining tickets to cover a reservation.
var ErrInsufficientTickets = errors.New("not enough tickets available")

// ErrNotFound is returned by conditional writes against a missing row.
var ErrNotFound = errors.New("not found")

// ErrBusy is returned when a transaction keeps losing lock or serialization
// conflicts after bounded retries. Callers may retry the whole request.
var ErrBusy = errors.New("storage busy")

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindAll(ctx context.Context) ([]*entity.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountCustomers(ctx context.Context) (int64, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	FindAll(ctx context.Context) ([]*entity.Category, error)
}

type EventRepository interface {
	Create(ctx context.Context, event *entity.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error)
	// LockByID acquires an exclusive row lock on the event. Only meaningful
	// inside Store.InTx; concurrent lockers on the same event serialize.
	LockByID(ctx context.Context, id uuid.UUID) (*entity.Event, error)
	FindPublished(ctx context.Context, limit int) ([]*entity.Event, error)
	Search(ctx context.Context, query string) ([]*entity.Event, error)
	FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]*entity.Event, error)
	FindAll(ctx context.Context) ([]*entity.Event, error)
	Update(ctx context.Context, event *entity.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	CountUpcoming(ctx context.Context) (int64, error)
}

// TicketLedger owns the authoritative available-ticket count per event.
// Both operations must run inside Store.InTx together with the booking and
// payment writes they balance.
type TicketLedger interface {
	// Reserve debits quantity only if the remaining count covers it,
	// otherwise ErrInsufficientTickets.
	Reserve(ctx context.Context, eventID uuid.UUID, quantity int) error
	// Release credits quantity back unconditionally.
	Release(ctx context.Context, eventID uuid.UUID, quantity int) error
}

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Booking, error)
	FindAll(ctx context.Context) ([]*entity.Booking, error)
	FindCreatedSince(ctx context.Context, since time.Time, limit int) ([]*entity.Booking, error)
	SumConfirmedTickets(ctx context.Context, userID, eventID uuid.UUID) (int, error)
	CountByEventID(ctx context.Context, eventID uuid.UUID) (int64, error)
	CountConfirmedByEventID(ctx context.Context, eventID uuid.UUID) (int64, error)
	// TransitionStatus moves a booking from `from` to `to` in one guarded
	// write. ErrNotFound when no row currently holds `from`, so two racing
	// reversals of the same booking cannot both win.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to entity.BookingStatus, paymentStatus entity.PaymentStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	SummaryByUserID(ctx context.Context, userID uuid.UUID) (count int64, spent float64, err error)
	CountConfirmed(ctx context.Context) (int64, error)
	CountConfirmedSince(ctx context.Context, since time.Time) (int64, error)
	Revenue(ctx context.Context) (float64, error)
	RevenueSince(ctx context.Context, since time.Time) (float64, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error)
	UpdateStatusByBookingID(ctx context.Context, bookingID uuid.UUID, status entity.TransactionStatus) error
	DeleteByBookingID(ctx context.Context, bookingID uuid.UUID) error
}

// Repository groups all repositories over one backend.
type Repository struct {
	Users      UserRepository
	Categories CategoryRepository
	Events     EventRepository
	Ledger     TicketLedger
	Bookings   BookingRepository
	Payments   PaymentRepository
}

// Store is the storage backend. InTx is the atomic scope: every write made
// through the Repository passed to fn commits together or not at all, and
// row locks taken inside fn are held until the scope resolves.
type Store interface {
	Repos() *Repository
	InTx(ctx context.Context, fn func(r *Repository) error) error
}

// NewRepository builds the pgx-backed repository set over q, which may be
// the pool or an open transaction.
func NewRepository(q database.Querier, log *zap.Logger) *Repository {
	return &Repository{
		Users:      NewUserRepository(q, log),
		Categories: NewCategoryRepository(q, log),
		Events:     NewEventRepository(q, log),
		Ledger:     NewTicketLedger(q, log),
		Bookings:   NewBookingRepository(q, log),
		Payments:   NewPaymentRepository(q, log),
	}
}

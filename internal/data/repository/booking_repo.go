package repository

import (
	"context"
	"fmt"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type bookingRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewBookingRepository(db database.Querier, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, user_id, event_id, tickets_count, total_amount, status, payment_status, created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.EventID,
		&booking.TicketsCount,
		&booking.TotalAmount,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) scanBookings(rows pgx.Rows) ([]*entity.Booking, error) {
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, user_id, event_id, tickets_count, total_amount, status, payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.UserID,
		booking.EventID,
		booking.TicketsCount,
		booking.TotalAmount,
		booking.Status,
		booking.PaymentStatus,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("user_id", booking.UserID.String()),
			zap.String("event_id", booking.EventID.String()),
		)
		return fmt.Errorf("create booking for event %s: %w", booking.EventID.String(), err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to find bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find bookings by user ID %s: %w", userID.String(), err)
	}

	return r.scanBookings(rows)
}

func (r *bookingRepository) FindAll(ctx context.Context) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list bookings", zap.Error(err))
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	return r.scanBookings(rows)
}

func (r *bookingRepository) FindCreatedSince(ctx context.Context, since time.Time, limit int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE created_at >= $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, since, limit)
	if err != nil {
		r.log.Error("Failed to find recent bookings", zap.Error(err))
		return nil, fmt.Errorf("find recent bookings: %w", err)
	}

	return r.scanBookings(rows)
}

// SumConfirmedTickets totals the user's confirmed tickets for one event;
// the per-user cap is enforced against this number.
func (r *bookingRepository) SumConfirmedTickets(ctx context.Context, userID, eventID uuid.UUID) (int, error) {
	query := `
		SELECT COALESCE(SUM(tickets_count), 0)
		FROM bookings
		WHERE user_id = $1 AND event_id = $2 AND status = 'confirmed'
	`

	var total int
	err := r.db.QueryRow(ctx, query, userID, eventID).Scan(&total)
	if err != nil {
		r.log.Error("Failed to sum confirmed tickets",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("event_id", eventID.String()),
		)
		return 0, fmt.Errorf("sum confirmed tickets for event %s: %w", eventID.String(), err)
	}

	return total, nil
}

func (r *bookingRepository) CountByEventID(ctx context.Context, eventID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE event_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, eventID).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings by event ID",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return 0, fmt.Errorf("count bookings for event %s: %w", eventID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) CountConfirmedByEventID(ctx context.Context, eventID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE event_id = $1 AND status = 'confirmed'`

	var count int64
	if err := r.db.QueryRow(ctx, query, eventID).Scan(&count); err != nil {
		r.log.Error("Failed to count confirmed bookings by event ID",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return 0, fmt.Errorf("count confirmed bookings for event %s: %w", eventID.String(), err)
	}

	return count, nil
}

// TransitionStatus is the guarded write the reversal paths race on. The
// status predicate makes it a compare-and-swap: a concurrent transition that
// committed first leaves no matching row here.
func (r *bookingRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to entity.BookingStatus, paymentStatus entity.PaymentStatus) error {
	query := `
		UPDATE bookings SET status = $2, payment_status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4
	`

	result, err := r.db.Exec(ctx, query, id, to, paymentStatus, from)
	if err != nil {
		r.log.Error("Failed to transition booking status",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("to", string(to)),
		)
		return fmt.Errorf("transition booking %s to %s: %w", id.String(), string(to), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not in status %s: %w", id.String(), string(from), ErrNotFound)
	}

	return nil
}

func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM bookings WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return fmt.Errorf("delete booking %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s: %w", id.String(), ErrNotFound)
	}

	r.log.Info("Booking deleted", zap.String("booking_id", id.String()))
	return nil
}

func (r *bookingRepository) SummaryByUserID(ctx context.Context, userID uuid.UUID) (int64, float64, error) {
	query := `
		SELECT COUNT(*),
			COALESCE(SUM(total_amount) FILTER (WHERE status = 'confirmed'), 0)
		FROM bookings
		WHERE user_id = $1
	`

	var count int64
	var spent float64
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count, &spent); err != nil {
		r.log.Error("Failed to summarise bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, 0, fmt.Errorf("summarise bookings for user %s: %w", userID.String(), err)
	}

	return count, spent, nil
}

func (r *bookingRepository) CountConfirmed(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE status = 'confirmed'`

	var count int64
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		r.log.Error("Failed to count confirmed bookings", zap.Error(err))
		return 0, fmt.Errorf("count confirmed bookings: %w", err)
	}

	return count, nil
}

func (r *bookingRepository) CountConfirmedSince(ctx context.Context, since time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE status = 'confirmed' AND created_at >= $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, since).Scan(&count); err != nil {
		r.log.Error("Failed to count confirmed bookings since", zap.Error(err))
		return 0, fmt.Errorf("count confirmed bookings since %s: %w", since, err)
	}

	return count, nil
}

func (r *bookingRepository) Revenue(ctx context.Context) (float64, error) {
	query := `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM bookings
		WHERE status = 'confirmed' AND payment_status = 'paid'
	`

	var total float64
	if err := r.db.QueryRow(ctx, query).Scan(&total); err != nil {
		r.log.Error("Failed to compute revenue", zap.Error(err))
		return 0, fmt.Errorf("compute revenue: %w", err)
	}

	return total, nil
}

func (r *bookingRepository) RevenueSince(ctx context.Context, since time.Time) (float64, error) {
	query := `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM bookings
		WHERE status = 'confirmed' AND payment_status = 'paid' AND created_at >= $1
	`

	var total float64
	if err := r.db.QueryRow(ctx, query, since).Scan(&total); err != nil {
		r.log.Error("Failed to compute revenue since", zap.Error(err))
		return 0, fmt.Errorf("compute revenue since %s: %w", since, err)
	}

	return total, nil
}

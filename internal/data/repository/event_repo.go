package repository

import (
	"context"
	"fmt"

	"event-ticketing/internal/data/entity"
	"event-ticketing/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type eventRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewEventRepository(db database.Querier, log *zap.Logger) EventRepository {
	return &eventRepository{
		db:  db,
		log: log.With(zap.String("repository", "event")),
	}
}

const eventColumns = `id, title, description, category_id, date, time, venue, location,
	price, available_tickets, max_tickets_per_user, image_url, status, created_at, updated_at`

func scanEvent(row pgx.Row) (*entity.Event, error) {
	var event entity.Event
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.CategoryID,
		&event.Date,
		&event.Time,
		&event.Venue,
		&event.Location,
		&event.Price,
		&event.AvailableTickets,
		&event.MaxTicketsPerUser,
		&event.ImageURL,
		&event.Status,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) scanEvents(rows pgx.Rows) ([]*entity.Event, error) {
	defer rows.Close()

	var events []*entity.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			r.log.Error("Failed to scan event row", zap.Error(err))
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	query := `
		INSERT INTO events (id, title, description, category_id, date, time, venue, location,
			price, available_tickets, max_tickets_per_user, image_url, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.Exec(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.CategoryID,
		event.Date,
		event.Time,
		event.Venue,
		event.Location,
		event.Price,
		event.AvailableTickets,
		event.MaxTicketsPerUser,
		event.ImageURL,
		event.Status,
		event.CreatedAt,
		event.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create event",
			zap.Error(err),
			zap.String("title", event.Title),
		)
		return fmt.Errorf("create event %s: %w", event.Title, err)
	}

	return nil
}

func (r *eventRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find event by ID",
			zap.Error(err),
			zap.String("event_id", id.String()),
		)
		return nil, fmt.Errorf("find event by ID %s: %w", id.String(), err)
	}

	return event, nil
}

// LockByID reads the event under FOR UPDATE. Concurrent reservations and
// cancellations against the same event block here until the holding
// transaction commits or rolls back.
func (r *eventRepository) LockByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`

	event, err := scanEvent(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to lock event row",
			zap.Error(err),
			zap.String("event_id", id.String()),
		)
		return nil, fmt.Errorf("lock event row %s: %w", id.String(), err)
	}

	return event, nil
}

func (r *eventRepository) FindPublished(ctx context.Context, limit int) ([]*entity.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE status IN ('upcoming', 'ongoing')
		ORDER BY date ASC, time ASC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		r.log.Error("Failed to list published events", zap.Error(err))
		return nil, fmt.Errorf("list published events: %w", err)
	}

	return r.scanEvents(rows)
}

func (r *eventRepository) Search(ctx context.Context, searchQuery string) ([]*entity.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		WHERE (e.title ILIKE $1 OR e.description ILIKE $1
			OR EXISTS (
				SELECT 1 FROM event_categories ec
				WHERE ec.id = e.category_id AND ec.name ILIKE $1
			))
		AND e.status IN ('upcoming', 'ongoing')
		ORDER BY e.date ASC
	`

	rows, err := r.db.Query(ctx, query, "%"+searchQuery+"%")
	if err != nil {
		r.log.Error("Failed to search events",
			zap.Error(err),
			zap.String("query", searchQuery),
		)
		return nil, fmt.Errorf("search events %q: %w", searchQuery, err)
	}

	return r.scanEvents(rows)
}

func (r *eventRepository) FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]*entity.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE category_id = $1
		AND status IN ('upcoming', 'ongoing')
		ORDER BY date ASC
	`

	rows, err := r.db.Query(ctx, query, categoryID)
	if err != nil {
		r.log.Error("Failed to find events by category",
			zap.Error(err),
			zap.String("category_id", categoryID.String()),
		)
		return nil, fmt.Errorf("find events by category %s: %w", categoryID.String(), err)
	}

	return r.scanEvents(rows)
}

func (r *eventRepository) FindAll(ctx context.Context) ([]*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY date ASC, time ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list events", zap.Error(err))
		return nil, fmt.Errorf("list events: %w", err)
	}

	return r.scanEvents(rows)
}

func (r *eventRepository) Update(ctx context.Context, event *entity.Event) error {
	query := `
		UPDATE events
		SET title = $2, description = $3, category_id = $4, date = $5, time = $6,
			venue = $7, location = $8, price = $9, available_tickets = $10,
			max_tickets_per_user = $11, image_url = $12, status = $13, updated_at = $14
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.CategoryID,
		event.Date,
		event.Time,
		event.Venue,
		event.Location,
		event.Price,
		event.AvailableTickets,
		event.MaxTicketsPerUser,
		event.ImageURL,
		event.Status,
		event.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update event",
			zap.Error(err),
			zap.String("event_id", event.ID.String()),
		)
		return fmt.Errorf("update event %s: %w", event.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("event %s: %w", event.ID.String(), ErrNotFound)
	}

	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM events WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete event",
			zap.Error(err),
			zap.String("event_id", id.String()),
		)
		return fmt.Errorf("delete event %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("event %s: %w", id.String(), ErrNotFound)
	}

	r.log.Info("Event deleted", zap.String("event_id", id.String()))
	return nil
}

func (r *eventRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		r.log.Error("Failed to count events", zap.Error(err))
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

func (r *eventRepository) CountUpcoming(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM events WHERE status = 'upcoming' AND date >= CURRENT_DATE`

	var count int64
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		r.log.Error("Failed to count upcoming events", zap.Error(err))
		return 0, fmt.Errorf("count upcoming events: %w", err)
	}
	return count, nil
}

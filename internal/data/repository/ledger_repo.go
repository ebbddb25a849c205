package repository

import (
	"context"
	"fmt"

	"event-ticketing/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ticketLedger struct {
	db  database.Querier
	log *zap.Logger
}

func NewTicketLedger(db database.Querier, log *zap.Logger) TicketLedger {
	return &ticketLedger{
		db:  db,
		log: log.With(zap.String("repository", "ledger")),
	}
}

// Reserve debits the available-ticket count. The availability check lives
// in the UPDATE predicate, so even without a prior row lock two concurrent
// debits can never push the count below zero.
func (l *ticketLedger) Reserve(ctx context.Context, eventID uuid.UUID, quantity int) error {
	query := `
		UPDATE events
		SET available_tickets = available_tickets - $2, updated_at = NOW()
		WHERE id = $1 AND available_tickets >= $2
	`

	result, err := l.db.Exec(ctx, query, eventID, quantity)
	if err != nil {
		l.log.Error("Failed to reserve tickets",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
			zap.Int("quantity", quantity),
		)
		return fmt.Errorf("reserve %d tickets for event %s: %w", quantity, eventID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return ErrInsufficientTickets
	}

	return nil
}

// Release credits tickets back. No clamp against original capacity, the
// counter is the only authority.
func (l *ticketLedger) Release(ctx context.Context, eventID uuid.UUID, quantity int) error {
	query := `
		UPDATE events
		SET available_tickets = available_tickets + $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := l.db.Exec(ctx, query, eventID, quantity)
	if err != nil {
		l.log.Error("Failed to release tickets",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
			zap.Int("quantity", quantity),
		)
		return fmt.Errorf("release %d tickets for event %s: %w", quantity, eventID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("event %s: %w", eventID.String(), ErrNotFound)
	}

	return nil
}

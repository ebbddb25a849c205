package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"event-ticketing/pkg/database"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const (
	txMaxAttempts = 3
	txBackoffBase = 50 * time.Millisecond
)

type pgStore struct {
	db    database.PgxIface
	log   *zap.Logger
	repos *Repository
}

// NewStore builds the Postgres-backed Store. Its atomic scope maps to a
// database transaction; row locks inside it come from SELECT ... FOR UPDATE.
func NewStore(db database.PgxIface, log *zap.Logger) Store {
	return &pgStore{
		db:    db,
		log:   log,
		repos: NewRepository(db, log),
	}
}

func (s *pgStore) Repos() *Repository {
	return s.repos
}

// InTx runs fn inside a transaction. Serialization failures, deadlocks and
// lock-wait timeouts are retried with backoff a bounded number of times,
// then surfaced as ErrBusy so the caller sees a transient failure instead
// of a hang.
func (s *pgStore) InTx(ctx context.Context, fn func(r *Repository) error) error {
	var err error
	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		err = s.runTx(ctx, fn)
		if err == nil || !retryableTxError(err) {
			return err
		}

		s.log.Warn("Transaction conflict, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(txBackoffBase << (attempt - 1)):
		}
	}

	return fmt.Errorf("%w: transaction failed after %d attempts: %s", ErrBusy, txMaxAttempts, err)
}

func (s *pgStore) runTx(ctx context.Context, fn func(r *Repository) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// Bound lock waits so contended reservations fail fast instead of
	// queueing indefinitely.
	if _, err := tx.Exec(ctx, `SET LOCAL lock_timeout = '3s'`); err != nil {
		return fmt.Errorf("set lock timeout: %w", err)
	}

	if err := fn(NewRepository(tx, s.log)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func retryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case "40001", // serialization_failure
		"40P01", // deadlock_detected
		"55P03": // lock_not_available
		return true
	}

	return false
}

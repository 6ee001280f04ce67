package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SQLSTATEs PostgreSQL raises when concurrent transactions collide on the
// same rows. 55P03 is an expired lock_timeout, 40001 a repeatable-read
// serialization failure (the blocked FOR UPDATE resumed after the winner
// committed), 40P01 a deadlock. All three mean the caller lost a race and
// may retry.
const (
	lockNotAvailable     = "55P03"
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
)

// WithTx executes a function within a transaction using the RepeatableRead
// isolation level. Rollback is guaranteed on every exit path.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: commit tx: %w", err)
	}

	return nil
}

// IsLockConflict reports whether err is a lost concurrency race: an expired
// lock_timeout, a serialization failure, or a deadlock.
func IsLockConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case lockNotAvailable, serializationFailure, deadlockDetected:
		return true
	}
	return false
}

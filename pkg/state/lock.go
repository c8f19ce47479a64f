// SPDX-License-Identifier: Apache-2.0

package state

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/jetbase-hq/jetbase/pkg/dialect"
	"github.com/jetbase-hq/jetbase/pkg/store"
)

// releaseTimeout bounds the detached release transaction WithLock issues on
// exit, so a caller that cancelled its own context still gets the lock row
// cleared rather than leaving it held forever.
const releaseTimeout = 10 * time.Second

// Status is the current state of the singleton jetbase_lock row.
type Status struct {
	IsLocked bool
	LockedAt Timestamp
}

// Lock is the repository over jetbase_lock: a database-side mutex shared by
// every process pointed at the same database.
type Lock struct {
	d dialect.Dialect
}

// NewLock constructs a Lock repository for d's query surface.
func NewLock(d dialect.Dialect) *Lock {
	return &Lock{d: d}
}

// EnsureTable issues the idempotent CREATE TABLE for jetbase_lock and seeds
// its single unlocked row if absent.
func (l *Lock) EnsureTable(ctx context.Context, exec Executor) error {
	if _, err := exec.ExecContext(ctx, l.d.CreateLockTableSQL()); err != nil {
		return err
	}
	_, err := exec.ExecContext(ctx, l.d.InitializeLockRowSQL())
	return err
}

// TableExists reports whether jetbase_lock is present.
func (l *Lock) TableExists(ctx context.Context, exec Executor) (bool, error) {
	query, args := l.d.TableExistsSQL("jetbase_lock")
	var exists bool
	if err := exec.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Status reads the lock row's current is_locked/locked_at.
func (l *Lock) Status(ctx context.Context, exec Executor) (Status, error) {
	var s Status
	if err := exec.QueryRowContext(ctx, l.d.LockStatusSQL()).Scan(&s.IsLocked, &s.LockedAt); err != nil {
		return Status{}, err
	}
	return s, nil
}

// Acquire issues the conditional UPDATE that claims the lock row for a fresh
// process_id, failing with AlreadyLockedError if the row was already held.
// The lock does not nest: the caller's own prior acquisition, if any, is not
// recognized specially.
func (l *Lock) Acquire(ctx context.Context, exec Executor) (processID string, err error) {
	id := uuid.NewString()

	res, err := exec.ExecContext(ctx, l.d.AcquireLockSQL(), time.Now().UTC(), id)
	if err != nil {
		return "", err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if affected == 0 {
		return "", AlreadyLockedError{}
	}

	return id, nil
}

// Release clears the lock row, but only if it is still held by processID.
// A release whose process_id no longer matches (because force-unlock
// already cleared it) is a no-op.
func (l *Lock) Release(ctx context.Context, exec Executor, processID string) error {
	_, err := exec.ExecContext(ctx, l.d.ReleaseLockSQL(), processID)
	return err
}

// ForceUnlock clears the lock row unconditionally, regardless of which
// process_id currently holds it.
func (l *Lock) ForceUnlock(ctx context.Context, exec Executor) error {
	_, err := exec.ExecContext(ctx, l.d.ForceUnlockSQL())
	return err
}

// WithLock acquires the lock, runs fn, and releases on every exit path:
// normal return, error, or a cancelled ctx. The acquired process_id is
// never exposed to fn.
func (l *Lock) WithLock(ctx context.Context, adapter *store.Adapter, fn func(context.Context) error) error {
	var processID string
	acquireErr := adapter.Run(ctx, func(ctx context.Context, tx *sql.Tx) error {
		id, err := l.Acquire(ctx, tx)
		if err != nil {
			return err
		}
		processID = id
		return nil
	})
	if acquireErr != nil {
		return acquireErr
	}

	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		_ = adapter.Run(releaseCtx, func(ctx context.Context, tx *sql.Tx) error {
			return l.Release(ctx, tx, processID)
		})
	}()

	return fn(ctx)
}

// SPDX-License-Identifier: Apache-2.0

// Package store opens connections and runs units of work inside a single
// transaction, applying the per-backend session setup (schema search path,
// noisy-driver log suppression) the dialect layer calls for.
package store

import (
	"context"
	"database/sql"
	"io"
	"log"
	"sync"
	"time"

	"github.com/cloudflare/backoff"

	"github.com/jetbase-hq/jetbase/pkg/dialect"
)

const (
	maxBackoffDuration = 1 * time.Minute
	backoffInterval    = 250 * time.Millisecond
)

// Adapter materializes a connection for one dialect and schema, and runs
// caller-supplied units of work inside a single transaction each.
type Adapter struct {
	db      *sql.DB
	dialect dialect.Dialect
	schema  string
}

// Open opens a *sql.DB for the dialect resolved from databaseURL and wraps
// it in an Adapter. schema is only honored on backends whose dialect
// implements SearchPathStatement (PostgreSQL today).
func Open(databaseURL, schema string) (*Adapter, error) {
	d, err := dialect.For(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.DriverName(), databaseURL)
	if err != nil {
		return nil, err
	}

	return &Adapter{db: db, dialect: d, schema: schema}, nil
}

// NewAdapter wraps an already-open *sql.DB in an Adapter, for callers that
// manage the connection pool themselves (tests, or a process sharing one
// pool across several adapters).
func NewAdapter(db *sql.DB, d dialect.Dialect, schema string) *Adapter {
	return &Adapter{db: db, dialect: d, schema: schema}
}

// Dialect returns the adapter's resolved dialect.
func (a *Adapter) Dialect() dialect.Dialect { return a.dialect }

// Close closes the underlying connection pool.
func (a *Adapter) Close() error { return a.db.Close() }

// Run opens one transaction, applies per-backend session setup, yields the
// transaction to fn, and commits on a nil return or rolls back otherwise.
// Transient errors (serialization/lock-busy conditions the dialect
// recognizes) are retried with exponential backoff. The jetbase_lock
// acquisition also runs through Run, but its AlreadyLockedError is not a
// transient error, so lock contention fails immediately instead of spinning.
func (a *Adapter) Run(ctx context.Context, fn func(context.Context, *sql.Tx) error) error {
	restore := a.suppressDriverLogsIfNeeded()
	defer restore()

	b := backoff.New(maxBackoffDuration, backoffInterval)

	for {
		err := a.runOnce(ctx, fn)
		if err == nil {
			return nil
		}

		if !a.dialect.IsTransientError(err) {
			return err
		}

		if sleepErr := sleepCtx(ctx, b.Duration()); sleepErr != nil {
			return sleepErr
		}
	}
}

func (a *Adapter) runOnce(ctx context.Context, fn func(context.Context, *sql.Tx) error) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if stmt, ok := a.dialect.SearchPathStatement(a.schema); ok {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return rbErr
		}
		return err
	}

	return tx.Commit()
}

// driverLogMu serializes suppressDriverLogsIfNeeded across concurrent Run
// calls against log-suppressing dialects, since the standard logger's output
// is process-global.
var driverLogMu sync.Mutex

// suppressDriverLogsIfNeeded quiets the standard logger for the duration of
// a call against dialects that report noisy driver output (Databricks),
// restoring the prior output writer on exit.
func (a *Adapter) suppressDriverLogsIfNeeded() func() {
	if !a.dialect.SuppressesDriverLogs() {
		return func() {}
	}

	driverLogMu.Lock()
	prevOutput := log.Writer()
	log.SetOutput(io.Discard)

	return func() {
		log.SetOutput(prevOutput)
		driverLogMu.Unlock()
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

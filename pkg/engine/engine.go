// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"database/sql"

	"github.com/jetbase-hq/jetbase/pkg/catalog"
	"github.com/jetbase-hq/jetbase/pkg/dialect"
	"github.com/jetbase-hq/jetbase/pkg/plan"
	"github.com/jetbase-hq/jetbase/pkg/state"
	"github.com/jetbase-hq/jetbase/pkg/store"
	"github.com/jetbase-hq/jetbase/pkg/validate"
)

// Engine is the single entry point wiring together the storage adapter, the
// migrations repository and lock manager, the file catalog, the validator,
// and the planner: ensure tables, plan, acquire the lock, execute, release.
type Engine struct {
	cfg        Config
	adapter    *store.Adapter
	migrations *state.Migrations
	lock       *state.Lock
	events     func(Event)
}

// New opens a connection for cfg.DatabaseURL and constructs an Engine.
// Callers must call Close when done.
func New(cfg Config, opts ...Option) (*Engine, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	adapter, err := store.Open(cfg.DatabaseURL, cfg.PostgresSchema)
	if err != nil {
		return nil, DatabaseError{StatementIndex: -1, Err: err}
	}

	return newEngine(cfg, adapter, o), nil
}

// NewWithAdapter constructs an Engine over an already-open adapter, for
// callers (tests, a process sharing one pool across several engines) that
// manage the connection themselves.
func NewWithAdapter(cfg Config, adapter *store.Adapter, opts ...Option) *Engine {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return newEngine(cfg, adapter, o)
}

func newEngine(cfg Config, adapter *store.Adapter, o *options) *Engine {
	d := adapter.Dialect()
	return &Engine{
		cfg:        cfg,
		adapter:    adapter,
		migrations: state.NewMigrations(d),
		lock:       state.NewLock(d),
		events:     o.events,
	}
}

// Close releases the underlying connection pool.
func (e *Engine) Close() error {
	return e.adapter.Close()
}

// ensureTables issues the idempotent CREATE TABLE statements for both system
// tables. Every public operation calls this first.
func (e *Engine) ensureTables(ctx context.Context) error {
	return e.adapter.Run(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := e.migrations.EnsureTable(ctx, tx); err != nil {
			return err
		}
		return e.lock.EnsureTable(ctx, tx)
	})
}

// historySnapshot reads every piece of applied-migration state the validator
// and planner need, in one transaction.
type historySnapshot struct {
	latestVersion         string
	versionsAndChecksums  map[string]string
	runsOnChangeChecksums map[string]string
	runsAlwaysFilenames   []string
}

func (e *Engine) fetchHistorySnapshot(ctx context.Context) (*historySnapshot, error) {
	snap := &historySnapshot{}
	err := e.adapter.Run(ctx, func(ctx context.Context, tx *sql.Tx) error {
		latest, err := e.migrations.FetchLatestVersioned(ctx, tx)
		if err != nil {
			return err
		}
		if latest != nil && latest.Version != nil {
			snap.latestVersion = *latest.Version
		}

		snap.versionsAndChecksums, err = e.migrations.FetchVersionsAndChecksums(ctx, tx)
		if err != nil {
			return err
		}
		snap.runsOnChangeChecksums, err = e.migrations.FetchRunsOnChangeChecksums(ctx, tx)
		if err != nil {
			return err
		}
		snap.runsAlwaysFilenames, err = e.migrations.FetchRunsAlwaysFilenames(ctx, tx)
		return err
	})
	if err != nil {
		return nil, DatabaseError{StatementIndex: -1, Err: err}
	}
	return snap, nil
}

func (e *Engine) validateOptions(o *upgradeOptions) validate.Options {
	skipValidation := e.cfg.SkipValidation || o.skipValidation
	skipFile := e.cfg.SkipFileValidation || o.skipFileValidation
	skipChecksum := e.cfg.SkipChecksumValidation || o.skipChecksumValidation
	return validate.Options{
		SkipValidation:          skipValidation,
		SkipVersionFileCheck:    skipFile,
		SkipRepeatableFileCheck: skipFile,
		SkipChecksumCheck:       skipChecksum,
	}
}

// Upgrade computes the upgrade work set and, unless WithUpgradeDryRun was
// given, executes it under the migration lock. An empty returned plan with a
// nil error means the database is already up to date.
func (e *Engine) Upgrade(ctx context.Context, opts ...UpgradeOption) (*plan.UpgradePlan, error) {
	o := &upgradeOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if err := e.ensureTables(ctx); err != nil {
		return nil, DatabaseError{StatementIndex: -1, Err: err}
	}

	cat, err := catalog.Walk(e.cfg.MigrationsDir)
	if err != nil {
		return nil, err
	}

	snap, err := e.fetchHistorySnapshot(ctx)
	if err != nil {
		return nil, err
	}

	if snap.latestVersion != "" {
		hist := validate.History{
			LatestVersion:         snap.latestVersion,
			VersionsAndChecksums:  snap.versionsAndChecksums,
			RunsOnChangeChecksums: snap.runsOnChangeChecksums,
			RunsAlwaysFilenames:   snap.runsAlwaysFilenames,
		}
		if err := validate.Validate(cat, hist, e.validateOptions(o)); err != nil {
			return nil, err
		}
	}

	planOpts := plan.UpgradeOptions{Count: o.count, ToVersion: o.toVersion}

	if o.dryRun {
		return plan.UpgradeDryRun(cat, snap.latestVersion, snap.runsOnChangeChecksums, planOpts)
	}

	p, err := plan.Upgrade(cat, snap.latestVersion, snap.runsOnChangeChecksums, planOpts)
	if err != nil {
		return nil, err
	}
	if len(p.Items) == 0 {
		return p, nil
	}

	existingRunsAlways := make(map[string]bool, len(snap.runsAlwaysFilenames))
	for _, f := range snap.runsAlwaysFilenames {
		existingRunsAlways[f] = true
	}
	existingRunsOnChange := make(map[string]bool, len(snap.runsOnChangeChecksums))
	for f := range snap.runsOnChangeChecksums {
		existingRunsOnChange[f] = true
	}

	lockErr := e.lock.WithLock(ctx, e.adapter, func(ctx context.Context) error {
		for _, item := range p.Items {
			e.emit(Event{Filename: item.Filename, Version: item.Version, Kind: item.Kind, Outcome: Started})
			if err := e.executeUpgradeItem(ctx, item, existingRunsAlways, existingRunsOnChange); err != nil {
				e.emit(Event{Filename: item.Filename, Version: item.Version, Kind: item.Kind, Outcome: Failed, Err: err})
				return err
			}
			e.emit(Event{Filename: item.Filename, Version: item.Version, Kind: item.Kind, Outcome: Applied})
		}
		return nil
	})
	if lockErr != nil {
		if cancelled, ok := asCancelled(lockErr); ok {
			return nil, cancelled
		}
		return nil, lockErr
	}

	return p, nil
}

func (e *Engine) executeUpgradeItem(ctx context.Context, item plan.UpgradeItem, existingRunsAlways, existingRunsOnChange map[string]bool) error {
	return e.adapter.Run(ctx, func(ctx context.Context, tx *sql.Tx) error {
		statements, err := catalog.ParseUpgrade(item.Path, false)
		if err != nil {
			return err
		}
		for i, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return DatabaseError{File: item.Filename, StatementIndex: i, Err: err}
			}
		}

		checksum := catalog.Checksum(statements)

		switch item.Kind {
		case catalog.Versioned:
			version := item.Version
			if err := e.migrations.InsertRecord(ctx, tx, &version, item.Description, item.Filename, state.Versioned, checksum); err != nil {
				return DatabaseError{File: item.Filename, StatementIndex: -1, Err: err}
			}
		case catalog.RunsAlways:
			if err := e.upsertRepeatable(ctx, tx, item, state.RunsAlways, checksum, existingRunsAlways[item.Filename]); err != nil {
				return err
			}
		case catalog.RunsOnChange:
			if err := e.upsertRepeatable(ctx, tx, item, state.RunsOnChange, checksum, existingRunsOnChange[item.Filename]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (e *Engine) upsertRepeatable(ctx context.Context, tx *sql.Tx, item plan.UpgradeItem, migrationType state.MigrationType, checksum string, alreadyApplied bool) error {
	var err error
	if alreadyApplied {
		err = e.migrations.UpdateRepeatable(ctx, tx, item.Filename, migrationType, checksum)
	} else {
		err = e.migrations.InsertRecord(ctx, tx, nil, item.Description, item.Filename, migrationType, checksum)
	}
	if err != nil {
		return DatabaseError{File: item.Filename, StatementIndex: -1, Err: err}
	}
	return nil
}

// Rollback computes the rollback work set and, unless WithRollbackDryRun was
// given, executes it under the migration lock. An empty returned plan with a
// nil error means there is nothing to roll back.
func (e *Engine) Rollback(ctx context.Context, opts ...RollbackOption) (*plan.RollbackPlan, error) {
	o := &rollbackOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.count != nil && o.toVersion != "" {
		return nil, InvalidArgumentError{Message: "count and to_version are mutually exclusive"}
	}
	if o.count != nil && *o.count <= 0 {
		return nil, InvalidArgumentError{Message: "count must be a positive integer"}
	}

	if err := e.ensureTables(ctx); err != nil {
		return nil, DatabaseError{StatementIndex: -1, Err: err}
	}

	cat, err := catalog.Walk(e.cfg.MigrationsDir)
	if err != nil {
		return nil, err
	}

	var appliedDescending []string
	err = e.adapter.Run(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		switch {
		case o.toVersion != "":
			appliedDescending, err = e.migrations.FetchVersionsAfter(ctx, tx, o.toVersion)
		default:
			count := 1
			if o.count != nil {
				count = *o.count
			}
			appliedDescending, err = e.migrations.FetchLatestVersions(ctx, tx, count)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(appliedDescending) == 0 {
		return &plan.RollbackPlan{}, nil
	}

	if o.dryRun {
		return plan.RollbackDryRun(cat, appliedDescending)
	}

	p, err := plan.Rollback(cat, appliedDescending)
	if err != nil {
		return nil, err
	}

	lockErr := e.lock.WithLock(ctx, e.adapter, func(ctx context.Context) error {
		for _, item := range p.Items {
			e.emit(Event{Filename: item.Filename, Version: item.Version, Kind: catalog.Versioned, Outcome: Started})
			if err := e.executeRollbackItem(ctx, item); err != nil {
				e.emit(Event{Filename: item.Filename, Version: item.Version, Kind: catalog.Versioned, Outcome: Failed, Err: err})
				return err
			}
			e.emit(Event{Filename: item.Filename, Version: item.Version, Kind: catalog.Versioned, Outcome: Applied})
		}
		return nil
	})
	if lockErr != nil {
		if cancelled, ok := asCancelled(lockErr); ok {
			return nil, cancelled
		}
		return nil, lockErr
	}

	return p, nil
}

func (e *Engine) executeRollbackItem(ctx context.Context, item plan.RollbackItem) error {
	return e.adapter.Run(ctx, func(ctx context.Context, tx *sql.Tx) error {
		statements, err := catalog.ParseRollback(item.Path, false)
		if err != nil {
			return err
		}
		for i, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return DatabaseError{File: item.Filename, StatementIndex: i, Err: err}
			}
		}
		if err := e.migrations.DeleteByVersion(ctx, tx, item.Version); err != nil {
			return DatabaseError{File: item.Filename, StatementIndex: -1, Err: err}
		}
		return nil
	})
}

// History returns every applied-migration record, ascending by order
// executed.
func (e *Engine) History(ctx context.Context) ([]state.Record, error) {
	if err := e.ensureTables(ctx); err != nil {
		return nil, DatabaseError{StatementIndex: -1, Err: err}
	}

	var records []state.Record
	err := e.adapter.Run(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		records, err = e.migrations.FetchHistory(ctx, tx, dialect.HistoryFilter{Ascending: true})
		return err
	})
	if err != nil {
		return nil, DatabaseError{StatementIndex: -1, Err: err}
	}
	return records, nil
}

// Current returns the most recently applied versioned record, or nil if
// none has ever been applied.
func (e *Engine) Current(ctx context.Context) (*state.Record, error) {
	if err := e.ensureTables(ctx); err != nil {
		return nil, DatabaseError{StatementIndex: -1, Err: err}
	}

	var record *state.Record
	err := e.adapter.Run(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		record, err = e.migrations.FetchLatestVersioned(ctx, tx)
		return err
	})
	if err != nil {
		return nil, DatabaseError{StatementIndex: -1, Err: err}
	}
	return record, nil
}

// Status summarizes what has been applied and what remains pending. The
// engine returns the structured data; rendering it is the caller's job.
type Status struct {
	LatestVersion       string
	PendingVersioned    []catalog.VersionedFile
	PendingRunsAlways   []catalog.RepeatableFile
	PendingRunsOnChange []catalog.RepeatableFile
}

// Status computes the current Status snapshot.
func (e *Engine) Status(ctx context.Context) (*Status, error) {
	if err := e.ensureTables(ctx); err != nil {
		return nil, DatabaseError{StatementIndex: -1, Err: err}
	}

	cat, err := catalog.Walk(e.cfg.MigrationsDir)
	if err != nil {
		return nil, err
	}

	snap, err := e.fetchHistorySnapshot(ctx)
	if err != nil {
		return nil, err
	}

	s := &Status{LatestVersion: snap.latestVersion}
	for _, v := range cat.Versioned {
		if _, applied := snap.versionsAndChecksums[v.Version]; applied {
			continue
		}
		if snap.latestVersion != "" && catalog.CompareVersions(v.Version, snap.latestVersion) <= 0 {
			continue
		}
		s.PendingVersioned = append(s.PendingVersioned, v)
	}
	s.PendingRunsAlways = cat.RunsAlways
	for _, f := range cat.RunsOnChange {
		storedChecksum, applied := snap.runsOnChangeChecksums[f.Filename]
		if !applied {
			s.PendingRunsOnChange = append(s.PendingRunsOnChange, f)
			continue
		}
		statements, err := catalog.ParseUpgrade(f.Path, false)
		if err != nil {
			return nil, err
		}
		if catalog.Checksum(statements) != storedChecksum {
			s.PendingRunsOnChange = append(s.PendingRunsOnChange, f)
		}
	}

	return s, nil
}

// LockStatus reads the current lock row, reporting unlocked if either
// system table is absent (nothing has ever run).
func (e *Engine) LockStatus(ctx context.Context) (state.Status, error) {
	var status state.Status
	err := e.adapter.Run(ctx, func(ctx context.Context, tx *sql.Tx) error {
		lockExists, err := e.lock.TableExists(ctx, tx)
		if err != nil {
			return err
		}
		migrationsExist, err := e.migrations.TableExists(ctx, tx)
		if err != nil {
			return err
		}
		if !lockExists || !migrationsExist {
			return nil
		}
		status, err = e.lock.Status(ctx, tx)
		return err
	})
	if err != nil {
		return state.Status{}, DatabaseError{StatementIndex: -1, Err: err}
	}
	return status, nil
}

// Unlock clears the lock row unconditionally, a no-op if either system
// table is absent.
func (e *Engine) Unlock(ctx context.Context) error {
	err := e.adapter.Run(ctx, func(ctx context.Context, tx *sql.Tx) error {
		lockExists, err := e.lock.TableExists(ctx, tx)
		if err != nil {
			return err
		}
		migrationsExist, err := e.migrations.TableExists(ctx, tx)
		if err != nil {
			return err
		}
		if !lockExists || !migrationsExist {
			return nil
		}
		return e.lock.ForceUnlock(ctx, tx)
	})
	if err != nil {
		return DatabaseError{StatementIndex: -1, Err: err}
	}
	return nil
}

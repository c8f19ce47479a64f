// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"database/sql"

	"github.com/jetbase-hq/jetbase/pkg/catalog"
)

// FileDrift is the set of applied-migration rows whose corresponding file is
// no longer present on disk.
type FileDrift struct {
	MissingVersions    []string
	MissingRepeatables []string
}

// IsEmpty reports whether no drift was found.
func (d FileDrift) IsEmpty() bool {
	return len(d.MissingVersions) == 0 && len(d.MissingRepeatables) == 0
}

// ValidateFiles audits the history against the current file catalog for
// missing files. With fix=false it only reports drift; with fix=true it
// additionally deletes the orphaned rows under the migration lock,
// "forgetting" them. Missing files are never recreated.
func (e *Engine) ValidateFiles(ctx context.Context, fix bool) (FileDrift, error) {
	if err := e.ensureTables(ctx); err != nil {
		return FileDrift{}, DatabaseError{StatementIndex: -1, Err: err}
	}

	cat, err := catalog.Walk(e.cfg.MigrationsDir)
	if err != nil {
		return FileDrift{}, err
	}

	snap, err := e.fetchHistorySnapshot(ctx)
	if err != nil {
		return FileDrift{}, err
	}

	var drift FileDrift
	for _, version := range sortedVersions(snap.versionsAndChecksums) {
		if _, ok := cat.FindVersioned(version); !ok {
			drift.MissingVersions = append(drift.MissingVersions, version)
		}
	}
	for _, filename := range snap.runsAlwaysFilenames {
		if !cat.HasRepeatable(filename) {
			drift.MissingRepeatables = append(drift.MissingRepeatables, filename)
		}
	}
	for filename := range snap.runsOnChangeChecksums {
		if !cat.HasRepeatable(filename) {
			drift.MissingRepeatables = append(drift.MissingRepeatables, filename)
		}
	}

	if !fix || drift.IsEmpty() {
		return drift, nil
	}

	lockErr := e.lock.WithLock(ctx, e.adapter, func(ctx context.Context) error {
		for _, version := range drift.MissingVersions {
			if err := e.adapter.Run(ctx, func(ctx context.Context, tx *sql.Tx) error {
				return e.migrations.DeleteMissingVersion(ctx, tx, version)
			}); err != nil {
				return DatabaseError{StatementIndex: -1, Err: err}
			}
		}
		for _, filename := range drift.MissingRepeatables {
			if err := e.adapter.Run(ctx, func(ctx context.Context, tx *sql.Tx) error {
				return e.migrations.DeleteMissingRepeatable(ctx, tx, filename)
			}); err != nil {
				return DatabaseError{StatementIndex: -1, Err: err}
			}
		}
		return nil
	})
	if lockErr != nil {
		return FileDrift{}, lockErr
	}

	return drift, nil
}

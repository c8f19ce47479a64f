// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"database/sql"
	"sort"

	"github.com/jetbase-hq/jetbase/pkg/catalog"
)

// ChecksumDrift is one applied version whose recomputed checksum no longer
// matches what was stored at apply time.
type ChecksumDrift struct {
	Version     string
	OldChecksum string
	NewChecksum string
}

// ValidateChecksums audits every applied versioned file for checksum drift,
// failing with MissingMigrationFileError if an applied version's file is no
// longer on disk. With fix=false it only reports drift; with fix=true it
// additionally repairs the stored checksums under the migration lock. The
// pre-upgrade checksum check is deliberately not consulted here: the drift
// it would reject is exactly what this operation exists to repair.
func (e *Engine) ValidateChecksums(ctx context.Context, fix bool) ([]ChecksumDrift, error) {
	if err := e.ensureTables(ctx); err != nil {
		return nil, DatabaseError{StatementIndex: -1, Err: err}
	}

	snap, err := e.fetchHistorySnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if len(snap.versionsAndChecksums) == 0 {
		return nil, nil
	}

	cat, err := catalog.Walk(e.cfg.MigrationsDir)
	if err != nil {
		return nil, err
	}

	var drift []ChecksumDrift
	for _, version := range sortedVersions(snap.versionsAndChecksums) {
		entry, ok := cat.FindVersioned(version)
		if !ok {
			return nil, MissingMigrationFileError{Version: version}
		}

		statements, err := catalog.ParseUpgrade(entry.Path, false)
		if err != nil {
			return nil, err
		}
		checksum := catalog.Checksum(statements)

		if checksum != snap.versionsAndChecksums[version] {
			drift = append(drift, ChecksumDrift{Version: version, OldChecksum: snap.versionsAndChecksums[version], NewChecksum: checksum})
		}
	}

	if !fix || len(drift) == 0 {
		return drift, nil
	}

	lockErr := e.lock.WithLock(ctx, e.adapter, func(ctx context.Context) error {
		for _, d := range drift {
			if err := e.adapter.Run(ctx, func(ctx context.Context, tx *sql.Tx) error {
				return e.migrations.RepairChecksum(ctx, tx, d.Version, d.NewChecksum)
			}); err != nil {
				return DatabaseError{StatementIndex: -1, Err: err}
			}
		}
		return nil
	})
	if lockErr != nil {
		return nil, lockErr
	}

	return drift, nil
}

func sortedVersions(m map[string]string) []string {
	versions := make([]string, 0, len(m))
	for v := range m {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool { return catalog.CompareVersions(versions[i], versions[j]) < 0 })
	return versions
}

// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jetbase-hq/jetbase/pkg/catalog"
)

// newMigrationSkeleton is the body written for every scaffolded file: an
// empty upgrade section and an empty rollback section, so the author only
// has to fill in statements.
const newMigrationSkeleton = "-- upgrade\n\n-- rollback\n"

// NewMigration scaffolds the next versioned migration file in
// e.cfg.MigrationsDir, named V<next>__<description>.sql with spaces in
// description rendered as underscores. next is one past the highest leading
// version component seen either on disk or in the most recently applied
// version, so a version whose file was deleted after it was applied is not
// reissued.
func (e *Engine) NewMigration(ctx context.Context, description string) (string, error) {
	if strings.TrimSpace(description) == "" {
		return "", InvalidArgumentError{Message: "description must not be empty"}
	}

	cat, err := catalog.Walk(e.cfg.MigrationsDir)
	if err != nil {
		return "", err
	}

	next := int64(1)
	for _, v := range cat.Versioned {
		if c := leadingComponent(v.Version) + 1; c > next {
			next = c
		}
	}

	current, err := e.Current(ctx)
	if err != nil {
		return "", err
	}
	if current != nil && current.Version != nil {
		if c := leadingComponent(*current.Version) + 1; c > next {
			next = c
		}
	}

	filename := fmt.Sprintf("V%d__%s.sql", next, strings.ReplaceAll(strings.TrimSpace(description), " ", "_"))
	path := filepath.Join(e.cfg.MigrationsDir, filename)

	if err := os.WriteFile(path, []byte(newMigrationSkeleton), 0o644); err != nil {
		return "", err
	}

	return filename, nil
}

// leadingComponent returns the first dot-separated integer component of a
// normalized version string, e.g. "2.1" -> 2. Malformed components parse to
// 0, which only ever pulls next downward, never causing a collision.
func leadingComponent(version string) int64 {
	first := version
	if i := strings.IndexByte(version, '.'); i >= 0 {
		first = version[:i]
	}
	n, _ := strconv.ParseInt(first, 10, 64)
	return n
}

// SPDX-License-Identifier: Apache-2.0

// Package validate implements the pre-upgrade invariant checks: every
// check compares the current file catalog against the applied migration
// history and returns a distinct typed error on the first disagreement it
// finds.
package validate

import (
	"sort"

	"github.com/jetbase-hq/jetbase/pkg/catalog"
)

// Options controls which checks run. SkipValidation is the coarse flag;
// each fine-grained flag additionally gates its own single check.
type Options struct {
	SkipValidation          bool
	SkipOrderCheck          bool
	SkipVersionFileCheck    bool
	SkipRepeatableFileCheck bool
	SkipChecksumCheck       bool
}

func (o Options) skip(fine bool) bool {
	return o.SkipValidation || fine
}

// History is the subset of applied-migration state the validator compares
// the current catalog against.
type History struct {
	// LatestVersion is the most recently applied versioned migration's
	// version, or "" if none has ever been applied.
	LatestVersion string
	// VersionsAndChecksums maps every applied version to its stored
	// checksum.
	VersionsAndChecksums map[string]string
	// RunsOnChangeChecksums maps every applied RUNS_ON_CHANGE filename to
	// its stored checksum.
	RunsOnChangeChecksums map[string]string
	// RunsAlwaysFilenames lists every applied RUNS_ALWAYS filename.
	RunsAlwaysFilenames []string
}

// Validate runs every check not individually skipped, in the order
// ordering -> versioned-file-presence -> repeatable-file-presence ->
// checksum fidelity, returning the first failure. Duplicate-version
// detection is enforced unconditionally inside
// catalog.Walk, which cannot build a Catalog containing two files sharing a
// version, so there is no corresponding skippable check here.
func Validate(cat *catalog.Catalog, hist History, opts Options) error {
	if !opts.skip(opts.SkipOrderCheck) {
		if err := NoBackfill(cat, hist); err != nil {
			return err
		}
	}
	if !opts.skip(opts.SkipVersionFileCheck) {
		if err := AllAppliedVersionsPresent(cat, hist); err != nil {
			return err
		}
	}
	if !opts.skip(opts.SkipRepeatableFileCheck) {
		if err := AllAppliedRepeatablesPresent(cat, hist); err != nil {
			return err
		}
	}
	if !opts.skip(opts.SkipChecksumCheck) {
		if err := ChecksumFidelity(cat, hist); err != nil {
			return err
		}
	}
	return nil
}

// NoBackfill fails if any catalog file not already applied carries a
// version lower than the latest applied version.
func NoBackfill(cat *catalog.Catalog, hist History) error {
	if hist.LatestVersion == "" {
		return nil
	}
	for _, v := range cat.Versioned {
		if _, applied := hist.VersionsAndChecksums[v.Version]; applied {
			continue
		}
		if catalog.CompareVersions(v.Version, hist.LatestVersion) < 0 {
			return OutOfOrderMigrationError{Filename: v.Filename, Version: v.Version, LatestVersion: hist.LatestVersion}
		}
	}
	return nil
}

// AllAppliedVersionsPresent fails if any applied version has no
// corresponding file in the current catalog.
func AllAppliedVersionsPresent(cat *catalog.Catalog, hist History) error {
	for _, version := range sortedKeys(hist.VersionsAndChecksums) {
		if _, ok := cat.FindVersioned(version); !ok {
			return MissingMigrationFileError{Version: version}
		}
	}
	return nil
}

// AllAppliedRepeatablesPresent fails if any applied repeatable (runs-always
// or runs-on-change) has no corresponding file in the current catalog.
func AllAppliedRepeatablesPresent(cat *catalog.Catalog, hist History) error {
	for _, filename := range sortedKeys(hist.RunsOnChangeChecksums) {
		if !cat.HasRepeatable(filename) {
			return MissingRepeatableFileError{Filename: filename}
		}
	}

	names := append([]string(nil), hist.RunsAlwaysFilenames...)
	sort.Strings(names)
	for _, filename := range names {
		if !cat.HasRepeatable(filename) {
			return MissingRepeatableFileError{Filename: filename}
		}
	}
	return nil
}

// ChecksumFidelity recomputes the checksum of every applied version's
// upgrade section and fails if it no longer matches what was stored at
// apply time. If the version's file is absent from the catalog — normally
// caught earlier by AllAppliedVersionsPresent, reachable here only when
// that check was individually skipped — it fails with
// MigrationVersionMismatchError instead of attempting to parse a
// nonexistent file.
func ChecksumFidelity(cat *catalog.Catalog, hist History) error {
	for _, version := range sortedVersionKeys(hist.VersionsAndChecksums) {
		entry, ok := cat.FindVersioned(version)
		if !ok {
			return MigrationVersionMismatchError{Expected: version}
		}

		statements, err := catalog.ParseUpgrade(entry.Path, false)
		if err != nil {
			return err
		}

		if checksum := catalog.Checksum(statements); checksum != hist.VersionsAndChecksums[version] {
			return MigrationChecksumMismatchError{Version: version, Filename: entry.Filename}
		}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedVersionKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return catalog.CompareVersions(keys[i], keys[j]) < 0 })
	return keys
}

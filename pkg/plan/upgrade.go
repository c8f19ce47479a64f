// SPDX-License-Identifier: Apache-2.0

// Package plan computes the ordered work set for an upgrade or rollback
// from a file catalog and the applied-migration history. It never touches
// the database or the lock; it is pure given its inputs, so it can run
// unconditionally in dry-run mode for preview.
package plan

import (
	"github.com/jetbase-hq/jetbase/pkg/catalog"
	"github.com/jetbase-hq/jetbase/pkg/state"
)

// versionNotFound wraps state.VersionNotFoundError so the planner raises
// the same named kind the migrations repository does for an unknown
// version, rather than inventing a second one.
func versionNotFound(version string) error {
	return state.VersionNotFoundError{Version: version}
}

// UpgradeItem is one piece of work in an upgrade plan: either a versioned
// file (Version non-empty) or a repeatable (RunsAlways/RunsOnChange).
type UpgradeItem struct {
	Kind        catalog.Kind
	Version     string // empty for repeatables
	Description string
	Filename    string
	Path        string
	// Statements is populated only by the DryRun variants, parsed in
	// dry-run mode for preview.
	Statements []string
}

// UpgradePlan is the ordered work set an upgrade will execute: versioned
// files first (ascending numeric order), then runs-always (alphabetical),
// then runs-on-change (alphabetical).
type UpgradePlan struct {
	Items []UpgradeItem
}

// UpgradeOptions bounds the pending versioned set. Count and ToVersion are
// mutually exclusive.
type UpgradeOptions struct {
	Count     *int
	ToVersion string
}

// Upgrade computes the ordered upgrade work set. latestVersion is the most
// recently applied versioned migration ("" if none), and
// runsOnChangeChecksums maps every applied RUNS_ON_CHANGE filename to its
// stored checksum, used to decide which RC files have drifted and must
// re-run.
func Upgrade(cat *catalog.Catalog, latestVersion string, runsOnChangeChecksums map[string]string, opts UpgradeOptions) (*UpgradePlan, error) {
	if opts.Count != nil && opts.ToVersion != "" {
		return nil, InvalidPlanOptionsError{Message: "count and to_version are mutually exclusive"}
	}
	if opts.Count != nil && *opts.Count <= 0 {
		return nil, InvalidPlanOptionsError{Message: "count must be a positive integer"}
	}

	pending := pendingVersioned(cat, latestVersion)

	switch {
	case opts.Count != nil:
		if *opts.Count < len(pending) {
			pending = pending[:*opts.Count]
		}
	case opts.ToVersion != "":
		idx := -1
		for i, v := range pending {
			if v.Version == opts.ToVersion {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, versionNotFound(opts.ToVersion)
		}
		pending = pending[:idx+1]
	}

	var items []UpgradeItem
	for _, v := range pending {
		items = append(items, UpgradeItem{Kind: catalog.Versioned, Version: v.Version, Description: v.Description, Filename: v.Filename, Path: v.Path})
	}
	for _, f := range cat.RunsAlways {
		items = append(items, UpgradeItem{Kind: catalog.RunsAlways, Description: f.Description, Filename: f.Filename, Path: f.Path})
	}
	for _, f := range cat.RunsOnChange {
		changed, err := hasRunsOnChangeDrifted(f, runsOnChangeChecksums)
		if err != nil {
			return nil, err
		}
		if changed {
			items = append(items, UpgradeItem{Kind: catalog.RunsOnChange, Description: f.Description, Filename: f.Filename, Path: f.Path})
		}
	}

	return &UpgradePlan{Items: items}, nil
}

// UpgradeDryRun computes the same plan as Upgrade, additionally parsing
// each item's file in dry-run mode so a caller can preview the statements
// without touching the database.
func UpgradeDryRun(cat *catalog.Catalog, latestVersion string, runsOnChangeChecksums map[string]string, opts UpgradeOptions) (*UpgradePlan, error) {
	p, err := Upgrade(cat, latestVersion, runsOnChangeChecksums, opts)
	if err != nil {
		return nil, err
	}
	for i := range p.Items {
		statements, err := catalog.ParseUpgrade(p.Items[i].Path, true)
		if err != nil {
			return nil, err
		}
		p.Items[i].Statements = statements
	}
	return p, nil
}

func pendingVersioned(cat *catalog.Catalog, latestVersion string) []catalog.VersionedFile {
	var pending []catalog.VersionedFile
	for _, v := range cat.Versioned {
		if latestVersion != "" && catalog.CompareVersions(v.Version, latestVersion) <= 0 {
			continue
		}
		pending = append(pending, v)
	}
	return pending
}

func hasRunsOnChangeDrifted(f catalog.RepeatableFile, stored map[string]string) (bool, error) {
	storedChecksum, applied := stored[f.Filename]
	if !applied {
		return true, nil
	}

	statements, err := catalog.ParseUpgrade(f.Path, false)
	if err != nil {
		return false, err
	}
	return catalog.Checksum(statements) != storedChecksum, nil
}

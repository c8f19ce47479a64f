// SPDX-License-Identifier: Apache-2.0

package plan

import "github.com/jetbase-hq/jetbase/pkg/catalog"

// RollbackItem is one versioned file to roll back.
type RollbackItem struct {
	Version     string
	Description string
	Filename    string
	Path        string
	// Statements is populated only by RollbackDryRun, parsed in dry-run
	// mode for preview.
	Statements []string
}

// RollbackPlan is the ordered work set a rollback will execute, in reverse
// of application order (most recently applied first). Repeatables are
// never rolled back.
type RollbackPlan struct {
	Items []RollbackItem
}

// Rollback maps appliedDescending — the already-bounded set of versions to
// undo, most recently applied first, as selected by
// pkg/state.Migrations.FetchLatestVersions (count) or
// pkg/state.Migrations.FetchVersionsAfter (to_version) — onto their catalog
// entries, preserving order. It fails with the same VersionNotFoundError
// kind the repository uses if any selected version's file is missing from
// the catalog.
func Rollback(cat *catalog.Catalog, appliedDescending []string) (*RollbackPlan, error) {
	items := make([]RollbackItem, 0, len(appliedDescending))
	for _, version := range appliedDescending {
		entry, ok := cat.FindVersioned(version)
		if !ok {
			return nil, versionNotFound(version)
		}
		items = append(items, RollbackItem{Version: version, Description: entry.Description, Filename: entry.Filename, Path: entry.Path})
	}
	return &RollbackPlan{Items: items}, nil
}

// RollbackDryRun computes the same plan as Rollback, additionally parsing
// each item's rollback section in dry-run mode for preview.
func RollbackDryRun(cat *catalog.Catalog, appliedDescending []string) (*RollbackPlan, error) {
	p, err := Rollback(cat, appliedDescending)
	if err != nil {
		return nil, err
	}
	for i := range p.Items {
		statements, err := catalog.ParseRollback(p.Items[i].Path, true)
		if err != nil {
			return nil, err
		}
		p.Items[i].Statements = statements
	}
	return p, nil
}

// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"os"
	"path/filepath"
	"sort"
)

// VersionedFile is one entry in a Catalog's versioned set.
type VersionedFile struct {
	Version     string
	Description string
	Path        string
	Filename    string
}

// RepeatableFile is one runs-always or runs-on-change entry.
type RepeatableFile struct {
	Description string
	Path        string
	Filename    string
}

// Catalog is the set of migration files found on disk at the start of an
// operation.
type Catalog struct {
	// Versioned is ordered ascending by numeric version.
	Versioned []VersionedFile
	// RunsAlways is sorted alphabetically by filename.
	RunsAlways []RepeatableFile
	// RunsOnChange is sorted alphabetically by filename.
	RunsOnChange []RepeatableFile
}

// Walk reads every *.sql file under dir, including its subdirectories,
// validates and classifies each, and returns the resulting Catalog. It fails
// DirectoryNotFoundError if dir does not exist, and fails on the first
// invalid/too-long/duplicate filename it finds.
func Walk(dir string) (*Catalog, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, DirectoryNotFoundError{Path: dir}
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, DirectoryNotFoundError{Path: dir}
	}

	cat := &Catalog{}

	walkErr := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		name := d.Name()
		if filepath.Ext(name) != ".sql" {
			return nil
		}

		if err := ValidateLength(name); err != nil {
			return err
		}

		parsed, err := ParseFilename(name)
		if err != nil {
			return err
		}

		switch parsed.Kind {
		case Versioned:
			for _, existing := range cat.Versioned {
				if CompareVersions(existing.Version, parsed.Version) == 0 {
					return DuplicateMigrationVersionError{Version: parsed.Version}
				}
			}
			cat.Versioned = append(cat.Versioned, VersionedFile{
				Version:     parsed.Version,
				Description: parsed.Description,
				Path:        path,
				Filename:    name,
			})
		case RunsAlways:
			cat.RunsAlways = append(cat.RunsAlways, RepeatableFile{
				Description: parsed.Description, Path: path, Filename: name,
			})
		case RunsOnChange:
			cat.RunsOnChange = append(cat.RunsOnChange, RepeatableFile{
				Description: parsed.Description, Path: path, Filename: name,
			})
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(cat.Versioned, func(i, j int) bool {
		return CompareVersions(cat.Versioned[i].Version, cat.Versioned[j].Version) < 0
	})
	sort.Slice(cat.RunsAlways, func(i, j int) bool { return cat.RunsAlways[i].Filename < cat.RunsAlways[j].Filename })
	sort.Slice(cat.RunsOnChange, func(i, j int) bool { return cat.RunsOnChange[i].Filename < cat.RunsOnChange[j].Filename })

	return cat, nil
}

// VersionedInRange returns the versioned files with Version >= startFrom
// (when non-empty) and Version <= end (when non-empty), inclusive on both
// bounds.
func (c *Catalog) VersionedInRange(startFrom, end string) []VersionedFile {
	var out []VersionedFile
	for _, v := range c.Versioned {
		if startFrom != "" && CompareVersions(v.Version, startFrom) < 0 {
			continue
		}
		if end != "" && CompareVersions(v.Version, end) > 0 {
			continue
		}
		out = append(out, v)
	}
	return out
}

// FindVersioned returns the catalog entry for version, if present.
func (c *Catalog) FindVersioned(version string) (VersionedFile, bool) {
	for _, v := range c.Versioned {
		if v.Version == version {
			return v, true
		}
	}
	return VersionedFile{}, false
}

// HasRunsAlways reports whether filename is present among the catalog's
// runs-always files.
func (c *Catalog) HasRunsAlways(filename string) bool {
	for _, f := range c.RunsAlways {
		if f.Filename == filename {
			return true
		}
	}
	return false
}

// HasRepeatable reports whether filename is present among either repeatable
// kind (runs-always or runs-on-change).
func (c *Catalog) HasRepeatable(filename string) bool {
	if c.HasRunsAlways(filename) {
		return true
	}
	for _, f := range c.RunsOnChange {
		if f.Filename == filename {
			return true
		}
	}
	return false
}

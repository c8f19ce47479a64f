// SPDX-License-Identifier: Apache-2.0

package state

import "fmt"

// AlreadyLockedError is raised when a lock acquisition's conditional UPDATE
// affects zero rows: some other process already holds jetbase_lock.
type AlreadyLockedError struct{}

func (AlreadyLockedError) Error() string {
	return "jetbase_lock is held by another process; run the unlock command once you've confirmed no other run is in flight"
}

// VersionNotFoundError is raised when a version cannot be resolved: a
// rollback to_version with no applied row, an upgrade to_version that is not
// pending, or a version selected for rollback whose file is missing from the
// catalog.
type VersionNotFoundError struct {
	Version string
}

func (e VersionNotFoundError) Error() string {
	return fmt.Sprintf("version %q not found", e.Version)
}

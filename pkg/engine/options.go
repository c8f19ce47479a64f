// SPDX-License-Identifier: Apache-2.0

package engine

// options configures an Engine at construction time: an unexported struct,
// zero value meaning "default", and one With* constructor per field.
type options struct {
	events func(Event)
}

// Option configures an Engine constructed by New.
type Option func(*options)

// WithEvents registers a sink every progress event is delivered to. Without
// one, events are dropped silently; the engine never prints on its own.
func WithEvents(sink func(Event)) Option {
	return func(o *options) {
		o.events = sink
	}
}

// upgradeOptions bounds and modifies a single Upgrade call.
type upgradeOptions struct {
	count                  *int
	toVersion              string
	dryRun                 bool
	skipValidation         bool
	skipChecksumValidation bool
	skipFileValidation     bool
}

// UpgradeOption configures a single Engine.Upgrade call.
type UpgradeOption func(*upgradeOptions)

// WithUpgradeCount bounds the upgrade to at most n pending versioned files.
// Mutually exclusive with WithUpgradeToVersion.
func WithUpgradeCount(n int) UpgradeOption {
	return func(o *upgradeOptions) {
		o.count = &n
	}
}

// WithUpgradeToVersion bounds the upgrade to the pending versioned files up
// to and including version. Mutually exclusive with WithUpgradeCount.
func WithUpgradeToVersion(version string) UpgradeOption {
	return func(o *upgradeOptions) {
		o.toVersion = version
	}
}

// WithUpgradeDryRun computes and returns the plan with parsed statements
// attached, without acquiring the lock or touching the database.
func WithUpgradeDryRun() UpgradeOption {
	return func(o *upgradeOptions) {
		o.dryRun = true
	}
}

// WithSkipValidation skips all four pre-upgrade validator checks; the
// duplicate-version check inside catalog.Walk still applies.
func WithSkipValidation() UpgradeOption {
	return func(o *upgradeOptions) {
		o.skipValidation = true
	}
}

// WithSkipChecksumValidation skips only the checksum-fidelity check.
func WithSkipChecksumValidation() UpgradeOption {
	return func(o *upgradeOptions) {
		o.skipChecksumValidation = true
	}
}

// WithSkipFileValidation skips only the file-presence checks (versioned and
// repeatable).
func WithSkipFileValidation() UpgradeOption {
	return func(o *upgradeOptions) {
		o.skipFileValidation = true
	}
}

// rollbackOptions bounds and modifies a single Rollback call.
type rollbackOptions struct {
	count     *int
	toVersion string
	dryRun    bool
}

// RollbackOption configures a single Engine.Rollback call.
type RollbackOption func(*rollbackOptions)

// WithRollbackCount rolls back the n most recently applied versioned files.
// Mutually exclusive with WithRollbackToVersion. If neither is given,
// Rollback defaults to 1.
func WithRollbackCount(n int) RollbackOption {
	return func(o *rollbackOptions) {
		o.count = &n
	}
}

// WithRollbackToVersion rolls back every versioned file applied after
// version. Mutually exclusive with WithRollbackCount.
func WithRollbackToVersion(version string) RollbackOption {
	return func(o *rollbackOptions) {
		o.toVersion = version
	}
}

// WithRollbackDryRun computes and returns the plan with parsed rollback
// statements attached, without acquiring the lock or touching the database.
func WithRollbackDryRun() RollbackOption {
	return func(o *rollbackOptions) {
		o.dryRun = true
	}
}

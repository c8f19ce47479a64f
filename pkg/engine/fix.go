// SPDX-License-Identifier: Apache-2.0

package engine

import "context"

// FixReport is the combined result of repairing both checksum drift and
// file drift in one call.
type FixReport struct {
	RepairedChecksums []ChecksumDrift
	RemovedFiles      FileDrift
}

// Fix repairs both missing-file drift and checksum drift, in that order,
// each under its own lock acquisition. Missing files go first so that the
// checksum pass no longer meets a history row whose file is gone.
func (e *Engine) Fix(ctx context.Context) (*FixReport, error) {
	removed, err := e.ValidateFiles(ctx, true)
	if err != nil {
		return nil, err
	}

	repaired, err := e.ValidateChecksums(ctx, true)
	if err != nil {
		return nil, err
	}

	return &FixReport{RepairedChecksums: repaired, RemovedFiles: removed}, nil
}

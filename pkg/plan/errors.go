// SPDX-License-Identifier: Apache-2.0

package plan

import "fmt"

// InvalidPlanOptionsError is raised when an upgrade/rollback bound is
// malformed: count and to_version given together, or count not a positive
// integer.
type InvalidPlanOptionsError struct {
	Message string
}

func (e InvalidPlanOptionsError) Error() string {
	return fmt.Sprintf("invalid plan options: %s", e.Message)
}

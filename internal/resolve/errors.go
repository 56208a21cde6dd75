// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"fmt"
	"strings"
)

// ErrToolNotFound is the sentinel error for a tool that could not be resolved.
// Use errors.Is to check, or errors.As with *NotFoundError for details.
var ErrToolNotFound = errors.New("tool not found")

// NotFoundError reports a tool that could not be located, canonicalized or
// spawned.
type NotFoundError struct {
	// Identifier is the name or path as requested.
	Identifier string
	// SearchPath lists the directories that were searched, in order.
	SearchPath []string
	// WorkDir is the working directory relative paths were resolved against.
	WorkDir string
	// Err is the underlying OS error, if any.
	Err error
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "tool %q not found", e.Identifier)
	if e.WorkDir != "" {
		fmt.Fprintf(&sb, " (working directory %s", e.WorkDir)
		if len(e.SearchPath) > 0 {
			fmt.Fprintf(&sb, ", searched %s", strings.Join(e.SearchPath, ", "))
		}
		sb.WriteString(")")
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

// Unwrap returns ErrToolNotFound and the underlying error.
func (e *NotFoundError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrToolNotFound}
	}
	return []error{ErrToolNotFound, e.Err}
}

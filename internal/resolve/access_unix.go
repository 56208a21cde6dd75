// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package resolve

import (
	"os"

	"golang.org/x/sys/unix"
)

// isExecutable reports whether path is a regular file the current user may
// execute, honoring ACLs and effective IDs rather than only the mode bits.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return unix.Access(path, unix.X_OK) == nil
}

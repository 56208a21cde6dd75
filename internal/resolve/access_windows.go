// SPDX-License-Identifier: MPL-2.0

//go:build windows

package resolve

import (
	"golang.org/x/sys/windows"
)

// isExecutable reports whether path names an existing file. Windows decides
// executability by extension, which candidate generation already handles.
func isExecutable(path string) bool {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return false
	}
	return attrs&windows.FILE_ATTRIBUTE_DIRECTORY == 0
}

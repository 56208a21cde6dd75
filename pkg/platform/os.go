// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"path/filepath"
	"runtime"
	"strings"
)

// OS name constants for runtime.GOOS comparisons.
// Centralizes the string literals to avoid scattered magic strings.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// ExeSuffix returns the executable file suffix for the given GOOS.
func ExeSuffix(goos string) string {
	if goos == Windows {
		return ".exe"
	}
	return ""
}

// IsWindows reports whether the current process runs on Windows.
func IsWindows() bool {
	return runtime.GOOS == Windows
}

// FileStem returns the base name of path without its extension.
// Both '/' and '\' are treated as separators so that Windows paths
// given on Unix hosts (and vice versa) yield the same stem.
func FileStem(path string) string {
	base := path
	if idx := strings.LastIndexAny(base, `/\`); idx >= 0 {
		base = base[idx+1:]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// HasPathSeparator reports whether name refers to a path rather than a bare
// executable name to be searched for.
func HasPathSeparator(name string) bool {
	return strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator)
}

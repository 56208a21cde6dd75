// SPDX-License-Identifier: MPL-2.0

// Package resolve turns a requested executable name or path into a verified
// Tool: a canonical path that exists and that the host could actually spawn.
//
// Bare names are searched in the explicit search path, else in the PATH of
// the caller's environment overlay, else in the ambient PATH. Names containing
// a path separator are used directly, relative to the working directory.
package resolve

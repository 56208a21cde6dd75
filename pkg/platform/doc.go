// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// This package contains small, pure helpers for platform-specific concerns
// that compiler invocation has to get right on every host: executable
// suffixes, file stems of tool paths written with either separator, and the
// Windows extended-length path prefix that canonicalization produces but
// compiler front-ends reject.
package platform

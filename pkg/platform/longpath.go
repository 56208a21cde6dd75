// SPDX-License-Identifier: MPL-2.0

package platform

import "strings"

const (
	// extendedPrefix is the Win32 extended-length path prefix produced by
	// canonicalization APIs. Most compiler front-ends reject it.
	extendedPrefix = `\\?\`
	// extendedUNCPrefix is the extended-length form of a UNC share path.
	extendedUNCPrefix = `\\?\UNC\`
)

// StripExtendedPrefix removes the Win32 extended-length prefix from path.
//
//	\\?\C:\tools\cl.exe       -> C:\tools\cl.exe
//	\\?\UNC\server\share\cc   -> \\server\share\cc
//
// Paths without the prefix, and prefixed paths that do not name a drive or
// a UNC share (device namespaces such as \\?\Volume{...}), are returned
// unchanged. The function never fails.
func StripExtendedPrefix(path string) string {
	if rest, ok := strings.CutPrefix(path, extendedUNCPrefix); ok {
		if rest == "" {
			return path
		}
		return `\\` + rest
	}

	rest, ok := strings.CutPrefix(path, extendedPrefix)
	if !ok {
		return path
	}
	if !hasDriveLetter(rest) {
		return path
	}
	return rest
}

func hasDriveLetter(path string) bool {
	if len(path) < 2 || path[1] != ':' {
		return false
	}
	c := path[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

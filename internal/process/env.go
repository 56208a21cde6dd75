// SPDX-License-Identifier: MPL-2.0

package process

import (
	"os"
	"strings"

	"golang.org/x/exp/slices"
)

// EnvToSlice converts an environment map to KEY=VALUE entries sorted by key,
// so repeated conversions of the same map are byte-identical.
func EnvToSlice(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}

// MergeEnv returns base with overlay applied. Entries of overlay replace
// entries of base with the same name; on Windows names compare
// case-insensitively, matching how the OS resolves them.
func MergeEnv(base []string, overlay map[string]string, foldCase bool) []string {
	if len(overlay) == 0 {
		return base
	}

	normalize := func(name string) string {
		if foldCase {
			return strings.ToUpper(name)
		}
		return name
	}

	replaced := make(map[string]bool, len(overlay))
	for k := range overlay {
		replaced[normalize(k)] = true
	}

	merged := make([]string, 0, len(base)+len(overlay))
	for _, entry := range base {
		idx := findEnvSeparator(entry)
		if idx == -1 {
			continue
		}
		if replaced[normalize(entry[:idx])] {
			continue
		}
		merged = append(merged, entry)
	}
	return append(merged, EnvToSlice(overlay)...)
}

// ambientEnv returns the inherited environment of this process.
func ambientEnv() []string {
	return os.Environ()
}

// findEnvSeparator returns the index of the '=' separating name and value.
// Windows has per-drive entries such as "=C:=C:\dir" whose name starts with
// '=', so the search begins at index 1.
func findEnvSeparator(entry string) int {
	if len(entry) < 2 {
		return -1
	}
	if idx := strings.IndexByte(entry[1:], '='); idx >= 0 {
		return idx + 1
	}
	return -1
}

// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"runtime"
	"testing"

	"github.com/invowk/ccbuild/pkg/platform"
)

// configHomeVar is the variable that takes precedence over the home
// directory when the user configuration directory is located.
func configHomeVar() string {
	if runtime.GOOS == platform.Windows {
		return "APPDATA"
	}
	return "XDG_CONFIG_HOME"
}

// SetHomeDir points the home directory at dir and clears the variable that
// would otherwise override it for configuration lookups (XDG_CONFIG_HOME, or
// APPDATA on Windows), so the user configuration file resolves under dir.
// It returns a cleanup function that restores both variables.
//
//	t.Cleanup(testutil.SetHomeDir(t, t.TempDir()))
func SetHomeDir(t testing.TB, dir string) func() {
	t.Helper()

	homeVar := "HOME"
	if runtime.GOOS == platform.Windows {
		homeVar = "USERPROFILE"
	}

	restoreHome := MustSetenv(t, homeVar, dir)
	restoreOverride := MustUnsetenv(t, configHomeVar())
	return func() {
		restoreOverride()
		restoreHome()
	}
}

// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers include environment variable management (MustSetenv,
// MustUnsetenv, SetHomeDir), directory operations (MustChdir, MustMkdirAll),
// executable fixtures (MustWriteExecutable) and FakeRunner, a recording
// stand-in for process.Runner that answers compiler probes from scripted
// tables.
package testutil

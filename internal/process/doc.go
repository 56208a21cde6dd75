// SPDX-License-Identifier: MPL-2.0

// Package process runs short-lived external programs on behalf of the
// toolchain layer.
//
// The Runner interface is the single capability the rest of the module needs
// from the operating system: start a program with arguments, an environment
// overlay and a working directory, wait for it, and report its exit status and
// (optionally) captured output. NativeRunner implements it with os/exec; tests
// substitute a recording stand-in that never spawns real compilers.
//
// Run distinguishes two kinds of failure. A program that started and exited
// non-zero produces a Result with a non-zero ExitCode and a nil error. A program
// that could not be started at all (missing file, permission denied, bad
// interpreter) returns a *StartError, which callers surface as an
// infrastructure failure rather than as a negative answer.
package process

// SPDX-License-Identifier: MPL-2.0

package process

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrStart is the sentinel error wrapped by StartError.
var ErrStart = errors.New("process could not be started")

type (
	// Spec describes one program invocation.
	Spec struct {
		// Path is the executable to run.
		Path string
		// Args are passed to the program after Path.
		Args []string
		// Env is an overlay applied on top of the inherited environment.
		Env map[string]string
		// Dir is the working directory. Empty means the current directory.
		Dir string
		// Capture records stdout and stderr into the Result. When false, both
		// streams go to the null device.
		Capture bool
	}

	// Result holds the outcome of a program that was started.
	Result struct {
		// ExitCode is the program's exit status.
		ExitCode ExitCode
		// Output contains captured stdout (only populated when Spec.Capture is true).
		Output string
		// ErrOutput contains captured stderr (only populated when Spec.Capture is true).
		ErrOutput string
	}

	// Runner runs a program to completion.
	//
	// Run returns a *StartError when the program could not be started. Any
	// program that did start yields a Result, whatever its exit status.
	Runner interface {
		Run(ctx context.Context, spec Spec) (*Result, error)
	}

	// StartError reports a program that could not be spawned.
	StartError struct {
		Path string
		Err  error
	}
)

// Error implements the error interface.
func (e *StartError) Error() string {
	return fmt.Sprintf("start %s: %v", e.Path, e.Err)
}

// Unwrap returns ErrStart and the underlying OS error, so both
// errors.Is(err, ErrStart) and errors.Is(err, fs.ErrNotExist) work.
func (e *StartError) Unwrap() []error {
	return []error{ErrStart, e.Err}
}

// Success reports whether the program exited with status zero.
func (r *Result) Success() bool {
	return r != nil && r.ExitCode.IsSuccess()
}

// CommandLine renders the argv of spec for diagnostics. Arguments containing
// whitespace are quoted.
func (s Spec) CommandLine() string {
	parts := make([]string, 0, len(s.Args)+1)
	parts = append(parts, quoteArg(s.Path))
	for _, a := range s.Args {
		parts = append(parts, quoteArg(a))
	}
	return strings.Join(parts, " ")
}

func quoteArg(a string) string {
	if a == "" || strings.ContainsAny(a, " \t\n\"") {
		return fmt.Sprintf("%q", a)
	}
	return a
}

// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrClassificationFailed is returned when a tool's family cannot be
	// determined. Classification never falls back to a default family.
	ErrClassificationFailed = errors.New("tool family detection failed")

	// ErrOverrideParseFailed is returned when no interpretation of a compiler
	// override string resolves.
	ErrOverrideParseFailed = errors.New("compiler override could not be resolved")

	// ErrProbeInfrastructureFailed is returned when a flag probe could not run
	// at all. It is never reported as an unsupported flag.
	ErrProbeInfrastructureFailed = errors.New("flag probe could not run")
)

type (
	// ClassificationError reports why a tool could not be classified.
	ClassificationError struct {
		// Identifier is the tool as requested.
		Identifier string
		// Path is the canonical path that was probed.
		Path string
		// Output is the probe's captured stdout, when it ran.
		Output string
		// Err is the spawn or scratch-file error, if any.
		Err error
	}

	// OverrideParseError lists every interpretation of an override string that
	// was attempted and why it failed.
	OverrideParseError struct {
		Override string
		Causes   []error
	}

	// ProbeError reports a flag probe that could not be carried out.
	ProbeError struct {
		Identifier string
		Path       string
		Flag       string
		Err        error
	}
)

// Error implements the error interface.
func (e *ClassificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("classify %s (%s): %v", e.Identifier, e.Path, e.Err)
	}
	out := strings.TrimSpace(e.Output)
	if out == "" {
		out = "<empty>"
	}
	return fmt.Sprintf("classify %s (%s): no family marker in preprocessor output: %s", e.Identifier, e.Path, out)
}

// Unwrap returns ErrClassificationFailed and the underlying error.
func (e *ClassificationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrClassificationFailed}
	}
	return []error{ErrClassificationFailed, e.Err}
}

// Error implements the error interface.
func (e *OverrideParseError) Error() string {
	msgs := make([]string, 0, len(e.Causes))
	for _, c := range e.Causes {
		msgs = append(msgs, c.Error())
	}
	return fmt.Sprintf("compiler override %q: %s", e.Override, strings.Join(msgs, "; "))
}

// Unwrap returns ErrOverrideParseFailed followed by every cause.
func (e *OverrideParseError) Unwrap() []error {
	return append([]error{ErrOverrideParseFailed}, e.Causes...)
}

// Error implements the error interface.
func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s with %s (%s): %v", e.Identifier, e.Flag, e.Path, e.Err)
}

// Unwrap returns ErrProbeInfrastructureFailed and the underlying error.
func (e *ProbeError) Unwrap() []error {
	return []error{ErrProbeInfrastructureFailed, e.Err}
}

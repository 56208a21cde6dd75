// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/invowk/ccbuild/internal/process"
)

// ExitError makes ccbuild exit with Code instead of 1: the exit status of
// the compiler or archiver that failed, or 1 from probe --require when a
// flag was rejected.
type ExitError struct {
	Code process.ExitCode
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("tool exited with status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// exitStatus is the status Execute exits with after err.
func exitStatus(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && !exitErr.Code.IsSuccess() {
		return int(exitErr.Code)
	}
	return 1
}

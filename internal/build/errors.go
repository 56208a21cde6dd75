// SPDX-License-Identifier: MPL-2.0

package build

import (
	"errors"
	"fmt"

	"github.com/invowk/ccbuild/internal/process"
)

var (
	// ErrCompileFailed is wrapped by CompileError.
	ErrCompileFailed = errors.New("compilation failed")
	// ErrArchiveFailed is wrapped by ArchiveError.
	ErrArchiveFailed = errors.New("archiving failed")
	// ErrDuplicateObject is wrapped by DuplicateObjectError.
	ErrDuplicateObject = errors.New("sources share an object file")
)

type (
	// CompileError reports a compiler that exited unsuccessfully.
	CompileError struct {
		Source      string
		CommandLine string
		ExitCode    process.ExitCode
		// Diagnostics is the compiler's captured stderr followed by stdout.
		Diagnostics string
	}

	// ArchiveError reports an archiver that exited unsuccessfully.
	ArchiveError struct {
		Library     string
		CommandLine string
		ExitCode    process.ExitCode
		Diagnostics string
	}

	// DuplicateObjectError reports two sources that would overwrite each
	// other's object file.
	DuplicateObjectError struct {
		Object  string
		Sources [2]string
	}
)

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %s: exit status %d", e.Source, e.ExitCode)
}

func (e *CompileError) Unwrap() error { return ErrCompileFailed }

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive %s: exit status %d", e.Library, e.ExitCode)
}

func (e *ArchiveError) Unwrap() error { return ErrArchiveFailed }

func (e *DuplicateObjectError) Error() string {
	return fmt.Sprintf("%s and %s both compile to %s", e.Sources[0], e.Sources[1], e.Object)
}

func (e *DuplicateObjectError) Unwrap() error { return ErrDuplicateObject }

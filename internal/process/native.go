// SPDX-License-Identifier: MPL-2.0

package process

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/charmbracelet/log"

	"github.com/invowk/ccbuild/internal/logging"
	"github.com/invowk/ccbuild/pkg/platform"
)

// NativeRunner runs programs on the host with os/exec.
type NativeRunner struct {
	// Environ supplies the inherited environment the Spec overlay is applied
	// to. Defaults to os.Environ.
	Environ func() []string

	logger *log.Logger
}

// NewNativeRunner creates a runner that logs each invocation at debug level.
func NewNativeRunner(logger *log.Logger) *NativeRunner {
	return &NativeRunner{
		Environ: ambientEnv,
		logger:  logging.OrDiscard(logger),
	}
}

// Run starts spec.Path and waits for it to exit.
func (r *NativeRunner) Run(ctx context.Context, spec Spec) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run %s: %w", spec.Path, err)
	}

	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)
	cmd.Dir = spec.Dir
	if len(spec.Env) > 0 {
		environ := r.Environ
		if environ == nil {
			environ = ambientEnv
		}
		cmd.Env = MergeEnv(environ(), spec.Env, platform.IsWindows())
	}

	// Stdin stays nil: the child reads from the null device.
	var captured *capturedOutput
	if spec.Capture {
		captured = &capturedOutput{}
		cmd.Stdout = &captured.stdout
		cmd.Stderr = &captured.stderr
	}

	r.logger.Debug("run", "cmd", spec.CommandLine(), "dir", spec.Dir)

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil && err != nil {
		return nil, fmt.Errorf("run %s: %w", spec.Path, ctxErr)
	}
	return extractExitCode(spec.Path, err, captured)
}

// extractExitCode converts the error of exec.Cmd.Run into a Result.
// A non-zero exit is a Result; anything else means the program never ran.
func extractExitCode(path string, err error, captured *capturedOutput) (*Result, error) {
	result := &Result{}
	if captured != nil {
		result.Output = captured.stdout.String()
		result.ErrOutput = captured.stderr.String()
	}

	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = ExitCode(exitErr.ExitCode())
		return result, nil
	}

	return nil, &StartError{Path: path, Err: err}
}

// SPDX-License-Identifier: MPL-2.0

package process

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestNativeRunnerCapture(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	r := NewNativeRunner(nil)
	res, err := r.Run(context.Background(), Spec{
		Path:    "/bin/sh",
		Args:    []string{"-c", "echo out; echo err >&2; exit 3"},
		Capture: true,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	if res.Success() {
		t.Error("Success() = true for exit status 3")
	}
	if strings.TrimSpace(res.Output) != "out" {
		t.Errorf("Output = %q, want %q", res.Output, "out\n")
	}
	if strings.TrimSpace(res.ErrOutput) != "err" {
		t.Errorf("ErrOutput = %q, want %q", res.ErrOutput, "err\n")
	}
}

func TestNativeRunnerNoCapture(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	r := NewNativeRunner(nil)
	res, err := r.Run(context.Background(), Spec{
		Path: "/bin/sh",
		Args: []string{"-c", "echo discarded"},
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !res.Success() {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
	if res.Output != "" {
		t.Errorf("Output = %q, want empty without capture", res.Output)
	}
}

func TestNativeRunnerEnvOverlay(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	r := NewNativeRunner(nil)
	r.Environ = func() []string { return []string{"PATH=/usr/bin:/bin", "CCBUILD_OVERLAY=base"} }

	res, err := r.Run(context.Background(), Spec{
		Path:    "/bin/sh",
		Args:    []string{"-c", `printf %s "$CCBUILD_OVERLAY"`},
		Env:     map[string]string{"CCBUILD_OVERLAY": "overlay"},
		Capture: true,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Output != "overlay" {
		t.Errorf("Output = %q, want %q", res.Output, "overlay")
	}
}

func TestNativeRunnerStartError(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "no-such-compiler")
	r := NewNativeRunner(nil)
	res, err := r.Run(context.Background(), Spec{Path: missing})
	if err == nil {
		t.Fatalf("Run() = %+v, want start error", res)
	}

	var startErr *StartError
	if !errors.As(err, &startErr) {
		t.Fatalf("error %T is not *StartError", err)
	}
	if startErr.Path != missing {
		t.Errorf("StartError.Path = %q, want %q", startErr.Path, missing)
	}
	if !errors.Is(err, ErrStart) {
		t.Error("errors.Is(err, ErrStart) = false")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is(err, fs.ErrNotExist) = false")
	}
}

func TestNativeRunnerCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewNativeRunner(nil)
	_, err := r.Run(ctx, Spec{Path: "/bin/true"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestSpecCommandLine(t *testing.T) {
	t.Parallel()

	spec := Spec{Path: "/usr/bin/cc", Args: []string{"-DNAME=a b", "-c", "foo.c", ""}}
	want := `/usr/bin/cc "-DNAME=a b" -c foo.c ""`
	if got := spec.CommandLine(); got != want {
		t.Errorf("CommandLine() = %q, want %q", got, want)
	}
}

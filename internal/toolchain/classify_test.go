// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/invowk/ccbuild/internal/process"
	"github.com/invowk/ccbuild/internal/resolve"
	"github.com/invowk/ccbuild/internal/testutil"
)

func TestClassifyStemShortcut(t *testing.T) {
	t.Parallel()

	runner := testutil.NewFakeRunner("gnu")
	c := NewClassifier(runner)

	for _, path := range []string{`C:\VS\bin\cl.exe`, "/opt/msvc/cl", "/usr/bin/clang-cl", `C:\VS\bin\CL.EXE`} {
		family, err := c.Classify(context.Background(), tool(path))
		if err != nil {
			t.Fatalf("Classify(%s) error: %v", path, err)
		}
		if family != Msvc {
			t.Errorf("Classify(%s) = %v, want msvc", path, family)
		}
	}
	if n := len(runner.Specs()); n != 0 {
		t.Errorf("stem shortcut spawned %d processes", n)
	}
}

func TestClassifyMarkers(t *testing.T) {
	t.Parallel()

	runner := testutil.NewFakeRunner("")
	runner.Families["/usr/bin/gcc"] = "gnu"
	runner.Families["/usr/bin/clang"] = "clang"
	runner.Families["/opt/icx"] = "msvc"
	c := NewClassifier(runner, WithClassifierScratchDir(t.TempDir()))

	tests := []struct {
		path string
		want Family
	}{
		{"/usr/bin/gcc", Gnu},
		{"/usr/bin/clang", Clang},
		{"/opt/icx", Msvc},
	}
	for _, tt := range tests {
		got, err := c.Classify(context.Background(), tool(tt.path))
		if err != nil {
			t.Fatalf("Classify(%s) error: %v", tt.path, err)
		}
		if got != tt.want {
			t.Errorf("Classify(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}

	spec := runner.Specs()[0]
	if !spec.Capture || len(spec.Args) != 2 || spec.Args[0] != "-E" || !strings.Contains(spec.Args[1], familyProbeName) {
		t.Errorf("probe spec = %+v, want captured -E run of the probe source", spec)
	}
}

func TestClassifyUnrecognizedOutput(t *testing.T) {
	t.Parallel()

	c := NewClassifier(testutil.NewFakeRunner(""))
	_, err := c.Classify(context.Background(), tool("/usr/bin/tcc"))
	if !errors.Is(err, ErrClassificationFailed) {
		t.Fatalf("Classify() error = %v, want ErrClassificationFailed", err)
	}

	var ce *ClassificationError
	if !errors.As(err, &ce) {
		t.Fatalf("error %T is not *ClassificationError", err)
	}
	if ce.Path != "/usr/bin/tcc" || ce.Err != nil {
		t.Errorf("ClassificationError = %+v", ce)
	}
}

func TestClassifySpawnFailureNotCached(t *testing.T) {
	t.Parallel()

	runner := testutil.NewFakeRunner("gnu")
	runner.StartErrors["/usr/bin/cc"] = testutil.ErrFakeNotExist
	c := NewClassifier(runner)

	_, err := c.Classify(context.Background(), tool("/usr/bin/cc"))
	if !errors.Is(err, ErrClassificationFailed) || !errors.Is(err, process.ErrStart) {
		t.Fatalf("Classify() error = %v, want ErrClassificationFailed wrapping a start error", err)
	}

	delete(runner.StartErrors, "/usr/bin/cc")
	family, err := c.Classify(context.Background(), tool("/usr/bin/cc"))
	if err != nil {
		t.Fatalf("Classify() after recovery error: %v", err)
	}
	if family != Gnu {
		t.Errorf("Classify() = %v, want gnu", family)
	}
}

func TestClassifyMemoizedPerIdentity(t *testing.T) {
	t.Parallel()

	runner := testutil.NewFakeRunner("clang")
	c := NewClassifier(runner)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Classify(context.Background(), tool("/usr/bin/clang")); err != nil {
				t.Errorf("Classify() error: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := runner.Count(testutil.FamilyProbe); n != 1 {
		t.Errorf("family probes = %d, want 1", n)
	}

	scripted := resolve.Tool{Path: "/bin/sh", LeadingArgs: []string{"/opt/clang-wrapper"}}
	if _, err := c.Classify(context.Background(), scripted); err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if n := runner.Count(testutil.FamilyProbe); n != 2 {
		t.Errorf("family probes = %d, want a second probe for a different identity", n)
	}
}

func TestClassifyCallerCancelKeepsSharedRun(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	runner := testutil.NewFakeRunner("clang")
	runner.FamilyGate = gate
	c := NewClassifier(runner)
	clang := tool("/usr/bin/clang")

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Classify(ctx, clang)
		firstErr <- err
	}()

	deadline := time.Now().Add(5 * time.Second)
	for runner.Count(testutil.FamilyProbe) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	type outcome struct {
		family Family
		err    error
	}
	second := make(chan outcome, 1)
	go func() {
		family, err := c.Classify(context.Background(), clang)
		second <- outcome{family, err}
	}()

	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Errorf("first caller error = %v, want context.Canceled", err)
	}

	close(gate)
	got := <-second
	if got.err != nil || got.family != Clang {
		t.Errorf("second caller = %v, %v; want clang", got.family, got.err)
	}
	if n := runner.Count(testutil.FamilyProbe); n != 1 {
		t.Errorf("family runs = %d, want 1", n)
	}
}

func TestParseFamilyMarker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		output string
		want   Family
		ok     bool
	}{
		{"gnu", "# 1 \"probe.c\"\n\ngnu\n", Gnu, true},
		{"clang with crlf", "# 1 \"probe.c\"\r\nclang\r\n", Clang, true},
		{"msvc indented", "#line 1 \"probe.c\"\n  msvc  \n", Msvc, true},
		{"marker inside text", "# 1 \"gnu.c\"\nnot gnu\n", 0, false},
		{"empty", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := parseFamilyMarker(tt.output)
			if ok != tt.ok || got != tt.want {
				t.Errorf("parseFamilyMarker(%q) = %v, %v; want %v, %v", tt.output, got, ok, tt.want, tt.ok)
			}
		})
	}
}

// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/invowk/ccbuild/internal/process"
	"github.com/invowk/ccbuild/internal/testutil"
)

func TestProbeSupportedIsCached(t *testing.T) {
	t.Parallel()

	runner := testutil.NewFakeRunner("gnu")
	p := NewFlagProber(runner, WithProberScratchDir(t.TempDir()))
	cc := tool("/usr/bin/cc")

	for range 3 {
		ok, err := p.Supported(context.Background(), cc, Gnu, C, nil, "-Wall")
		if err != nil {
			t.Fatalf("Supported() error: %v", err)
		}
		if !ok {
			t.Error("Supported(-Wall) = false")
		}
	}
	if n := runner.Count(testutil.FlagProbe); n != 1 {
		t.Errorf("flag probes = %d, want 1", n)
	}
	if s := p.State(cc, C, nil, "-Wall"); s != Supported {
		t.Errorf("State() = %v, want supported", s)
	}

	spec := runner.Specs()[0]
	if spec.Args[0] != "-Wall" || spec.Args[1] != "-c" || !strings.HasSuffix(spec.Args[2], flagProbeStem+".c") ||
		spec.Args[3] != "-o" || !strings.HasSuffix(spec.Args[4], flagProbeStem+".o") {
		t.Errorf("probe args = %q", spec.Args)
	}
	if !spec.Capture || spec.Dir == "" {
		t.Errorf("probe spec = %+v, want captured run in a scratch directory", spec)
	}
}

func TestProbeRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		family   Family
		flag     string
		stderr   string
		exitCode int
	}{
		{"gcc error", Gnu, "-fbogus", "cc1: error: unrecognized command-line option '-fbogus'", 1},
		{"clang warning only", Clang, "-Wflag-does-not-exist", "warning: unknown warning option '-Wflag-does-not-exist'", 0},
		{"clang unused argument", Clang, "-static-libgcc", "clang: warning: argument unused during compilation: '-static-libgcc'", 0},
		{"msvc D9002", Msvc, "/bogus", "cl : Command line warning D9002 : ignoring unknown option '/bogus'", 0},
		{"silent failure", Gnu, "-std=c++11", "", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			runner := testutil.NewFakeRunner(tt.family.String())
			runner.RejectedFlags[tt.flag] = tt.stderr
			runner.ExitCodes[tt.flag] = tt.exitCode
			p := NewFlagProber(runner)

			ok, err := p.Supported(context.Background(), tool("/usr/bin/cc"), tt.family, C, nil, tt.flag)
			if err != nil {
				t.Fatalf("Supported() error: %v", err)
			}
			if ok {
				t.Errorf("Supported(%s) = true, want rejection", tt.flag)
			}
			if s := p.State(tool("/usr/bin/cc"), C, nil, tt.flag); s != Unsupported {
				t.Errorf("State() = %v, want unsupported", s)
			}
		})
	}
}

func TestProbeMsvcArgs(t *testing.T) {
	t.Parallel()

	runner := testutil.NewFakeRunner("msvc")
	p := NewFlagProber(runner)
	if _, err := p.Supported(context.Background(), tool(`C:\VS\cl.exe`), Msvc, Cpp, nil, "/permissive-"); err != nil {
		t.Fatalf("Supported() error: %v", err)
	}

	args := runner.Specs()[0].Args
	if args[0] != "/nologo" || args[1] != "/permissive-" || args[2] != "/c" ||
		!strings.HasSuffix(args[3], flagProbeStem+".cpp") || !strings.HasPrefix(args[4], "/Fo") ||
		!strings.HasSuffix(args[4], ".obj") {
		t.Errorf("probe args = %q", args)
	}
}

func TestProbeConcurrentSingleTrial(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	runner := testutil.NewFakeRunner("gnu")
	runner.Gate = gate
	p := NewFlagProber(runner)
	cc := tool("/usr/bin/cc")

	const callers = 32
	results := make([]bool, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := p.Supported(context.Background(), cc, Gnu, C, nil, "-fstack-protector-strong")
			if err != nil {
				t.Errorf("Supported() error: %v", err)
			}
			results[i] = ok
		}()
	}

	deadline := time.Now().Add(5 * time.Second)
	for runner.Count(testutil.FlagProbe) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if s := p.State(cc, C, nil, "-fstack-protector-strong"); s != Pending {
		t.Errorf("State() while in flight = %v, want pending", s)
	}
	close(gate)
	wg.Wait()

	if n := runner.Count(testutil.FlagProbe); n != 1 {
		t.Errorf("flag probes = %d, want exactly 1 across %d callers", n, callers)
	}
	for i, ok := range results {
		if !ok {
			t.Errorf("caller %d saw unsupported", i)
		}
	}
}

func TestProbeInfrastructureFailure(t *testing.T) {
	t.Parallel()

	runner := testutil.NewFakeRunner("gnu")
	runner.StartErrors["/usr/bin/cc"] = testutil.ErrFakeNotExist
	p := NewFlagProber(runner)
	cc := tool("/usr/bin/cc")

	ok, err := p.Supported(context.Background(), cc, Gnu, C, nil, "-Wall")
	if !errors.Is(err, ErrProbeInfrastructureFailed) || !errors.Is(err, process.ErrStart) {
		t.Fatalf("Supported() = %v, %v; want ErrProbeInfrastructureFailed", ok, err)
	}
	var pe *ProbeError
	if !errors.As(err, &pe) || pe.Flag != "-Wall" || pe.Path != "/usr/bin/cc" {
		t.Errorf("ProbeError = %+v", pe)
	}
	if s := p.State(cc, C, nil, "-Wall"); s != Unknown {
		t.Errorf("State() after failure = %v, want unknown", s)
	}

	delete(runner.StartErrors, "/usr/bin/cc")
	ok, err = p.Supported(context.Background(), cc, Gnu, C, nil, "-Wall")
	if err != nil || !ok {
		t.Errorf("Supported() after recovery = %v, %v", ok, err)
	}
	if n := runner.Spawned(); n != 1 {
		t.Errorf("spawned = %d, want the retried probe to run", n)
	}
}

func TestProbeKeyIncludesLanguage(t *testing.T) {
	t.Parallel()

	runner := testutil.NewFakeRunner("gnu")
	p := NewFlagProber(runner)
	cc := tool("/usr/bin/cc")

	for _, lang := range []Language{C, Cpp, C} {
		if _, err := p.Supported(context.Background(), cc, Gnu, lang, nil, "-std=c++11"); err != nil {
			t.Fatalf("Supported() error: %v", err)
		}
	}
	if n := runner.Count(testutil.FlagProbe); n != 2 {
		t.Errorf("flag probes = %d, want one per language", n)
	}
}

func TestProbeFilterKeepsOrder(t *testing.T) {
	t.Parallel()

	runner := testutil.NewFakeRunner("gnu")
	runner.RejectedFlags["-Wflag-does-not-exist"] = "unknown warning option"
	p := NewFlagProber(runner)

	got, err := p.Filter(context.Background(), tool("/usr/bin/clang"), Clang, C, nil,
		[]string{"-Wshadow", "-Wflag-does-not-exist", "-Wall"})
	if err != nil {
		t.Fatalf("Filter() error: %v", err)
	}
	if want := []string{"-Wshadow", "-Wall"}; !slices.Equal(got, want) {
		t.Errorf("Filter() = %q, want %q", got, want)
	}
}

func TestProbedUnsupportedFlagNeverAssembled(t *testing.T) {
	t.Parallel()

	runner := testutil.NewFakeRunner("gnu")
	runner.RejectedFlags["-Wflag-does-not-exist"] = "cc1: error: unrecognized command-line option '-Wflag-does-not-exist'"
	runner.ExitCodes["-Wflag-does-not-exist"] = 1
	p := NewFlagProber(runner)

	opts := Options{
		Target:           linuxX64,
		Host:             linuxX64,
		FlagsIfSupported: []string{"-Wflag-does-not-exist", "-Wall"},
	}
	support, err := p.Support(context.Background(), tool("/usr/bin/cc"), Gnu, C, nil, opts.FlagsIfSupported)
	if err != nil {
		t.Fatalf("Support() error: %v", err)
	}

	args := CompileArgs(Gnu, opts, Unit{Source: "foo.c", Object: "foo.o", Support: support})
	mustNotHave(t, args, "-Wflag-does-not-exist")
	mustHave(t, args, "-Wall")
}

func TestRejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		family Family
		text   string
		want   bool
	}{
		{Gnu, "", false},
		{Gnu, "warning: this is fine", false},
		{Gnu, "error: unrecognized command line option '-x'", true},
		{Gnu, "cc1plus: warning: command-line option '-Wstrict-prototypes' is valid for C/ObjC but not for C++", true},
		{Clang, "clang: error: unknown argument: '-fbogus'", true},
		{Clang, "warning: optimization flag '-fno-foo' is not supported", true},
		{Msvc, "cl : command line warning d9002 : ignoring unknown option", true},
		{Msvc, "unrecognized command line option", false},
	}
	for _, tt := range tests {
		if got := rejected(tt.family, tt.text); got != tt.want {
			t.Errorf("rejected(%v, %q) = %v, want %v", tt.family, tt.text, got, tt.want)
		}
	}
}

func TestTrialCompilesWithSelectionAndTargetFlags(t *testing.T) {
	t.Parallel()

	runner := testutil.NewFakeRunner("clang")
	p := NewFlagProber(runner)
	clang := tool("/usr/bin/clang")

	opts := Options{Target: aarch64, Host: linuxX64}
	base := TrialFlags(Clang, opts, []string{"-m32"})
	if _, err := p.Supported(context.Background(), clang, Clang, C, base, "-mcpu=cortex-a72"); err != nil {
		t.Fatalf("Supported() error: %v", err)
	}

	args := runner.Specs()[0].Args
	target := slices.Index(args, "--target=aarch64-unknown-linux-gnu")
	extra := slices.Index(args, "-m32")
	flag := slices.Index(args, "-mcpu=cortex-a72")
	if target < 0 || extra < 0 || flag < 0 || extra > target || target > flag {
		t.Errorf("trial args = %q, want selection flags, then --target, then the flag", args)
	}

	// A native build of the same compiler is a different configuration.
	if _, err := p.Supported(context.Background(), clang, Clang, C, TrialFlags(Clang, native(linuxX64), nil), "-mcpu=cortex-a72"); err != nil {
		t.Fatalf("Supported() error: %v", err)
	}
	if n := runner.Count(testutil.FlagProbe); n != 2 {
		t.Errorf("flag trials = %d, want one per target", n)
	}
	if s := p.State(clang, C, base, "-mcpu=cortex-a72"); s != Supported {
		t.Errorf("State(cross) = %v, want supported", s)
	}
	if s := p.State(clang, C, nil, "-mcpu=cortex-a72"); s != Unknown {
		t.Errorf("State(no base) = %v, want unknown", s)
	}
}

func TestSupportedWaiterCancelKeepsSharedTrial(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	runner := testutil.NewFakeRunner("gnu")
	runner.Gate = gate
	p := NewFlagProber(runner)
	cc := tool("/usr/bin/cc")

	ctx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := p.Supported(ctx, cc, Gnu, C, nil, "-Wall")
		leaderErr <- err
	}()

	deadline := time.Now().Add(5 * time.Second)
	for runner.Count(testutil.FlagProbe) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	type outcome struct {
		ok  bool
		err error
	}
	follower := make(chan outcome, 1)
	go func() {
		ok, err := p.Supported(context.Background(), cc, Gnu, C, nil, "-Wall")
		follower <- outcome{ok, err}
	}()

	cancel()
	if err := <-leaderErr; !errors.Is(err, context.Canceled) {
		t.Errorf("first caller error = %v, want context.Canceled", err)
	}

	close(gate)
	got := <-follower
	if got.err != nil || !got.ok {
		t.Errorf("second caller = %v, %v; want the shared trial to succeed", got.ok, got.err)
	}
	if s := p.State(cc, C, nil, "-Wall"); s != Supported {
		t.Errorf("State() = %v, want supported", s)
	}
	if n := runner.Count(testutil.FlagProbe); n != 1 {
		t.Errorf("flag trials = %d, want 1", n)
	}
}

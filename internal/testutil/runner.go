// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/invowk/ccbuild/internal/process"
)

const (
	familyProbeMarker = "ccbuild_tool_family"
	flagProbeMarker   = "ccbuild_flag_probe"
)

type (
	// FakeRunner is a process.Runner that never spawns anything. It records
	// every Spec it receives and answers the two compiler probes from its
	// tables:
	//
	//   - a family probe (an argument naming a ccbuild_tool_family file)
	//     prints Families[spec.Path], or DefaultFamily when the path has no entry;
	//   - a flag probe (an argument naming a ccbuild_flag_probe file) exits
	//     with ExitCodes[flag] and prints RejectedFlags[flag] on stderr for
	//     any probed flag present in those tables.
	//
	// Every other Spec returns Scripted[arg] for the first argument with an
	// entry, and otherwise succeeds with no output. StartErrors makes the
	// named path fail to start.
	FakeRunner struct {
		Families      map[string]string
		DefaultFamily string
		RejectedFlags map[string]string
		ExitCodes     map[string]int
		StartErrors   map[string]error
		Scripted      map[string]process.Result

		// Gate, when non-nil, blocks flag probes until it is closed.
		Gate <-chan struct{}
		// FamilyGate, when non-nil, blocks family probes until it is closed.
		FamilyGate <-chan struct{}

		mu    sync.Mutex
		specs []process.Spec
		spawn atomic.Int64
	}

	// ProbeKind classifies a recorded Spec.
	ProbeKind int
)

const (
	// OtherRun is any Spec that is not a compiler probe.
	OtherRun ProbeKind = iota
	// FamilyProbe is a preprocessor run of the tool family probe source.
	FamilyProbe
	// FlagProbe is a trial compilation checking one flag.
	FlagProbe
)

// NewFakeRunner returns a FakeRunner whose tools all classify as defaultFamily.
func NewFakeRunner(defaultFamily string) *FakeRunner {
	return &FakeRunner{
		Families:      map[string]string{},
		DefaultFamily: defaultFamily,
		RejectedFlags: map[string]string{},
		ExitCodes:     map[string]int{},
		StartErrors:   map[string]error{},
		Scripted:      map[string]process.Result{},
	}
}

// Run implements process.Runner.
func (f *FakeRunner) Run(ctx context.Context, spec process.Spec) (*process.Result, error) {
	f.mu.Lock()
	f.specs = append(f.specs, cloneSpec(spec))
	startErr := f.StartErrors[spec.Path]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run %s: %w", spec.Path, err)
	}
	if startErr != nil {
		return nil, &process.StartError{Path: spec.Path, Err: startErr}
	}
	f.spawn.Add(1)

	switch KindOf(spec) {
	case FamilyProbe:
		if err := wait(ctx, f.FamilyGate, spec); err != nil {
			return nil, err
		}
		f.mu.Lock()
		family, ok := f.Families[spec.Path]
		f.mu.Unlock()
		if !ok {
			family = f.DefaultFamily
		}
		out := "# 1 \"" + familyProbeMarker + ".c\"\n"
		if family != "" {
			out += family + "\n"
		}
		return &process.Result{Output: out}, nil
	case FlagProbe:
		if err := wait(ctx, f.Gate, spec); err != nil {
			return nil, err
		}
		return f.flagResult(spec), nil
	default:
		return f.scriptedResult(spec), nil
	}
}

func wait(ctx context.Context, gate <-chan struct{}, spec process.Spec) error {
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("run %s: %w", spec.Path, ctx.Err())
	}
}

func (f *FakeRunner) scriptedResult(spec process.Spec) *process.Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, arg := range spec.Args {
		if r, ok := f.Scripted[arg]; ok {
			return &r
		}
	}
	return &process.Result{}
}

func (f *FakeRunner) flagResult(spec process.Spec) *process.Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := &process.Result{}
	for _, arg := range spec.Args {
		if msg, ok := f.RejectedFlags[arg]; ok {
			result.ErrOutput += msg + "\n"
		}
		if code, ok := f.ExitCodes[arg]; ok {
			result.ExitCode = process.ExitCode(code)
		}
	}
	return result
}

// Specs returns a copy of every Spec received so far, in arrival order.
func (f *FakeRunner) Specs() []process.Spec {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]process.Spec, len(f.specs))
	copy(out, f.specs)
	return out
}

// Count returns how many received Specs are of the given kind.
func (f *FakeRunner) Count(kind ProbeKind) int {
	n := 0
	for _, s := range f.Specs() {
		if KindOf(s) == kind {
			n++
		}
	}
	return n
}

// Spawned returns how many programs were successfully started.
func (f *FakeRunner) Spawned() int {
	return int(f.spawn.Load())
}

// KindOf reports which probe, if any, spec is.
func KindOf(spec process.Spec) ProbeKind {
	for _, arg := range spec.Args {
		base := filepath.Base(strings.ReplaceAll(arg, `\`, "/"))
		switch {
		case strings.Contains(base, familyProbeMarker):
			return FamilyProbe
		case strings.Contains(base, flagProbeMarker):
			return FlagProbe
		}
	}
	return OtherRun
}

// ErrFakeNotExist is a start error resembling a missing executable.
var ErrFakeNotExist = fmt.Errorf("fake spawn: %w", fs.ErrNotExist)

func cloneSpec(spec process.Spec) process.Spec {
	out := spec
	out.Args = append([]string(nil), spec.Args...)
	if spec.Env != nil {
		out.Env = make(map[string]string, len(spec.Env))
		for k, v := range spec.Env {
			out.Env[k] = v
		}
	}
	return out
}

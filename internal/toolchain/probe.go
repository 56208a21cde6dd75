// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/invowk/ccbuild/internal/logging"
	"github.com/invowk/ccbuild/internal/process"
	"github.com/invowk/ccbuild/internal/resolve"
)

const (
	flagProbeStem   = "ccbuild_flag_probe"
	flagProbeSource = "int main(void) { return 0; }\n"
)

// State is the cached outcome of probing one flag.
type State int

const (
	// Unknown means the flag was never probed, or the last probe could not run.
	Unknown State = iota
	// Pending means a probe is in flight.
	Pending
	// Supported means the compiler accepted the flag.
	Supported
	// Unsupported means the compiler rejected the flag.
	Unsupported
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Supported:
		return "supported"
	case Unsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

type (
	probeKey struct {
		tool     string
		language Language
		base     string
		flag     string
	}

	// FlagProber checks whether compilers accept flags and caches the answer
	// for the lifetime of the value.
	FlagProber struct {
		runner  process.Runner
		logger  *log.Logger
		scratch string

		mu     sync.RWMutex
		states map[probeKey]State
		group  singleflight.Group
	}

	// ProberOption configures a FlagProber during construction.
	ProberOption func(*FlagProber)
)

// WithProberLogger sets the logger used for debug tracing.
func WithProberLogger(l *log.Logger) ProberOption {
	return func(p *FlagProber) {
		p.logger = logging.OrDiscard(l)
	}
}

// WithProberScratchDir sets the directory trial sources are written under.
func WithProberScratchDir(dir string) ProberOption {
	return func(p *FlagProber) {
		p.scratch = dir
	}
}

// NewFlagProber creates an empty cache that runs trials with runner.
func NewFlagProber(runner process.Runner, opts ...ProberOption) *FlagProber {
	p := &FlagProber{
		runner: runner,
		logger: logging.Discard(),
		states: make(map[probeKey]State),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the cached state for the key without probing.
func (p *FlagProber) State(tool resolve.Tool, lang Language, base []string, flag string) State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.states[newProbeKey(tool, lang, base, flag)]
}

// Supported reports whether tool accepts flag when compiling lang.
//
// The first request for a key compiles a trivial translation unit with base
// followed by the flag. base carries the flags every real compilation with
// tool starts with (see TrialFlags), so a cross target or a selection such
// as "clang -m32" is part of the key. The flag is supported when the trial
// exits with status zero and stderr holds none of the family's rejection
// keywords. Concurrent requests for the same key wait for that single
// trial; a waiter whose ctx ends stops waiting without cancelling the
// trial for the others. A trial that cannot start returns a *ProbeError and
// leaves the key uncached.
func (p *FlagProber) Supported(ctx context.Context, tool resolve.Tool, family Family, lang Language, base []string, flag string) (bool, error) {
	key := newProbeKey(tool, lang, base, flag)
	if state, ok := p.settled(key); ok {
		return state == Supported, nil
	}

	trialCtx := context.WithoutCancel(ctx)
	ch := p.group.DoChan(key.String(), func() (any, error) {
		if state, ok := p.settled(key); ok {
			return state == Supported, nil
		}
		p.set(key, Pending)

		ok, err := p.trial(trialCtx, tool, family, lang, base, flag)
		if err != nil {
			p.clear(key)
			return false, err
		}
		state := Unsupported
		if ok {
			state = Supported
		}
		p.set(key, state)
		p.logger.Debug("probed flag", "tool", tool.Requested, "base", base, "flag", flag, "lang", lang, "state", state)
		return ok, nil
	})

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return false, res.Err
		}
		return res.Val.(bool), nil
	}
}

// Filter returns the flags tool supports, in their original order. It stops
// at the first probe that cannot run.
func (p *FlagProber) Filter(ctx context.Context, tool resolve.Tool, family Family, lang Language, base, flags []string) ([]string, error) {
	var out []string
	for _, flag := range flags {
		ok, err := p.Supported(ctx, tool, family, lang, base, flag)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, flag)
		}
	}
	return out, nil
}

// Support probes every flag and returns the outcome as a FlagSupport set.
func (p *FlagProber) Support(ctx context.Context, tool resolve.Tool, family Family, lang Language, base, flags []string) (FlagSupport, error) {
	supported, err := p.Filter(ctx, tool, family, lang, base, flags)
	if err != nil {
		return nil, err
	}
	return NewFlagSupport(supported...), nil
}

func (p *FlagProber) trial(ctx context.Context, tool resolve.Tool, family Family, lang Language, base []string, flag string) (bool, error) {
	src, cleanup, err := writeScratch(p.scratch, flagProbeStem+lang.SourceExt(), flagProbeSource)
	if err != nil {
		return false, &ProbeError{Identifier: tool.Requested, Path: tool.Path, Flag: flag, Err: err}
	}
	defer cleanup()

	obj := filepath.Join(filepath.Dir(src), flagProbeStem+family.ObjectExt())
	spec := tool.Spec(probeArgs(family, base, flag, src, obj)...)
	spec.Dir = filepath.Dir(src)
	spec.Capture = true

	res, err := p.runner.Run(ctx, spec)
	if err != nil {
		return false, &ProbeError{Identifier: tool.Requested, Path: tool.Path, Flag: flag, Err: err}
	}
	return res.Success() && !rejected(family, res.ErrOutput+res.Output), nil
}

// probeArgs builds the trial compilation of src with base and flag.
func probeArgs(family Family, base []string, flag, src, obj string) []string {
	t := family.flags()
	var args []string
	if t.nologo != "" {
		args = append(args, t.nologo)
	}
	args = append(args, base...)
	args = append(args, flag, t.compileOnly, src)
	return append(args, outputArgs(t, obj)...)
}

// rejected reports whether diagnostics contain one of the family's
// rejection keywords.
func rejected(family Family, diagnostics string) bool {
	lower := strings.ToLower(diagnostics)
	for _, kw := range family.flags().rejectKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func (p *FlagProber) settled(key probeKey) (State, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	state := p.states[key]
	return state, state == Supported || state == Unsupported
}

func (p *FlagProber) set(key probeKey, state State) {
	p.mu.Lock()
	p.states[key] = state
	p.mu.Unlock()
}

func (p *FlagProber) clear(key probeKey) {
	p.mu.Lock()
	delete(p.states, key)
	p.mu.Unlock()
}

func newProbeKey(tool resolve.Tool, lang Language, base []string, flag string) probeKey {
	return probeKey{tool: tool.Identity(), language: lang, base: strings.Join(base, "\x00"), flag: flag}
}

// String returns the singleflight key.
func (k probeKey) String() string {
	return k.tool + "\x01" + k.language.String() + "\x01" + k.base + "\x01" + k.flag
}

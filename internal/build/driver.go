// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/invowk/ccbuild/internal/logging"
	"github.com/invowk/ccbuild/internal/process"
	"github.com/invowk/ccbuild/internal/resolve"
	"github.com/invowk/ccbuild/internal/toolchain"
)

// Where a tool selection came from, when not from an environment variable.
const (
	SourceConfig  = "config"
	SourceDefault = "default"
)

type (
	// Driver owns the caches shared by every build it runs: resolved tools,
	// tool families and flag probe outcomes.
	Driver struct {
		runner     process.Runner
		logger     *log.Logger
		getenv     func(string) string
		workDir    string
		scratchDir string
		wrappers   []string
		searchPath []string

		resolver   *resolve.Resolver
		parser     *toolchain.OverrideParser
		classifier *toolchain.Classifier
		prober     *toolchain.FlagProber
	}

	// Option configures a Driver during construction.
	Option func(*Driver)

	// Selection is a resolved and classified compiler.
	Selection struct {
		toolchain.WrapperInvocation
		Family toolchain.Family
		// Source is the variable name the selection was read from, or
		// SourceConfig or SourceDefault.
		Source string
		// Raw is the selection string before parsing.
		Raw string
	}

	// Plan is everything needed to assemble compilations without spawning
	// another probe.
	Plan struct {
		Selection Selection
		Options   toolchain.Options
		Support   toolchain.FlagSupport
	}
)

// WithLogger sets the logger shared by every component.
func WithLogger(l *log.Logger) Option {
	return func(d *Driver) {
		d.logger = logging.OrDiscard(l)
	}
}

// WithGetenv replaces the process environment for variable lookups.
func WithGetenv(getenv func(string) string) Option {
	return func(d *Driver) {
		d.getenv = getenv
	}
}

// WithWorkDir fixes the directory relative tool names resolve against.
func WithWorkDir(dir string) Option {
	return func(d *Driver) {
		d.workDir = dir
	}
}

// WithScratchDir sets where probe sources are written.
func WithScratchDir(dir string) Option {
	return func(d *Driver) {
		d.scratchDir = dir
	}
}

// WithWrappers adds compiler wrapper names to the defaults.
func WithWrappers(names ...string) Option {
	return func(d *Driver) {
		d.wrappers = append(d.wrappers, names...)
	}
}

// WithSearchPath replaces PATH when resolving tools.
func WithSearchPath(dirs ...string) Option {
	return func(d *Driver) {
		d.searchPath = dirs
	}
}

// NewDriver creates a Driver spawning every process through runner.
func NewDriver(runner process.Runner, opts ...Option) *Driver {
	d := &Driver{
		runner: runner,
		logger: logging.Discard(),
		getenv: toolchain.DefaultGetenv,
	}
	for _, opt := range opts {
		opt(d)
	}

	resolverOpts := []resolve.Option{
		resolve.WithLogger(d.logger.WithPrefix("resolve")),
		resolve.WithGetenv(d.getenv),
	}
	if d.workDir != "" {
		resolverOpts = append(resolverOpts, resolve.WithWorkDir(d.workDir))
	}
	d.resolver = resolve.New(runner, resolverOpts...)
	d.parser = toolchain.NewOverrideParser(d.resolver,
		toolchain.WithWrappers(d.wrappers...),
		toolchain.WithOverrideLogger(d.logger.WithPrefix("override")),
	)
	d.classifier = toolchain.NewClassifier(runner,
		toolchain.WithClassifierLogger(d.logger.WithPrefix("classify")),
		toolchain.WithClassifierScratchDir(d.scratchDir),
	)
	d.prober = toolchain.NewFlagProber(runner,
		toolchain.WithProberLogger(d.logger.WithPrefix("probe")),
		toolchain.WithProberScratchDir(d.scratchDir),
	)
	return d
}

// Prober exposes the flag probe cache.
func (d *Driver) Prober() *toolchain.FlagProber {
	return d.prober
}

// Env returns the variable reader for the target and host of opts.
func (d *Driver) Env(opts toolchain.Options) toolchain.Env {
	return toolchain.NewEnv(d.getenv, opts.EffectiveTarget(), opts.EffectiveHost())
}

// SelectCompiler picks the compiler for opts. An explicit selection wins,
// then CC or CXX (with their target-specific variants), then the default
// compiler for the target. The choice is resolved and classified.
func (d *Driver) SelectCompiler(ctx context.Context, opts toolchain.Options, explicit string) (Selection, error) {
	raw, source := explicit, SourceConfig
	if raw == "" {
		if lookup, ok := d.Env(opts).CompilerOverride(opts.Language()); ok {
			raw, source = lookup.Value, lookup.Name
		} else {
			raw, source = toolchain.DefaultCompiler(opts.EffectiveTarget(), opts.EffectiveHost(), opts.Language()), SourceDefault
		}
	}

	inv, err := d.parser.Parse(ctx, raw, d.request(source))
	if err != nil {
		return Selection{}, err
	}

	family, err := d.classifier.Classify(ctx, inv.Compiler)
	if err != nil {
		return Selection{}, err
	}

	d.logger.Debug("selected compiler", "source", source, "compiler", inv.Compiler.Path, "wrapper", inv.Wrapper.Path, "family", family)
	return Selection{WrapperInvocation: inv, Family: family, Source: source, Raw: raw}, nil
}

// SelectArchiver picks the archiver: explicit, then AR, then the default
// paired with family.
func (d *Driver) SelectArchiver(ctx context.Context, opts toolchain.Options, family toolchain.Family, explicit string) (resolve.Tool, error) {
	name, source := explicit, SourceConfig
	if name == "" {
		if lookup, ok := d.Env(opts).ArchiverOverride(); ok {
			name, source = lookup.Value, lookup.Name
		} else {
			name, source = toolchain.DefaultArchiver(family), SourceDefault
		}
	}

	req := d.request(source)
	req.Name = name
	return d.resolver.Resolve(ctx, req)
}

// Prepare selects and classifies the compiler, reads the raw flag
// variables into opts and probes every flag in opts.FlagsIfSupported with
// the selection's extra flags and the target flags in place.
func (d *Driver) Prepare(ctx context.Context, opts toolchain.Options, explicitCompiler string) (*Plan, error) {
	sel, err := d.SelectCompiler(ctx, opts, explicitCompiler)
	if err != nil {
		return nil, err
	}

	if err := d.Env(opts).ApplyTo(&opts); err != nil {
		return nil, err
	}

	support, err := d.prober.Support(ctx, sel.Compiler, sel.Family, opts.Language(), sel.TrialFlags(opts), opts.FlagsIfSupported)
	if err != nil {
		return nil, err
	}

	return &Plan{Selection: sel, Options: opts, Support: support}, nil
}

// Invocation assembles the compilation of src into obj.
func (p *Plan) Invocation(src, obj string) toolchain.CompileInvocation {
	return toolchain.NewCompileInvocation(p.Selection.WrapperInvocation, p.Selection.Family, p.Options, p.Support, src, obj)
}

func (d *Driver) request(note string) resolve.Request {
	return resolve.Request{Note: note, SearchPath: d.searchPath}
}

// TrialFlags returns the flags a flag trial for this selection compiles
// with: its extra flags and the target flags for opts.
func (s Selection) TrialFlags(opts toolchain.Options) []string {
	return toolchain.TrialFlags(s.Family, opts, s.ExtraFlags)
}

func (s Selection) String() string {
	if s.HasWrapper() {
		return fmt.Sprintf("%s via %s (%s, from %s)", s.Compiler.Path, s.Wrapper.Path, s.Family, s.Source)
	}
	return fmt.Sprintf("%s (%s, from %s)", s.Compiler.Path, s.Family, s.Source)
}

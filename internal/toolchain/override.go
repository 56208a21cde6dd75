// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/invowk/ccbuild/internal/logging"
	"github.com/invowk/ccbuild/internal/resolve"
	"github.com/invowk/ccbuild/pkg/platform"
)

// DefaultWrappers are the caching and distribution programs recognized in
// front of a compiler in an override string.
var DefaultWrappers = []string{"ccache", "sccache", "distcc", "icecc", "cachepot", "buildcache"}

type (
	// ToolResolver resolves executables. *resolve.Resolver implements it.
	ToolResolver interface {
		Resolve(ctx context.Context, req resolve.Request) (resolve.Tool, error)
	}

	// WrapperInvocation is a parsed compiler selection: an optional wrapper,
	// the real compiler and the extra flags that followed them.
	WrapperInvocation struct {
		// WrapperToken is the wrapper as written, empty when there is none.
		WrapperToken string
		// CompilerToken is the compiler as written.
		CompilerToken string
		// ExtraFlags are the remaining tokens, in order.
		ExtraFlags []string

		Wrapper  resolve.Tool
		Compiler resolve.Tool
	}

	// OverrideParser interprets compiler override strings such as the value
	// of CC.
	OverrideParser struct {
		resolver ToolResolver
		wrappers map[string]bool
		logger   *log.Logger
	}

	// OverrideOption configures an OverrideParser during construction.
	OverrideOption func(*OverrideParser)
)

// WithWrappers adds names to the recognized wrapper list.
func WithWrappers(names ...string) OverrideOption {
	return func(p *OverrideParser) {
		for _, n := range names {
			p.wrappers[strings.ToLower(n)] = true
		}
	}
}

// WithOverrideLogger sets the logger used for debug tracing.
func WithOverrideLogger(l *log.Logger) OverrideOption {
	return func(p *OverrideParser) {
		p.logger = logging.OrDiscard(l)
	}
}

// NewOverrideParser creates a parser recognizing DefaultWrappers.
func NewOverrideParser(resolver ToolResolver, opts ...OverrideOption) *OverrideParser {
	p := &OverrideParser{
		resolver: resolver,
		wrappers: make(map[string]bool, len(DefaultWrappers)),
		logger:   logging.Discard(),
	}
	for _, w := range DefaultWrappers {
		p.wrappers[w] = true
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsWrapper reports whether token names a known wrapper, by bare name or by
// a path whose file stem matches.
func (p *OverrideParser) IsWrapper(token string) bool {
	return p.wrappers[strings.ToLower(platform.FileStem(token))]
}

// Parse interprets raw. Tokens are separated by runs of whitespace. A single
// token is the compiler. With more tokens, a known wrapper followed by a
// resolvable compiler wins; otherwise the first token is the compiler and
// the rest are extra flags. base carries the search path, environment and
// note used for every resolution.
func (p *OverrideParser) Parse(ctx context.Context, raw string, base resolve.Request) (WrapperInvocation, error) {
	tokens := strings.Fields(raw)
	if len(tokens) == 0 {
		return WrapperInvocation{}, &OverrideParseError{Override: raw, Causes: []error{errors.New("empty override")}}
	}

	lookup := func(name string) (resolve.Tool, error) {
		req := base
		req.Name = name
		return p.resolver.Resolve(ctx, req)
	}

	var causes []error
	var first resolve.Tool
	firstResolved := false

	if len(tokens) >= 2 && p.IsWrapper(tokens[0]) {
		wrapper, err := lookup(tokens[0])
		if err == nil {
			first, firstResolved = wrapper, true
			compiler, err := lookup(tokens[1])
			if err == nil {
				inv := WrapperInvocation{
					WrapperToken:  tokens[0],
					CompilerToken: tokens[1],
					ExtraFlags:    extraTokens(tokens[2:]),
					Wrapper:       wrapper,
					Compiler:      compiler,
				}
				p.logger.Debug("parsed override", "override", raw, "wrapper", wrapper.Path, "compiler", compiler.Path, "flags", inv.ExtraFlags)
				return inv, nil
			}
			causes = append(causes, fmt.Errorf("wrapper %s with compiler %s: %w", tokens[0], tokens[1], err))
		} else {
			causes = append(causes, fmt.Errorf("wrapper %s: %w", tokens[0], err))
		}
	}

	if !firstResolved {
		tool, err := lookup(tokens[0])
		if err != nil {
			causes = append(causes, fmt.Errorf("compiler %s: %w", tokens[0], err))
			return WrapperInvocation{}, &OverrideParseError{Override: raw, Causes: causes}
		}
		first = tool
	}

	inv := WrapperInvocation{
		CompilerToken: tokens[0],
		ExtraFlags:    extraTokens(tokens[1:]),
		Compiler:      first,
	}
	p.logger.Debug("parsed override", "override", raw, "compiler", first.Path, "flags", inv.ExtraFlags)
	return inv, nil
}

// HasWrapper reports whether the compiler runs behind a wrapper.
func (w WrapperInvocation) HasWrapper() bool {
	return w.WrapperToken != ""
}

// CCEnv returns the compiler string exported to child builds: the wrapper as
// written, the resolved compiler path and the extra flags. It is empty when
// there is no wrapper.
func (w WrapperInvocation) CCEnv() string {
	if !w.HasWrapper() {
		return ""
	}
	parts := make([]string, 0, len(w.ExtraFlags)+2)
	parts = append(parts, w.WrapperToken, w.Compiler.Program())
	parts = append(parts, w.ExtraFlags...)
	return strings.Join(parts, " ")
}

func extraTokens(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	return append([]string(nil), tokens...)
}

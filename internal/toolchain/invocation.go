// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"maps"
	"strings"

	"github.com/invowk/ccbuild/internal/process"
	"github.com/invowk/ccbuild/internal/resolve"
)

// CompileInvocation is one fully assembled compilation, ready to run.
type CompileInvocation struct {
	Compiler resolve.Tool
	// Wrapper is zero when the compiler runs directly.
	Wrapper resolve.Tool
	Family  Family

	// Args is the ordered argument list passed to the compiler.
	Args []string
	// Env is the merged environment overlay of the wrapper and compiler.
	Env map[string]string

	// CCEnv is the compiler string exported to child builds (empty without a
	// wrapper). CFlagsEnv is the matching flags string.
	CCEnv     string
	CFlagsEnv string
}

// NewCompileInvocation assembles the compilation of src into obj by the
// selected compiler. support holds the optional flags the compiler accepted.
func NewCompileInvocation(sel WrapperInvocation, family Family, opts Options, support FlagSupport, src, obj string) CompileInvocation {
	unit := Unit{Source: src, Object: obj, PrefixFlags: sel.ExtraFlags, Support: support}

	env := make(map[string]string, len(sel.Wrapper.Env)+len(sel.Compiler.Env))
	maps.Copy(env, sel.Wrapper.Env)
	maps.Copy(env, sel.Compiler.Env)
	if len(env) == 0 {
		env = nil
	}

	return CompileInvocation{
		Compiler:  sel.Compiler,
		Wrapper:   sel.Wrapper,
		Family:    family,
		Args:      CompileArgs(family, opts, unit),
		Env:       env,
		CCEnv:     sel.CCEnv(),
		CFlagsEnv: strings.Join(CompileFlags(family, opts, nil, support), " "),
	}
}

// Spec returns the process to start. A wrapped compilation starts the
// wrapper with the compiler's command line as its arguments.
func (c CompileInvocation) Spec() process.Spec {
	if c.Wrapper.IsZero() {
		spec := c.Compiler.Spec(c.Args...)
		spec.Env = c.Env
		return spec
	}

	args := make([]string, 0, len(c.Compiler.LeadingArgs)+len(c.Args)+1)
	args = append(args, c.Compiler.Path)
	args = append(args, c.Compiler.LeadingArgs...)
	args = append(args, c.Args...)
	spec := c.Wrapper.Spec(args...)
	spec.Env = c.Env
	return spec
}

// String renders the command line for display.
func (c CompileInvocation) String() string {
	return c.Spec().CommandLine()
}

// NewArchiveSpec returns the process bundling objs into lib with archiver.
func NewArchiveSpec(archiver resolve.Tool, family Family, lib string, objs []string) process.Spec {
	return archiver.Spec(ArchiveArgs(family, lib, objs)...)
}

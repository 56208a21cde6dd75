// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"fmt"
	"strings"

	"github.com/xyproto/env/v2"
	"mvdan.cc/sh/v3/shell"

	"github.com/invowk/ccbuild/pkg/triple"
)

// Variable names read from the environment.
const (
	EnvCC       = "CC"
	EnvCXX      = "CXX"
	EnvAR       = "AR"
	EnvCFlags   = "CFLAGS"
	EnvCXXFlags = "CXXFLAGS"
)

// Lookup holds the value of a variable together with the name it was found
// under.
type Lookup struct {
	Name  string
	Value string
}

// Env reads build variables with target-specific precedence.
type Env struct {
	getenv func(string) string
	target triple.Triple
	host   triple.Triple
}

// DefaultGetenv reads the process environment.
func DefaultGetenv(name string) string {
	return env.Str(name)
}

// NewEnv creates an Env for a build of target on host. A nil getenv reads
// the process environment.
func NewEnv(getenv func(string) string, target, host triple.Triple) Env {
	if getenv == nil {
		getenv = DefaultGetenv
	}
	return Env{getenv: getenv, target: target, host: host}
}

// Candidates lists the names tried for variable name, most specific first:
// name_<target>, name_<target with underscores>, TARGET_name (HOST_name for
// native builds) and finally name.
func (e Env) Candidates(name string) []string {
	target := e.target.String()
	kind := "TARGET"
	if e.target.Equal(e.host) {
		kind = "HOST"
	}
	return []string{
		name + "_" + target,
		name + "_" + strings.ReplaceAll(target, "-", "_"),
		kind + "_" + name,
		name,
	}
}

// Get returns the first non-empty candidate of name.
func (e Env) Get(name string) (Lookup, bool) {
	for _, candidate := range e.Candidates(name) {
		if v := e.getenv(candidate); v != "" {
			return Lookup{Name: candidate, Value: v}, true
		}
	}
	return Lookup{}, false
}

// CompilerOverride returns the compiler selection variable for lang.
func (e Env) CompilerOverride(lang Language) (Lookup, bool) {
	if lang == Cpp {
		return e.Get(EnvCXX)
	}
	return e.Get(EnvCC)
}

// ArchiverOverride returns the archiver selection variable.
func (e Env) ArchiverOverride() (Lookup, bool) {
	return e.Get(EnvAR)
}

// RawFlags returns the tokens of the raw flags variable for lang and
// whether any raw flags variable (C or C++) is set, which disables the
// default warning flags. Values are split like a shell word list.
func (e Env) RawFlags(lang Language) (tokens []string, override bool, err error) {
	name := EnvCFlags
	if lang == Cpp {
		name = EnvCXXFlags
	}

	_, hasC := e.Get(EnvCFlags)
	_, hasCXX := e.Get(EnvCXXFlags)
	override = hasC || hasCXX

	lookup, ok := e.Get(name)
	if !ok {
		return nil, override, nil
	}
	tokens, err = shell.Fields(lookup.Value, e.getenv)
	if err != nil {
		return nil, override, fmt.Errorf("parse %s: %w", lookup.Name, err)
	}
	return tokens, override, nil
}

// ApplyTo loads the raw flags for the language of opts into opts.
func (e Env) ApplyTo(opts *Options) error {
	tokens, override, err := e.RawFlags(opts.Language())
	if err != nil {
		return err
	}
	opts.EnvFlags = tokens
	opts.EnvFlagsOverride = override
	return nil
}

// DefaultCompiler returns the compiler name used when nothing selects one.
func DefaultCompiler(target, host triple.Triple, lang Language) string {
	cpp := lang == Cpp
	pick := func(c, cxx string) string {
		if cpp {
			return cxx
		}
		return c
	}

	switch {
	case target.IsMSVC():
		return "cl.exe"
	case target.OS == "emscripten":
		name := pick("emcc", "em++")
		if host.IsWindows() {
			return name + ".bat"
		}
		return name
	case target.IsBareMetal() && (strings.HasPrefix(target.Arch, "arm") || strings.HasPrefix(target.Arch, "thumb")):
		return "arm-none-eabi-" + pick("gcc", "g++")
	case target.IsWasm(), target.IsApple():
		return pick("clang", "clang++")
	case !target.Equal(host) && !target.IsBareMetal():
		return target.String() + "-" + pick("gcc", "g++")
	case target.IsWindows():
		return pick("gcc", "g++")
	default:
		return pick("cc", "c++")
	}
}

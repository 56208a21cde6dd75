// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"fmt"
	"strings"

	"github.com/invowk/ccbuild/pkg/triple"
)

// OptLevel is an optimization level. The empty level emits no flag.
type OptLevel string

// Optimization levels.
const (
	OptUnset OptLevel = ""
	Opt0     OptLevel = "0"
	Opt1     OptLevel = "1"
	Opt2     OptLevel = "2"
	Opt3     OptLevel = "3"
	OptSize  OptLevel = "s"
	OptMin   OptLevel = "z"
)

// ParseOptLevel accepts 0, 1, 2, 3, s, z or the empty string.
func ParseOptLevel(s string) (OptLevel, error) {
	switch l := OptLevel(strings.TrimSpace(s)); l {
	case OptUnset, Opt0, Opt1, Opt2, Opt3, OptSize, OptMin:
		return l, nil
	default:
		return OptUnset, fmt.Errorf("invalid optimization level %q (want 0, 1, 2, 3, s or z)", s)
	}
}

// Define is a preprocessor definition. An empty Value defines Name alone.
type Define struct {
	Name  string
	Value string
}

// ParseDefine splits "NAME=VALUE" or "NAME".
func ParseDefine(s string) Define {
	name, value, _ := strings.Cut(s, "=")
	return Define{Name: name, Value: value}
}

// String renders the definition without a switch prefix.
func (d Define) String() string {
	if d.Value == "" {
		return d.Name
	}
	return d.Name + "=" + d.Value
}

// FlagSupport is the set of optional flags a compiler accepted.
type FlagSupport map[string]bool

// NewFlagSupport returns a set holding flags.
func NewFlagSupport(flags ...string) FlagSupport {
	s := make(FlagSupport, len(flags))
	for _, f := range flags {
		s[f] = true
	}
	return s
}

// Has reports whether flag was accepted. A nil set accepts nothing.
func (s FlagSupport) Has(flag string) bool {
	return s[flag]
}

// Options is the declarative configuration of one compilation.
type Options struct {
	// Target is the triple code is produced for; Host is the triple of the
	// build machine. Zero values mean the running host.
	Target triple.Triple
	Host   triple.Triple

	OptLevel OptLevel
	Debug    bool

	Warnings bool
	// ExtraWarnings defaults to Warnings when nil.
	ExtraWarnings      *bool
	WarningsIntoErrors bool

	// PIC defaults to the target's convention when nil.
	PIC *bool
	// UsePLT defaults to true when nil.
	UsePLT *bool

	Static    bool
	Shared    bool
	StaticCRT bool

	Cpp       bool
	CppStdlib string

	Defines          []Define
	Includes         []string
	Flags            []string
	FlagsIfSupported []string

	// EnvFlags are the tokens of the raw flags variables.
	EnvFlags []string
	// EnvFlagsOverride is set when a raw flags variable is present and
	// non-empty. It disables the default warning flags.
	EnvFlagsOverride bool
}

// Language returns the source language of the compilation.
func (o *Options) Language() Language {
	return LanguageOf(o.Cpp)
}

// EffectiveTarget returns Target, falling back to Host and then to the
// running host.
func (o *Options) EffectiveTarget() triple.Triple {
	switch {
	case !o.Target.IsZero():
		return o.Target
	case !o.Host.IsZero():
		return o.Host
	default:
		return triple.Host()
	}
}

// EffectiveHost returns Host, falling back to the running host.
func (o *Options) EffectiveHost() triple.Triple {
	if !o.Host.IsZero() {
		return o.Host
	}
	return triple.Host()
}

// IsCross reports whether target and host differ.
func (o *Options) IsCross() bool {
	return !o.EffectiveTarget().Equal(o.EffectiveHost())
}

func (o *Options) extraWarnings() bool {
	if o.ExtraWarnings != nil {
		return *o.ExtraWarnings
	}
	return o.Warnings
}

func (o *Options) pic() bool {
	if o.PIC != nil {
		return *o.PIC
	}
	return o.EffectiveTarget().DefaultPIC()
}

func (o *Options) usePLT() bool {
	if o.UsePLT != nil {
		return *o.UsePLT
	}
	return true
}

// Bool returns a pointer to v, for the optional fields of Options.
func Bool(v bool) *bool {
	return &v
}

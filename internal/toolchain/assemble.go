// SPDX-License-Identifier: MPL-2.0

package toolchain

// Unit is one translation unit to compile.
type Unit struct {
	Source string
	Object string

	// PrefixFlags come from the compiler selection (the extra flags of an
	// override string) and lead the argument list.
	PrefixFlags []string

	// Support holds the FlagsIfSupported entries the compiler accepted.
	// Entries missing from it are never emitted.
	Support FlagSupport
}

// CompileArgs returns the complete argument list compiling unit with a tool
// of the given family. It is a pure function of its inputs.
func CompileArgs(family Family, opts Options, unit Unit) []string {
	args := CompileFlags(family, opts, unit.PrefixFlags, unit.Support)
	t := family.flags()
	args = append(args, t.compileOnly)
	args = append(args, outputArgs(t, unit.Object)...)
	return append(args, unit.Source)
}

// CompileFlags returns the flags of a compilation without the per-unit
// compile, output and source arguments.
//
// Optimization precedes debug info, which precedes the warning flags. The
// default warning flags precede every user flag so user flags can narrow
// them. They are left out entirely when opts.EnvFlagsOverride is set.
func CompileFlags(family Family, opts Options, prefix []string, support FlagSupport) []string {
	var args []string
	args = append(args, prefix...)

	if family == Msvc {
		args = appendMsvcBase(args, opts)
	} else {
		args = appendGnuBase(args, family, opts)
	}

	t := family.flags()
	args = append(args, opts.EnvFlags...)

	if !opts.EnvFlagsOverride {
		allWarnings := opts.Warnings
		extraWarnings := opts.extraWarnings()
		if family == Msvc {
			if allWarnings || extraWarnings {
				args = append(args, t.warnAll)
			}
		} else {
			if allWarnings {
				args = append(args, t.warnAll)
			}
			if extraWarnings {
				args = append(args, t.warnExtra)
			}
		}
	}
	if opts.WarningsIntoErrors {
		args = append(args, t.warnError)
	}

	if family.IsGnuLike() {
		if opts.Cpp && opts.CppStdlib != "" {
			args = append(args, t.stdlibPrefix+opts.CppStdlib)
		}
		if opts.Static {
			args = append(args, t.staticLink)
		}
		if opts.Shared {
			args = append(args, t.sharedLink)
		}
	}

	for _, dir := range opts.Includes {
		args = append(args, t.include, dir)
	}
	for _, d := range opts.Defines {
		args = append(args, t.define+d.String())
	}

	args = append(args, opts.Flags...)
	for _, flag := range opts.FlagsIfSupported {
		if support.Has(flag) {
			args = append(args, flag)
		}
	}
	return args
}

func appendGnuBase(args []string, family Family, opts Options) []string {
	t := family.flags()
	if opts.OptLevel != OptUnset {
		args = append(args, t.optPrefix+string(opts.OptLevel))
	}
	args = append(args, t.sections...)
	if opts.Debug {
		args = append(args, t.debug)
	}

	args = append(args, TargetFlags(family, opts)...)

	target := opts.EffectiveTarget()
	pic := opts.pic()
	if pic {
		args = append(args, t.pic)
	}
	if !opts.usePLT() && pic && target.IsELF() {
		args = append(args, t.noPLT)
	}
	return args
}

// TargetFlags returns the flags that point a GNU-like compiler at the
// effective target: the pointer width for GCC on x86 and --target for a
// cross-compiling Clang.
func TargetFlags(family Family, opts Options) []string {
	target := opts.EffectiveTarget()
	switch {
	case family == Gnu && target.IsX86():
		switch target.PointerWidth() {
		case 64:
			return []string{"-m64"}
		case 32:
			return []string{"-m32"}
		}
	case family == Clang && opts.IsCross():
		return []string{"--target=" + target.String()}
	}
	return nil
}

// TrialFlags returns the flags a flag trial compiles with: the selection's
// prefix flags followed by the target flags.
func TrialFlags(family Family, opts Options, prefix []string) []string {
	out := make([]string, 0, len(prefix)+1)
	out = append(out, prefix...)
	return append(out, TargetFlags(family, opts)...)
}

func appendMsvcBase(args []string, opts Options) []string {
	t := &msvcFlags
	args = append(args, t.nologo)
	if opts.StaticCRT {
		args = append(args, t.staticCRT)
	} else {
		args = append(args, t.dynamicCRT)
	}

	switch opts.OptLevel {
	case Opt1, OptSize, OptMin:
		args = append(args, t.optPrefix+"1")
	case Opt2, Opt3:
		args = append(args, t.optPrefix+"2")
	}
	if opts.Debug {
		args = append(args, t.debug)
	}
	return args
}

// outputArgs names the object file in the family's spelling.
func outputArgs(t *flagTable, obj string) []string {
	if t.outputJoined {
		return []string{t.outputObj + obj}
	}
	return []string{t.outputObj, obj}
}

// ArchiveArgs returns the archiver arguments bundling objs into lib: "crs"
// for ar, "/OUT:" for lib.exe.
func ArchiveArgs(family Family, lib string, objs []string) []string {
	var args []string
	if family == Msvc {
		args = append(args, "/nologo", "/OUT:"+lib)
	} else {
		args = append(args, "crs", lib)
	}
	return append(args, objs...)
}

// DefaultArchiver returns the archiver program name paired with family.
func DefaultArchiver(family Family) string {
	if family == Msvc {
		return "lib.exe"
	}
	return "ar"
}

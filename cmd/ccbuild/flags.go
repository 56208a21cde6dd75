// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/invowk/ccbuild/internal/config"
)

// buildFlags are the command-line counterparts of the build description.
// Only flags the user set override the loaded configuration.
type buildFlags struct {
	target           string
	host             string
	optLevel         string
	debug            bool
	cpp              bool
	warningsAsErrors bool
	defines          []string
	includes         []string
	flags            []string
	flagsIfSupported []string
	compiler         string
	archiver         string

	// Output flags; registered by compile only.
	outDir  string
	library string
	jobs    int
}

func (f *buildFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.target, "target", "", "target triple (default: host)")
	fs.StringVar(&f.host, "host", "", "host triple (default: running machine)")
	fs.StringVarP(&f.optLevel, "opt", "O", "", "optimization level: 0, 1, 2, 3, s or z")
	fs.BoolVarP(&f.debug, "debug", "g", false, "emit debug information")
	fs.BoolVar(&f.cpp, "cpp", false, "compile as C++")
	fs.BoolVar(&f.warningsAsErrors, "werror", false, "turn warnings into errors")
	fs.StringArrayVarP(&f.defines, "define", "D", nil, "preprocessor define NAME or NAME=VALUE (repeatable)")
	fs.StringArrayVarP(&f.includes, "include", "I", nil, "include directory (repeatable)")
	fs.StringArrayVar(&f.flags, "flag", nil, "flag passed to the compiler unconditionally (repeatable)")
	fs.StringArrayVar(&f.flagsIfSupported, "flag-if-supported", nil, "flag passed only when the compiler accepts it (repeatable)")
	fs.StringVar(&f.compiler, "compiler", "", `compiler selection, e.g. "clang" or "ccache gcc -m32"`)
	fs.StringVar(&f.archiver, "archiver", "", "archiver program")
}

func (f *buildFlags) registerOutput(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.outDir, "out-dir", "o", "", "directory for objects and the library")
	fs.StringVarP(&f.library, "lib", "l", "", "bundle objects into this static library (bare name)")
	fs.IntVarP(&f.jobs, "jobs", "j", 0, "concurrent compilations (0: one per CPU)")
}

// applyTo overlays the flags the user set onto cfg. List flags append to the
// configured lists.
func (f *buildFlags) applyTo(cmd *cobra.Command, cfg *config.Config) {
	fs := cmd.Flags()
	if fs.Changed("target") {
		cfg.Target = f.target
	}
	if fs.Changed("host") {
		cfg.Host = f.host
	}
	if fs.Changed("opt") {
		cfg.OptLevel = config.OptLevel(f.optLevel)
	}
	if fs.Changed("debug") {
		cfg.Debug = f.debug
	}
	if fs.Changed("cpp") {
		cfg.Cpp = f.cpp
	}
	if fs.Changed("werror") {
		cfg.WarningsIntoErrors = f.warningsAsErrors
	}
	if fs.Changed("compiler") {
		cfg.Compiler = f.compiler
	}
	if fs.Changed("archiver") {
		cfg.Archiver = f.archiver
	}
	cfg.Defines = append(cfg.Defines, f.defines...)
	cfg.Includes = append(cfg.Includes, f.includes...)
	cfg.Flags = append(cfg.Flags, f.flags...)
	cfg.FlagsIfSupported = append(cfg.FlagsIfSupported, f.flagsIfSupported...)

	if fs.Lookup("out-dir") == nil {
		return
	}
	if fs.Changed("out-dir") {
		cfg.OutDir = f.outDir
	}
	if fs.Changed("jobs") {
		cfg.Jobs = f.jobs
	}
}

// SPDX-License-Identifier: MPL-2.0

package build

import (
	"fmt"

	"github.com/invowk/ccbuild/internal/config"
	"github.com/invowk/ccbuild/internal/toolchain"
	"github.com/invowk/ccbuild/pkg/triple"
)

// OptionsFromConfig converts a build description into compilation options.
// Environment flags are not read here; Prepare applies them.
func OptionsFromConfig(cfg *config.Config) (toolchain.Options, error) {
	var opts toolchain.Options

	if cfg.Target != "" {
		t, err := triple.Parse(cfg.Target)
		if err != nil {
			return opts, fmt.Errorf("target: %w", err)
		}
		opts.Target = t
	}
	if cfg.Host != "" {
		h, err := triple.Parse(cfg.Host)
		if err != nil {
			return opts, fmt.Errorf("host: %w", err)
		}
		opts.Host = h
	}

	level, err := toolchain.ParseOptLevel(string(cfg.OptLevel))
	if err != nil {
		return opts, err
	}
	opts.OptLevel = level

	opts.Debug = cfg.Debug
	opts.Warnings = cfg.Warnings
	opts.ExtraWarnings = cfg.ExtraWarnings
	opts.WarningsIntoErrors = cfg.WarningsIntoErrors
	opts.PIC = cfg.PIC
	opts.UsePLT = cfg.UsePLT
	opts.Static = cfg.Static
	opts.Shared = cfg.Shared
	opts.StaticCRT = cfg.StaticCRT
	opts.Cpp = cfg.Cpp
	opts.CppStdlib = cfg.CppStdlib

	for _, d := range cfg.Defines {
		opts.Defines = append(opts.Defines, toolchain.ParseDefine(d))
	}
	opts.Includes = append(opts.Includes, cfg.Includes...)
	opts.Flags = append(opts.Flags, cfg.Flags...)
	opts.FlagsIfSupported = append(opts.FlagsIfSupported, cfg.FlagsIfSupported...)

	return opts, nil
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/invowk/ccbuild/internal/build"
	"github.com/invowk/ccbuild/internal/config"
	"github.com/invowk/ccbuild/internal/logging"
	"github.com/invowk/ccbuild/internal/process"
	"github.com/invowk/ccbuild/internal/toolchain"
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives an App reference.
	App struct {
		Config config.Provider
		// Runner starts compilers. Nil means a native runner created per
		// command with the command's logger.
		Runner process.Runner
		Getenv func(string) string
		Debug  bool
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Runner process.Runner
		Getenv func(string) string
		// Debug forces verbose output regardless of flags and config.
		Debug  bool
		Stdout io.Writer
		Stderr io.Writer
	}

	// session is the state of one command run: the merged configuration and
	// a driver built from it.
	session struct {
		cfg     *config.Config
		sources []string
		opts    toolchain.Options
		driver  *build.Driver
		logger  *log.Logger
		verbose bool
	}
)

// NewApp creates an App, filling nil dependencies with production defaults.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Getenv == nil {
		deps.Getenv = toolchain.DefaultGetenv
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}

	return &App{
		Config: deps.Config,
		Runner: deps.Runner,
		Getenv: deps.Getenv,
		Debug:  deps.Debug,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}, nil
}

// loadConfig merges the configuration files selected by the root flags.
func (a *App) loadConfig(ctx context.Context, rf *rootFlags) (*config.Loaded, error) {
	return a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: rf.configPath,
		BaseDir:        rf.dir,
	})
}

// newSession loads the configuration, lays bf over it and builds a driver.
// bf may be nil for commands without build flags.
func (a *App) newSession(cmd *cobra.Command, rf *rootFlags, bf *buildFlags) (*session, error) {
	loaded, err := a.loadConfig(cmd.Context(), rf)
	if err != nil {
		return nil, err
	}
	cfg := loaded.Config

	if bf != nil {
		bf.applyTo(cmd, cfg)
		if valid, errs := cfg.IsValid(); !valid {
			return nil, errs[0]
		}
	}

	verbose := a.isVerbose(rf, cfg)
	logger := logging.New(a.stderr, config.AppName, verbose)

	opts, err := build.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	runner := a.Runner
	if runner == nil {
		runner = process.NewNativeRunner(logger.WithPrefix("exec"))
	}

	driver := build.NewDriver(runner,
		build.WithLogger(logger),
		build.WithGetenv(a.Getenv),
		build.WithWorkDir(rf.dir),
		build.WithScratchDir(rf.scratchDir),
		build.WithWrappers(cfg.Wrappers...),
	)

	logger.Debug("configuration loaded", "sources", loaded.Sources)

	return &session{
		cfg:     cfg,
		sources: loaded.Sources,
		opts:    opts,
		driver:  driver,
		logger:  logger,
		verbose: verbose,
	}, nil
}

func (a *App) isVerbose(rf *rootFlags, cfg *config.Config) bool {
	if rf.verbose || a.Debug {
		return true
	}
	return cfg != nil && cfg.UI.Verbose
}

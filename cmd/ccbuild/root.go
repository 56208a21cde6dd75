// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"

	"github.com/invowk/ccbuild/internal/config"
)

// EnvDebug turns on debug logging when set to a true value.
const EnvDebug = "CCBUILD_DEBUG"

var (
	// Version is set at build time via -ldflags.
	Version = "dev"
	// Commit is set at build time via -ldflags.
	Commit = "unknown"
	// BuildDate is set at build time via -ldflags.
	BuildDate = "unknown"
)

// rootFlags holds the persistent flags shared by every subcommand.
type rootFlags struct {
	verbose    bool
	configPath string
	dir        string
	scratchDir string
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Compile C and C++ sources with the host or cross toolchain",
		Long: TitleStyle.Render(config.AppName) + SubtitleStyle.Render(" - native toolchain driver") + `

Finds the C or C++ compiler for a target, works out whether it is GCC, Clang
or MSVC, probes optional flags and runs the compilations.

The compiler comes from --compiler, the config file, CC/CXX (and their
target-specific variants) or the target's default, in that order.`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging and detailed errors")
	pf.StringVar(&flags.configPath, "config", "", "load only this config file")
	pf.StringVarP(&flags.dir, "dir", "C", "", "project directory holding "+config.ProjectFileName)
	pf.StringVar(&flags.scratchDir, "scratch-dir", "", "directory for probe scratch files")

	rootCmd.AddCommand(
		newCompileCommand(app, flags),
		newArgsCommand(app, flags),
		newDetectCommand(app, flags),
		newProbeCommand(app, flags),
		newConfigCommand(app, flags),
		newVersionCommand(app),
	)

	return rootCmd
}

func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. It is called by main.main.
func Execute() {
	app, err := NewApp(Dependencies{Debug: env.Bool(EnvDebug)})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}

	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(exitStatus(err))
	}
}

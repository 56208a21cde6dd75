// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invowk/ccbuild/internal/build"
	"github.com/invowk/ccbuild/internal/toolchain"
)

func newArgsCommand(app *App, rf *rootFlags) *cobra.Command {
	bf := &buildFlags{}
	var showEnv bool

	cmd := &cobra.Command{
		Use:   "args <source>",
		Short: "Print the compiler command line for a source without running it",
		Long: `Select the compiler, probe the optional flags and print the command
line that compile would run for one source.

With --env the CC/CXX and CFLAGS/CXXFLAGS values exported to child builds
are printed as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd, rf, bf)
			if err != nil {
				return app.fail(nil, rf, "load configuration", rf.configPath, err)
			}

			plan, err := s.driver.Prepare(cmd.Context(), s.opts, s.cfg.Compiler)
			if err != nil {
				return app.fail(s, rf, "prepare compiler", s.cfg.Compiler, err)
			}

			src := args[0]
			obj := build.ObjectPath(outDir(cmd, rf, s.cfg.OutDir), src, plan.Selection.Family.ObjectExt())
			inv := plan.Invocation(src, obj)
			fmt.Fprintln(app.stdout, inv.String())

			if showEnv {
				printExportedEnv(app, plan.Options.Language(), inv)
			}
			return nil
		},
	}

	bf.register(cmd)
	cmd.Flags().BoolVar(&showEnv, "env", false, "also print the compiler and flags variables for child builds")
	return cmd
}

func printExportedEnv(app *App, lang toolchain.Language, inv toolchain.CompileInvocation) {
	ccName, flagsName := toolchain.EnvCC, toolchain.EnvCFlags
	if lang == toolchain.Cpp {
		ccName, flagsName = toolchain.EnvCXX, toolchain.EnvCXXFlags
	}
	cc := inv.CCEnv
	if cc == "" {
		cc = inv.Compiler.Program()
	}
	fmt.Fprintf(app.stdout, "%s=%s\n", ccName, cc)
	fmt.Fprintf(app.stdout, "%s=%s\n", flagsName, inv.CFlagsEnv)
}

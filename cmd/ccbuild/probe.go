// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProbeCommand(app *App, rf *rootFlags) *cobra.Command {
	bf := &buildFlags{}
	var require bool

	cmd := &cobra.Command{
		Use:   "probe <flag>...",
		Short: "Check which flags the selected compiler accepts",
		Long: `Compile a trivial source once per flag and report whether the
compiler accepted it.`,
		Example: `  ccbuild probe -Wno-unused-parameter -fstack-protector-strong
  ccbuild probe --cpp --require -- -std=c++20`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd, rf, bf)
			if err != nil {
				return app.fail(nil, rf, "load configuration", rf.configPath, err)
			}

			ctx := cmd.Context()
			sel, err := s.driver.SelectCompiler(ctx, s.opts, s.cfg.Compiler)
			if err != nil {
				return app.fail(s, rf, "select compiler", s.cfg.Compiler, err)
			}

			fmt.Fprintln(app.stdout, row("compiler", CmdStyle.Render(sel.String())))

			base := sel.TrialFlags(s.opts)
			var rejected []string
			for _, flag := range args {
				ok, err := s.driver.Prober().Supported(ctx, sel.Compiler, sel.Family, s.opts.Language(), base, flag)
				if err != nil {
					return app.fail(s, rf, "probe flag", flag, err)
				}
				if ok {
					fmt.Fprintln(app.stdout, SuccessStyle.Render("✓ ")+flag)
				} else {
					fmt.Fprintln(app.stdout, ErrorStyle.Render("✗ ")+flag)
					rejected = append(rejected, flag)
				}
			}

			if require && len(rejected) > 0 {
				return &ExitError{Code: 1, Err: fmt.Errorf("unsupported flags: %v", rejected)}
			}
			return nil
		},
	}

	bf.register(cmd)
	cmd.Flags().BoolVar(&require, "require", false, "exit with status 1 when any flag is unsupported")
	return cmd
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDetectCommand(app *App, rf *rootFlags) *cobra.Command {
	bf := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Show which compiler and archiver would be used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.newSession(cmd, rf, bf)
			if err != nil {
				return app.fail(nil, rf, "load configuration", rf.configPath, err)
			}

			ctx := cmd.Context()
			sel, err := s.driver.SelectCompiler(ctx, s.opts, s.cfg.Compiler)
			if err != nil {
				return app.fail(s, rf, "select compiler", s.cfg.Compiler, err)
			}
			archiver, err := s.driver.SelectArchiver(ctx, s.opts, sel.Family, s.cfg.Archiver)
			if err != nil {
				return app.fail(s, rf, "select archiver", s.cfg.Archiver, err)
			}

			out := app.stdout
			fmt.Fprintln(out, row("target", s.opts.EffectiveTarget().String()))
			fmt.Fprintln(out, row("host", s.opts.EffectiveHost().String()))
			fmt.Fprintln(out, row("language", s.opts.Language().String()))
			fmt.Fprintln(out, row("compiler", CmdStyle.Render(sel.Compiler.Path)))
			if len(sel.Compiler.LeadingArgs) > 0 {
				fmt.Fprintln(out, row("leading args", fmt.Sprint(sel.Compiler.LeadingArgs)))
			}
			fmt.Fprintln(out, row("family", TitleStyle.Render(sel.Family.String())))
			fmt.Fprintln(out, row("source", SubtitleStyle.Render(sel.Source)))
			if sel.HasWrapper() {
				fmt.Fprintln(out, row("wrapper", CmdStyle.Render(sel.Wrapper.Path)))
			}
			if len(sel.ExtraFlags) > 0 {
				fmt.Fprintln(out, row("extra flags", fmt.Sprint(sel.ExtraFlags)))
			}
			fmt.Fprintln(out, row("archiver", CmdStyle.Render(archiver.Path)))
			return nil
		},
	}

	bf.register(cmd)
	return cmd
}

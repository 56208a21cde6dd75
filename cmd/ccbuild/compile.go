// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/invowk/ccbuild/internal/build"
)

func newCompileCommand(app *App, rf *rootFlags) *cobra.Command {
	bf := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "compile <source>...",
		Short: "Compile sources into objects and optionally a static library",
		Long: `Compile C or C++ sources with the selected toolchain.

Objects are written to the output directory, mirroring the relative
directories of the sources. With --lib the objects are bundled into
lib<name>.a (GNU and Clang) or <name>.lib (MSVC).`,
		Example: `  ccbuild compile src/foo.c src/bar.c --lib foo
  ccbuild compile --target aarch64-unknown-linux-gnu -O2 main.c
  CC="ccache clang" ccbuild compile -D NDEBUG --flag-if-supported -Wno-unused util.c`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, app, rf, bf, args)
		},
	}

	bf.register(cmd)
	bf.registerOutput(cmd)
	return cmd
}

func runCompile(cmd *cobra.Command, app *App, rf *rootFlags, bf *buildFlags, sources []string) error {
	s, err := app.newSession(cmd, rf, bf)
	if err != nil {
		return app.fail(nil, rf, "load configuration", rf.configPath, err)
	}

	req := build.Request{
		Options:  s.opts,
		Compiler: s.cfg.Compiler,
		Archiver: s.cfg.Archiver,
		Sources:  sources,
		OutDir:   outDir(cmd, rf, s.cfg.OutDir),
		Library:  bf.library,
		Jobs:     s.cfg.Jobs,
	}

	res, err := s.driver.Build(cmd.Context(), req)
	if err != nil {
		return app.fail(s, rf, "build", strings.Join(sources, " "), err)
	}

	fmt.Fprintln(app.stdout, row("compiler", CmdStyle.Render(res.Plan.Selection.String())))
	for _, inv := range res.Invocations {
		s.logger.Debug("compiled", "command", inv.String())
	}
	for _, obj := range res.Objects {
		fmt.Fprintln(app.stdout, SuccessStyle.Render("✓ ")+obj)
	}
	if res.Archive != "" {
		fmt.Fprintln(app.stdout, SuccessStyle.Render("✓ ")+TitleStyle.Render(res.Archive))
	}
	return nil
}

// outDir returns the output directory. A configured relative directory is
// taken relative to the project directory; --out-dir is used as given.
func outDir(cmd *cobra.Command, rf *rootFlags, configured string) string {
	if cmd.Flags().Changed("out-dir") || rf.dir == "" || filepath.IsAbs(configured) {
		return configured
	}
	return filepath.Join(rf.dir, configured)
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/invowk/ccbuild/internal/config"
)

// newConfigCommand creates the `ccbuild config` command tree.
func newConfigCommand(app *App, rf *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create build configuration",
		Long: `Inspect and create build configuration.

Settings are merged from the defaults, the user file and ` + config.ProjectFileName + `
in the project directory, later files winning. The user file is stored in:
  - Linux: ~/.config/ccbuild/config.cue
  - macOS: ~/Library/Application Support/ccbuild/config.cue
  - Windows: %APPDATA%\ccbuild\config.cue

--config loads a single file instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the merged configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd, app, rf)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the merged configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := app.loadConfig(cmd.Context(), rf)
			if err != nil {
				return app.fail(nil, rf, "load configuration", rf.configPath, err)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(loaded.Config))
			return nil
		},
	})

	var user bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default " + config.ProjectFileName,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(app, rf, user)
		},
	}
	initCmd.Flags().BoolVar(&user, "user", false, "create the user configuration file instead")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfigPath(cmd, app, rf)
		},
	})

	return cfgCmd
}

func showConfig(cmd *cobra.Command, app *App, rf *rootFlags) error {
	loaded, err := app.loadConfig(cmd.Context(), rf)
	if err != nil {
		return app.fail(nil, rf, "load configuration", rf.configPath, err)
	}
	cfg := loaded.Config
	out := app.stdout

	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)
	if len(loaded.Sources) == 0 {
		fmt.Fprintln(out, row("sources", SubtitleStyle.Render("(using defaults)")))
	} else {
		for _, src := range loaded.Sources {
			fmt.Fprintln(out, row("source", CmdStyle.Render(src)))
		}
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, row("target", orDefault(cfg.Target, "(host)")))
	fmt.Fprintln(out, row("host", orDefault(cfg.Host, "(running machine)")))
	fmt.Fprintln(out, row("opt_level", orDefault(string(cfg.OptLevel), "(unset)")))
	fmt.Fprintln(out, row("debug", strconv.FormatBool(cfg.Debug)))
	fmt.Fprintln(out, row("warnings", strconv.FormatBool(cfg.Warnings)))
	fmt.Fprintln(out, row("cpp", strconv.FormatBool(cfg.Cpp)))
	fmt.Fprintln(out, row("compiler", orDefault(cfg.Compiler, "(environment or default)")))
	fmt.Fprintln(out, row("archiver", orDefault(cfg.Archiver, "(environment or default)")))
	fmt.Fprintln(out, row("out_dir", cfg.OutDir))
	fmt.Fprintln(out, row("jobs", jobsString(cfg.Jobs)))

	lists := []struct {
		key  string
		vals []string
	}{
		{"wrappers", cfg.Wrappers},
		{"defines", cfg.Defines},
		{"includes", cfg.Includes},
		{"flags", cfg.Flags},
		{"if_supported", cfg.FlagsIfSupported},
	}
	for _, l := range lists {
		if len(l.vals) > 0 {
			fmt.Fprintln(out, row(l.key, strings.Join(l.vals, " ")))
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, row("ui.verbose", strconv.FormatBool(cfg.UI.Verbose)))
	fmt.Fprintln(out, row("ui.color", string(cfg.UI.ColorScheme)))
	return nil
}

func initConfig(app *App, rf *rootFlags, user bool) error {
	path := filepath.Join(rf.dir, config.ProjectFileName)
	if user {
		p, err := config.UserConfigPath("")
		if err != nil {
			return app.fail(nil, rf, "locate user configuration", "", err)
		}
		path = p
	}

	created, err := config.CreateDefaultConfig(path)
	if err != nil {
		return app.fail(nil, rf, "create configuration", path, err)
	}
	if !created {
		fmt.Fprintln(app.stdout, WarningStyle.Render("! ")+"Configuration already exists at "+path)
		return nil
	}
	fmt.Fprintln(app.stdout, SuccessStyle.Render("✓ ")+"Created default configuration at "+path)
	return nil
}

func showConfigPath(cmd *cobra.Command, app *App, rf *rootFlags) error {
	out := app.stdout

	if userPath, err := config.UserConfigPath(""); err == nil {
		fmt.Fprintln(out, row("user file", userPath))
	}
	fmt.Fprintln(out, row("project file", filepath.Join(rf.dir, config.ProjectFileName)))
	if rf.configPath != "" {
		fmt.Fprintln(out, row("explicit file", rf.configPath))
	}

	loaded, err := app.loadConfig(cmd.Context(), rf)
	if err != nil {
		return app.fail(nil, rf, "load configuration", rf.configPath, err)
	}
	for _, src := range loaded.Sources {
		fmt.Fprintln(out, row("loaded", SuccessStyle.Render(src)))
	}
	return nil
}

func orDefault(v, placeholder string) string {
	if v == "" {
		return SubtitleStyle.Render(placeholder)
	}
	return v
}

func jobsString(jobs int) string {
	if jobs == 0 {
		return "0 " + SubtitleStyle.Render("(one per CPU)")
	}
	return strconv.Itoa(jobs)
}

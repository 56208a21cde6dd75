// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/invowk/ccbuild/internal/issue"
	"github.com/invowk/ccbuild/pkg/cueutil"
	"github.com/invowk/ccbuild/pkg/platform"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "ccbuild"
	// ConfigFileName is the user config file name (without extension).
	ConfigFileName = "config"
	// ProjectFileName is the build description file looked up in the base directory.
	ProjectFileName = "ccbuild.cue"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
)

//go:embed config_schema.cue
var configSchema []byte

// ConfigDir returns the ccbuild configuration directory using platform
// conventions: %APPDATA% on Windows, ~/Library/Application Support on
// macOS and $XDG_CONFIG_HOME (default ~/.config) elsewhere.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// UserConfigPath returns the path of the user configuration file.
func UserConfigPath(configDirPath string) (string, error) {
	dir, err := configDirWithOverride(configDirPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// loadWithOptions builds a Config from defaults, the user file and the
// project file, in that order, or from ConfigFilePath alone when it is set.
// It returns the files that were merged.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, []string, error) {
	select {
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	var sources []string
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'ccbuild config init' to create one").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		if err := mergeFile(v, opts.ConfigFilePath); err != nil {
			return nil, nil, err
		}
		sources = append(sources, opts.ConfigFilePath)
	} else {
		userPath, err := UserConfigPath(opts.ConfigDirPath)
		if err != nil {
			return nil, nil, err
		}
		projectPath := filepath.Join(opts.BaseDir, ProjectFileName)

		for _, path := range []string{userPath, projectPath} {
			if !fileExists(path) {
				continue
			}
			if err := mergeFile(v, path); err != nil {
				return nil, nil, err
			}
			sources = append(sources, path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(strings.Join(sources, ", ")).
			WithIssue(issue.ConfigLoadFailedId).
			WithSuggestion("Targets look like x86_64-unknown-linux-gnu").
			WithSuggestion("Defines look like NAME or NAME=VALUE").
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, sources, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("target", d.Target)
	v.SetDefault("host", d.Host)
	v.SetDefault("opt_level", string(d.OptLevel))
	v.SetDefault("debug", d.Debug)
	v.SetDefault("warnings", d.Warnings)
	v.SetDefault("warnings_into_errors", d.WarningsIntoErrors)
	v.SetDefault("static", d.Static)
	v.SetDefault("shared", d.Shared)
	v.SetDefault("static_crt", d.StaticCRT)
	v.SetDefault("cpp", d.Cpp)
	v.SetDefault("cpp_stdlib", d.CppStdlib)
	v.SetDefault("compiler", d.Compiler)
	v.SetDefault("archiver", d.Archiver)
	v.SetDefault("wrappers", d.Wrappers)
	v.SetDefault("defines", d.Defines)
	v.SetDefault("includes", d.Includes)
	v.SetDefault("flags", d.Flags)
	v.SetDefault("flags_if_supported", d.FlagsIfSupported)
	v.SetDefault("out_dir", d.OutDir)
	v.SetDefault("jobs", d.Jobs)
	v.SetDefault("ui.verbose", d.UI.Verbose)
	v.SetDefault("ui.color_scheme", string(d.UI.ColorScheme))
}

func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

func mergeFile(v *viper.Viper, path string) error {
	if err := loadCUEIntoViper(v, path); err != nil {
		return issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(path).
			WithIssue(issue.ConfigLoadFailedId).
			WithSuggestion("Check that the file contains valid CUE syntax").
			WithSuggestion("Verify the values match the schema shown by 'ccbuild config dump'").
			Wrap(err).
			BuildError()
	}
	return nil
}

// loadCUEIntoViper validates path against #Config and merges it into v.
// Fields are optional, so validation is not concrete; decoding into a map
// keeps viper's defaults for anything the file leaves out.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	res, err := cueutil.DecodeFile[map[string]any](configSchema, path, "#Config", cueutil.WithConcrete(false))
	if err != nil {
		return err
	}
	if err := v.MergeConfigMap(*res.Value); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default configuration to path unless a
// file already exists there. It reports whether a file was written.
func CreateDefaultConfig(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := Save(DefaultConfig(), path); err != nil {
		return false, err
	}
	return true, nil
}

// Save writes cfg to path as CUE, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE renders cfg as a ccbuild.cue document. Empty lists and unset
// tri-state fields are omitted.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// ccbuild build description\n")
	sb.WriteString("// See https://github.com/invowk/ccbuild for documentation.\n\n")

	writeString := func(key, val string) {
		if val != "" {
			fmt.Fprintf(&sb, "%s: %q\n", key, val)
		}
	}
	writeBool := func(key string, val bool) {
		fmt.Fprintf(&sb, "%s: %v\n", key, val)
	}
	writeTri := func(key string, val *bool) {
		if val != nil {
			writeBool(key, *val)
		}
	}
	writeList := func(key string, vals []string) {
		if len(vals) == 0 {
			return
		}
		fmt.Fprintf(&sb, "%s: [\n", key)
		for _, s := range vals {
			fmt.Fprintf(&sb, "\t%q,\n", s)
		}
		sb.WriteString("]\n")
	}

	writeString("target", cfg.Target)
	writeString("host", cfg.Host)
	writeString("opt_level", string(cfg.OptLevel))
	writeBool("debug", cfg.Debug)
	writeBool("warnings", cfg.Warnings)
	writeTri("extra_warnings", cfg.ExtraWarnings)
	writeBool("warnings_into_errors", cfg.WarningsIntoErrors)
	writeTri("pic", cfg.PIC)
	writeTri("use_plt", cfg.UsePLT)
	writeBool("static", cfg.Static)
	writeBool("shared", cfg.Shared)
	writeBool("static_crt", cfg.StaticCRT)
	writeBool("cpp", cfg.Cpp)
	writeString("cpp_stdlib", cfg.CppStdlib)
	writeString("compiler", cfg.Compiler)
	writeString("archiver", cfg.Archiver)
	writeList("wrappers", cfg.Wrappers)
	writeList("defines", cfg.Defines)
	writeList("includes", cfg.Includes)
	writeList("flags", cfg.Flags)
	writeList("flags_if_supported", cfg.FlagsIfSupported)
	writeString("out_dir", cfg.OutDir)
	if cfg.Jobs > 0 {
		fmt.Fprintf(&sb, "jobs: %d\n", cfg.Jobs)
	}

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	if cfg.UI.ColorScheme != "" {
		fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	}
	sb.WriteString("}\n")

	return sb.String()
}

// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/invowk/ccbuild/pkg/triple"
)

const (
	// ColorSchemeAuto detects the terminal background.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark styles.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light styles.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidOptLevel is returned when an OptLevel value is not recognized.
	ErrInvalidOptLevel = errors.New("invalid optimization level")
	// ErrInvalidDefine is returned when a define is not NAME or NAME=VALUE.
	ErrInvalidDefine = errors.New("invalid define")
	// ErrInvalidJobs is returned for a negative job count.
	ErrInvalidJobs = errors.New("invalid job count")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")

	defineRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(=.*)?$`)
)

type (
	// OptLevel is the textual optimization level: "", 0, 1, 2, 3, s or z.
	// Defined locally so that config does not depend on the toolchain package.
	OptLevel string

	// InvalidOptLevelError wraps ErrInvalidOptLevel.
	InvalidOptLevelError struct {
		Value OptLevel
	}

	// ColorScheme selects CLI styles.
	ColorScheme string

	// InvalidColorSchemeError wraps ErrInvalidColorScheme.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidDefineError wraps ErrInvalidDefine.
	InvalidDefineError struct {
		Value string
	}

	// InvalidJobsError wraps ErrInvalidJobs.
	InvalidJobsError struct {
		Value int
	}

	// InvalidTripleError reports an unparsable target or host field.
	InvalidTripleError struct {
		Field string
		Err   error
	}

	// InvalidConfigError collects the field-level errors of a Config and
	// wraps ErrInvalidConfig.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config is the build description: ccbuild.cue merged over the user
	// configuration file and the defaults.
	Config struct {
		// Target and Host are target triples; empty means the running host.
		Target   string   `json:"target" mapstructure:"target"`
		Host     string   `json:"host" mapstructure:"host"`
		OptLevel OptLevel `json:"opt_level" mapstructure:"opt_level"`
		Debug    bool     `json:"debug" mapstructure:"debug"`
		Warnings bool     `json:"warnings" mapstructure:"warnings"`
		// ExtraWarnings, PIC and UsePLT are nil when unset so that target
		// defaults apply.
		ExtraWarnings      *bool  `json:"extra_warnings,omitempty" mapstructure:"extra_warnings"`
		WarningsIntoErrors bool   `json:"warnings_into_errors" mapstructure:"warnings_into_errors"`
		PIC                *bool  `json:"pic,omitempty" mapstructure:"pic"`
		UsePLT             *bool  `json:"use_plt,omitempty" mapstructure:"use_plt"`
		Static             bool   `json:"static" mapstructure:"static"`
		Shared             bool   `json:"shared" mapstructure:"shared"`
		StaticCRT          bool   `json:"static_crt" mapstructure:"static_crt"`
		Cpp                bool   `json:"cpp" mapstructure:"cpp"`
		CppStdlib          string `json:"cpp_stdlib" mapstructure:"cpp_stdlib"`
		// Compiler and Archiver take precedence over CC/CXX/AR when set.
		Compiler string `json:"compiler" mapstructure:"compiler"`
		Archiver string `json:"archiver" mapstructure:"archiver"`
		// Wrappers adds names to the default compiler wrapper list.
		Wrappers         []string `json:"wrappers" mapstructure:"wrappers"`
		Defines          []string `json:"defines" mapstructure:"defines"`
		Includes         []string `json:"includes" mapstructure:"includes"`
		Flags            []string `json:"flags" mapstructure:"flags"`
		FlagsIfSupported []string `json:"flags_if_supported" mapstructure:"flags_if_supported"`
		OutDir           string   `json:"out_dir" mapstructure:"out_dir"`
		// Jobs bounds concurrent compilations; 0 means one per CPU.
		Jobs int      `json:"jobs" mapstructure:"jobs"`
		UI   UIConfig `json:"ui" mapstructure:"ui"`
	}

	// UIConfig configures CLI output.
	UIConfig struct {
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
	}
)

// IsValid checks the constraints the CUE schema cannot express and
// re-checks the enumerations for configs built in code.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if c.Target != "" {
		if _, err := triple.Parse(c.Target); err != nil {
			errs = append(errs, &InvalidTripleError{Field: "target", Err: err})
		}
	}
	if c.Host != "" {
		if _, err := triple.Parse(c.Host); err != nil {
			errs = append(errs, &InvalidTripleError{Field: "host", Err: err})
		}
	}
	if valid, fieldErrs := c.OptLevel.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	for _, d := range c.Defines {
		if !defineRe.MatchString(d) {
			errs = append(errs, &InvalidDefineError{Value: d})
		}
	}
	if c.Jobs < 0 {
		errs = append(errs, &InvalidJobsError{Value: c.Jobs})
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns the sentinel followed by every field error.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

func (e *InvalidTripleError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *InvalidTripleError) Unwrap() error { return e.Err }

func (e *InvalidDefineError) Error() string {
	return fmt.Sprintf("invalid define %q (want NAME or NAME=VALUE)", e.Value)
}

func (e *InvalidDefineError) Unwrap() error { return ErrInvalidDefine }

func (e *InvalidJobsError) Error() string {
	return fmt.Sprintf("invalid job count %d (must not be negative)", e.Value)
}

func (e *InvalidJobsError) Unwrap() error { return ErrInvalidJobs }

func (l OptLevel) String() string { return string(l) }

// IsValid accepts the empty level, which leaves the compiler default.
func (l OptLevel) IsValid() (bool, []error) {
	switch l {
	case "", "0", "1", "2", "3", "s", "z":
		return true, nil
	default:
		return false, []error{&InvalidOptLevelError{Value: l}}
	}
}

func (e *InvalidOptLevelError) Error() string {
	return fmt.Sprintf("invalid optimization level %q (valid: 0, 1, 2, 3, s, z)", e.Value)
}

func (e *InvalidOptLevelError) Unwrap() error { return ErrInvalidOptLevel }

func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined schemes.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// DefaultConfig returns the configuration used when no file sets a field.
func DefaultConfig() *Config {
	return &Config{
		OptLevel: "",
		Warnings: true,
		OutDir:   "build",
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// SPDX-License-Identifier: MPL-2.0

// Package triple implements parsing of target triples such as
// "x86_64-unknown-linux-gnu" or "i686-pc-windows-msvc".
package triple

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrInvalidTriple is the sentinel error wrapped by every Parse failure.
var ErrInvalidTriple = errors.New("invalid target triple")

// Triple identifies the architecture, vendor, operating system and
// environment (ABI) code is produced for.
// The zero value is not a valid Triple; use Parse or Host.
type Triple struct {
	Arch   string
	Vendor string
	OS     string
	Env    string

	raw string
}

// knownOS lists operating system components. It is used to tell the
// "arch-os-env" form (aarch64-linux-android) from the "arch-vendor-os" form
// (x86_64-apple-darwin) when a triple has three components.
var knownOS = map[string]bool{
	"linux": true, "windows": true, "darwin": true, "macos": true, "ios": true,
	"tvos": true, "watchos": true, "freebsd": true, "netbsd": true, "openbsd": true,
	"dragonfly": true, "android": true, "none": true, "wasi": true, "emscripten": true,
	"solaris": true, "illumos": true, "haiku": true, "fuchsia": true, "redox": true,
	"hermit": true, "uefi": true, "cuda": true, "nto": true, "aix": true,
}

// Parse parses a hyphen-separated target triple. Components beyond the
// fourth are folded into Env. Parse keeps the original string so that
// String returns it verbatim for use in --target flags.
func Parse(s string) (Triple, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Triple{}, fmt.Errorf("%w: empty string", ErrInvalidTriple)
	}

	parts := strings.Split(s, "-")
	for _, p := range parts {
		if p == "" {
			return Triple{}, fmt.Errorf("%w %q: empty component", ErrInvalidTriple, s)
		}
	}

	t := Triple{Arch: parts[0], raw: s}
	switch len(parts) {
	case 1:
		return Triple{}, fmt.Errorf("%w %q: not enough hyphen-separated components", ErrInvalidTriple, s)
	case 2:
		t.OS = parts[1]
	case 3:
		if isKnownOS(parts[1]) {
			t.OS, t.Env = parts[1], parts[2]
		} else {
			t.Vendor, t.OS = parts[1], parts[2]
		}
	default:
		t.Vendor, t.OS = parts[1], parts[2]
		t.Env = strings.Join(parts[3:], "-")
	}
	return t, nil
}

// MustParse is like Parse but panics on error. It is intended for constant
// triples in tests and defaults.
func MustParse(s string) Triple {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Host returns the triple of the current process's execution environment.
func Host() Triple {
	arch := runtime.GOARCH
	switch runtime.GOARCH {
	case "386":
		arch = "i686"
	case "amd64":
		arch = "x86_64"
	case "arm64":
		arch = "aarch64"
	case "arm":
		arch = "armv7"
	case "ppc64le":
		arch = "powerpc64le"
	case "ppc64":
		arch = "powerpc64"
	}

	var s string
	switch runtime.GOOS {
	case "linux":
		s = arch + "-unknown-linux-gnu"
	case "android":
		s = arch + "-linux-android"
	case "darwin":
		s = arch + "-apple-darwin"
	case "ios":
		s = arch + "-apple-ios"
	case "windows":
		s = arch + "-pc-windows-msvc"
	default:
		s = arch + "-unknown-" + runtime.GOOS
	}
	return MustParse(s)
}

// String returns the triple as it was parsed.
func (t Triple) String() string {
	if t.raw != "" {
		return t.raw
	}
	parts := []string{t.Arch}
	if t.Vendor != "" {
		parts = append(parts, t.Vendor)
	}
	parts = append(parts, t.OS)
	if t.Env != "" {
		parts = append(parts, t.Env)
	}
	return strings.Join(parts, "-")
}

// IsZero reports whether t is the zero Triple.
func (t Triple) IsZero() bool {
	return t.Arch == "" && t.OS == ""
}

// Equal reports whether t and u name the same target.
func (t Triple) Equal(u Triple) bool {
	return t.String() == u.String()
}

// IsWindows reports whether t targets Windows.
func (t Triple) IsWindows() bool {
	return t.OS == "windows"
}

// IsMSVC reports whether t targets the Microsoft C runtime ABI.
func (t Triple) IsMSVC() bool {
	return t.IsWindows() && strings.HasPrefix(t.Env, "msvc")
}

// IsApple reports whether t targets an Apple platform.
func (t Triple) IsApple() bool {
	if t.Vendor == "apple" {
		return true
	}
	switch trimVersion(t.OS) {
	case "darwin", "macos", "ios", "tvos", "watchos":
		return true
	}
	return false
}

// IsWasm reports whether t targets WebAssembly.
func (t Triple) IsWasm() bool {
	return strings.HasPrefix(t.Arch, "wasm")
}

// IsBareMetal reports whether t has no operating system.
func (t Triple) IsBareMetal() bool {
	return t.OS == "none"
}

// IsELF reports whether t produces ELF objects.
func (t Triple) IsELF() bool {
	return !t.IsWindows() && !t.IsApple() && !t.IsWasm()
}

// IsX86 reports whether t uses a 32 or 64-bit Intel instruction set.
func (t Triple) IsX86() bool {
	return t.Arch == "x86_64" || isI386Family(t.Arch)
}

// PointerWidth returns the pointer width in bits, or 0 if the architecture
// is not recognized.
func (t Triple) PointerWidth() int {
	a := t.Arch
	switch {
	case a == "x86_64", a == "aarch64", a == "arm64", a == "aarch64_be", a == "s390x",
		a == "sparc64", a == "sparcv9", a == "loongarch64", a == "wasm64", a == "nvptx64",
		strings.HasPrefix(a, "powerpc64"), strings.HasPrefix(a, "riscv64"),
		strings.HasPrefix(a, "mips64"):
		return 64
	case isI386Family(a), a == "wasm32", a == "powerpc", a == "sparc", a == "mips",
		a == "mipsel", a == "m68k", a == "hexagon",
		strings.HasPrefix(a, "arm"), strings.HasPrefix(a, "thumb"),
		strings.HasPrefix(a, "riscv32"):
		return 32
	}
	return 0
}

// DefaultPIC reports whether position-independent code is the default
// for t. Windows and bare-metal targets default to non-PIC code.
func (t Triple) DefaultPIC() bool {
	return !t.IsWindows() && !t.IsBareMetal()
}

func isI386Family(arch string) bool {
	switch arch {
	case "i386", "i486", "i586", "i686":
		return true
	}
	return false
}

func isKnownOS(s string) bool {
	return knownOS[trimVersion(s)]
}

// trimVersion strips a trailing OS version such as "darwin19.6" -> "darwin".
func trimVersion(s string) string {
	return strings.TrimRight(s, "0123456789.")
}

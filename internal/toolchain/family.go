// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"fmt"
	"strings"
)

// Family is the flag dialect of a compiler.
type Family int

const (
	// Gnu is GCC and compatible drivers.
	Gnu Family = iota
	// Clang is the LLVM driver with GNU spellings.
	Clang
	// Msvc is cl.exe and drivers that accept its spellings, such as clang-cl.
	Msvc
)

// Language selects the source language a tool compiles.
type Language int

const (
	// C is the C language.
	C Language = iota
	// Cpp is the C++ language.
	Cpp
)

// flagTable holds the spellings one family uses. Empty strings mean the
// family has no such switch.
type flagTable struct {
	optPrefix      string
	debug          string
	sections       []string
	warnAll        string
	warnExtra      string
	warnError      string
	include        string
	define         string
	compileOnly    string
	outputObj      string
	outputJoined   bool
	objExt         string
	pic            string
	noPLT          string
	nologo         string
	dynamicCRT     string
	staticCRT      string
	stdlibPrefix   string
	staticLink     string
	sharedLink     string
	rejectKeywords []string
}

var (
	gnuRejectKeywords = []string{
		"unrecognized command line option",
		"unrecognized command-line option",
		"unknown warning option",
		"unknown argument",
		"argument unused during compilation",
		"optimization flag",
		"is valid for",
		"is not supported",
	}

	gnuFlags = flagTable{
		optPrefix:      "-O",
		debug:          "-g",
		sections:       []string{"-ffunction-sections", "-fdata-sections"},
		warnAll:        "-Wall",
		warnExtra:      "-Wextra",
		warnError:      "-Werror",
		include:        "-I",
		define:         "-D",
		compileOnly:    "-c",
		outputObj:      "-o",
		objExt:         ".o",
		pic:            "-fPIC",
		noPLT:          "-fno-plt",
		stdlibPrefix:   "-stdlib=lib",
		staticLink:     "-static",
		sharedLink:     "-shared",
		rejectKeywords: gnuRejectKeywords,
	}

	msvcFlags = flagTable{
		optPrefix:    "/O",
		debug:        "/Z7",
		warnAll:      "/W4",
		warnError:    "/WX",
		include:      "/I",
		define:       "/D",
		compileOnly:  "/c",
		outputObj:    "/Fo",
		outputJoined: true,
		objExt:       ".obj",
		nologo:       "/nologo",
		dynamicCRT:   "/MD",
		staticCRT:    "/MT",
		rejectKeywords: []string{
			"D9002",
			"unknown option",
		},
	}
)

// flags returns the spelling table of f.
func (f Family) flags() *flagTable {
	switch f {
	case Msvc:
		return &msvcFlags
	case Gnu, Clang:
		return &gnuFlags
	default:
		panic(fmt.Sprintf("toolchain: unknown family %d", int(f)))
	}
}

// String returns the lower-case family name used in configuration and output.
func (f Family) String() string {
	switch f {
	case Gnu:
		return "gnu"
	case Clang:
		return "clang"
	case Msvc:
		return "msvc"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// IsGnuLike reports whether f uses '-' prefixed GNU spellings.
func (f Family) IsGnuLike() bool {
	return f == Gnu || f == Clang
}

// ObjectExt returns the object file extension f produces.
func (f Family) ObjectExt() string {
	return f.flags().objExt
}

// RejectKeywords returns the diagnostic fragments that mark a flag as
// rejected by a compiler of family f.
func (f Family) RejectKeywords() []string {
	return append([]string(nil), f.flags().rejectKeywords...)
}

// ParseFamily parses a family name as printed by Family.String.
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gnu", "gcc":
		return Gnu, nil
	case "clang":
		return Clang, nil
	case "msvc", "cl":
		return Msvc, nil
	default:
		return 0, fmt.Errorf("unknown tool family %q", s)
	}
}

// String returns "c" or "c++".
func (l Language) String() string {
	if l == Cpp {
		return "c++"
	}
	return "c"
}

// SourceExt returns the extension of a probe source file in language l.
func (l Language) SourceExt() string {
	if l == Cpp {
		return ".cpp"
	}
	return ".c"
}

// LanguageOf returns Cpp when cpp is set, C otherwise.
func LanguageOf(cpp bool) Language {
	if cpp {
		return Cpp
	}
	return C
}

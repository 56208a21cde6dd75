// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"slices"
	"testing"

	"github.com/invowk/ccbuild/pkg/triple"
)

func mapEnv(m map[string]string) func(string) string {
	return func(name string) string { return m[name] }
}

func TestEnvCandidates(t *testing.T) {
	t.Parallel()

	cross := NewEnv(mapEnv(nil), aarch64, linuxX64)
	want := []string{"CC_aarch64-unknown-linux-gnu", "CC_aarch64_unknown_linux_gnu", "TARGET_CC", "CC"}
	if got := cross.Candidates("CC"); !slices.Equal(got, want) {
		t.Errorf("Candidates() = %q, want %q", got, want)
	}

	host := NewEnv(mapEnv(nil), linuxX64, linuxX64)
	if got := host.Candidates("AR")[2]; got != "HOST_AR" {
		t.Errorf("native third candidate = %q, want HOST_AR", got)
	}
}

func TestEnvGetPrecedence(t *testing.T) {
	t.Parallel()

	vars := map[string]string{
		"CC":                           "cc",
		"TARGET_CC":                    "target-cc",
		"CC_aarch64_unknown_linux_gnu": "underscored-cc",
	}
	e := NewEnv(mapEnv(vars), aarch64, linuxX64)

	got, ok := e.CompilerOverride(C)
	if !ok || got.Value != "underscored-cc" || got.Name != "CC_aarch64_unknown_linux_gnu" {
		t.Errorf("CompilerOverride() = %+v, %v", got, ok)
	}

	vars["CC_aarch64-unknown-linux-gnu"] = "exact-cc"
	if got, _ := e.CompilerOverride(C); got.Value != "exact-cc" {
		t.Errorf("CompilerOverride() = %+v, want the exact target variable", got)
	}

	if _, ok := e.CompilerOverride(Cpp); ok {
		t.Error("CompilerOverride(Cpp) found a value with no CXX set")
	}

	native := NewEnv(mapEnv(map[string]string{"HOST_CC": "host-cc", "TARGET_CC": "target-cc"}), linuxX64, linuxX64)
	if got, _ := native.CompilerOverride(C); got.Value != "host-cc" {
		t.Errorf("native CompilerOverride() = %+v, want HOST_CC", got)
	}
}

func TestEnvRawFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		vars     map[string]string
		lang     Language
		want     []string
		override bool
	}{
		{"unset", nil, C, nil, false},
		{"empty", map[string]string{"CFLAGS": ""}, C, nil, false},
		{"cflags", map[string]string{"CFLAGS": `-O1 '-DMSG=hello world' -pipe`}, C, []string{"-O1", "-DMSG=hello world", "-pipe"}, true},
		{"cxxflags suppress c", map[string]string{"CXXFLAGS": "-Wflag-does-not-exist"}, C, nil, true},
		{"cxxflags for cpp", map[string]string{"CXXFLAGS": "-fno-rtti"}, Cpp, []string{"-fno-rtti"}, true},
		{"target specific", map[string]string{"CFLAGS_x86_64_unknown_linux_gnu": "-march=native"}, C, []string{"-march=native"}, true},
		{"expansion", map[string]string{"CFLAGS": "-I$SDK/include", "SDK": "/opt/sdk"}, C, []string{"-I/opt/sdk/include"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := NewEnv(mapEnv(tt.vars), linuxX64, linuxX64)
			got, override, err := e.RawFlags(tt.lang)
			if err != nil {
				t.Fatalf("RawFlags() error: %v", err)
			}
			if !slices.Equal(got, tt.want) || override != tt.override {
				t.Errorf("RawFlags() = %q, %v; want %q, %v", got, override, tt.want, tt.override)
			}
		})
	}
}

func TestEnvRawFlagsParseError(t *testing.T) {
	t.Parallel()

	e := NewEnv(mapEnv(map[string]string{"CFLAGS": `-DX='unterminated`}), linuxX64, linuxX64)
	if _, _, err := e.RawFlags(C); err == nil {
		t.Error("RawFlags() accepted an unterminated quote")
	}
}

func TestEnvApplyTo(t *testing.T) {
	t.Parallel()

	e := NewEnv(mapEnv(map[string]string{"CFLAGS": "-g3"}), linuxX64, linuxX64)
	opts := native(linuxX64)
	opts.Warnings = true
	if err := e.ApplyTo(&opts); err != nil {
		t.Fatalf("ApplyTo() error: %v", err)
	}
	args := compile(Gnu, opts)
	mustHave(t, args, "-g3")
	mustNotHave(t, args, "-Wall", "-Wextra")
}

func TestDefaultCompiler(t *testing.T) {
	t.Parallel()

	windowsHost := triple.MustParse("x86_64-pc-windows-msvc")
	tests := []struct {
		name   string
		target triple.Triple
		host   triple.Triple
		lang   Language
		want   string
	}{
		{"native linux", linuxX64, linuxX64, C, "cc"},
		{"native linux c++", linuxX64, linuxX64, Cpp, "c++"},
		{"msvc", windowsMsvc, windowsMsvc, Cpp, "cl.exe"},
		{"mingw native", windowsGnu, windowsGnu, C, "gcc"},
		{"apple", darwinX64, darwinX64, Cpp, "clang++"},
		{"cross", aarch64, linuxX64, C, "aarch64-unknown-linux-gnu-gcc"},
		{"emscripten", emscripten, linuxX64, Cpp, "em++"},
		{"emscripten on windows", emscripten, windowsHost, C, "emcc.bat"},
		{"wasi", triple.MustParse("wasm32-wasi"), linuxX64, C, "clang"},
		{"bare metal arm", triple.MustParse("thumbv7em-none-eabihf"), linuxX64, C, "arm-none-eabi-gcc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := DefaultCompiler(tt.target, tt.host, tt.lang); got != tt.want {
				t.Errorf("DefaultCompiler() = %q, want %q", got, tt.want)
			}
		})
	}
}

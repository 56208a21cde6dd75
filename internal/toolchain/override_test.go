// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/invowk/ccbuild/internal/resolve"
)

func newTestParser(opts ...OverrideOption) (*OverrideParser, *stubResolver) {
	r := newStubResolver(map[string]string{
		"cc":               "/usr/bin/cc",
		"gcc":              "/usr/bin/gcc",
		"test":             "/work/test",
		"ccache":           "/usr/bin/ccache",
		"distcc":           "/usr/bin/distcc",
		"/opt/bin/ccache":  "/opt/bin/ccache",
		"mywrap":           "/usr/local/bin/mywrap",
		"/usr/bin/clang++": "/usr/lib/llvm/bin/clang++",
	})
	return NewOverrideParser(r, opts...), r
}

func TestParseIrregularWhitespace(t *testing.T) {
	t.Parallel()

	p, _ := newTestParser()
	want, err := p.Parse(context.Background(), "ccache cc", resolve.Request{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	for _, raw := range []string{"ccache        cc", "  ccache\tcc\n", "ccache \t  cc"} {
		got, err := p.Parse(context.Background(), raw, resolve.Request{})
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", raw, err)
		}
		if got.WrapperToken != want.WrapperToken || got.CompilerToken != want.CompilerToken ||
			!slices.Equal(got.ExtraFlags, want.ExtraFlags) || got.Compiler.Path != want.Compiler.Path ||
			got.Wrapper.Path != want.Wrapper.Path {
			t.Errorf("Parse(%q) = %+v, want %+v", raw, got, want)
		}
	}
}

func TestParseCompilerWithFlags(t *testing.T) {
	t.Parallel()

	p, _ := newTestParser()
	got, err := p.Parse(context.Background(), "gcc -m32 -O3", resolve.Request{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got.HasWrapper() {
		t.Errorf("unexpected wrapper %q", got.WrapperToken)
	}
	if got.CompilerToken != "gcc" || got.Compiler.Path != "/usr/bin/gcc" {
		t.Errorf("compiler = %q (%s), want gcc", got.CompilerToken, got.Compiler.Path)
	}
	if want := []string{"-m32", "-O3"}; !slices.Equal(got.ExtraFlags, want) {
		t.Errorf("ExtraFlags = %q, want %q", got.ExtraFlags, want)
	}
	if got.CCEnv() != "" {
		t.Errorf("CCEnv() = %q, want empty without wrapper", got.CCEnv())
	}
}

func TestParseWrapperCompilerFlags(t *testing.T) {
	t.Parallel()

	p, _ := newTestParser()
	got, err := p.Parse(context.Background(), "ccache cc -m32", resolve.Request{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got.WrapperToken != "ccache" || got.Wrapper.Path != "/usr/bin/ccache" {
		t.Errorf("wrapper = %q (%s), want ccache", got.WrapperToken, got.Wrapper.Path)
	}
	if got.CompilerToken != "cc" || got.Compiler.Path != "/usr/bin/cc" {
		t.Errorf("compiler = %q (%s), want cc", got.CompilerToken, got.Compiler.Path)
	}
	if !slices.Equal(got.ExtraFlags, []string{"-m32"}) {
		t.Errorf("ExtraFlags = %q, want [-m32]", got.ExtraFlags)
	}
	if got.CCEnv() != "ccache /usr/bin/cc -m32" {
		t.Errorf("CCEnv() = %q", got.CCEnv())
	}
}

func TestParseWrapperByPath(t *testing.T) {
	t.Parallel()

	p, _ := newTestParser()
	got, err := p.Parse(context.Background(), "/opt/bin/ccache cc -m32", resolve.Request{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if want := "/opt/bin/ccache /usr/bin/cc -m32"; got.CCEnv() != want {
		t.Errorf("CCEnv() = %q, want %q", got.CCEnv(), want)
	}
}

func TestParseWrapperWithUnresolvableCompiler(t *testing.T) {
	t.Parallel()

	p, _ := newTestParser()
	got, err := p.Parse(context.Background(), "ccache lol-this-is-not-a-compiler", resolve.Request{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got.HasWrapper() {
		t.Errorf("unexpected wrapper %q", got.WrapperToken)
	}
	if got.Compiler.Path != "/usr/bin/ccache" {
		t.Errorf("compiler = %s, want ccache itself", got.Compiler.Path)
	}
	if !slices.Equal(got.ExtraFlags, []string{"lol-this-is-not-a-compiler"}) {
		t.Errorf("ExtraFlags = %q", got.ExtraFlags)
	}
	if got.CCEnv() != "" {
		t.Errorf("CCEnv() = %q, want empty", got.CCEnv())
	}
}

func TestParseSingleToken(t *testing.T) {
	t.Parallel()

	p, r := newTestParser()
	got, err := p.Parse(context.Background(), " test ", resolve.Request{Note: "CC", SearchPath: []string{"/work"}})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got.Compiler.Path != "/work/test" || got.HasWrapper() || got.ExtraFlags != nil {
		t.Errorf("Parse() = %+v, want bare compiler", got)
	}
	if got.Compiler.Note != "CC" {
		t.Errorf("Note = %q, want the base request note", got.Compiler.Note)
	}

	// A lone wrapper name is a compiler, never a wrapper.
	got, err = p.Parse(context.Background(), "ccache", resolve.Request{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got.HasWrapper() || got.Compiler.Path != "/usr/bin/ccache" {
		t.Errorf("Parse(ccache) = %+v", got)
	}
	if !slices.Equal(r.calls, []string{"test", "ccache"}) {
		t.Errorf("resolved %q", r.calls)
	}
}

func TestParseFailure(t *testing.T) {
	t.Parallel()

	p, _ := newTestParser()

	tests := []struct {
		name   string
		raw    string
		causes int
	}{
		{"empty", "   ", 1},
		{"unknown compiler", "nope -O2", 1},
		{"unknown wrapper binary", "sccache nope", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := p.Parse(context.Background(), tt.raw, resolve.Request{})
			if !errors.Is(err, ErrOverrideParseFailed) {
				t.Fatalf("Parse(%q) error = %v, want ErrOverrideParseFailed", tt.raw, err)
			}
			var pe *OverrideParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %T is not *OverrideParseError", err)
			}
			if len(pe.Causes) != tt.causes {
				t.Errorf("causes = %v, want %d", pe.Causes, tt.causes)
			}
			if tt.name != "empty" && !errors.Is(err, resolve.ErrToolNotFound) {
				t.Errorf("errors.Is(err, resolve.ErrToolNotFound) = false for %v", err)
			}
		})
	}
}

func TestParseCustomWrapper(t *testing.T) {
	t.Parallel()

	p, _ := newTestParser(WithWrappers("MyWrap"))
	if !p.IsWrapper("/usr/local/bin/mywrap.exe") {
		t.Error("IsWrapper(mywrap.exe) = false")
	}
	got, err := p.Parse(context.Background(), "mywrap /usr/bin/clang++ -std=c++17", resolve.Request{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got.Wrapper.Path != "/usr/local/bin/mywrap" || got.Compiler.Path != "/usr/lib/llvm/bin/clang++" {
		t.Errorf("Parse() = %+v", got)
	}
}

func TestIsWrapper(t *testing.T) {
	t.Parallel()

	p, _ := newTestParser()
	tests := map[string]bool{
		"ccache":                     true,
		"sccache":                    true,
		`C:\tools\sccache.exe`:       true,
		"/usr/lib/distcc/bin/distcc": true,
		"icecc":                      true,
		"cachepot":                   true,
		"buildcache":                 true,
		"cc":                         false,
		"ccache-swig":                false,
	}
	for token, want := range tests {
		if got := p.IsWrapper(token); got != want {
			t.Errorf("IsWrapper(%q) = %v, want %v", token, got, want)
		}
	}
}

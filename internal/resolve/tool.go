// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"strings"

	"github.com/invowk/ccbuild/internal/process"
	"github.com/invowk/ccbuild/pkg/platform"
)

// Tool is an executable that was located, canonicalized and spawned once.
// Tools are only produced by Resolver.Resolve.
type Tool struct {
	// Requested is the identifier as the caller wrote it.
	Requested string
	// Note says where Requested came from. Diagnostics only.
	Note string
	// Path is the canonical absolute path of the program to start.
	Path string
	// LeadingArgs precede every argument list, e.g. "/c script.bat" when
	// Path is cmd.exe.
	LeadingArgs []string
	// Env is applied on top of the inherited environment when the tool runs.
	Env map[string]string
}

// Identity returns the key two tools share only when they start the same
// program with the same leading arguments.
func (t Tool) Identity() string {
	if len(t.LeadingArgs) == 0 {
		return t.Path
	}
	return t.Path + "\x00" + strings.Join(t.LeadingArgs, "\x00")
}

// Program returns the path of the executable the tool stands for: the script
// for interpreter-run tools, Path otherwise.
func (t Tool) Program() string {
	if n := len(t.LeadingArgs); n > 0 {
		return t.LeadingArgs[n-1]
	}
	return t.Path
}

// Stem returns the file name of Program without its extension.
func (t Tool) Stem() string {
	return platform.FileStem(t.Program())
}

// Spec builds a process.Spec running the tool with args after its leading
// arguments.
func (t Tool) Spec(args ...string) process.Spec {
	all := make([]string, 0, len(t.LeadingArgs)+len(args))
	all = append(all, t.LeadingArgs...)
	all = append(all, args...)
	return process.Spec{Path: t.Path, Args: all, Env: t.Env}
}

// IsZero reports whether t was never resolved.
func (t Tool) IsZero() bool {
	return t.Path == ""
}

// String returns the command line prefix of the tool.
func (t Tool) String() string {
	return t.Spec().CommandLine()
}

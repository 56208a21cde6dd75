// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ToolNotFoundId Id = iota + 1
	ClassificationFailedId
	OverrideParseFailedId
	ProbeInfrastructureFailedId
	ConfigLoadFailedId
	InvalidTargetId
	CompileFailedId
	ArchiveFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty
	extLinks []HttpLink
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("\n- <" + string(link) + ">")
		}
		for _, link := range i.extLinks {
			md.WriteString("\n- <" + string(link) + ">")
		}
	}
	return render(md.String(), stylePath)
}

const docsBase = "https://github.com/invowk/ccbuild/blob/main/README.md"

var (
	render = glamour.Render

	toolNotFoundIssue = &Issue{
		id: ToolNotFoundId,
		mdMsg: `
# Compiler or archiver not found!

No executable with the requested name could be located and started.

## Search order
1. An absolute path, or a path relative to the working directory, is used as-is
2. Otherwise each directory of the search path is tried in order
3. The search path comes from the request, then the tool environment, then PATH

## Things you can try
- Install the toolchain for your target, e.g. ` + "`gcc`" + `, ` + "`clang`" + ` or the MSVC build tools
- Point ` + "`CC`" + ` or ` + "`CXX`" + ` at the compiler you want:
~~~
$ CC=/usr/bin/clang ccbuild compile foo.c
~~~
- Set ` + "`compiler`" + ` in ` + "`ccbuild.cue`" + `
- Inspect what would be picked:
~~~
$ ccbuild detect
~~~`,
		docLinks: []HttpLink{docsBase + "#compiler-selection"},
	}

	classificationFailedIssue = &Issue{
		id: ClassificationFailedId,
		mdMsg: `
# Could not tell which compiler family this is!

The compiler was started on a small preprocessor probe, but its output did
not reveal whether it behaves like GCC, Clang or MSVC.

## Things you can try
- Make sure the tool is a C or C++ compiler and not a wrapper script that swallows output
- Run the probe by hand and look at the output:
~~~
$ ccbuild detect --verbose
~~~`,
		docLinks: []HttpLink{docsBase + "#tool-families"},
	}

	overrideParseFailedIssue = &Issue{
		id: OverrideParseFailedId,
		mdMsg: `
# The compiler override could not be used!

The value of ` + "`CC`" + ` or ` + "`CXX`" + ` was split on whitespace, but neither a
compiler wrapper followed by a compiler nor a plain compiler could be found.

## Accepted forms
~~~
CC=gcc
CC="ccache gcc -m32"
CC="/opt/cross/bin/arm-linux-gnueabihf-gcc -march=armv7-a"
~~~

## Things you can try
- Check for typos in the compiler name
- Use an absolute path when the compiler is not on PATH`,
		docLinks: []HttpLink{docsBase + "#environment-overrides"},
	}

	probeInfrastructureFailedIssue = &Issue{
		id: ProbeInfrastructureFailedId,
		mdMsg: `
# A flag probe could not run!

Checking whether the compiler accepts a flag needs a scratch directory and a
working compiler process. One of those was not available.

## Things you can try
- Check that the scratch directory is writable:
~~~
$ ccbuild probe --scratch-dir /tmp -- -Wall
~~~
- Check that the compiler can be started at all with ` + "`ccbuild detect`",
		docLinks: []HttpLink{docsBase + "#flag-probing"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load the build description!

` + "`ccbuild.cue`" + ` or the user configuration file is not valid CUE, or a value
does not match the schema.

## Things you can try
- Print the effective configuration:
~~~
$ ccbuild config show
~~~
- Compare with a freshly generated file:
~~~
$ ccbuild config init --stdout
~~~`,
		docLinks: []HttpLink{docsBase + "#configuration"},
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	invalidTargetIssue = &Issue{
		id: InvalidTargetId,
		mdMsg: `
# Invalid target triple!

Targets are written as ` + "`arch-vendor-os[-env]`" + `, for example
` + "`x86_64-unknown-linux-gnu`" + ` or ` + "`x86_64-pc-windows-msvc`" + `.

## Things you can try
- Set ` + "`target`" + ` in ` + "`ccbuild.cue`" + ` or pass ` + "`--target`" + `
- Leave it empty to build for the host`,
		docLinks: []HttpLink{docsBase + "#targets"},
	}

	compileFailedIssue = &Issue{
		id: CompileFailedId,
		mdMsg: `
# Compilation failed!

The compiler exited with a non-zero status. Its diagnostics are shown above.

## Things you can try
- Re-run with ` + "`--verbose`" + ` to see the full command line
- Check that ` + "`CFLAGS`" + ` and ` + "`CXXFLAGS`" + ` do not contain flags for another compiler`,
		docLinks: []HttpLink{docsBase + "#compiling"},
	}

	archiveFailedIssue = &Issue{
		id: ArchiveFailedId,
		mdMsg: `
# Creating the static library failed!

## Things you can try
- Point ` + "`AR`" + ` at a working archiver
- Set ` + "`archiver`" + ` in ` + "`ccbuild.cue`",
		docLinks: []HttpLink{docsBase + "#archiving"},
	}

	issues = map[Id]*Issue{
		toolNotFoundIssue.Id():              toolNotFoundIssue,
		classificationFailedIssue.Id():      classificationFailedIssue,
		overrideParseFailedIssue.Id():       overrideParseFailedIssue,
		probeInfrastructureFailedIssue.Id(): probeInfrastructureFailedIssue,
		configLoadFailedIssue.Id():          configLoadFailedIssue,
		invalidTargetIssue.Id():             invalidTargetIssue,
		compileFailedIssue.Id():             compileFailedIssue,
		archiveFailedIssue.Id():             archiveFailedIssue,
	}
)

// Values returns every known issue ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}

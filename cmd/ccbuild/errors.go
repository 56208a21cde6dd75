// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/invowk/ccbuild/internal/build"
	"github.com/invowk/ccbuild/internal/config"
	"github.com/invowk/ccbuild/internal/issue"
	"github.com/invowk/ccbuild/internal/process"
	"github.com/invowk/ccbuild/internal/resolve"
	"github.com/invowk/ccbuild/internal/toolchain"
	"github.com/invowk/ccbuild/pkg/triple"
)

// issueMapping links error sentinels to catalog entries, most specific
// first. Every compiler selection goes through override parsing, so an
// override error wins over the missing tools among its causes.
var issueMapping = []struct {
	target      error
	id          issue.Id
	suggestions []string
}{
	{toolchain.ErrOverrideParseFailed, issue.OverrideParseFailedId, []string{
		"Check CC, CXX and the compiler setting for typos",
		"Install the compiler for the target or add it to PATH",
		"Wrapper names (ccache, sccache, distcc) must be followed by a compiler",
	}},
	{resolve.ErrToolNotFound, issue.ToolNotFoundId, []string{
		"Install the toolchain for the target or add it to PATH",
		"Point CC, CXX or AR at the tool explicitly",
	}},
	{toolchain.ErrClassificationFailed, issue.ClassificationFailedId, []string{
		"Make sure the selected program is a C or C++ compiler",
		"Run with --verbose to see the detection output",
	}},
	{toolchain.ErrProbeInfrastructureFailed, issue.ProbeInfrastructureFailedId, []string{
		"Check that the scratch directory is writable (--scratch-dir)",
	}},
	{triple.ErrInvalidTriple, issue.InvalidTargetId, []string{
		"Targets look like x86_64-unknown-linux-gnu or aarch64-apple-darwin",
	}},
	{build.ErrCompileFailed, issue.CompileFailedId, nil},
	{build.ErrArchiveFailed, issue.ArchiveFailedId, nil},
	{config.ErrInvalidOptLevel, issue.ConfigLoadFailedId, []string{
		"Optimization levels are 0, 1, 2, 3, s and z",
	}},
	{config.ErrInvalidDefine, issue.ConfigLoadFailedId, []string{
		"Defines look like NAME or NAME=VALUE",
	}},
	{config.ErrInvalidJobs, issue.ConfigLoadFailedId, []string{
		"Use 0 for one job per CPU",
	}},
	{config.ErrInvalidConfig, issue.ConfigLoadFailedId, nil},
}

// issueFor returns the catalog entry matching err and its suggestions.
func issueFor(err error) (issue.Id, []string) {
	for _, m := range issueMapping {
		if errors.Is(err, m.target) {
			return m.id, m.suggestions
		}
	}
	return 0, nil
}

// actionable wraps err as an ActionableError linked to its catalog entry.
// Errors that already carry that context are returned unchanged.
func actionable(operation, resource string, err error) error {
	if err == nil {
		return nil
	}
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return err
	}

	id, suggestions := issueFor(err)
	return issue.NewErrorContext().
		WithOperation(operation).
		WithResource(resource).
		WithIssue(id).
		WithSuggestions(suggestions...).
		Wrap(err).
		BuildError()
}

// withExitCode turns a failed tool run into an ExitError carrying the tool's
// exit code.
func withExitCode(err error) error {
	if err == nil {
		return nil
	}
	var (
		code process.ExitCode
		ce   *build.CompileError
		ae   *build.ArchiveError
	)
	switch {
	case errors.As(err, &ce):
		code = ce.ExitCode
	case errors.As(err, &ae):
		code = ae.ExitCode
	}
	if code.IsSuccess() {
		return err
	}
	return &ExitError{Code: code, Err: err}
}

// report prints what the short error message leaves out: tool diagnostics,
// suggestions and, when verbose, the cause chain and the catalog guide.
func (a *App) report(w io.Writer, err error, verbose bool, scheme config.ColorScheme) {
	if err == nil {
		return
	}

	if diag := diagnosticsOf(err); diag != "" {
		fmt.Fprintln(w, strings.TrimRight(diag, "\n"))
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		return
	}
	if ae.HasSuggestions() || verbose {
		// Format repeats Error first; the caller prints that line itself.
		details := strings.TrimPrefix(ae.Format(verbose), ae.Error())
		if details = strings.TrimSpace(details); details != "" {
			fmt.Fprintln(w, WarningStyle.Render(details))
		}
	}

	if !verbose {
		return
	}
	guide := issue.GuideFor(err)
	if guide == nil {
		return
	}
	rendered, renderErr := guide.Render(guideStyle(scheme))
	if renderErr != nil {
		return
	}
	fmt.Fprint(w, rendered)
}

func diagnosticsOf(err error) string {
	var (
		ce *build.CompileError
		ae *build.ArchiveError
	)
	switch {
	case errors.As(err, &ce):
		return ce.Diagnostics
	case errors.As(err, &ae):
		return ae.Diagnostics
	default:
		return ""
	}
}

// guideStyle picks the glamour style for scheme.
func guideStyle(scheme config.ColorScheme) string {
	if scheme == config.ColorSchemeLight {
		return "light"
	}
	return "dark"
}

// fail reports err to stderr and returns the error the command exits with.
// s is nil when the failure happened before a session existed.
func (a *App) fail(s *session, rf *rootFlags, operation, resource string, err error) error {
	err = actionable(operation, resource, err)

	verbose, scheme := a.isVerbose(rf, nil), config.ColorSchemeAuto
	if s != nil {
		verbose, scheme = s.verbose, s.cfg.UI.ColorScheme
	}
	a.report(a.stderr, err, verbose, scheme)

	return withExitCode(err)
}

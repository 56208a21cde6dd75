// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/xyproto/env/v2"

	"github.com/invowk/ccbuild/internal/logging"
	"github.com/invowk/ccbuild/internal/process"
	"github.com/invowk/ccbuild/pkg/platform"
)

const defaultPathExt = ".COM;.EXE;.BAT;.CMD"

type (
	// Request describes one executable to resolve.
	Request struct {
		// Name is a bare executable name or a path.
		Name string
		// Note records where Name came from, e.g. "CC" or "default for target".
		Note string
		// SearchPath, when non-empty, replaces PATH for bare names.
		SearchPath []string
		// Env is the overlay the tool will run with. Its PATH is searched when
		// SearchPath is empty, and it is carried onto the resolved Tool.
		Env map[string]string
		// Interpreter, when set, is resolved like Name and run with
		// InterpreterArgs followed by the canonical path of Name.
		Interpreter     string
		InterpreterArgs []string
	}

	// Resolver locates executables and verifies they can be spawned.
	Resolver struct {
		runner process.Runner
		logger *log.Logger
		getwd  func() (string, error)
		getenv func(string) string
		goos   string
	}

	// Option configures a Resolver during construction.
	Option func(*Resolver)
)

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) {
		r.logger = logging.OrDiscard(l)
	}
}

// WithWorkDir fixes the working directory relative names resolve against.
func WithWorkDir(dir string) Option {
	return func(r *Resolver) {
		r.getwd = func() (string, error) { return dir, nil }
	}
}

// WithGetenv replaces the ambient environment lookup (PATH, PATHEXT, ComSpec).
func WithGetenv(getenv func(string) string) Option {
	return func(r *Resolver) {
		r.getenv = getenv
	}
}

// New creates a Resolver that spawn-tests candidates with runner.
func New(runner process.Runner, opts ...Option) *Resolver {
	r := &Resolver{
		runner: runner,
		logger: logging.Discard(),
		getwd:  os.Getwd,
		getenv: func(name string) string { return env.Str(name) },
		goos:   runtime.GOOS,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve locates req.Name, canonicalizes it and spawns it once with all
// standard streams on the null device. The exit status of that spawn is
// ignored; only a failure to start counts.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Tool, error) {
	workDir, err := r.getwd()
	if err != nil {
		return Tool{}, &NotFoundError{Identifier: req.Name, Err: fmt.Errorf("working directory: %w", err)}
	}

	searchPath := r.searchPath(req)
	path, err := r.locate(req.Name, searchPath, workDir)
	if err != nil {
		return Tool{}, &NotFoundError{Identifier: req.Name, SearchPath: searchPath, WorkDir: workDir, Err: err}
	}

	tool := Tool{Requested: req.Name, Note: req.Note, Path: path, Env: req.Env}

	interpreter, interpreterArgs := req.Interpreter, req.InterpreterArgs
	if interpreter == "" && r.goos == platform.Windows && isBatchScript(path) {
		interpreter, interpreterArgs = r.commandInterpreter(), []string{"/c"}
	}
	if interpreter != "" {
		interpPath, err := r.locate(interpreter, searchPath, workDir)
		if err != nil {
			return Tool{}, &NotFoundError{
				Identifier: interpreter,
				SearchPath: searchPath,
				WorkDir:    workDir,
				Err:        fmt.Errorf("interpreter for %s: %w", req.Name, err),
			}
		}
		tool.Path = interpPath
		tool.LeadingArgs = append(append([]string(nil), interpreterArgs...), path)
	}

	if _, err := r.runner.Run(ctx, tool.Spec()); err != nil {
		return Tool{}, &NotFoundError{Identifier: req.Name, SearchPath: searchPath, WorkDir: workDir, Err: err}
	}

	r.logger.Debug("resolved tool", "name", req.Name, "note", req.Note, "path", tool.Path, "args", tool.LeadingArgs)
	return tool, nil
}

// searchPath returns the directories searched for bare names.
func (r *Resolver) searchPath(req Request) []string {
	if len(req.SearchPath) > 0 {
		return req.SearchPath
	}
	if p, ok := lookupFold(req.Env, "PATH", r.goos == platform.Windows); ok {
		return filepath.SplitList(p)
	}
	return filepath.SplitList(r.getenv("PATH"))
}

// locate finds the first executable candidate for name and returns its
// canonical path.
func (r *Resolver) locate(name string, searchPath []string, workDir string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("empty executable name: %w", fs.ErrNotExist)
	}

	var dirs []string
	if filepath.IsAbs(name) || platform.HasPathSeparator(name) {
		dirs = []string{""}
	} else {
		dirs = searchPath
	}

	for _, dir := range dirs {
		base := name
		if dir != "" {
			base = filepath.Join(dir, name)
		}
		if !filepath.IsAbs(base) {
			base = filepath.Join(workDir, base)
		}
		for _, candidate := range r.candidates(base) {
			if !isExecutable(candidate) {
				continue
			}
			return canonicalize(candidate)
		}
	}
	return "", fs.ErrNotExist
}

// candidates lists the file names tried for base. On Windows a name without
// an extension is tried with each PATHEXT extension, then as written.
func (r *Resolver) candidates(base string) []string {
	if r.goos != platform.Windows || filepath.Ext(base) != "" {
		return []string{base}
	}

	pathExt := r.getenv("PATHEXT")
	if pathExt == "" {
		pathExt = defaultPathExt
	}
	var out []string
	for _, ext := range strings.Split(pathExt, ";") {
		if ext = strings.TrimSpace(ext); ext != "" {
			out = append(out, base+strings.ToLower(ext))
		}
	}
	return append(out, base)
}

func (r *Resolver) commandInterpreter() string {
	if comspec := r.getenv("ComSpec"); comspec != "" {
		return comspec
	}
	return "cmd.exe"
}

// canonicalize makes path absolute with every symlink resolved and the
// Windows extended-length prefix removed.
func canonicalize(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return "", err
	}
	return platform.StripExtendedPrefix(abs), nil
}

func isBatchScript(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bat", ".cmd":
		return true
	default:
		return false
	}
}

// lookupFold finds key in m, ignoring case when fold is set.
func lookupFold(m map[string]string, key string, fold bool) (string, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	if !fold {
		return "", false
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/invowk/ccbuild/internal/process"
	"github.com/invowk/ccbuild/internal/toolchain"
)

type (
	// Request is one build: compile Sources into OutDir and, when Library
	// is set, bundle the objects into a static library.
	Request struct {
		Options  toolchain.Options
		Compiler string
		Archiver string
		Sources  []string
		OutDir   string
		// Library is the bare library name, e.g. "foo" for libfoo.a or foo.lib.
		Library string
		// Jobs bounds concurrent compilations; 0 means one per CPU.
		Jobs int
	}

	// Result lists what a build produced.
	Result struct {
		Plan        *Plan
		Invocations []toolchain.CompileInvocation
		Objects     []string
		// Archive is empty when no library was requested.
		Archive string
	}
)

// Build runs req. Compilations run concurrently; the first failure cancels
// the rest and is returned. Two sources mapping to the same object fail the
// build with a *DuplicateObjectError before anything is compiled.
func (d *Driver) Build(ctx context.Context, req Request) (*Result, error) {
	if len(req.Sources) == 0 {
		return nil, errors.New("no sources to compile")
	}

	plan, err := d.Prepare(ctx, req.Options, req.Compiler)
	if err != nil {
		return nil, err
	}

	res := &Result{Plan: plan}
	ext := plan.Selection.Family.ObjectExt()
	owners := make(map[string]string, len(req.Sources))
	for _, src := range req.Sources {
		obj := ObjectPath(req.OutDir, src, ext)
		if prev, ok := owners[obj]; ok {
			return nil, &DuplicateObjectError{Object: obj, Sources: [2]string{prev, src}}
		}
		owners[obj] = src
		res.Objects = append(res.Objects, obj)
		res.Invocations = append(res.Invocations, plan.Invocation(src, obj))
	}

	if err := d.compileAll(ctx, req.Sources, res.Objects, res.Invocations, req.Jobs); err != nil {
		return nil, err
	}

	if req.Library == "" {
		return res, nil
	}

	archive, err := d.archive(ctx, req, plan, res.Objects)
	if err != nil {
		return nil, err
	}
	res.Archive = archive
	return res, nil
}

func (d *Driver) compileAll(ctx context.Context, srcs, objs []string, invs []toolchain.CompileInvocation, jobs int) error {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i := range invs {
		g.Go(func() error {
			return d.compile(ctx, srcs[i], objs[i], invs[i])
		})
	}
	return g.Wait()
}

func (d *Driver) compile(ctx context.Context, src, obj string, inv toolchain.CompileInvocation) error {
	if err := os.MkdirAll(filepath.Dir(obj), 0o755); err != nil {
		return fmt.Errorf("create object directory: %w", err)
	}

	spec := inv.Spec()
	spec.Capture = true
	d.logger.Debug("compiling", "source", src, "command", spec.CommandLine())

	result, err := d.runner.Run(ctx, spec)
	if err != nil {
		return err
	}
	if !result.Success() {
		return &CompileError{
			Source:      src,
			CommandLine: spec.CommandLine(),
			ExitCode:    result.ExitCode,
			Diagnostics: joinOutput(result),
		}
	}
	return nil
}

func (d *Driver) archive(ctx context.Context, req Request, plan *Plan, objs []string) (string, error) {
	family := plan.Selection.Family
	archiver, err := d.SelectArchiver(ctx, plan.Options, family, req.Archiver)
	if err != nil {
		return "", err
	}

	lib := filepath.Join(req.OutDir, LibraryFileName(family, req.Library))
	// ar appends to an existing archive.
	if err := os.Remove(lib); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("remove stale library: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(lib), 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	spec := toolchain.NewArchiveSpec(archiver, family, lib, objs)
	spec.Capture = true
	d.logger.Debug("archiving", "library", lib, "command", spec.CommandLine())

	result, err := d.runner.Run(ctx, spec)
	if err != nil {
		return "", err
	}
	if !result.Success() {
		return "", &ArchiveError{
			Library:     lib,
			CommandLine: spec.CommandLine(),
			ExitCode:    result.ExitCode,
			Diagnostics: joinOutput(result),
		}
	}
	return lib, nil
}

// ObjectPath maps src to its object file under outDir. Relative sources
// keep their directory structure. Absolute sources and sources escaping the
// working directory are named after their base name plus a hash of their
// directory, so equally named files from different directories stay apart.
// The source extension is dropped: foo.c and foo.cpp in one directory map
// to the same object, which Build rejects.
func ObjectPath(outDir, src, ext string) string {
	rel := filepath.Clean(src)
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		sum := sha256.Sum256([]byte(filepath.ToSlash(filepath.Dir(rel))))
		base := filepath.Base(rel)
		rel = strings.TrimSuffix(base, filepath.Ext(base)) + "-" + hex.EncodeToString(sum[:4])
	} else {
		rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	}
	return filepath.Join(outDir, rel+ext)
}

// LibraryFileName returns the static library file name for family.
func LibraryFileName(family toolchain.Family, name string) string {
	if family == toolchain.Msvc {
		return name + ".lib"
	}
	return "lib" + name + ".a"
}

func joinOutput(r *process.Result) string {
	return strings.TrimSpace(strings.TrimSpace(r.ErrOutput) + "\n" + strings.TrimSpace(r.Output))
}

// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/invowk/ccbuild/internal/logging"
	"github.com/invowk/ccbuild/internal/process"
	"github.com/invowk/ccbuild/internal/resolve"
)

const (
	familyProbeName = "ccbuild_tool_family.c"

	// familyProbeSource preprocesses to exactly one marker line. _MSC_VER is
	// tested first because clang-cl defines both it and __clang__, and
	// __clang__ before __GNUC__ because Clang defines both.
	familyProbeSource = `#if defined(_MSC_VER)
msvc
#elif defined(__clang__)
clang
#elif defined(__GNUC__)
gnu
#endif
`
)

// msvcStems are executable names classified as Msvc without spawning.
var msvcStems = map[string]bool{
	"cl":       true,
	"clang-cl": true,
}

type (
	// Classifier determines the Family of resolved tools and memoizes the
	// result per tool identity.
	Classifier struct {
		runner  process.Runner
		logger  *log.Logger
		scratch string

		mu      sync.RWMutex
		results map[string]Family
		group   singleflight.Group
	}

	// ClassifierOption configures a Classifier during construction.
	ClassifierOption func(*Classifier)
)

// WithClassifierLogger sets the logger used for debug tracing.
func WithClassifierLogger(l *log.Logger) ClassifierOption {
	return func(c *Classifier) {
		c.logger = logging.OrDiscard(l)
	}
}

// WithClassifierScratchDir sets the directory probe sources are written under.
func WithClassifierScratchDir(dir string) ClassifierOption {
	return func(c *Classifier) {
		c.scratch = dir
	}
}

// NewClassifier creates a Classifier that runs probes with runner.
func NewClassifier(runner process.Runner, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		runner:  runner,
		logger:  logging.Discard(),
		results: make(map[string]Family),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the family of tool. Tools named cl or clang-cl are Msvc
// without spawning anything. Any other tool preprocesses a probe source once
// per identity; concurrent first requests share that single run. A caller
// whose ctx ends stops waiting while the run continues for the others.
func (c *Classifier) Classify(ctx context.Context, tool resolve.Tool) (Family, error) {
	if msvcStems[strings.ToLower(tool.Stem())] {
		return Msvc, nil
	}

	key := tool.Identity()
	if family, ok := c.cached(key); ok {
		return family, nil
	}

	runCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		if family, ok := c.cached(key); ok {
			return family, nil
		}
		family, err := c.probe(runCtx, tool)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.results[key] = family
		c.mu.Unlock()
		c.logger.Debug("classified tool", "tool", tool.Requested, "path", tool.Path, "family", family)
		return family, nil
	})

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(Family), nil
	}
}

func (c *Classifier) cached(key string) (Family, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	family, ok := c.results[key]
	return family, ok
}

func (c *Classifier) probe(ctx context.Context, tool resolve.Tool) (Family, error) {
	src, cleanup, err := writeScratch(c.scratch, familyProbeName, familyProbeSource)
	if err != nil {
		return 0, &ClassificationError{Identifier: tool.Requested, Path: tool.Path, Err: err}
	}
	defer cleanup()

	spec := tool.Spec("-E", src)
	spec.Capture = true
	res, err := c.runner.Run(ctx, spec)
	if err != nil {
		return 0, &ClassificationError{Identifier: tool.Requested, Path: tool.Path, Err: err}
	}

	family, ok := parseFamilyMarker(res.Output)
	if !ok {
		return 0, &ClassificationError{Identifier: tool.Requested, Path: tool.Path, Output: res.Output + res.ErrOutput}
	}
	return family, nil
}

// parseFamilyMarker returns the family named by the first marker line of a
// preprocessed probe.
func parseFamilyMarker(output string) (Family, bool) {
	for line := range strings.Lines(output) {
		switch strings.TrimSpace(line) {
		case "msvc":
			return Msvc, true
		case "clang":
			return Clang, true
		case "gnu":
			return Gnu, true
		}
	}
	return 0, false
}

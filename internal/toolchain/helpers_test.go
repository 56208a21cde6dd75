// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"io/fs"
	"slices"
	"sync"
	"testing"

	"github.com/invowk/ccbuild/internal/resolve"
)

// stubResolver resolves names from a fixed table without touching the
// filesystem.
type stubResolver struct {
	mu    sync.Mutex
	tools map[string]string
	calls []string
}

func newStubResolver(tools map[string]string) *stubResolver {
	return &stubResolver{tools: tools}
}

func (s *stubResolver) Resolve(_ context.Context, req resolve.Request) (resolve.Tool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req.Name)

	path, ok := s.tools[req.Name]
	if !ok {
		return resolve.Tool{}, &resolve.NotFoundError{Identifier: req.Name, SearchPath: req.SearchPath, Err: fs.ErrNotExist}
	}
	return resolve.Tool{Requested: req.Name, Note: req.Note, Path: path, Env: req.Env}, nil
}

func tool(path string) resolve.Tool {
	return resolve.Tool{Requested: path, Path: path}
}

func indexOf(args []string, token string) int {
	return slices.Index(args, token)
}

func lastIndexOf(args []string, token string) int {
	for i := len(args) - 1; i >= 0; i-- {
		if args[i] == token {
			return i
		}
	}
	return -1
}

func mustHave(t *testing.T, args []string, tokens ...string) {
	t.Helper()
	for _, tok := range tokens {
		if !slices.Contains(args, tok) {
			t.Errorf("args %q missing %q", args, tok)
		}
	}
}

func mustNotHave(t *testing.T, args []string, tokens ...string) {
	t.Helper()
	for _, tok := range tokens {
		if slices.Contains(args, tok) {
			t.Errorf("args %q unexpectedly contain %q", args, tok)
		}
	}
}

func mustHaveInOrder(t *testing.T, args []string, before, after string) {
	t.Helper()
	b, a := lastIndexOf(args, before), indexOf(args, after)
	if b < 0 || a < 0 || b >= a {
		t.Errorf("args %q: want %q (at %d) before %q (at %d)", args, before, b, after, a)
	}
}

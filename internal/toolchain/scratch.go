// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"fmt"
	"os"
	"path/filepath"
)

// writeScratch creates a fresh directory under root (os.TempDir when empty),
// writes content to name inside it and returns the file path together with a
// function removing the directory.
func writeScratch(root, name, content string) (path string, cleanup func(), err error) {
	dir, err := os.MkdirTemp(root, "ccbuild-*")
	if err != nil {
		return "", nil, fmt.Errorf("create scratch directory: %w", err)
	}
	cleanup = func() { _ = os.RemoveAll(dir) }

	path = filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("write %s: %w", name, err)
	}
	return path, cleanup, nil
}

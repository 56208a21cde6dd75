// SPDX-License-Identifier: MPL-2.0

// Package build drives a compilation: it selects and classifies the
// compiler, probes optional flags once, compiles every source concurrently
// and bundles the objects into a static library.
package build

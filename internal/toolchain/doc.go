// SPDX-License-Identifier: MPL-2.0

// Package toolchain classifies native compilers into tool families, parses
// compiler override strings, probes flag support and assembles the ordered
// argument lists for compile and archive invocations.
//
// Spawning is delegated to a process.Runner so every component can be driven
// by a recording stand-in in tests. The classification and flag probe caches
// are explicit values: construct one per build and share it between the
// goroutines of that build.
package toolchain

// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the ccbuild command tree.
package cmd
